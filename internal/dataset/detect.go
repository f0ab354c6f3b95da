package dataset

import (
	"errors"
	"strings"
)

// ErrNoSalesColumn is returned when no column name looks like sales.
var ErrNoSalesColumn = errors.New("no sales column found in dataset")

// Keywords lists the substrings that mark a column as one of the roles.
type Keywords struct {
	Sales   []string `mapstructure:"sales" yaml:"sales"`
	Region  []string `mapstructure:"region" yaml:"region"`
	Product []string `mapstructure:"product" yaml:"product"`
}

// DefaultKeywords returns the stock role keywords.
func DefaultKeywords() Keywords {
	return Keywords{
		Sales:   []string{"sale", "revenue"},
		Region:  []string{"region", "area"},
		Product: []string{"product", "category"},
	}
}

// Roles names the columns picked for each role. Empty means absent.
type Roles struct {
	Sales   string `json:"sales" yaml:"sales"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
	Product string `json:"product,omitempty" yaml:"product,omitempty"`
}

// Detect picks the first column, in column order, whose name contains one of
// the role's keywords. A sales column is mandatory.
func Detect(columns []string, kw Keywords) (Roles, error) {
	r := Roles{
		Sales:   firstMatch(columns, kw.Sales),
		Region:  firstMatch(columns, kw.Region),
		Product: firstMatch(columns, kw.Product),
	}
	if r.Sales == "" {
		return r, ErrNoSalesColumn
	}
	return r, nil
}

func firstMatch(columns []string, keywords []string) string {
	for _, c := range columns {
		name := strings.ToLower(c)
		for _, k := range keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" && strings.Contains(name, k) {
				return c
			}
		}
	}
	return ""
}
