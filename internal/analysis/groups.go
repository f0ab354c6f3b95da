package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/salesstat/internal/dataset"
)

type group struct {
	key    string
	values []float64
}

// groupSales splits the sales values by the key column, in the order keys are
// first encountered. Rows with a missing key or missing sales are skipped.
func groupSales(t *dataset.Table, salesCol, keyCol string) ([]*group, error) {
	sales, err := t.Column(salesCol)
	if err != nil {
		return nil, err
	}
	keys, err := t.Strings(keyCol)
	if err != nil {
		return nil, err
	}
	var out []*group
	idx := map[string]*group{}
	for i, k := range keys {
		if k == "" || math.IsNaN(sales[i]) {
			continue
		}
		g, ok := idx[k]
		if !ok {
			g = &group{key: k}
			idx[k] = g
			out = append(out, g)
		}
		g.values = append(g.values, sales[i])
	}
	return out, nil
}

func sortGroups(gs []*group) {
	sort.Slice(gs, func(i, j int) bool { return gs[i].key < gs[j].key })
}

// GroupStat is the sales breakdown for one value of a grouping column.
type GroupStat struct {
	Column string `json:"column" yaml:"column"`
	Key    string `json:"key" yaml:"key"`
	Count  int    `json:"count" yaml:"count"`
	Mean   Num    `json:"mean" yaml:"mean"`
	// Total is summed in decimal so currency amounts add up exactly.
	Total string `json:"total" yaml:"total"`
}

func breakdown(t *dataset.Table, salesCol, keyCol string) ([]GroupStat, error) {
	gs, err := groupSales(t, salesCol, keyCol)
	if err != nil {
		return nil, err
	}
	sortGroups(gs)
	out := make([]GroupStat, 0, len(gs))
	for _, g := range gs {
		total := decimal.Zero
		for _, v := range g.values {
			total = total.Add(decimal.NewFromFloat(v))
		}
		mean := total.Div(decimal.NewFromInt(int64(len(g.values))))
		m, _ := mean.Float64()
		out = append(out, GroupStat{
			Column: keyCol,
			Key:    g.key,
			Count:  len(g.values),
			Mean:   Num(m),
			Total:  total.StringFixed(2),
		})
	}
	return out, nil
}
