package cmd

import (
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesstat/internal/dataset"
)

var colFlags runFlags

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List normalized columns, their types and detected roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := currentConfig()
		rc, err := colFlags.resolve(cmd, g)
		if err != nil {
			return err
		}
		tbl, err := dataset.Load(args[0], rc.load)
		if err != nil {
			return err
		}
		roles, detectErr := dataset.Detect(tbl.Columns(), g.Keywords)
		if detectErr != nil && !errors.Is(detectErr, dataset.ErrNoSalesColumn) {
			return detectErr
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d rows\n", tbl.Name, tbl.Rows())
		tw := tablewriter.NewWriter(out)
		tw.SetHeader([]string{"Column", "Type", "Role"})
		for _, c := range tbl.Columns() {
			tw.Append([]string{c, tbl.Kind(c), roleOf(roles, c)})
		}
		tw.Render()
		return detectErr
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	fs := columnsCmd.Flags()
	fs.StringVar(&colFlags.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	fs.StringVar(&colFlags.sheetName, "sheet-name", "", "XLSX: sheet name to inspect")
	fs.IntVar(&colFlags.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func roleOf(r dataset.Roles, col string) string {
	var roles []string
	if col == r.Sales {
		roles = append(roles, "sales")
	}
	if col == r.Region {
		roles = append(roles, "region")
	}
	if col == r.Product {
		roles = append(roles, "product")
	}
	switch len(roles) {
	case 0:
		return ""
	case 1:
		return roles[0]
	}
	return fmt.Sprint(roles)
}
