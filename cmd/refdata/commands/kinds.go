package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openfroyo/refdata/pkg/refdata"
)

type kindCount struct {
	Kind    refdata.Kind `json:"kind"`
	Name    string       `json:"name"`
	Records int          `json:"records"`
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List collections with their record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.loader.Reload(ctx); err != nil {
				return err
			}
			snap := a.store.Current()

			counts := make([]kindCount, 0, len(refdata.Kinds()))
			for _, k := range refdata.Kinds() {
				counts = append(counts, kindCount{Kind: k, Name: k.Slug(), Records: snap.Len(k)})
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, counts)
			}

			table := newTable(out, []string{"Kind", "Name", "Records"})
			for _, c := range counts {
				table.Append([]string{string(c.Kind), c.Name, strconv.Itoa(c.Records)})
			}
			table.Render()
			return nil
		},
	}
}
