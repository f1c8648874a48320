package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/openfroyo/refdata/pkg/refdata"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Print one reference data collection",
		Long: `List prints every record of a collection in seed order.

Kinds: ` + kindNames(),
		Example: `  refdata list product-stores
  refdata list countries --json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, k := range refdata.Kinds() {
				names = append(names, k.Slug())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := refdata.ParseKind(args[0])
			if err != nil {
				return err
			}

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

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, snap.Records(kind))
			}

			header, rows := recordRows(snap, kind)
			table := newTable(out, header)
			table.AppendBulk(rows)
			table.Render()
			return nil
		},
	}

	return cmd
}

func kindNames() string {
	names := make([]string, 0, len(refdata.Kinds()))
	for _, k := range refdata.Kinds() {
		names = append(names, k.Slug())
	}
	return strings.Join(names, ", ")
}
