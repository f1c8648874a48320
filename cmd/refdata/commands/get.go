package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/refdata/pkg/refdata"
)

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up a single record by key",
	}

	cmd.AddCommand(newGetProductStoreCommand())

	return cmd
}

func newGetProductStoreCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "product-store <id>",
		Aliases: []string{"productStore"},
		Short:   "Look up a product store by productStoreId",
		Long: `Look up a product store by exact productStoreId. When several stores share
the id the first one in seed order is returned.

A missing store is reported but is not an error unless --strict is set.`,
		Example: `  refdata get product-store STORE_1
  refdata get product-store STORE_1 --json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			ctx := cmd.Context()

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.loader.Reload(ctx); err != nil {
				return err
			}

			ps, ok := a.loader.Accessor().ProductStore(id)
			a.tel.Metrics.RecordLookup(string(refdata.KindProductStores), ok)

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput && ok:
				if err := printJSON(out, ps); err != nil {
					return err
				}
			case jsonOutput:
				if err := printJSON(out, nil); err != nil {
					return err
				}
			case ok:
				table := newTable(out, productStoreHeader)
				table.Append(productStoreRow(ps))
				table.Render()
			default:
				fmt.Fprintf(out, "product store %q not found\n", id)
			}

			if !ok && strict {
				return fmt.Errorf("product store %q not found", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the store does not exist")

	return cmd
}
