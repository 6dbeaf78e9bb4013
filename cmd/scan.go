package cmd

import (
	"github.com/spf13/cobra"
)

// newScanCmd creates the 'scan' subcommand: a one-shot batch over the
// active tracked links, optionally scoped to a single product.
func newScanCmd() *cobra.Command {
	var productID int64

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs one scan batch and reports how many observations were saved",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			var saved int
			if cmd.Flags().Changed("product") {
				saved, err = appInstance.Scanner.RunForProduct(cmd.Context(), productID)
			} else {
				saved, err = appInstance.Scanner.RunAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			cmd.Printf("saved %d observations\n", saved)
			return nil
		},
	}

	cmd.Flags().Int64Var(&productID, "product", 0, "scan only the links of this product id")
	return cmd
}
