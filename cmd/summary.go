package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSummaryCmd creates the 'summary' subcommand: the lowest known price
// per product plus the most recent observations.
func newSummaryCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Shows the best known price per product and recent observations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			best, err := appInstance.Store.BestPrices(cmd.Context())
			if err != nil {
				return fmt.Errorf("load best prices: %w", err)
			}
			cmd.Println("Best prices:")
			for _, b := range best {
				cmd.Printf("  %-40s %12s %s  (%s)\n",
					b.ProductName, formatMinor(b.PriceMinor), b.Currency, b.ShopName)
			}

			rows, err := appInstance.Store.RecentObservations(cmd.Context(), recent)
			if err != nil {
				return fmt.Errorf("load recent observations: %w", err)
			}
			cmd.Println("Recent observations:")
			for _, r := range rows {
				cmd.Printf("  %s  %-40s %12s %s  %s\n",
					r.ObservedAt.Format("2006-01-02 15:04:05"),
					r.ProductName, formatMinor(r.PriceMinor), r.Currency, r.ShopName)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 50, "number of recent observations to show")
	return cmd
}

// formatMinor renders integer minor units as a major-unit decimal string.
func formatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
