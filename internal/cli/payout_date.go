package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/finance"
)

func newPayoutDateCmd() *cobra.Command {
	var gross, serviceFee, gatewayFee string
	cmd := &cobra.Command{
		Use:   "payout-date YYYY-MM-DD",
		Short: "Print the payout date and, with amounts, the organizer payout for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventDate, err := domain.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("event date %q: expected YYYY-MM-DD", args[0])
			}
			out := cmd.OutOrStdout()
			payout := finance.PayoutDate(eventDate)
			fmt.Fprintf(out, "event date:  %s (%s)\n", domain.FormatDate(eventDate), eventDate.Weekday())
			fmt.Fprintf(out, "payout date: %s (%s)\n", domain.FormatDate(payout), payout.Weekday())

			if gross == "" {
				return nil
			}
			amounts := make([]domain.Money, 3)
			for i, raw := range []string{gross, serviceFee, gatewayFee} {
				if amounts[i], err = domain.ParseMoney(raw); err != nil {
					return err
				}
			}
			fin := finance.Derive(amounts[0], amounts[1], amounts[2])
			fmt.Fprintf(out, "net sale:     %s\n", fin.NetSale.Format())
			fmt.Fprintf(out, "total payout: %s\n", fin.TotalPayout.Format())
			return nil
		},
	}
	cmd.Flags().StringVar(&gross, "gross", "", "gross sale, e.g. 45000.00")
	cmd.Flags().StringVar(&serviceFee, "service-fee", "", "service fee")
	cmd.Flags().StringVar(&gatewayFee, "gateway-fee", "", "gateway fee")
	return cmd
}
