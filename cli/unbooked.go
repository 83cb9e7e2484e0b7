package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"eventspot/config"
	"eventspot/output"
)

func (a *App) unbookedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unbooked",
		Short: "List payments that never became bookings",
		Long: `List booking attempts that were paid at the gateway but have no booking.
Each row carries the payment id to quote to support.

Needs ` + config.DBURL + ` to be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j := a.journal(ctx)
			if j == nil {
				return errors.New("no booking journal: set " + config.DBURL)
			}
			attempts, err := j.Unbooked(ctx)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				a.printer.Success("Every paid attempt has a booking")
				return nil
			}

			a.printer.Header("Paid but not booked")
			t := output.NewTable(a.printer.Out(), []string{"ATTEMPT", "EVENT", "TICKETS", "AMOUNT", "ORDER", "PAYMENT", "STATUS", "WHEN"})
			for _, at := range attempts {
				t.AddRow(
					at.ID,
					at.EventID,
					strconv.Itoa(at.Tickets),
					strconv.FormatFloat(at.Amount, 'f', 2, 64),
					at.OrderID,
					at.PaymentID,
					a.printer.Status(string(at.Status)),
					at.UpdatedAt.Format("2006-01-02 15:04"),
				)
			}
			return t.Render()
		},
	}
}
