package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventspot/booking"
	"eventspot/checkout"
	"eventspot/config"
	"eventspot/journal"
	"eventspot/logger"
)

// journal returns the attempt journal, or nil when no database is configured.
func (a *App) journal(ctx context.Context) *journal.Journal {
	db := a.factory.DB(ctx)
	if db == nil {
		return nil
	}
	j := journal.New(db)
	if err := j.Migrate(ctx); err != nil {
		logger.Warnf(ctx, "cli: booking journal unavailable: %+v", err)
		return nil
	}
	return j
}

func (a *App) checkoutServer() *checkout.Server {
	return checkout.NewServer(viper.GetString(config.CheckoutScriptURL),
		checkout.WithTimeout(viper.GetDuration(config.CheckoutTimeout)),
		checkout.WithAnnounce(func(ctx context.Context, url string) {
			a.printer.Info("Complete the payment in your browser: " + url)
		}),
	)
}

func (a *App) bookCommand() *cobra.Command {
	var tickets int

	cmd := &cobra.Command{
		Use:   "book <event-id>",
		Short: "Buy tickets for an event",
		Long: `Buy tickets for an event. The payment runs in the gateway's hosted
checkout, served on a local address printed below.

Example:
  eventspot book 64f1c0ffee --tickets 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			g, err := a.sessionGuard(ctx)
			if err != nil {
				return err
			}

			event, err := client.Event(ctx, args[0])
			if err != nil {
				return err
			}

			opts := []booking.Option{
				booking.WithCheckoutName(viper.GetString(config.CheckoutName)),
				booking.WithBookingsPath(viper.GetString(config.BookingsPath)),
				booking.WithConfirmDelay(viper.GetDuration(config.ConfirmDelay)),
			}
			if j := a.journal(ctx); j != nil {
				opts = append(opts, booking.WithJournal(j))
			}

			flow := booking.NewFlow(client, g, a.checkoutServer(), a.printer, a.nav, opts...)
			outcome, err := flow.Book(ctx, booking.Request{Event: event, Tickets: tickets})
			logger.Infof(ctx, "cli: booking of %s ended: %s", event.ID, outcome)
			if outcome == booking.Booked {
				return nil
			}
			// the flow or the guard has already told the user
			if err != nil {
				logger.Debugf(ctx, "cli: booking error: %+v", err)
			}
			return fmt.Errorf("%w: booking %s", errReported, outcome)
		},
	}
	cmd.Flags().IntVarP(&tickets, "tickets", "t", 1, "number of tickets")
	return cmd
}
