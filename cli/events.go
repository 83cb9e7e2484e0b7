package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"eventspot/model"
	"eventspot/output"
)

func (a *App) eventTable(events []model.Event) error {
	t := output.NewTable(a.printer.Out(), []string{"ID", "NAME", "DATE", "LOCATION", "PRICE", "TICKETS", "STATUS"})
	for _, e := range events {
		t.AddRow(
			e.ID,
			a.printer.Bold(e.EventName),
			dateOnly(e.Date),
			e.Location,
			strconv.FormatFloat(e.TicketPrice, 'f', 2, 64),
			strconv.Itoa(e.RemainingTickets()),
			a.printer.Status(string(e.Status())),
		)
	}
	return t.Render()
}

func dateOnly(date string) string {
	if i := strings.Index(date, "T"); i >= 0 {
		return date[:i]
	}
	return date
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) eventsCommand() *cobra.Command {
	var all bool
	var page, limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List approved events",
		Long: `List approved events. Admins can list every event with --all.

Examples:
  eventspot events
  eventspot events --all --page 2 --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}

			if !all {
				events, err := client.ApprovedEvents(ctx)
				if err != nil {
					return err
				}
				a.printer.Header("Events")
				return a.eventTable(events)
			}

			p, err := client.Events(ctx, page, limit)
			if err != nil {
				return err
			}
			a.printer.Header(fmt.Sprintf("All events (page %d, %d total)", page, p.Total))
			return a.eventTable(p.Data)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every event, including pending ones")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "events per page")
	return cmd
}

func (a *App) eventCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "event <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			e, err := client.Event(ctx, args[0])
			if err != nil {
				return err
			}

			a.printer.Header(e.EventName)
			if e.EventDescription != "" {
				a.printer.Print("%s\n", e.EventDescription)
			}
			a.printer.Print("Type:      %s", e.EventType)
			a.printer.Print("Where:     %s", e.Location)
			a.printer.Print("When:      %s %s-%s", dateOnly(e.Date), e.StartTime, e.EndTime)
			a.printer.Print("Price:     %.2f", e.TicketPrice)
			a.printer.Print("Tickets:   %d", e.RemainingTickets())
			a.printer.Print("Parking:   %s", yesNo(e.ParkingAvailable))
			a.printer.Print("Food:      %s", yesNo(e.FoodAvailable))
			a.printer.Print("Contact:   %s %s", e.ContactEmail, e.ContactPhone)
			a.printer.Print("Status:    %s", a.printer.Status(string(e.Status())))
			if e.Suggestion != "" {
				a.printer.Print("Suggestion: %s", e.Suggestion)
			}
			for _, photo := range e.Photos {
				a.printer.Print("Photo:     %s", photo)
			}
			return nil
		},
	}
}

func (a *App) myEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "my-events",
		Short: "List the events you organize",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			events, err := client.MyEvents(ctx)
			if err != nil {
				return err
			}
			a.printer.Header("My events")
			if err := a.eventTable(events); err != nil {
				return err
			}
			for _, e := range events {
				if e.Status() == model.StatusDisapproved && e.Suggestion != "" {
					a.printer.Print("%s: %s", e.EventName, e.Suggestion)
				}
			}
			return nil
		},
	}
}

func (a *App) deleteEventCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-event <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			if err := client.DeleteEvent(ctx, args[0]); err != nil {
				return err
			}
			a.printer.Success("Event deleted")
			return nil
		},
	}
}
