package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"eventspot/model"
	"eventspot/output"
)

func (a *App) moderateCommand() *cobra.Command {
	var approve, disapprove bool
	var suggestion string

	cmd := &cobra.Command{
		Use:   "moderate <event-id>",
		Short: "Approve or disapprove a submitted event",
		Long: `Approve or disapprove a submitted event. A disapproval needs a
suggestion telling the organizer what to change.

Examples:
  eventspot moderate 64f1c0ffee --approve
  eventspot moderate 64f1c0ffee --disapprove --suggestion "Add a venue photo"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if approve == disapprove {
				return errors.New("choose exactly one of --approve or --disapprove")
			}
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			if err := client.Moderate(ctx, args[0], model.Moderation{IsApproved: approve, Suggestion: suggestion}); err != nil {
				return err
			}
			if approve {
				a.printer.Success("Event approved")
			} else {
				a.printer.Success("Event disapproved, the organizer will see your suggestion")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&approve, "approve", false, "approve the event")
	cmd.Flags().BoolVar(&disapprove, "disapprove", false, "disapprove the event")
	cmd.Flags().StringVar(&suggestion, "suggestion", "", "what the organizer should change")
	return cmd
}

func (a *App) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	cmd.AddCommand(a.usersListCommand(), a.usersUpdateCommand(), a.usersDeleteCommand())
	return cmd
}

func (a *App) usersListCommand() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			p, err := client.Users(ctx, page, limit)
			if err != nil {
				return err
			}

			a.printer.Header(fmt.Sprintf("Users (page %d, %d total)", page, p.Total))
			t := output.NewTable(a.printer.Out(), []string{"ID", "NAME", "EMAIL", "ROLE", "JOINED"})
			for _, u := range p.Data {
				joined := ""
				if u.CreatedAt != nil {
					joined = u.CreatedAt.Format("2006-01-02")
				}
				t.AddRow(u.ID, u.Name, u.Email, a.printer.Status(string(u.Role)), joined)
			}
			return t.Render()
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "users per page")
	return cmd
}

func (a *App) usersUpdateCommand() *cobra.Command {
	var u model.UserUpdate
	var role string

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Change a user's name, email or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u.Role = model.Role(role)
			if u.Role != model.RoleAdmin && u.Role != model.RoleCustomer {
				return fmt.Errorf("role must be %s or %s", model.RoleAdmin, model.RoleCustomer)
			}
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			if err := client.UpdateUser(ctx, args[0], u); err != nil {
				return err
			}
			a.printer.Success("User updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&u.Name, "name", "", "display name")
	cmd.Flags().StringVar(&u.Email, "email", "", "email")
	cmd.Flags().StringVar(&role, "role", string(model.RoleCustomer), "admin or customer")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) usersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			if err := client.DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			a.printer.Success("User deleted")
			return nil
		},
	}
}

func (a *App) analyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show the admin analytics snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			an, err := client.Analytics(ctx)
			if err != nil {
				return err
			}

			s := an.Summary
			a.printer.Header("Summary")
			a.printer.Print("Users:             %d (%d admin, %d customer)", s.TotalUsers, an.RoleBreakdown.Admin, an.RoleBreakdown.Customer)
			a.printer.Print("Events:            %d (%d approved, %d pending, %d disapproved)", s.TotalEvents, an.EventStatus.Approved, an.EventStatus.Pending, an.EventStatus.Disapproved)
			a.printer.Print("Upcoming approved: %d", s.UpcomingApprovedEvents)
			a.printer.Print("Bookings:          %d (%d successful)", s.TotalBookings, s.SuccessfulBookings)
			a.printer.Print("Revenue:           %.2f", s.TotalRevenue)

			if len(an.TopEvents) > 0 {
				a.printer.Header("Top events")
				t := output.NewTable(a.printer.Out(), []string{"EVENT", "BOOKINGS", "TICKETS", "REVENUE"})
				for _, e := range an.TopEvents {
					t.AddRow(e.EventName, strconv.Itoa(e.Bookings), strconv.Itoa(e.Tickets), strconv.FormatFloat(e.Revenue, 'f', 2, 64))
				}
				if err := t.Render(); err != nil {
					return err
				}
			}

			if len(an.BookingTrend) > 0 {
				a.printer.Header("Bookings by day")
				t := output.NewTable(a.printer.Out(), []string{"DATE", "BOOKINGS", "REVENUE"})
				for _, p := range an.BookingTrend {
					t.AddRow(p.Date, strconv.Itoa(p.Bookings), strconv.FormatFloat(p.Revenue, 'f', 2, 64))
				}
				if err := t.Render(); err != nil {
					return err
				}
			}

			if !an.GeneratedAt.IsZero() {
				a.printer.Print("\nGenerated %s", an.GeneratedAt.Format("2006-01-02 15:04 MST"))
			}
			return nil
		},
	}
}

func (a *App) chatbotUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chatbot-upload <file.pdf>",
		Short: "Add a PDF to the assistant's knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("cannot read %s", args[0])
			}
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			name, err := client.UploadChatbotPDF(ctx, args[0], data)
			if err != nil {
				return err
			}
			a.printer.Success("Uploaded " + name)
			return nil
		},
	}
}
