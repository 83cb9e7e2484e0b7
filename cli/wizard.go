package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventspot/api"
	"eventspot/config"
	"eventspot/logger"
	"eventspot/places"
	"eventspot/wizard"
)

// placeFinder is places.Client as the wizard command uses it.
type placeFinder interface {
	wizard.PlaceResolver
	Suggest(ctx context.Context, input string) ([]places.Suggestion, error)
}

var fieldLabels = map[wizard.Field]string{
	wizard.FieldEventName:        "Event name",
	wizard.FieldEventDescription: "Description",
	wizard.FieldEventType:        "Event type",
	wizard.FieldLocation:         "Location",
	wizard.FieldDate:             "Date (YYYY-MM-DD)",
	wizard.FieldStartTime:        "Start time (HH:MM)",
	wizard.FieldEndTime:          "End time (HH:MM)",
	wizard.FieldPhotos:           "Photo files, comma separated",
	wizard.FieldTotalTickets:     "Total tickets",
	wizard.FieldTicketPrice:      "Ticket price",
	wizard.FieldParkingAvailable: "Parking available (true/false)",
	wizard.FieldFoodAvailable:    "Food available (true/false)",
	wizard.FieldContactEmail:     "Contact email",
	wizard.FieldContactPhone:     "Contact phone",
}

func (a *App) placeFinder(ctx context.Context) placeFinder {
	p, err := places.New(viper.GetString(config.GoogleMapsAPIKey))
	if err != nil {
		logger.Debugf(ctx, "cli: place suggestions off: %+v", err)
		return nil
	}
	return p
}

func (a *App) createEventCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-event",
		Short: "Submit a new event for moderation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			finder := a.placeFinder(ctx)
			var resolver wizard.PlaceResolver
			if finder != nil {
				resolver = finder
			}
			return a.runWizard(ctx, wizard.New(client, resolver), finder)
		},
	}
}

func (a *App) updateEventCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-event <id>",
		Short: "Edit an event and send it back to moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			finder := a.placeFinder(ctx)
			var resolver wizard.PlaceResolver
			if finder != nil {
				resolver = finder
			}
			w, err := wizard.Edit(ctx, client, args[0], client, resolver)
			if err != nil {
				return err
			}
			return a.runWizard(ctx, w, finder)
		},
	}
}

func (a *App) runWizard(ctx context.Context, w *wizard.Wizard, finder placeFinder) error {
	for {
		a.printer.Header(fmt.Sprintf("Step %d of 4: %s", int(w.Step())+1, w.Step()))
		for _, f := range w.Fields() {
			if err := a.askField(ctx, w, f, finder); err != nil {
				return err
			}
		}

		label := "[n]ext, [b]ack or [q]uit"
		if w.Step() == wizard.StepReview {
			a.printDraft(w.Draft())
			label = "[s]ubmit, [b]ack or [q]uit"
		}
		action, err := a.prompt(label, "")
		if err != nil {
			return err
		}

		switch strings.ToLower(action) {
		case "b", "back":
			if err := w.Back(); err != nil {
				a.printer.Warning("Already at the first step")
			}
		case "q", "quit":
			a.printer.Info("Nothing was submitted.")
			return nil
		default:
			submitted, err := w.Next(ctx)
			if err != nil {
				if errors.Is(err, api.ErrUnauthenticated) || errors.Is(err, api.ErrSessionEnded) {
					return fmt.Errorf("%w: %v", errReported, err)
				}
				a.printer.Error(wizardMessage(err))
				continue
			}
			if submitted {
				a.printer.Success("Event submitted for moderation")
				return nil
			}
		}
	}
}

func wizardMessage(err error) string {
	if errors.Is(err, wizard.ErrMissingFields) {
		return "Please fill event name, location and date"
	}
	return userMessage(err)
}

func (a *App) askField(ctx context.Context, w *wizard.Wizard, f wizard.Field, finder placeFinder) error {
	d := w.Draft()
	switch f {
	case wizard.FieldPhotos:
		return a.askPhotos(w, len(d.Photos))
	case wizard.FieldLocation:
		return a.askLocation(ctx, w, d.Location, finder)
	}

	for {
		current := draftValue(d, f)
		value, err := a.prompt(fieldLabels[f], current)
		if err != nil {
			return err
		}
		if value == current {
			return nil
		}
		err = w.Set(f, value)
		if err == nil {
			return nil
		}
		if !errors.Is(err, wizard.ErrInvalidValue) {
			return err
		}
		a.printer.Error(strings.TrimPrefix(err.Error(), wizard.ErrInvalidValue.Error()+": "))
	}
}

func (a *App) askLocation(ctx context.Context, w *wizard.Wizard, current string, finder placeFinder) error {
	text, err := a.prompt(fieldLabels[wizard.FieldLocation], current)
	if err != nil {
		return err
	}
	if text == current {
		return nil
	}
	if finder == nil {
		return w.SetLocationText(text)
	}

	suggestions, err := finder.Suggest(ctx, text)
	if err != nil || len(suggestions) == 0 {
		if err != nil {
			logger.Warnf(ctx, "cli: place suggestions failed: %+v", err)
		}
		return w.SetLocationText(text)
	}
	for i, s := range suggestions {
		a.printer.Print("  %d) %s", i+1, s.Description)
	}
	choice, err := a.prompt("Choose a place, or Enter to keep the text", "")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(choice)
	if choice == "" || convErr != nil || n < 1 || n > len(suggestions) {
		return w.SetLocationText(text)
	}
	if err := w.ChoosePlace(ctx, suggestions[n-1].PlaceID); err != nil {
		logger.Warnf(ctx, "cli: unable to resolve place: %+v", err)
		a.printer.Warning("Could not look up that place, keeping the text")
		return w.SetLocationText(text)
	}
	return nil
}

func (a *App) askPhotos(w *wizard.Wizard, have int) error {
	if have >= api.MaxPhotos {
		return nil
	}
	list, err := a.prompt(fmt.Sprintf("%s (up to %d)", fieldLabels[wizard.FieldPhotos], api.MaxPhotos-have), "")
	if err != nil || list == "" {
		return err
	}
	for _, path := range strings.Split(list, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			a.printer.Error(fmt.Sprintf("Cannot read %s", path))
			continue
		}
		kept, err := w.AddPhoto(api.Photo{Filename: filepath.Base(path), Data: data})
		if err != nil {
			return err
		}
		if !kept {
			a.printer.Warning(fmt.Sprintf("Only %d photos can be added, skipped %s", api.MaxPhotos, path))
		}
	}
	return nil
}

func draftValue(d wizard.Draft, f wizard.Field) string {
	switch f {
	case wizard.FieldEventName:
		return d.EventName
	case wizard.FieldEventDescription:
		return d.EventDescription
	case wizard.FieldEventType:
		return d.EventType
	case wizard.FieldLocation:
		return d.Location
	case wizard.FieldDate:
		return d.Date
	case wizard.FieldStartTime:
		return d.StartTime
	case wizard.FieldEndTime:
		return d.EndTime
	case wizard.FieldTotalTickets:
		return strconv.Itoa(d.TotalTickets)
	case wizard.FieldTicketPrice:
		return strconv.FormatFloat(d.TicketPrice, 'f', -1, 64)
	case wizard.FieldParkingAvailable:
		return strconv.FormatBool(d.ParkingAvailable)
	case wizard.FieldFoodAvailable:
		return strconv.FormatBool(d.FoodAvailable)
	case wizard.FieldContactEmail:
		return d.ContactEmail
	case wizard.FieldContactPhone:
		return d.ContactPhone
	}
	return ""
}

func (a *App) printDraft(d wizard.Draft) {
	a.printer.Print("Name:      %s", d.EventName)
	a.printer.Print("Type:      %s", d.EventType)
	a.printer.Print("Where:     %s", d.Location)
	if d.Latitude != nil && d.Longitude != nil {
		a.printer.Print("           (%f, %f)", *d.Latitude, *d.Longitude)
	}
	a.printer.Print("When:      %s %s-%s", d.Date, d.StartTime, d.EndTime)
	a.printer.Print("Tickets:   %d at %.2f", d.TotalTickets, d.TicketPrice)
	a.printer.Print("Parking:   %s", yesNo(d.ParkingAvailable))
	a.printer.Print("Food:      %s", yesNo(d.FoodAvailable))
	a.printer.Print("Contact:   %s %s", d.ContactEmail, d.ContactPhone)
	a.printer.Print("Photos:    %d", len(d.Photos))
}
