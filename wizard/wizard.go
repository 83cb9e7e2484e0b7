// Package wizard walks an organizer through creating or editing an event in
// four steps and submits the result as one multipart request.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventspot/api"
	"eventspot/logger"
	"eventspot/model"
	"eventspot/places"
)

const (
	DateLayout = "2006-01-02"
	isoLayout  = "2006-01-02T15:04:05.000Z"
)

var (
	ErrFieldNotOnStep = errors.New("wizard: field is not on the current step")
	ErrUnknownField   = errors.New("wizard: unknown field")
	ErrAtFirstStep    = errors.New("wizard: already at the first step")
	ErrMissingFields  = errors.New("wizard: please fill event name, location and date")
	ErrInvalidValue   = errors.New("wizard: invalid value")
	ErrNoPlaces       = errors.New("wizard: place lookup is not available")
)

// Draft is the event being built. Latitude and Longitude are only set while
// Location holds the address of a chosen place.
type Draft struct {
	EventName        string
	EventDescription string
	EventType        string
	Location         string
	Latitude         *float64
	Longitude        *float64
	Date             string
	StartTime        string
	EndTime          string
	TotalTickets     int
	TicketPrice      float64
	ParkingAvailable bool
	FoodAvailable    bool
	ContactEmail     string
	ContactPhone     string
	Photos           []api.Photo
}

// Submitter sends the finished form to the backend.
type Submitter interface {
	CreateEvent(ctx context.Context, form api.EventForm) error
	UpdateEvent(ctx context.Context, id string, form api.EventForm) error
}

type PlaceResolver interface {
	Resolve(ctx context.Context, placeID string) (places.Place, error)
}

type EventLoader interface {
	Event(ctx context.Context, id string) (model.Event, error)
}

type Wizard struct {
	state   state
	draft   Draft
	eventID string
	submit  Submitter
	places  PlaceResolver
}

// New starts a wizard for a new event. resolver may be nil when place lookup
// is not configured.
func New(submit Submitter, resolver PlaceResolver) *Wizard {
	return &Wizard{state: detailsState{}, submit: submit, places: resolver}
}

// Edit starts a wizard preloaded with an existing event. Submitting it sends
// the event back to moderation.
func Edit(ctx context.Context, loader EventLoader, id string, submit Submitter, resolver PlaceResolver) (*Wizard, error) {
	e, err := loader.Event(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("edit: unable to load event %s: %w", id, err)
	}
	w := New(submit, resolver)
	w.eventID = id
	w.draft = draftFrom(e)
	return w, nil
}

func draftFrom(e model.Event) Draft {
	date := e.Date
	if i := strings.Index(date, "T"); i >= 0 {
		date = date[:i]
	}
	return Draft{
		EventName:        e.EventName,
		EventDescription: e.EventDescription,
		EventType:        e.EventType,
		Location:         e.Location,
		Latitude:         e.Latitude,
		Longitude:        e.Longitude,
		Date:             date,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		TotalTickets:     e.TotalTickets,
		TicketPrice:      e.TicketPrice,
		ParkingAvailable: e.ParkingAvailable,
		FoodAvailable:    e.FoodAvailable,
		ContactEmail:     e.ContactEmail,
		ContactPhone:     e.ContactPhone,
	}
}

func (w *Wizard) Step() Step { return w.state.step() }

// Fields lists the fields editable on the current step.
func (w *Wizard) Fields() []Field { return w.state.fields() }

func (w *Wizard) Updating() bool { return w.eventID != "" }

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	d := w.draft
	d.Photos = append([]api.Photo(nil), w.draft.Photos...)
	return d
}

// Next moves forward one step. On the review step it submits instead and
// reports submitted=true once the backend accepted the event.
func (w *Wizard) Next(ctx context.Context) (submitted bool, err error) {
	if n := w.state.next(); n != nil {
		w.state = n
		return false, nil
	}
	if err := w.Submit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Wizard) Back() error {
	p := w.state.prev()
	if p == nil {
		return ErrAtFirstStep
	}
	w.state = p
	return nil
}

func (w *Wizard) check(f Field) error {
	if !owns(w.state, f) {
		return fmt.Errorf("%w: %s is not on %s", ErrFieldNotOnStep, f, w.state.step())
	}
	return nil
}

// Set edits a text, number or flag field of the current step.
func (w *Wizard) Set(f Field, value string) error {
	if err := w.check(f); err != nil {
		return err
	}

	d := &w.draft
	switch f {
	case FieldEventName:
		d.EventName = value
	case FieldEventDescription:
		d.EventDescription = value
	case FieldEventType:
		d.EventType = value
	case FieldLocation:
		w.setLocationText(value)
	case FieldDate:
		if value != "" {
			if _, err := time.Parse(DateLayout, value); err != nil {
				return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidValue)
			}
		}
		d.Date = value
	case FieldStartTime:
		d.StartTime = value
	case FieldEndTime:
		d.EndTime = value
	case FieldTotalTickets:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: total tickets must be a whole number", ErrInvalidValue)
		}
		d.TotalTickets = n
	case FieldTicketPrice:
		p, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || p < 0 {
			return fmt.Errorf("%w: ticket price must be a number", ErrInvalidValue)
		}
		d.TicketPrice = p
	case FieldParkingAvailable, FieldFoodAvailable:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, f)
		}
		if f == FieldParkingAvailable {
			d.ParkingAvailable = b
		} else {
			d.FoodAvailable = b
		}
	case FieldContactEmail:
		d.ContactEmail = value
	case FieldContactPhone:
		d.ContactPhone = value
	case FieldPhotos:
		return fmt.Errorf("%w: use AddPhoto for photos", ErrInvalidValue)
	default:
		return ErrUnknownField
	}
	return nil
}

// SetLocationText edits the location by hand. Coordinates from an earlier
// chosen place no longer describe the text, so they are dropped.
func (w *Wizard) SetLocationText(text string) error {
	if err := w.check(FieldLocation); err != nil {
		return err
	}
	w.setLocationText(text)
	return nil
}

func (w *Wizard) setLocationText(text string) {
	w.draft.Location = text
	w.draft.Latitude = nil
	w.draft.Longitude = nil
}

// ChoosePlace replaces the location with a resolved place and its
// coordinates.
func (w *Wizard) ChoosePlace(ctx context.Context, placeID string) error {
	if err := w.check(FieldLocation); err != nil {
		return err
	}
	if w.places == nil {
		return ErrNoPlaces
	}
	p, err := w.places.Resolve(ctx, placeID)
	if err != nil {
		return fmt.Errorf("choosePlace: %w", err)
	}
	lat, lng := p.Lat, p.Lng
	w.draft.Location = p.Address
	w.draft.Latitude = &lat
	w.draft.Longitude = &lng
	return nil
}

// AddPhoto keeps at most api.MaxPhotos photos and reports whether p was kept.
func (w *Wizard) AddPhoto(p api.Photo) (bool, error) {
	if err := w.check(FieldPhotos); err != nil {
		return false, err
	}
	if len(w.draft.Photos) >= api.MaxPhotos {
		return false, nil
	}
	w.draft.Photos = append(w.draft.Photos, p)
	return true, nil
}

// Submit validates the draft and sends exactly one create or update request.
func (w *Wizard) Submit(ctx context.Context) error {
	d := w.draft
	if strings.TrimSpace(d.EventName) == "" || strings.TrimSpace(d.Location) == "" || strings.TrimSpace(d.Date) == "" {
		return ErrMissingFields
	}

	form, err := w.form()
	if err != nil {
		return err
	}

	if w.Updating() {
		err = w.submit.UpdateEvent(ctx, w.eventID, form)
	} else {
		err = w.submit.CreateEvent(ctx, form)
	}
	if err != nil {
		logger.Errorf(ctx, "wizard: submit failed: %+v", err)
		return err
	}
	logger.Infof(ctx, "wizard: event %q submitted for moderation", d.EventName)
	return nil
}

func (w *Wizard) form() (api.EventForm, error) {
	d := w.draft
	date, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return api.EventForm{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidValue)
	}

	fields := map[string]string{
		"eventName":        d.EventName,
		"eventDescription": d.EventDescription,
		"eventType":        d.EventType,
		"location":         d.Location,
		"latitude":         formatCoord(d.Latitude),
		"longitude":        formatCoord(d.Longitude),
		"date":             date.UTC().Format(isoLayout),
		"startTime":        d.StartTime,
		"endTime":          d.EndTime,
		"totalTickets":     strconv.Itoa(d.TotalTickets),
		"ticketPrice":      strconv.FormatFloat(d.TicketPrice, 'f', -1, 64),
		"parkingAvailable": strconv.FormatBool(d.ParkingAvailable),
		"foodAvailable":    strconv.FormatBool(d.FoodAvailable),
		"contactEmail":     d.ContactEmail,
		"contactPhone":     d.ContactPhone,
	}
	if w.Updating() {
		fields["isApproved"] = "null"
		fields["suggestion"] = ""
	}

	photos := d.Photos
	if len(photos) > api.MaxPhotos {
		photos = photos[:api.MaxPhotos]
	}
	return api.EventForm{Fields: fields, Photos: photos}, nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
