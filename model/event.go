package model

// Event is an event as the backend serves it. IsApproved is nil while the
// event waits for moderation.
type Event struct {
	ID               string   `json:"_id,omitempty"`
	EventName        string   `json:"eventName"`
	EventDescription string   `json:"eventDescription,omitempty"`
	EventType        string   `json:"eventType,omitempty"`
	Location         string   `json:"location"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	Date             string   `json:"date"`
	StartTime        string   `json:"startTime,omitempty"`
	EndTime          string   `json:"endTime,omitempty"`
	TotalTickets     int      `json:"totalTickets"`
	TicketPrice      float64  `json:"ticketPrice"`
	ParkingAvailable bool     `json:"parkingAvailable"`
	FoodAvailable    bool     `json:"foodAvailable"`
	ContactEmail     string   `json:"contactEmail,omitempty"`
	ContactPhone     string   `json:"contactPhone,omitempty"`
	Photos           []string `json:"photos,omitempty"`
	IsApproved       *bool    `json:"isApproved"`
	Suggestion       string   `json:"suggestion,omitempty"`
}

// ModerationStatus is pending, approved or disapproved.
type ModerationStatus string

const (
	StatusPending     ModerationStatus = "pending"
	StatusApproved    ModerationStatus = "approved"
	StatusDisapproved ModerationStatus = "disapproved"
)

func (e Event) Status() ModerationStatus {
	switch {
	case e.IsApproved == nil:
		return StatusPending
	case *e.IsApproved:
		return StatusApproved
	default:
		return StatusDisapproved
	}
}

// RemainingTickets is the availability snapshot used to validate a booking.
// The backend re-checks it when the booking is created.
func (e Event) RemainingTickets() int {
	return e.TotalTickets
}

// EventPage is a page of events. Total falls back to len(Data) when the
// backend answered with a bare array.
type EventPage struct {
	Data  []Event `json:"data"`
	Total int     `json:"total"`
}

// Moderation is the admin decision on an event. Suggestion is required when
// the event is disapproved.
type Moderation struct {
	IsApproved bool   `json:"isApproved"`
	Suggestion string `json:"suggestion,omitempty"`
}
