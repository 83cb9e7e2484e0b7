package wizard

// Step is one screen of the wizard.
type Step int

const (
	StepDetails Step = iota
	StepTickets
	StepLogistics
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "Event Details"
	case StepTickets:
		return "Tickets & Pricing"
	case StepLogistics:
		return "Logistics"
	case StepReview:
		return "Review & Submit"
	}
	return "unknown"
}

type Field string

const (
	FieldEventName        Field = "eventName"
	FieldEventDescription Field = "eventDescription"
	FieldEventType        Field = "eventType"
	FieldLocation         Field = "location"
	FieldDate             Field = "date"
	FieldStartTime        Field = "startTime"
	FieldEndTime          Field = "endTime"
	FieldPhotos           Field = "photos"
	FieldTotalTickets     Field = "totalTickets"
	FieldTicketPrice      Field = "ticketPrice"
	FieldParkingAvailable Field = "parkingAvailable"
	FieldFoodAvailable    Field = "foodAvailable"
	FieldContactEmail     Field = "contactEmail"
	FieldContactPhone     Field = "contactPhone"
)

// state is one of detailsState, ticketsState, logisticsState or reviewState.
// next on the review state is nil: moving forward from there submits.
type state interface {
	step() Step
	fields() []Field
	next() state
	prev() state
}

type detailsState struct{}

type ticketsState struct{}

type logisticsState struct{}

type reviewState struct{}

func (detailsState) step() Step   { return StepDetails }
func (ticketsState) step() Step   { return StepTickets }
func (logisticsState) step() Step { return StepLogistics }
func (reviewState) step() Step    { return StepReview }

func (detailsState) fields() []Field {
	return []Field{FieldEventName, FieldEventDescription, FieldEventType, FieldLocation, FieldDate, FieldStartTime, FieldEndTime, FieldPhotos}
}

func (ticketsState) fields() []Field {
	return []Field{FieldTotalTickets, FieldTicketPrice}
}

func (logisticsState) fields() []Field {
	return []Field{FieldParkingAvailable, FieldFoodAvailable, FieldContactEmail, FieldContactPhone}
}

func (reviewState) fields() []Field { return nil }

func (detailsState) next() state   { return ticketsState{} }
func (ticketsState) next() state   { return logisticsState{} }
func (logisticsState) next() state { return reviewState{} }
func (reviewState) next() state    { return nil }

func (detailsState) prev() state   { return nil }
func (ticketsState) prev() state   { return detailsState{} }
func (logisticsState) prev() state { return ticketsState{} }
func (reviewState) prev() state    { return logisticsState{} }

func owns(s state, f Field) bool {
	for _, owned := range s.fields() {
		if owned == f {
			return true
		}
	}
	return false
}
