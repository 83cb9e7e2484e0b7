package model

import (
	"time"
)

// Analytics is the read-only admin snapshot.
type Analytics struct {
	Summary       Summary        `json:"summary"`
	RoleBreakdown RoleBreakdown  `json:"roleBreakdown"`
	EventStatus   EventStatus    `json:"eventStatus"`
	BookingTrend  []TrendPoint   `json:"bookingTrend"`
	TopEvents     []EventRevenue `json:"topEvents"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

type Summary struct {
	TotalUsers             int     `json:"totalUsers"`
	TotalEvents            int     `json:"totalEvents"`
	TotalBookings          int     `json:"totalBookings"`
	TotalRevenue           float64 `json:"totalRevenue"`
	SuccessfulBookings     int     `json:"successfulBookings"`
	UpcomingApprovedEvents int     `json:"upcomingApprovedEvents"`
}

type RoleBreakdown struct {
	Admin    int `json:"admin"`
	Customer int `json:"customer"`
}

type EventStatus struct {
	Approved    int `json:"approved"`
	Pending     int `json:"pending"`
	Disapproved int `json:"disapproved"`
}

type TrendPoint struct {
	Date     string  `json:"date"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type EventRevenue struct {
	EventID   string  `json:"eventId"`
	EventName string  `json:"eventName"`
	Bookings  int     `json:"bookings"`
	Tickets   int     `json:"tickets"`
	Revenue   float64 `json:"revenue"`
}
