package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID            string    `bun:"id,pk" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   string    `bun:"description" json:"description"`
	OrganizerID   string    `bun:"organizer_id,notnull" json:"organizerId"`
	OrganizerName string    `bun:"organizer_name" json:"organizerName"`
	Date          time.Time `bun:"date" json:"date"`
	Location      string    `bun:"location" json:"location"`
	Price         float64   `bun:"price" json:"price"`
	TicketLimit   int       `bun:"ticket_limit,notnull" json:"ticketLimit"`
	TicketsSold   int       `bun:"tickets_sold,notnull,default:0" json:"ticketsSold"`
	Image         string    `bun:"image" json:"image,omitempty"`
	Approved      bool      `bun:"approved,notnull,default:false" json:"approved"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Remaining reports how many tickets can still be issued.
func (e *Event) Remaining() int {
	return e.TicketLimit - e.TicketsSold
}

// Ended reports whether the event's scheduled date has passed.
func (e *Event) Ended(now time.Time) bool {
	return !e.Date.IsZero() && e.Date.Before(now)
}
