package inventory

import (
	"errors"
	"fmt"
	"time"

	eventdb "campus-ticketing/internal/events/db"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/tickets/qr"

	"github.com/google/uuid"
)

var (
	ErrSoldOut          = errors.New("event is sold out")
	ErrEventNotFound    = errors.New("event not found")
	ErrEventNotApproved = errors.New("event is not approved for sale")
	ErrEventEnded       = errors.New("event date has passed")
	ErrNotAuthenticated = errors.New("purchase requires an authenticated user")
)

type EventDB interface {
	GetEventByID(id string) (*models.Event, error)
	ReserveCapacity(eventID string) error
	ReleaseCapacity(eventID string) error
}

type TicketDB interface {
	CreateTicket(ticket models.Ticket) error
}

type Locker interface {
	LockEvent(eventID, holder string) (bool, error)
	UnlockEvent(eventID, holder string) error
}

type Publisher interface {
	PublishTicketIssued(ticket models.Ticket) error
}

// Service issues tickets against event capacity. The capacity check and the
// sold counter increment happen in one conditional UPDATE (EventDB
// ReserveCapacity), so two concurrent purchases of the last ticket can never
// both succeed. The optional Locker serializes purchases of the same event
// across replicas to keep row contention down; it is not the correctness
// guard.
type Service struct {
	Events  EventDB
	Tickets TicketDB
	Lock    Locker
	Kafka   Publisher
	QR      *qr.Generator
	Logger  *logger.Logger
}

func NewService(events EventDB, tickets TicketDB, lock Locker, kafka Publisher, qrGen *qr.Generator, log *logger.Logger) *Service {
	return &Service{Events: events, Tickets: tickets, Lock: lock, Kafka: kafka, QR: qrGen, Logger: log}
}

// Purchase issues one ticket for userID against eventID, or fails with no
// observable state change. Failures are terminal for the call; nothing is
// retried server-side.
func (s *Service) Purchase(eventID, userID string) (*models.Ticket, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	event, err := s.Events.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, eventdb.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	if !event.Approved {
		return nil, ErrEventNotApproved
	}
	if event.Ended(time.Now()) {
		return nil, ErrEventEnded
	}

	ticketID := uuid.NewString()

	if s.Lock != nil {
		acquired := s.lockWithRetry(eventID, ticketID)
		if acquired {
			defer func() {
				if err := s.Lock.UnlockEvent(eventID, ticketID); err != nil {
					s.logError("INVENTORY", fmt.Sprintf("Failed to unlock event %s: %v", eventID, err))
				}
			}()
		}
	}

	if err := s.Events.ReserveCapacity(eventID); err != nil {
		if errors.Is(err, eventdb.ErrNoCapacity) {
			return nil, ErrSoldOut
		}
		return nil, fmt.Errorf("reserve capacity for event %s: %w", eventID, err)
	}

	ticket := models.Ticket{
		ID:           ticketID,
		EventID:      eventID,
		UserID:       userID,
		PurchaseDate: time.Now(),
		IsUsed:       false,
	}

	if s.QR != nil {
		qrBytes, err := s.QR.GenerateTicketQR(ticket)
		if err != nil {
			s.release(eventID)
			return nil, fmt.Errorf("generate QR for ticket %s: %w", ticketID, err)
		}
		ticket.QRCode = qrBytes
	}

	if err := s.Tickets.CreateTicket(ticket); err != nil {
		s.release(eventID)
		return nil, fmt.Errorf("create ticket for event %s: %w", eventID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketIssued(ticket); err != nil {
			s.logError("KAFKA", fmt.Sprintf("Failed to publish ticket issued event for %s: %v", ticketID, err))
		}
	}

	return &ticket, nil
}

// release compensates a reservation whose ticket never landed, so the
// counter and the ticket set stay consistent.
func (s *Service) release(eventID string) {
	if err := s.Events.ReleaseCapacity(eventID); err != nil {
		s.logError("INVENTORY", fmt.Sprintf("Failed to release capacity for event %s: %v", eventID, err))
	}
}

// lockWithRetry tries to take the per-event lock for a short window. On
// timeout the purchase proceeds without it: the conditional capacity update
// stays authoritative either way.
func (s *Service) lockWithRetry(eventID, holder string) bool {
	deadline := time.Now().Add(2 * time.Second)
	for {
		ok, err := s.Lock.LockEvent(eventID, holder)
		if err != nil {
			s.logError("INVENTORY", fmt.Sprintf("Event lock error for %s: %v", eventID, err))
			return false
		}
		if ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *Service) logError(category, message string) {
	if s.Logger != nil {
		s.Logger.Error(category, message)
	}
}
