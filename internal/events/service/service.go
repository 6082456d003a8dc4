package events

import (
	"errors"
	"fmt"
	"time"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/utils"

	"github.com/google/uuid"
)

// ErrValidation wraps malformed or missing input; handlers map it to 400.
var ErrValidation = errors.New("validation error")

type DBLayer interface {
	CreateEvent(event models.Event) error
	GetEventByID(id string) (*models.Event, error)
	ListEvents() ([]models.Event, error)
	ListApprovedEvents() ([]models.Event, error)
	UpdateEvent(event models.Event) error
	DeleteEvent(id string) error
	RecordApproval(record models.ApprovalRecord) error
	GetApprovalHistory(eventID string) ([]models.ApprovalRecord, error)
}

type KafkaPublisher interface {
	PublishEventApproved(event models.Event) error
	PublishEventRejected(event models.Event) error
}

type EventService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewEventService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Kafka: kafka, Logger: log}
}

// NewEventInput carries the organizer-supplied fields of a new event. The
// id, approval flag and sold counter are never caller-controlled.
type NewEventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	TicketLimit int       `json:"ticketLimit"`
	Image       string    `json:"image"`
}

// EventUpdate is a partial update; nil fields are left untouched. Approved
// is declared loosely because clients send it as bool, string or number; it
// is normalized to a strict bool before storage. The sold counter has no
// field here: it moves only through the inventory guard.
type EventUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Price       *float64   `json:"price"`
	TicketLimit *int       `json:"ticketLimit"`
	Image       *string    `json:"image"`
	Approved    any        `json:"approved"`
}

// CreateEvent stores a new event owned by the creator. Admin-authored events
// start approved; everything else waits for the approval gate.
func (s *EventService) CreateEvent(input NewEventInput, creator models.User) (*models.Event, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.TicketLimit <= 0 {
		return nil, fmt.Errorf("%w: ticket limit must be positive", ErrValidation)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	event := models.Event{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Description:   input.Description,
		OrganizerID:   creator.ID,
		OrganizerName: creator.Name,
		Date:          input.Date,
		Location:      input.Location,
		Price:         input.Price,
		TicketLimit:   input.TicketLimit,
		TicketsSold:   0,
		Image:         input.Image,
		Approved:      creator.Role == models.RoleAdmin,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateEvent(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("EVENTS", fmt.Sprintf("Event %s created by %s (approved=%v)", event.ID, creator.ID, event.Approved))
	}
	return &event, nil
}

func (s *EventService) GetEvent(id string) (*models.Event, error) {
	return s.DB.GetEventByID(id)
}

func (s *EventService) ListEvents(approvedOnly bool) ([]models.Event, error) {
	if approvedOnly {
		return s.DB.ListApprovedEvents()
	}
	return s.DB.ListEvents()
}

// UpdateEvent merges the partial update into the stored event. The approved
// value accepts bool, "true"/"false", 1/0 and "1"/"0", falling back to a
// general truthiness coercion for anything else.
func (s *EventService) UpdateEvent(id string, update EventUpdate) (*models.Event, error) {
	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		event.Title = *update.Title
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.Price != nil {
		event.Price = *update.Price
	}
	if update.TicketLimit != nil {
		event.TicketLimit = *update.TicketLimit
	}
	if update.Image != nil {
		event.Image = *update.Image
	}
	if update.Approved != nil {
		event.Approved = utils.CoerceBool(update.Approved)
	}

	if event.TicketLimit <= 0 {
		return nil, fmt.Errorf("%w: ticket limit must be positive", ErrValidation)
	}
	if event.TicketLimit < event.TicketsSold {
		return nil, fmt.Errorf("%w: ticket limit cannot drop below tickets already sold", ErrValidation)
	}
	if event.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	if err := s.DB.UpdateEvent(*event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(id string) error {
	return s.DB.DeleteEvent(id)
}

// Approve opens the gate: the event becomes publicly listed. The action is
// recorded in the approval audit trail.
func (s *EventService) Approve(eventID, adminID string) (*models.Event, error) {
	return s.setApproval(eventID, adminID, true)
}

// Reject closes the gate again; the gate is bidirectional, an approved event
// can go back to pending.
func (s *EventService) Reject(eventID, adminID string) (*models.Event, error) {
	return s.setApproval(eventID, adminID, false)
}

func (s *EventService) setApproval(eventID, adminID string, approved bool) (*models.Event, error) {
	event, err := s.DB.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}

	event.Approved = approved
	if err := s.DB.UpdateEvent(*event); err != nil {
		return nil, err
	}

	action := models.ApprovalActionReject
	if approved {
		action = models.ApprovalActionApprove
	}
	record := models.ApprovalRecord{
		EventID:   eventID,
		AdminID:   adminID,
		Action:    action,
		CreatedAt: time.Now(),
	}
	if err := s.DB.RecordApproval(record); err != nil {
		if s.Logger != nil {
			s.Logger.Error("EVENTS", fmt.Sprintf("Failed to record approval for event %s: %v", eventID, err))
		}
	}

	if s.Kafka != nil {
		var pubErr error
		if approved {
			pubErr = s.Kafka.PublishEventApproved(*event)
		} else {
			pubErr = s.Kafka.PublishEventRejected(*event)
		}
		if pubErr != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish approval change for event %s: %v", eventID, pubErr))
		}
	}

	return event, nil
}

func (s *EventService) ApprovalHistory(eventID string) ([]models.ApprovalRecord, error) {
	return s.DB.GetApprovalHistory(eventID)
}
