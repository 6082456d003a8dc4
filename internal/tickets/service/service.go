package tickets

import (
	"fmt"
	"time"

	"campus-ticketing/internal/models"
	"campus-ticketing/internal/tickets/qr"
)

type TicketDBLayer interface {
	GetTicketByID(id string) (*models.Ticket, error)
	GetTicketsByUser(userID string) ([]models.Ticket, error)
	GetTicketsByEvent(eventID string) ([]models.Ticket, error)
	MarkUsed(id string, usedAt time.Time) (*models.Ticket, error)
}

type TicketService struct {
	DB TicketDBLayer
	QR *qr.Generator
}

func NewTicketService(db TicketDBLayer, qrGen *qr.Generator) *TicketService {
	return &TicketService{DB: db, QR: qrGen}
}

func (s *TicketService) GetTicket(ticketID string) (*models.Ticket, error) {
	return s.DB.GetTicketByID(ticketID)
}

func (s *TicketService) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for user %s: %w", userID, err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

func (s *TicketService) GetTicketsByEvent(eventID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for event %s: %w", eventID, err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

// MarkUsed flips the one-way used flag at check-in. Marking a ticket that is
// already used succeeds and leaves it used.
func (s *TicketService) MarkUsed(ticketID string) (*models.Ticket, error) {
	return s.DB.MarkUsed(ticketID, time.Now())
}

// CheckinFromQR decrypts a scanned code and marks the referenced ticket used.
func (s *TicketService) CheckinFromQR(encryptedQR string) (*models.Ticket, error) {
	payload, err := s.QR.DecryptPayload(encryptedQR)
	if err != nil {
		return nil, fmt.Errorf("invalid QR code: %w", err)
	}
	return s.MarkUsed(payload.TicketID)
}
