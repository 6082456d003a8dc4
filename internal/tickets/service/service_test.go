package tickets_test

import (
	"testing"
	"time"

	"campus-ticketing/internal/models"
	ticketdb "campus-ticketing/internal/tickets/db"
	"campus-ticketing/internal/tickets/qr"
	tickets "campus-ticketing/internal/tickets/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTicketDB struct {
	tickets map[string]models.Ticket
}

func newMemTicketDB(seed ...models.Ticket) *memTicketDB {
	db := &memTicketDB{tickets: map[string]models.Ticket{}}
	for _, t := range seed {
		db.tickets[t.ID] = t
	}
	return db
}

func (m *memTicketDB) GetTicketByID(id string) (*models.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, ticketdb.ErrNotFound
	}
	return &ticket, nil
}

func (m *memTicketDB) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTicketDB) GetTicketsByEvent(eventID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTicketDB) MarkUsed(id string, usedAt time.Time) (*models.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, ticketdb.ErrNotFound
	}
	ticket.IsUsed = true
	ticket.UsedAt = usedAt
	m.tickets[id] = ticket
	return &ticket, nil
}

func seedTicket(id string) models.Ticket {
	return models.Ticket{
		ID:           id,
		EventID:      "event-1",
		UserID:       "user-1",
		PurchaseDate: time.Now(),
	}
}

func TestGetTicketsByUserReturnsEmptySlice(t *testing.T) {
	svc := tickets.NewTicketService(newMemTicketDB(), nil)

	got, err := svc.GetTicketsByUser("nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetTicketsByEventReturnsEmptySlice(t *testing.T) {
	svc := tickets.NewTicketService(newMemTicketDB(), nil)

	got, err := svc.GetTicketsByEvent("no-event")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMarkUsedIsIdempotent(t *testing.T) {
	svc := tickets.NewTicketService(newMemTicketDB(seedTicket("ticket-1")), nil)

	first, err := svc.MarkUsed("ticket-1")
	require.NoError(t, err)
	assert.True(t, first.IsUsed)

	second, err := svc.MarkUsed("ticket-1")
	require.NoError(t, err)
	assert.True(t, second.IsUsed)
}

func TestMarkUsedNotFound(t *testing.T) {
	svc := tickets.NewTicketService(newMemTicketDB(), nil)

	_, err := svc.MarkUsed("missing")
	assert.ErrorIs(t, err, ticketdb.ErrNotFound)
}

func TestCheckinFromQR(t *testing.T) {
	gen := qr.NewGenerator("test-secret")
	svc := tickets.NewTicketService(newMemTicketDB(seedTicket("ticket-1")), gen)

	encrypted, err := gen.EncryptPayload(qr.Payload{
		TicketID: "ticket-1",
		EventID:  "event-1",
		UserID:   "user-1",
	})
	require.NoError(t, err)

	ticket, err := svc.CheckinFromQR(encrypted)
	require.NoError(t, err)
	assert.True(t, ticket.IsUsed)
}

func TestCheckinFromQRRejectsBadCode(t *testing.T) {
	svc := tickets.NewTicketService(newMemTicketDB(), qr.NewGenerator("test-secret"))

	_, err := svc.CheckinFromQR("garbage")
	assert.Error(t, err)
}

func TestCheckinFromQRUnknownTicket(t *testing.T) {
	gen := qr.NewGenerator("test-secret")
	svc := tickets.NewTicketService(newMemTicketDB(), gen)

	encrypted, err := gen.EncryptPayload(qr.Payload{TicketID: "missing", EventID: "e", UserID: "u"})
	require.NoError(t, err)

	_, err = svc.CheckinFromQR(encrypted)
	assert.ErrorIs(t, err, ticketdb.ErrNotFound)
}
