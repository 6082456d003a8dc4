package events_test

import (
	"testing"
	"time"

	eventdb "campus-ticketing/internal/events/db"
	events "campus-ticketing/internal/events/service"
	"campus-ticketing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDB is an in-memory DBLayer for exercising the service without SQL.
type memDB struct {
	events    map[string]models.Event
	approvals []models.ApprovalRecord
}

func newMemDB() *memDB {
	return &memDB{events: map[string]models.Event{}}
}

func (m *memDB) CreateEvent(event models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *memDB) GetEventByID(id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, eventdb.ErrNotFound
	}
	return &event, nil
}

func (m *memDB) ListEvents() ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *memDB) ListApprovedEvents() ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.events {
		if e.Approved {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memDB) UpdateEvent(event models.Event) error {
	if _, ok := m.events[event.ID]; !ok {
		return eventdb.ErrNotFound
	}
	m.events[event.ID] = event
	return nil
}

func (m *memDB) DeleteEvent(id string) error {
	if _, ok := m.events[id]; !ok {
		return eventdb.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memDB) RecordApproval(record models.ApprovalRecord) error {
	m.approvals = append(m.approvals, record)
	return nil
}

func (m *memDB) GetApprovalHistory(eventID string) ([]models.ApprovalRecord, error) {
	var out []models.ApprovalRecord
	for _, r := range m.approvals {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

type approvalPublisher struct {
	approved []string
	rejected []string
}

func (p *approvalPublisher) PublishEventApproved(event models.Event) error {
	p.approved = append(p.approved, event.ID)
	return nil
}

func (p *approvalPublisher) PublishEventRejected(event models.Event) error {
	p.rejected = append(p.rejected, event.ID)
	return nil
}

func validInput() events.NewEventInput {
	return events.NewEventInput{
		Title:       "Career Fair",
		Description: "Meet employers",
		Date:        time.Now().Add(14 * 24 * time.Hour),
		Location:    "Student Center Ballroom",
		Price:       0,
		TicketLimit: 500,
	}
}

func organizer() models.User {
	return models.User{ID: "org-1", Name: "Career Services", Role: models.RoleOrganizer}
}

func admin() models.User {
	return models.User{ID: "admin-1", Name: "Admin User", Role: models.RoleAdmin}
}

func TestCreateEventStartsPending(t *testing.T) {
	svc := events.NewEventService(newMemDB(), nil, nil)

	event, err := svc.CreateEvent(validInput(), organizer())
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "org-1", event.OrganizerID)
	assert.Equal(t, "Career Services", event.OrganizerName)
	assert.False(t, event.Approved)
	assert.Zero(t, event.TicketsSold)
}

func TestCreateEventByAdminIsPreApproved(t *testing.T) {
	svc := events.NewEventService(newMemDB(), nil, nil)

	event, err := svc.CreateEvent(validInput(), admin())
	require.NoError(t, err)
	assert.True(t, event.Approved)
}

func TestCreateEventValidation(t *testing.T) {
	svc := events.NewEventService(newMemDB(), nil, nil)

	missingTitle := validInput()
	missingTitle.Title = ""
	_, err := svc.CreateEvent(missingTitle, organizer())
	assert.ErrorIs(t, err, events.ErrValidation)

	zeroLimit := validInput()
	zeroLimit.TicketLimit = 0
	_, err = svc.CreateEvent(zeroLimit, organizer())
	assert.ErrorIs(t, err, events.ErrValidation)

	negativePrice := validInput()
	negativePrice.Price = -5
	_, err = svc.CreateEvent(negativePrice, organizer())
	assert.ErrorIs(t, err, events.ErrValidation)
}

func TestUpdateEventMergesPartialFields(t *testing.T) {
	db := newMemDB()
	svc := events.NewEventService(db, nil, nil)

	event, err := svc.CreateEvent(validInput(), organizer())
	require.NoError(t, err)

	title := "Career Fair 2026"
	price := 2.5
	updated, err := svc.UpdateEvent(event.ID, events.EventUpdate{Title: &title, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Career Fair 2026", updated.Title)
	assert.Equal(t, 2.5, updated.Price)
	assert.Equal(t, event.Location, updated.Location)
}

func TestUpdateEventCoercesApprovedValues(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"string true", "true", true},
		{"string false", "false", false},
		{"string one", "1", true},
		{"string zero", "0", false},
		{"number one", float64(1), true},
		{"number zero", float64(0), false},
		{"other string", "yes please", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := events.NewEventService(newMemDB(), nil, nil)
			event, err := svc.CreateEvent(validInput(), organizer())
			require.NoError(t, err)

			updated, err := svc.UpdateEvent(event.ID, events.EventUpdate{Approved: tc.value})
			require.NoError(t, err)
			assert.Equal(t, tc.want, updated.Approved)
		})
	}
}

func TestUpdateEventRejectsLimitBelowSold(t *testing.T) {
	db := newMemDB()
	svc := events.NewEventService(db, nil, nil)

	event, err := svc.CreateEvent(validInput(), organizer())
	require.NoError(t, err)

	stored := db.events[event.ID]
	stored.TicketsSold = 10
	db.events[event.ID] = stored

	limit := 5
	_, err = svc.UpdateEvent(event.ID, events.EventUpdate{TicketLimit: &limit})
	assert.ErrorIs(t, err, events.ErrValidation)
}

func TestUpdateEventNotFound(t *testing.T) {
	svc := events.NewEventService(newMemDB(), nil, nil)

	title := "nope"
	_, err := svc.UpdateEvent("missing", events.EventUpdate{Title: &title})
	assert.ErrorIs(t, err, eventdb.ErrNotFound)
}

func TestApproveRecordsAuditAndPublishes(t *testing.T) {
	db := newMemDB()
	pub := &approvalPublisher{}
	svc := events.NewEventService(db, pub, nil)

	event, err := svc.CreateEvent(validInput(), organizer())
	require.NoError(t, err)

	approved, err := svc.Approve(event.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, []string{event.ID}, pub.approved)

	rejected, err := svc.Reject(event.ID, "admin-1")
	require.NoError(t, err)
	assert.False(t, rejected.Approved)
	assert.Equal(t, []string{event.ID}, pub.rejected)

	history, err := svc.ApprovalHistory(event.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ApprovalActionApprove, history[0].Action)
	assert.Equal(t, models.ApprovalActionReject, history[1].Action)
	assert.Equal(t, "admin-1", history[0].AdminID)
}

func TestApproveUnknownEvent(t *testing.T) {
	svc := events.NewEventService(newMemDB(), nil, nil)

	_, err := svc.Approve("missing", "admin-1")
	assert.ErrorIs(t, err, eventdb.ErrNotFound)
}

func TestListEventsApprovedOnly(t *testing.T) {
	db := newMemDB()
	svc := events.NewEventService(db, nil, nil)

	_, err := svc.CreateEvent(validInput(), organizer())
	require.NoError(t, err)
	approvedEvent, err := svc.CreateEvent(validInput(), admin())
	require.NoError(t, err)

	all, err := svc.ListEvents(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, err := svc.ListEvents(true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, approvedEvent.ID, public[0].ID)
}
