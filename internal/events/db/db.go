package db

import (
	"context"
	"database/sql"
	"errors"

	"campus-ticketing/internal/models"

	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when an event id does not resolve to a stored event.
	ErrNotFound = errors.New("event not found")
	// ErrNoCapacity is returned by ReserveCapacity when tickets_sold has
	// reached ticket_limit (or the event row is gone).
	ErrNoCapacity = errors.New("no ticket capacity remaining")
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(context.Background())
	return err
}

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents() ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date").
		Scan(context.Background())
	return events, err
}

func (d *DB) ListApprovedEvents() ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("approved = ?", true).
		Order("date").
		Scan(context.Background())
	return events, err
}

// UpdateEvent writes the mutable fields of an already-merged event. The
// tickets_sold counter is deliberately not in the column list: it changes
// only through ReserveCapacity / ReleaseCapacity.
func (d *DB) UpdateEvent(event models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "organizer_name", "date", "location",
			"price", "ticket_limit", "image", "approved").
		Where("id = ?", event.ID).
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event and, in the same transaction, every ticket
// issued against it. Reports ErrNotFound when no event row matches.
func (d *DB) DeleteEvent(id string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		_, err = tx.NewDelete().
			Model((*models.Ticket)(nil)).
			Where("event_id = ?", id).
			Exec(ctx)
		return err
	})
}

// ReserveCapacity performs the atomic check-and-increment that guards ticket
// issuance: tickets_sold is bumped by one only while it is still below
// ticket_limit, in a single conditional UPDATE. Concurrent purchases
// serialize on the row, so the counter can never exceed the limit.
func (d *DB) ReserveCapacity(eventID string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("tickets_sold = tickets_sold + 1").
		Where("id = ?", eventID).
		Where("tickets_sold < ticket_limit").
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoCapacity
	}
	return nil
}

// ReleaseCapacity undoes a reservation when ticket creation fails after the
// counter was already bumped. Floored at zero.
func (d *DB) ReleaseCapacity(eventID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("tickets_sold = tickets_sold - 1").
		Where("id = ?", eventID).
		Where("tickets_sold > 0").
		Exec(context.Background())
	return err
}

func (d *DB) CountEvents() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Count(context.Background())
}

func (d *DB) RecordApproval(record models.ApprovalRecord) error {
	_, err := d.Bun.NewInsert().Model(&record).Exec(context.Background())
	return err
}

func (d *DB) GetApprovalHistory(eventID string) ([]models.ApprovalRecord, error) {
	var records []models.ApprovalRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Where("event_id = ?", eventID).
		Order("created_at").
		Scan(context.Background())
	return records, err
}
