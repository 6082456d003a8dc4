package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-ticketing/internal/models"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a ticket id does not resolve to a stored ticket.
var ErrNotFound = errors.New("ticket not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicket(ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(context.Background())
	return err
}

func (d *DB) GetTicketByID(id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("purchase_date").
		Scan(context.Background())
	return tickets, err
}

func (d *DB) GetTicketsByEvent(eventID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		Order("purchase_date").
		Scan(context.Background())
	return tickets, err
}

// MarkUsed flips is_used to true. The flag is one-way: marking an
// already-used ticket is accepted and leaves it used.
func (d *DB) MarkUsed(id string, usedAt time.Time) (*models.Ticket, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("is_used = ?", true).
		Set("used_at = ?", usedAt).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return d.GetTicketByID(id)
}

func (d *DB) CountByEvent(eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("event_id = ?", eventID).
		Count(context.Background())
}
