package auth

import (
	"context"
	"database/sql"
	"errors"

	"campus-ticketing/internal/models"

	"github.com/uptrace/bun"
)

// ErrUserNotFound is returned when no account matches the lookup.
var ErrUserNotFound = errors.New("user not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateUser(user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(context.Background())
	return err
}

func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
