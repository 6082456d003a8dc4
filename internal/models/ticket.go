package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID           string    `bun:"id,pk" json:"id"`
	EventID      string    `bun:"event_id,notnull" json:"eventId"`
	UserID       string    `bun:"user_id,notnull" json:"userId"`
	PurchaseDate time.Time `bun:"purchase_date,notnull" json:"purchaseDate"`
	QRCode       []byte    `bun:"qr_code" json:"qrCode,omitempty"`
	IsUsed       bool      `bun:"is_used,notnull,default:false" json:"isUsed"`
	UsedAt       time.Time `bun:"used_at,nullzero" json:"usedAt,omitempty"`
}
