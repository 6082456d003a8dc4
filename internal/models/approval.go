package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ApprovalActionApprove = "approve"
	ApprovalActionReject  = "reject"
)

// ApprovalRecord is the audit trail for admin approve/reject actions on events.
type ApprovalRecord struct {
	bun.BaseModel `bun:"table:approval_records"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	EventID   string    `bun:"event_id,notnull" json:"eventId"`
	AdminID   string    `bun:"admin_id,notnull" json:"adminId"`
	Action    string    `bun:"action,notnull" json:"action"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
