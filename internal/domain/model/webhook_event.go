package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending    WebhookStatus = "pending"
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusCompleted  WebhookStatus = "completed"
	WebhookStatusFailed     WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// StripeWebhookEvent is the append-only audit log of verified Stripe events.
type StripeWebhookEvent struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	StripeEventID      string         `gorm:"uniqueIndex;not null;size:255" json:"stripe_event_id"`
	EventType          string         `gorm:"not null;size:100;index" json:"event_type"`
	ClientSecret       string         `gorm:"size:255;index" json:"client_secret,omitempty"`
	Status             WebhookStatus  `gorm:"size:20;default:'pending';index" json:"status"`
	Outcome            string         `gorm:"size:20" json:"outcome,omitempty"`
	ProcessedAt        *time.Time     `json:"processed_at,omitempty"`
	Data               datatypes.JSON `gorm:"not null" json:"data"`
	APIVersion         *string        `gorm:"size:20" json:"api_version,omitempty"`
	ProcessingAttempts int            `gorm:"default:1" json:"processing_attempts"`
	LastError          *string        `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	StripeCreatedAt    *time.Time     `json:"stripe_created_at,omitempty"`
}

// TableName specifies the table name for GORM
func (StripeWebhookEvent) TableName() string {
	return "stripe_webhook_events"
}
