package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/model"
	domainRepo "github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event log
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// Record saves a verified event. A redelivered event id increments its attempt counter.
func (r *webhookEventRepository) Record(ctx context.Context, event *entity.InboundEvent) error {
	data := datatypes.JSON(event.Raw)
	if len(data) == 0 {
		data = datatypes.JSON("{}")
	}

	row := &model.StripeWebhookEvent{
		StripeEventID:      event.ID,
		EventType:          event.Type,
		ClientSecret:       event.CorrelationKey(),
		Status:             model.WebhookStatusProcessing,
		Data:               data,
		ProcessingAttempts: 1,
	}
	if event.APIVersion != "" {
		version := event.APIVersion
		row.APIVersion = &version
	}
	if !event.OccurredAt.IsZero() {
		occurredAt := event.OccurredAt
		row.StripeCreatedAt = &occurredAt
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_event_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"processing_attempts": gorm.Expr("stripe_webhook_events.processing_attempts + 1"),
				"status":              model.WebhookStatusProcessing,
			}),
		}).
		Create(row).Error
	if err != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		return fmt.Errorf("failed to save webhook event: %w", err)
	}

	return nil
}

// GetEvent retrieves a webhook event by ID
func (r *webhookEventRepository) GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error) {
	var event model.StripeWebhookEvent

	err := r.db.WithContext(ctx).
		Where("stripe_event_id = ?", eventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// MarkProcessed records the gate's outcome for a handled event
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, eventID string, outcome entity.Action) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusCompleted,
			"outcome":      string(outcome),
			"processed_at": &now,
			"last_error":   nil,
		})
	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed marks a webhook event as failed
func (r *webhookEventRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	now := time.Now()
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusFailed,
			"last_error":   &errorMsg,
			"processed_at": &now,
		})
	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// List returns events newest first
func (r *webhookEventRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.StripeWebhookEvent, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Count(&total).Error; err != nil {
		r.logger.Error("Failed to count webhook events", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count webhook events: %w", err)
	}

	var events []*model.StripeWebhookEvent
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&events).Error
	if err != nil {
		r.logger.Error("Failed to list webhook events", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list webhook events: %w", err)
	}

	return events, total, nil
}
