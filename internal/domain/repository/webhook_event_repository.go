package repository

import (
	"context"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/model"
)

// WebhookEventRepository is the audit log of verified inbound events.
type WebhookEventRepository interface {
	// Record stores the event, or bumps its attempt count on redelivery.
	Record(ctx context.Context, event *entity.InboundEvent) error
	MarkProcessed(ctx context.Context, eventID string, outcome entity.Action) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
	GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error)
	List(ctx context.Context, params entity.PaginationParams) ([]*model.StripeWebhookEvent, int64, error)
}
