package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/adapter/repository"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/model"
	domainRepo "github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWebhookEventRepository(t *testing.T) domainRepo.WebhookEventRepository {
	t.Helper()
	db, err := database.NewInMemory(zap.NewNop())
	require.NoError(t, err)
	return repository.NewWebhookEventRepository(db, zap.NewNop())
}

func inboundEvent(id string) *entity.InboundEvent {
	return &entity.InboundEvent{
		ID:         id,
		Type:       "payment_intent.succeeded",
		Kind:       entity.EventKindSucceeded,
		APIVersion: "2024-06-20",
		OccurredAt: time.Unix(1700000000, 0).UTC(),
		PaymentIntent: &entity.PaymentIntent{
			ID:           "pi_1",
			ClientSecret: "cs_test_1",
		},
		Raw: []byte(`{"id":"` + id + `"}`),
	}
}

func TestWebhookEventRepository_RecordAndMark(t *testing.T) {
	repo := newTestWebhookEventRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, inboundEvent("evt_1")))

	stored, err := repo.GetEvent(ctx, "evt_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.WebhookStatusProcessing, stored.Status)
	assert.Equal(t, "cs_test_1", stored.ClientSecret)
	assert.Equal(t, 1, stored.ProcessingAttempts)
	require.NotNil(t, stored.APIVersion)
	assert.Equal(t, "2024-06-20", *stored.APIVersion)

	require.NoError(t, repo.MarkProcessed(ctx, "evt_1", entity.ActionApply))

	stored, err = repo.GetEvent(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusCompleted, stored.Status)
	assert.Equal(t, "apply", stored.Outcome)
	assert.NotNil(t, stored.ProcessedAt)
}

func TestWebhookEventRepository_RedeliveryBumpsAttempts(t *testing.T) {
	repo := newTestWebhookEventRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, inboundEvent("evt_1")))
	require.NoError(t, repo.MarkFailed(ctx, "evt_1", errors.New("crm unavailable")))
	require.NoError(t, repo.Record(ctx, inboundEvent("evt_1")))

	stored, err := repo.GetEvent(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ProcessingAttempts)
	assert.Equal(t, model.WebhookStatusProcessing, stored.Status)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "crm unavailable", *stored.LastError)
}

func TestWebhookEventRepository_MarkUnknownEvent(t *testing.T) {
	repo := newTestWebhookEventRepository(t)
	ctx := context.Background()

	assert.Error(t, repo.MarkProcessed(ctx, "evt_missing", entity.ActionNoop))
	assert.Error(t, repo.MarkFailed(ctx, "evt_missing", errors.New("boom")))

	stored, err := repo.GetEvent(ctx, "evt_missing")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestWebhookEventRepository_List(t *testing.T) {
	repo := newTestWebhookEventRepository(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Record(ctx, inboundEvent(fmt.Sprintf("evt_%d", i))))
	}

	events, total, err := repo.List(ctx, entity.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, events, 2)
	assert.Equal(t, "evt_3", events[0].StripeEventID)
	assert.Equal(t, "evt_2", events[1].StripeEventID)
}
