package repository_test

import (
	"context"
	"sync"
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
	"gorm.io/gorm"
)

var fromActive = []entity.PaymentStatus{
	entity.PaymentStatusInitial,
	entity.PaymentStatusCreated,
	entity.PaymentStatusRequiresAction,
	entity.PaymentStatusProcessing,
	entity.PaymentStatusFailed,
}

func newTestMirrorRepository(t *testing.T) (domainRepo.MirrorRepository, *gorm.DB) {
	t.Helper()
	db, err := database.NewInMemory(zap.NewNop())
	require.NoError(t, err)
	return repository.NewMirrorRepository(db, zap.NewNop()), db
}

func mirrorRecord(key string, status entity.PaymentStatus) *entity.MirrorRecord {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entity.MirrorRecord{
		CorrelationKey:     key,
		ExternalRecordID:   "4000000000001",
		Status:             status,
		Amount:             "50.00",
		PaymentSource:      entity.PaymentSourceCard,
		ProcessorPaymentID: "pi_1",
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

func TestMirrorRepository_FindByKey_Missing(t *testing.T) {
	repo, _ := newTestMirrorRepository(t)

	record, err := repo.FindByKey(context.Background(), "cs_missing")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMirrorRepository_Insert(t *testing.T) {
	repo, _ := newTestMirrorRepository(t)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, mirrorRecord("cs_test_1", entity.PaymentStatusInitial))
	require.NoError(t, err)
	assert.True(t, inserted)

	duplicate := mirrorRecord("cs_test_1", entity.PaymentStatusSucceeded)
	inserted, err = repo.Insert(ctx, duplicate)
	require.NoError(t, err)
	assert.False(t, inserted, "second insert for the same key must not write")

	stored, err := repo.FindByKey(ctx, "cs_test_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.PaymentStatusInitial, stored.Status)
	assert.Equal(t, "50.00", stored.Amount)
	assert.Equal(t, "4000000000001", stored.ExternalRecordID)
}

func TestMirrorRepository_Upsert(t *testing.T) {
	tests := []struct {
		name          string
		existing      *entity.MirrorRecord
		incoming      entity.PaymentStatus
		allowedFrom   []entity.PaymentStatus
		expectApplied bool
		expectStatus  entity.PaymentStatus
	}{
		{
			name:          "inserts when absent",
			incoming:      entity.PaymentStatusSucceeded,
			allowedFrom:   fromActive,
			expectApplied: true,
			expectStatus:  entity.PaymentStatusSucceeded,
		},
		{
			name:          "updates from allowed status",
			existing:      mirrorRecord("cs_key", entity.PaymentStatusProcessing),
			incoming:      entity.PaymentStatusSucceeded,
			allowedFrom:   fromActive,
			expectApplied: true,
			expectStatus:  entity.PaymentStatusSucceeded,
		},
		{
			name:          "guard rejects disallowed status",
			existing:      mirrorRecord("cs_key", entity.PaymentStatusSucceeded),
			incoming:      entity.PaymentStatusProcessing,
			allowedFrom:   []entity.PaymentStatus{entity.PaymentStatusInitial, entity.PaymentStatusCreated},
			expectApplied: false,
			expectStatus:  entity.PaymentStatusSucceeded,
		},
		{
			name:          "empty allowed set only inserts",
			existing:      mirrorRecord("cs_key", entity.PaymentStatusCreated),
			incoming:      entity.PaymentStatusSucceeded,
			expectApplied: false,
			expectStatus:  entity.PaymentStatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newTestMirrorRepository(t)
			ctx := context.Background()

			if tt.existing != nil {
				_, err := repo.Insert(ctx, tt.existing)
				require.NoError(t, err)
			}

			incoming := mirrorRecord("cs_key", tt.incoming)
			incoming.Amount = "75.5"
			applied, err := repo.Upsert(ctx, incoming, tt.allowedFrom)
			require.NoError(t, err)
			assert.Equal(t, tt.expectApplied, applied)

			stored, err := repo.FindByKey(ctx, "cs_key")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, tt.expectStatus, stored.Status)
			if tt.expectApplied {
				assert.Equal(t, "75.50", stored.Amount)
			}
		})
	}
}

func TestMirrorRepository_Upsert_KeepsIdentityColumns(t *testing.T) {
	repo, _ := newTestMirrorRepository(t)
	ctx := context.Background()

	baseline := mirrorRecord("cs_key", entity.PaymentStatusInitial)
	_, err := repo.Insert(ctx, baseline)
	require.NoError(t, err)

	update := mirrorRecord("cs_key", entity.PaymentStatusSucceeded)
	update.ExternalRecordID = "other"
	update.CreatedAt = baseline.CreatedAt.Add(time.Hour)
	applied, err := repo.Upsert(ctx, update, fromActive)
	require.NoError(t, err)
	require.True(t, applied)

	stored, err := repo.FindByKey(ctx, "cs_key")
	require.NoError(t, err)
	assert.Equal(t, "4000000000001", stored.ExternalRecordID)
	assert.True(t, baseline.CreatedAt.Equal(stored.CreatedAt))
}

func TestMirrorRepository_FindCurrentByExternalRecordID(t *testing.T) {
	repo, _ := newTestMirrorRepository(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, mirrorRecord("cs_first", entity.PaymentStatusFailed))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, mirrorRecord("cs_second", entity.PaymentStatusInitial))
	require.NoError(t, err)

	current, err := repo.FindCurrentByExternalRecordID(ctx, "4000000000001")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "cs_second", current.CorrelationKey)

	missing, err := repo.FindCurrentByExternalRecordID(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMirrorRepository_Upsert_ConcurrentWritersApplyOnce(t *testing.T) {
	repo, db := newTestMirrorRepository(t)
	ctx := context.Background()

	const writers = 8
	results := make([]bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			applied, err := repo.Upsert(ctx, mirrorRecord("cs_race", entity.PaymentStatusSucceeded), fromActive)
			assert.NoError(t, err)
			results[i] = applied
		}(i)
	}
	wg.Wait()

	appliedCount := 0
	for _, applied := range results {
		if applied {
			appliedCount++
		}
	}
	assert.Equal(t, 1, appliedCount)

	var rows int64
	require.NoError(t, db.Model(&model.PaymentMirror{}).Where("client_secret = ?", "cs_race").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
