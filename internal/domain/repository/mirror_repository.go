package repository

import (
	"context"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
)

// MirrorRepository is the keyed store of mirror records.
//
// Find methods return (nil, nil) when nothing matches.
type MirrorRepository interface {
	FindByKey(ctx context.Context, clientSecret string) (*entity.MirrorRecord, error)
	// FindCurrentByExternalRecordID returns the most recently created record for a CRM record.
	FindCurrentByExternalRecordID(ctx context.Context, recordID string) (*entity.MirrorRecord, error)
	// Upsert writes the full snapshot in one statement. An existing row is
	// overwritten only while its status is in allowedFrom; applied is false
	// when the row was left untouched.
	Upsert(ctx context.Context, record *entity.MirrorRecord, allowedFrom []entity.PaymentStatus) (applied bool, err error)
	// Insert creates the record unless one already exists for its key.
	Insert(ctx context.Context, record *entity.MirrorRecord) (inserted bool, err error)
}
