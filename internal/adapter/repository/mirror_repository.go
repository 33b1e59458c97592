package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/model"
	domainRepo "github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mirrorRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewMirrorRepository creates a GORM-backed mirror store
func NewMirrorRepository(db *gorm.DB, logger *zap.Logger) domainRepo.MirrorRepository {
	return &mirrorRepository{
		db:     db,
		logger: logger,
	}
}

func (r *mirrorRepository) FindByKey(ctx context.Context, clientSecret string) (*entity.MirrorRecord, error) {
	var row model.PaymentMirror

	err := r.db.WithContext(ctx).
		Where("client_secret = ?", clientSecret).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to find payment mirror", zap.Error(err))
		return nil, fmt.Errorf("failed to find payment mirror: %w", err)
	}

	return toMirrorEntity(&row), nil
}

func (r *mirrorRepository) FindCurrentByExternalRecordID(ctx context.Context, recordID string) (*entity.MirrorRecord, error) {
	var row model.PaymentMirror

	err := r.db.WithContext(ctx).
		Where("external_record_id = ?", recordID).
		Order("id DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to find payment mirror for record",
			zap.String("record_id", recordID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find payment mirror for record: %w", err)
	}

	return toMirrorEntity(&row), nil
}

// Upsert issues a single INSERT ... ON CONFLICT DO UPDATE ... WHERE status IN (...)
// so concurrent writers for the same key serialise on the unique index.
func (r *mirrorRepository) Upsert(ctx context.Context, record *entity.MirrorRecord, allowedFrom []entity.PaymentStatus) (bool, error) {
	if len(allowedFrom) == 0 {
		return r.Insert(ctx, record)
	}

	row, err := toMirrorModel(record)
	if err != nil {
		return false, err
	}

	statuses := make([]string, len(allowedFrom))
	for i, status := range allowedFrom {
		statuses[i] = string(status)
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_secret"}},
			DoUpdates: clause.AssignmentColumns(model.MirrorSnapshotColumns),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "payment_mirrors.status IN ?", Vars: []interface{}{statuses}},
			}},
		}).
		Create(row)
	if result.Error != nil {
		r.logger.Error("Failed to upsert payment mirror",
			zap.String("record_id", record.ExternalRecordID),
			zap.String("status", string(record.Status)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to upsert payment mirror: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *mirrorRepository) Insert(ctx context.Context, record *entity.MirrorRecord) (bool, error) {
	row, err := toMirrorModel(record)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_secret"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		r.logger.Error("Failed to insert payment mirror",
			zap.String("record_id", record.ExternalRecordID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to insert payment mirror: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func toMirrorModel(record *entity.MirrorRecord) (*model.PaymentMirror, error) {
	amount := decimal.Zero
	if record.Amount != "" {
		parsed, err := decimal.NewFromString(record.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", record.Amount, err)
		}
		amount = parsed
	}

	return &model.PaymentMirror{
		ClientSecret:     record.CorrelationKey,
		ExternalRecordID: record.ExternalRecordID,
		Status:           string(record.Status),
		Amount:           amount,
		PaymentSource:    string(record.PaymentSource),
		StripePaymentID:  record.ProcessorPaymentID,
		StripeInvoiceID:  record.ProcessorInvoiceID,
		StripeCustomerID: record.ProcessorCustomerID,
		HostedInvoiceURL: record.HostedInvoiceURL,
		MicrodepositURL:  record.MicrodepositURL,
		ErrorMessage:     record.ErrorMessage,
		PaymentDate:      record.PaymentDate,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}, nil
}

func toMirrorEntity(row *model.PaymentMirror) *entity.MirrorRecord {
	return &entity.MirrorRecord{
		CorrelationKey:      row.ClientSecret,
		ExternalRecordID:    row.ExternalRecordID,
		Status:              entity.PaymentStatus(row.Status),
		Amount:              row.Amount.StringFixed(2),
		PaymentSource:       entity.PaymentSource(row.PaymentSource),
		ProcessorPaymentID:  row.StripePaymentID,
		ProcessorInvoiceID:  row.StripeInvoiceID,
		ProcessorCustomerID: row.StripeCustomerID,
		HostedInvoiceURL:    row.HostedInvoiceURL,
		MicrodepositURL:     row.MicrodepositURL,
		ErrorMessage:        row.ErrorMessage,
		PaymentDate:         row.PaymentDate,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
