package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"go.uber.org/zap"
)

// CheckoutService prepares a CRM record for payment on the checkout page.
type CheckoutService struct {
	crm       provider.CRMClient
	processor provider.PaymentProcessor
	mirrors   repository.MirrorRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(crm provider.CRMClient, processor provider.PaymentProcessor, mirrors repository.MirrorRepository, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		crm:       crm,
		processor: processor,
		mirrors:   mirrors,
		logger:    logger,
		now:       time.Now,
	}
}

// GetRecord returns the CRM record with a client secret for the payment.
// An existing mirror record is reused; otherwise an invoice is created and a
// baseline mirror record is stored under its client secret.
func (s *CheckoutService) GetRecord(ctx context.Context, recordID string) (*entity.CheckoutSession, error) {
	record, err := s.crm.GetRecordByID(ctx, recordID)
	if err != nil {
		var checkoutErr *domainErrors.CheckoutError
		if errors.As(err, &checkoutErr) {
			return nil, err
		}
		return nil, domainErrors.NewCRMUnavailableError(recordID, err)
	}

	current, err := s.mirrors.FindCurrentByExternalRecordID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment for record %s: %w", record.ID, err)
	}
	if current != nil && current.CorrelationKey != "" {
		s.logger.Info("Reusing existing payment for record",
			zap.String("record_id", record.ID),
			zap.String("status", string(current.Status)),
		)
		return &entity.CheckoutSession{Record: record.Fields, ClientSecret: current.CorrelationKey}, nil
	}

	if record.InvoiceType != entity.InvoiceTypePlacementFee && record.InvoiceType != entity.InvoiceTypeSetupFee {
		return nil, domainErrors.NewInvalidInvoiceTypeError(record.ID, record.InvoiceType)
	}

	invoice, err := s.processor.CreateCheckoutInvoice(ctx, record)
	if err != nil {
		return nil, domainErrors.NewProcessorError(record.ID, err)
	}

	now := s.now().UTC()
	baseline := &entity.MirrorRecord{
		CorrelationKey:      invoice.ClientSecret,
		ExternalRecordID:    record.ID,
		Status:              entity.PaymentStatusInitial,
		Amount:              NormalizeAmount(invoice.AmountDue),
		ProcessorInvoiceID:  invoice.InvoiceID,
		ProcessorCustomerID: record.StripeCustomerID,
		HostedInvoiceURL:    invoice.HostedInvoiceURL,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := s.mirrors.Insert(ctx, baseline); err != nil {
		return nil, fmt.Errorf("failed to save payment for record %s: %w", record.ID, err)
	}

	s.logger.Info("Checkout invoice created",
		zap.String("record_id", record.ID),
		zap.String("invoice_id", invoice.InvoiceID),
	)
	return &entity.CheckoutSession{Record: record.Fields, ClientSecret: invoice.ClientSecret}, nil
}

// CheckPaymentStatus returns the mirrored status for a CRM record, or the
// initial status when no payment exists.
func (s *CheckoutService) CheckPaymentStatus(ctx context.Context, recordID string) (entity.PaymentStatus, error) {
	current, err := s.mirrors.FindCurrentByExternalRecordID(ctx, recordID)
	if err != nil {
		return "", fmt.Errorf("failed to look up payment for record %s: %w", recordID, err)
	}
	return current.CurrentStatus(), nil
}

// GetPayment returns the mirror record for a client secret.
func (s *CheckoutService) GetPayment(ctx context.Context, clientSecret string) (*entity.MirrorRecord, error) {
	return s.mirrors.FindByKey(ctx, clientSecret)
}
