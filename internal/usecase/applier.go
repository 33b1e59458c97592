package usecase

import (
	"context"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const unknownMethodType = "unknown"

// Transition is the result of applying one event to the mirror.
type Transition struct {
	Kind     entity.EventKind
	Record   *entity.MirrorRecord
	Previous *entity.MirrorRecord
	// Applied is false when the store refused the write, e.g. a concurrent
	// delivery got there first.
	Applied bool
	Reason  string
}

// TransitionApplier builds the next mirror snapshot for an event and persists it.
type TransitionApplier struct {
	mirrors   repository.MirrorRepository
	processor provider.PaymentProcessor
	logger    *zap.Logger
}

func NewTransitionApplier(mirrors repository.MirrorRepository, processor provider.PaymentProcessor, logger *zap.Logger) *TransitionApplier {
	return &TransitionApplier{
		mirrors:   mirrors,
		processor: processor,
		logger:    logger,
	}
}

// Apply computes the snapshot for event on top of current and writes it.
// Store failures are returned as persistence errors.
func (a *TransitionApplier) Apply(ctx context.Context, event *entity.InboundEvent, current *entity.MirrorRecord) (*Transition, error) {
	pi := event.PaymentIntent
	transition := &Transition{Kind: event.Kind, Previous: current}

	invoice := a.lookupInvoice(ctx, pi.InvoiceID)

	recordID := resolveRecordID(current, pi, invoice)
	if recordID == "" {
		transition.Reason = "no CRM record id for payment"
		a.logger.Warn("Cannot resolve CRM record for payment",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", pi.ID),
		)
		return transition, nil
	}

	record := a.buildSnapshot(ctx, event, current, invoice)
	record.ExternalRecordID = recordID
	transition.Record = record

	var (
		applied bool
		err     error
	)
	if current == nil && event.Kind == entity.EventKindCreated {
		applied, err = a.mirrors.Insert(ctx, record)
	} else {
		applied, err = a.mirrors.Upsert(ctx, record, AllowedFrom(event.Kind))
	}
	if err != nil {
		return nil, domainErrors.NewPersistenceError(event.ID, record.CorrelationKey, err)
	}

	transition.Applied = applied
	if !applied {
		transition.Reason = "payment already reconciled by a concurrent delivery"
	}

	a.logger.Info("Mirror transition persisted",
		zap.String("event_id", event.ID),
		zap.String("record_id", recordID),
		zap.String("from", string(current.CurrentStatus())),
		zap.String("to", string(record.Status)),
		zap.Bool("applied", applied),
	)
	return transition, nil
}

func (a *TransitionApplier) buildSnapshot(ctx context.Context, event *entity.InboundEvent, current *entity.MirrorRecord, invoice *entity.Invoice) *entity.MirrorRecord {
	pi := event.PaymentIntent

	record := &entity.MirrorRecord{
		CorrelationKey:      pi.ClientSecret,
		Status:              event.Kind.TargetStatus(),
		Amount:              NormalizeAmount(pi.Amount),
		ProcessorPaymentID:  pi.ID,
		ProcessorInvoiceID:  pi.InvoiceID,
		ProcessorCustomerID: pi.CustomerID,
		CreatedAt:           pi.CreatedAt,
		UpdatedAt:           event.OccurredAt,
	}
	if !pi.CreatedAt.IsZero() {
		paymentDate := pi.CreatedAt
		record.PaymentDate = &paymentDate
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	if current != nil {
		record.CreatedAt = current.CreatedAt
		record.MicrodepositURL = current.MicrodepositURL
		record.HostedInvoiceURL = current.HostedInvoiceURL
		if record.ProcessorCustomerID == "" {
			record.ProcessorCustomerID = current.ProcessorCustomerID
		}
		if record.ProcessorInvoiceID == "" {
			record.ProcessorInvoiceID = current.ProcessorInvoiceID
		}
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}

	if invoice != nil {
		record.ProcessorInvoiceID = invoice.ID
		record.HostedInvoiceURL = invoice.HostedInvoiceURL
	}

	switch event.Kind {
	case entity.EventKindPaymentFailed:
		message := "Unknown error"
		if pi.LastError != nil && pi.LastError.Message != "" {
			message = pi.LastError.Message
		}
		record.ErrorMessage = &message
		record.PaymentSource = entity.ClassifyPaymentSource(failedMethodType(pi))

	case entity.EventKindRequiresAction:
		if pi.MicrodepositURL != "" {
			url := pi.MicrodepositURL
			record.MicrodepositURL = &url
		}
		record.PaymentSource = entity.ClassifyPaymentSource(a.paymentMethodType(ctx, pi))

	case entity.EventKindSucceeded, entity.EventKindProcessing:
		record.PaymentSource = entity.ClassifyPaymentSource(a.paymentMethodType(ctx, pi))
	}

	return record
}

// lookupInvoice treats a failed lookup as the invoice being unavailable.
func (a *TransitionApplier) lookupInvoice(ctx context.Context, invoiceID string) *entity.Invoice {
	if invoiceID == "" {
		return nil
	}
	invoice, err := a.processor.GetInvoice(ctx, invoiceID)
	if err != nil {
		a.logger.Warn("Invoice lookup failed, continuing without invoice details",
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		return nil
	}
	return invoice
}

// paymentMethodType resolves the attached method, falling back to the
// declared method types.
func (a *TransitionApplier) paymentMethodType(ctx context.Context, pi *entity.PaymentIntent) string {
	if pi.PaymentMethodID != "" {
		methodType, err := a.processor.GetPaymentMethodType(ctx, pi.PaymentMethodID)
		if err == nil && methodType != "" {
			return methodType
		}
		a.logger.Warn("Payment method lookup failed",
			zap.String("payment_method_id", pi.PaymentMethodID),
			zap.Error(err),
		)
	}
	if len(pi.PaymentMethodTypes) > 0 && pi.PaymentMethodTypes[0] != "" {
		return pi.PaymentMethodTypes[0]
	}
	return unknownMethodType
}

func failedMethodType(pi *entity.PaymentIntent) string {
	if pi.LastError != nil && pi.LastError.PaymentMethodType != "" {
		return pi.LastError.PaymentMethodType
	}
	if len(pi.PaymentMethodTypes) > 0 && pi.PaymentMethodTypes[0] != "" {
		return pi.PaymentMethodTypes[0]
	}
	return unknownMethodType
}

func resolveRecordID(current *entity.MirrorRecord, pi *entity.PaymentIntent, invoice *entity.Invoice) string {
	if current != nil && current.ExternalRecordID != "" {
		return current.ExternalRecordID
	}
	if id := pi.Metadata[entity.RecordIDMetadataKey]; id != "" {
		return id
	}
	if invoice != nil {
		return invoice.Metadata[entity.RecordIDMetadataKey]
	}
	return ""
}

// NormalizeAmount converts minor currency units into a two-decimal string.
func NormalizeAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

