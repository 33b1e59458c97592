package usecase

import (
	"context"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// CRM field names written by the dispatcher.
const (
	FieldPaymentStatus   = "Payment_Status"
	FieldPaymentSource   = "Payment_Source"
	FieldPaymentDate     = "Payment_Date"
	FieldStripePaymentID = "Stripe_Payment_ID"
	FieldStripeInvoiceID = "Stripe_Invoice_ID"
	FieldErrorMessage    = "Error_Message"
	FieldMicrodepositURL = "Microdeposit_URL"
)

// FanoutDispatcher pushes an applied transition to the checkout page and the
// CRM. The two side effects run concurrently and fail independently.
type FanoutDispatcher struct {
	notifier provider.Notifier
	crm      provider.CRMClient
	logger   *zap.Logger
}

func NewFanoutDispatcher(notifier provider.Notifier, crm provider.CRMClient, logger *zap.Logger) *FanoutDispatcher {
	return &FanoutDispatcher{
		notifier: notifier,
		crm:      crm,
		logger:   logger,
	}
}

// Dispatch runs the side effects for t. The returned error joins every
// downstream failure; the mirror write is never affected by it.
func (d *FanoutDispatcher) Dispatch(ctx context.Context, eventID string, t *Transition) error {
	if t == nil || !t.Applied || t.Record == nil {
		return nil
	}

	record := t.Record
	room := record.ExternalRecordID
	p := pool.New().WithErrors()

	switch t.Kind {
	case entity.EventKindSucceeded:
		if record.PaymentSource.NotifiesOnSuccess() {
			p.Go(func() error {
				return d.emit(ctx, eventID, room, provider.EventPaymentSucceeded, provider.PaymentSucceededPayload{
					PaymentID: record.ProcessorPaymentID,
				})
			})
		}
		p.Go(func() error {
			return d.updateCRM(ctx, eventID, room, paymentFields(record))
		})

	case entity.EventKindPaymentFailed:
		p.Go(func() error {
			return d.emit(ctx, eventID, room, provider.EventPaymentFailed, provider.PaymentFailedPayload{
				PaymentID: record.ProcessorPaymentID,
				Error:     derefString(record.ErrorMessage),
			})
		})
		p.Go(func() error {
			fields := paymentFields(record)
			fields[FieldErrorMessage] = derefString(record.ErrorMessage)
			return d.updateCRM(ctx, eventID, room, fields)
		})

	case entity.EventKindRequiresAction:
		if record.MicrodepositURL != nil {
			url := *record.MicrodepositURL
			p.Go(func() error {
				return d.updateCRM(ctx, eventID, room, entity.CRMFields{
					FieldMicrodepositURL: map[string]string{"value": url, "url": url},
				})
			})
		}
	}

	return p.Wait()
}

func (d *FanoutDispatcher) emit(ctx context.Context, eventID, room, event string, payload interface{}) error {
	if err := d.notifier.Emit(ctx, room, event, payload); err != nil {
		d.logger.Error("Realtime notification failed",
			zap.String("event_id", eventID),
			zap.String("room", room),
			zap.String("event", event),
			zap.Error(err),
		)
		return domainErrors.NewFanoutError(eventID, "realtime", err)
	}
	d.logger.Info("Realtime notification sent",
		zap.String("room", room),
		zap.String("event", event),
	)
	return nil
}

func (d *FanoutDispatcher) updateCRM(ctx context.Context, eventID, recordID string, fields entity.CRMFields) error {
	if err := d.crm.UpdateRecord(ctx, recordID, fields); err != nil {
		d.logger.Error("CRM update failed",
			zap.String("event_id", eventID),
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return domainErrors.NewFanoutError(eventID, "CRM", err)
	}
	d.logger.Info("CRM record updated", zap.String("record_id", recordID))
	return nil
}

func paymentFields(record *entity.MirrorRecord) entity.CRMFields {
	fields := entity.CRMFields{
		FieldPaymentStatus:   string(record.Status),
		FieldPaymentSource:   string(record.PaymentSource),
		FieldStripePaymentID: record.ProcessorPaymentID,
		FieldStripeInvoiceID: nil,
		FieldPaymentDate:     nil,
	}
	if record.ProcessorInvoiceID != "" {
		fields[FieldStripeInvoiceID] = record.ProcessorInvoiceID
	}
	if record.PaymentDate != nil {
		fields[FieldPaymentDate] = record.PaymentDate.UTC().Format(time.RFC3339)
	}
	return fields
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
