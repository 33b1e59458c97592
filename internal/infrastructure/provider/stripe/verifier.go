// Package stripe adapts the Stripe API and webhook signing to the
// checkout service's provider interfaces.
package stripe

import (
	"encoding/json"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// WebhookSigningKeySetting names the secret the verifier requires.
const WebhookSigningKeySetting = "STRIPE_WEBHOOK_SIGNING_KEY"

// WebhookVerifier checks the Stripe-Signature header and decodes the event.
type WebhookVerifier struct {
	secret string
	logger *zap.Logger
}

// NewWebhookVerifier creates a verifier for the endpoint signing secret.
func NewWebhookVerifier(secret string, logger *zap.Logger) *WebhookVerifier {
	return &WebhookVerifier{
		secret: secret,
		logger: logger,
	}
}

// Verify authenticates payload and decodes the payment intent for every
// recognised event kind. It fails closed when no secret is configured.
func (v *WebhookVerifier) Verify(payload []byte, signature string) (*entity.InboundEvent, error) {
	if v.secret == "" {
		v.logger.Error("Stripe webhook signing key is not configured")
		return nil, domainErrors.NewConfigurationError(WebhookSigningKeySetting)
	}
	if signature == "" {
		v.logger.Warn("Stripe webhook received without signature")
		return nil, domainErrors.NewAuthenticationError("missing stripe-signature header", nil)
	}
	if len(payload) == 0 {
		v.logger.Warn("Stripe webhook received with empty body")
		return nil, domainErrors.NewAuthenticationError("empty webhook payload", nil)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		v.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, domainErrors.NewAuthenticationError("webhook signature verification failed", err)
	}

	inbound := &entity.InboundEvent{
		ID:         event.ID,
		Type:       string(event.Type),
		Kind:       entity.ParseEventKind(string(event.Type)),
		APIVersion: event.APIVersion,
		OccurredAt: time.Unix(event.Created, 0).UTC(),
		Raw:        payload,
	}

	if inbound.Kind == entity.EventKindUnknown {
		v.logger.Debug("Verified Stripe event", zap.String("event_id", event.ID), zap.String("event_type", inbound.Type))
		return inbound, nil
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, domainErrors.NewAuthenticationError("event has no payment intent payload", nil)
	}
	pi, err := decodePaymentIntent(event.Data.Raw)
	if err != nil {
		v.logger.Warn("Failed to decode payment intent",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return nil, domainErrors.NewAuthenticationError("malformed payment intent payload", err)
	}
	inbound.PaymentIntent = pi

	v.logger.Debug("Verified Stripe event",
		zap.String("event_id", event.ID),
		zap.String("event_type", inbound.Type),
		zap.String("payment_intent_id", pi.ID),
	)
	return inbound, nil
}

func decodePaymentIntent(raw json.RawMessage) (*entity.PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil, err
	}

	out := &entity.PaymentIntent{
		ID:                 pi.ID,
		ClientSecret:       pi.ClientSecret,
		Amount:             pi.Amount,
		Currency:           string(pi.Currency),
		Status:             string(pi.Status),
		PaymentMethodTypes: pi.PaymentMethodTypes,
		Metadata:           pi.Metadata,
		CreatedAt:          time.Unix(pi.Created, 0).UTC(),
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.Invoice != nil {
		out.InvoiceID = pi.Invoice.ID
	}
	if pi.NextAction != nil && pi.NextAction.VerifyWithMicrodeposits != nil {
		out.MicrodepositURL = pi.NextAction.VerifyWithMicrodeposits.HostedVerificationURL
	}
	if pi.LastPaymentError != nil {
		lastError := &entity.PaymentError{
			Message:           pi.LastPaymentError.Msg,
			PaymentMethodType: string(pi.LastPaymentError.PaymentMethodType),
		}
		if pm := pi.LastPaymentError.PaymentMethod; pm != nil && pm.Type != "" {
			lastError.PaymentMethodType = string(pm.Type)
		}
		out.LastError = lastError
	}
	return out, nil
}
