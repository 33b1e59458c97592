package usecase

import (
	"context"
	"fmt"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"go.uber.org/zap"
)

// WebhookService reconciles verified processor events into the mirror.
type WebhookService struct {
	verifier   provider.EventVerifier
	mirrors    repository.MirrorRepository
	events     repository.WebhookEventRepository
	applier    *TransitionApplier
	dispatcher *FanoutDispatcher
	logger     *zap.Logger
}

func NewWebhookService(
	verifier provider.EventVerifier,
	mirrors repository.MirrorRepository,
	events repository.WebhookEventRepository,
	applier *TransitionApplier,
	dispatcher *FanoutDispatcher,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		verifier:   verifier,
		mirrors:    mirrors,
		events:     events,
		applier:    applier,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleWebhook verifies payload and processes the event. Verification
// failures are authentication errors; a failed mirror read or write is a
// persistence error. Everything else is reported in the outcome.
func (s *WebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*entity.Outcome, error) {
	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, event)

	outcome, action, err := s.Process(ctx, event)
	if err != nil {
		s.markFailed(ctx, event.ID, err)
		return nil, err
	}
	if !outcome.Success {
		s.markFailed(ctx, event.ID, fmt.Errorf("%s", outcome.Message))
	} else {
		s.markProcessed(ctx, event.ID, action)
	}
	return outcome, nil
}

// Process classifies event against the mirror, applies it when it is new
// work and fans the result out.
func (s *WebhookService) Process(ctx context.Context, event *entity.InboundEvent) (*entity.Outcome, entity.Action, error) {
	logger := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	if event.Kind == entity.EventKindUnknown {
		logger.Info("Received unhandled Stripe event type")
		return &entity.Outcome{
			Message: "Event received but not processed - event type not supported",
			Success: true,
		}, entity.ActionIgnore, nil
	}

	key := event.CorrelationKey()
	if key == "" {
		logger.Warn("Payment intent has no client secret")
		return acknowledged(event, "payment intent has no client secret"), entity.ActionSkip, nil
	}

	current, err := s.mirrors.FindByKey(ctx, key)
	if err != nil {
		logger.Error("Failed to read payment mirror", zap.Error(err))
		return nil, "", domainErrors.NewPersistenceError(event.ID, key, err)
	}

	decision := Decide(current, event.Kind)
	logger.Info("Classified Stripe event",
		zap.String("action", string(decision.Action)),
		zap.String("reason", decision.Reason),
	)
	if decision.Action != entity.ActionApply {
		return acknowledged(event, decision.Reason), decision.Action, nil
	}

	transition, err := s.applier.Apply(ctx, event, current)
	if err != nil {
		logger.Error("Failed to apply payment transition", zap.Error(err))
		return nil, "", err
	}
	if !transition.Applied {
		return acknowledged(event, transition.Reason), entity.ActionNoop, nil
	}

	if err := s.dispatcher.Dispatch(ctx, event.ID, transition); err != nil {
		logger.Warn("Payment reconciled with downstream failures", zap.Error(err))
		return &entity.Outcome{
			Message: fmt.Sprintf("Stripe %s event processed but downstream updates failed: %v", event.Type, err),
			Success: false,
		}, entity.ActionApply, nil
	}

	return &entity.Outcome{
		Message: fmt.Sprintf("Stripe %s event processed successfully", event.Type),
		Success: true,
	}, entity.ActionApply, nil
}

func acknowledged(event *entity.InboundEvent, reason string) *entity.Outcome {
	return &entity.Outcome{
		Message: fmt.Sprintf("Stripe %s event acknowledged: %s", event.Type, reason),
		Success: true,
	}
}

// The event log is audit only; its failures never change the outcome.

func (s *WebhookService) recordEvent(ctx context.Context, event *entity.InboundEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, event); err != nil {
		s.logger.Warn("Failed to record webhook event", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (s *WebhookService) markProcessed(ctx context.Context, eventID string, action entity.Action) {
	if s.events == nil {
		return
	}
	if err := s.events.MarkProcessed(ctx, eventID, action); err != nil {
		s.logger.Warn("Failed to mark webhook event processed", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *WebhookService) markFailed(ctx context.Context, eventID string, cause error) {
	if s.events == nil {
		return
	}
	if err := s.events.MarkFailed(ctx, eventID, cause); err != nil {
		s.logger.Warn("Failed to mark webhook event failed", zap.String("event_id", eventID), zap.Error(err))
	}
}
