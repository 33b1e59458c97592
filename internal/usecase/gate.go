package usecase

import (
	"fmt"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
)

var (
	allowedFromSucceeded = []entity.PaymentStatus{
		entity.PaymentStatusInitial,
		entity.PaymentStatusCreated,
		entity.PaymentStatusRequiresAction,
		entity.PaymentStatusProcessing,
		entity.PaymentStatusFailed,
	}
	allowedFromRequiresAction = []entity.PaymentStatus{
		entity.PaymentStatusInitial,
		entity.PaymentStatusCreated,
		entity.PaymentStatusProcessing,
	}
	allowedFromPaymentFailed = []entity.PaymentStatus{
		entity.PaymentStatusInitial,
		entity.PaymentStatusCreated,
		entity.PaymentStatusRequiresAction,
		entity.PaymentStatusProcessing,
	}
	allowedFromProcessing = []entity.PaymentStatus{
		entity.PaymentStatusInitial,
		entity.PaymentStatusCreated,
	}
)

// AllowedFrom returns the persisted statuses a record may hold for an event
// of kind to overwrite it. succeeded is absorbing and failed only yields to
// succeeded. created never overwrites an existing record.
func AllowedFrom(kind entity.EventKind) []entity.PaymentStatus {
	switch kind {
	case entity.EventKindSucceeded:
		return allowedFromSucceeded
	case entity.EventKindRequiresAction:
		return allowedFromRequiresAction
	case entity.EventKindPaymentFailed:
		return allowedFromPaymentFailed
	case entity.EventKindProcessing:
		return allowedFromProcessing
	default:
		return nil
	}
}

// Decide classifies an event against the current mirror record (nil when
// none exists). It has no side effects.
func Decide(current *entity.MirrorRecord, kind entity.EventKind) entity.Decision {
	if kind == entity.EventKindUnknown {
		return entity.Decision{Action: entity.ActionIgnore, Reason: "event type not supported"}
	}

	if current == nil {
		switch kind {
		case entity.EventKindCreated, entity.EventKindSucceeded:
			return entity.Decision{Action: entity.ActionApply, Reason: "no mirror record yet"}
		default:
			return entity.Decision{Action: entity.ActionSkip, Reason: "no mirror record for payment"}
		}
	}

	if kind == entity.EventKindCreated {
		return entity.Decision{Action: entity.ActionNoop, Reason: "mirror record already exists"}
	}

	if containsStatus(AllowedFrom(kind), current.Status) {
		return entity.Decision{
			Action: entity.ActionApply,
			Reason: fmt.Sprintf("%s -> %s", statusLabel(current.Status), kind.TargetStatus()),
		}
	}

	return entity.Decision{
		Action: entity.ActionNoop,
		Reason: fmt.Sprintf("payment already %s", statusLabel(current.Status)),
	}
}

func containsStatus(statuses []entity.PaymentStatus, status entity.PaymentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func statusLabel(s entity.PaymentStatus) string {
	if s == entity.PaymentStatusInitial {
		return "initial"
	}
	return string(s)
}
