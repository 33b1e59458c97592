package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPaymentSource(t *testing.T) {
	labels := map[PaymentSource]bool{
		PaymentSourceACH:          true,
		PaymentSourceCard:         true,
		PaymentSourceBankTransfer: true,
	}

	inputs := append([]string{}, KnownPaymentMethodTypes...)
	inputs = append(inputs, "", "sepa_debit", "some_future_method", "  CARD ")

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := ClassifyPaymentSource(input)
			assert.True(t, labels[got], "unexpected label %q for %q", got, input)
		})
	}

	tests := []struct {
		methodType string
		want       PaymentSource
	}{
		{"us_bank_account", PaymentSourceACH},
		{"ach_debit", PaymentSourceACH},
		{"card", PaymentSourceCard},
		{"  CARD ", PaymentSourceCard},
		{"card_present", PaymentSourceCard},
		{"customer_balance", PaymentSourceBankTransfer},
		{"unknown", PaymentSourceBankTransfer},
		{"", PaymentSourceBankTransfer},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPaymentSource(tt.methodType), tt.methodType)
	}
}

func TestPaymentSourceNotifiesOnSuccess(t *testing.T) {
	assert.True(t, PaymentSourceACH.NotifiesOnSuccess())
	assert.True(t, PaymentSourceBankTransfer.NotifiesOnSuccess())
	assert.False(t, PaymentSourceCard.NotifiesOnSuccess())
}

func TestParseEventKind(t *testing.T) {
	assert.Equal(t, EventKindSucceeded, ParseEventKind("payment_intent.succeeded"))
	assert.Equal(t, EventKindPaymentFailed, ParseEventKind("payment_intent.payment_failed"))
	assert.Equal(t, EventKindUnknown, ParseEventKind("charge.refunded"))
	assert.Equal(t, EventKindUnknown, ParseEventKind(""))

	assert.Equal(t, PaymentStatusFailed, EventKindPaymentFailed.TargetStatus())
	assert.Equal(t, PaymentStatusInitial, EventKindUnknown.TargetStatus())
}

func TestMirrorRecordCurrentStatus(t *testing.T) {
	var missing *MirrorRecord
	assert.Equal(t, PaymentStatusInitial, missing.CurrentStatus())
	assert.Equal(t, PaymentStatusSucceeded, (&MirrorRecord{Status: PaymentStatusSucceeded}).CurrentStatus())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.False(t, PaymentStatusProcessing.IsTerminal())
}

func TestPaginationParamsValidate(t *testing.T) {
	p := PaginationParams{Page: 0, Limit: 500}
	p.Validate()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, MaxPageSize, p.Limit)
	assert.Equal(t, 0, p.Offset())

	meta := NewPaginationMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
}
