package usecase

import (
	"context"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockMirrorRepository is a mock implementation of MirrorRepository
type MockMirrorRepository struct {
	mock.Mock
}

func (m *MockMirrorRepository) FindByKey(ctx context.Context, clientSecret string) (*entity.MirrorRecord, error) {
	args := m.Called(ctx, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MirrorRecord), args.Error(1)
}

func (m *MockMirrorRepository) FindCurrentByExternalRecordID(ctx context.Context, recordID string) (*entity.MirrorRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MirrorRecord), args.Error(1)
}

func (m *MockMirrorRepository) Upsert(ctx context.Context, record *entity.MirrorRecord, allowedFrom []entity.PaymentStatus) (bool, error) {
	args := m.Called(ctx, record, allowedFrom)
	return args.Bool(0), args.Error(1)
}

func (m *MockMirrorRepository) Insert(ctx context.Context, record *entity.MirrorRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Record(ctx context.Context, event *entity.InboundEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, eventID string, outcome entity.Action) error {
	return m.Called(ctx, eventID, outcome).Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	return m.Called(ctx, eventID, cause).Error(0)
}

func (m *MockWebhookEventRepository) GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StripeWebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.StripeWebhookEvent, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.StripeWebhookEvent), args.Get(1).(int64), args.Error(2)
}

// MockPaymentProcessor is a mock implementation of PaymentProcessor
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) GetInvoice(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *MockPaymentProcessor) GetPaymentMethodType(ctx context.Context, paymentMethodID string) (string, error) {
	args := m.Called(ctx, paymentMethodID)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProcessor) CreateCheckoutInvoice(ctx context.Context, record *entity.CRMRecord) (*entity.CheckoutInvoice, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CheckoutInvoice), args.Error(1)
}

// MockCRMClient is a mock implementation of CRMClient
type MockCRMClient struct {
	mock.Mock
}

func (m *MockCRMClient) GetRecordByID(ctx context.Context, recordID string) (*entity.CRMRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CRMRecord), args.Error(1)
}

func (m *MockCRMClient) UpdateRecord(ctx context.Context, recordID string, fields entity.CRMFields) error {
	return m.Called(ctx, recordID, fields).Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Emit(ctx context.Context, room, event string, payload interface{}) error {
	return m.Called(ctx, room, event, payload).Error(0)
}

// MockEventVerifier is a mock implementation of EventVerifier
type MockEventVerifier struct {
	mock.Mock
}

func (m *MockEventVerifier) Verify(payload []byte, signature string) (*entity.InboundEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.InboundEvent), args.Error(1)
}
