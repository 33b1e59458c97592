package http

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/pkg/logger"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	logger.WithEchoLogger(e, zap.NewNop())
	return e
}

func serve(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type mockWebhookProcessor struct {
	mock.Mock
}

func (m *mockWebhookProcessor) HandleWebhook(ctx context.Context, payload []byte, signature string) (*entity.Outcome, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Outcome), args.Error(1)
}

type mockCheckoutService struct {
	mock.Mock
}

func (m *mockCheckoutService) GetRecord(ctx context.Context, recordID string) (*entity.CheckoutSession, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CheckoutSession), args.Error(1)
}

func (m *mockCheckoutService) CheckPaymentStatus(ctx context.Context, recordID string) (entity.PaymentStatus, error) {
	args := m.Called(ctx, recordID)
	return args.Get(0).(entity.PaymentStatus), args.Error(1)
}

type mockPaymentReader struct {
	mock.Mock
}

func (m *mockPaymentReader) GetPayment(ctx context.Context, clientSecret string) (*entity.MirrorRecord, error) {
	args := m.Called(ctx, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MirrorRecord), args.Error(1)
}

