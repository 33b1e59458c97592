// Package zoho is the Zoho Creator client for CRM checkout records.
package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/config"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	providerName = "zoho"

	// Zoho Creator success and empty-result response codes.
	codeSuccess       = 3000
	codeNoRecordFound = 3100

	authTokenType = "Zoho-oauthtoken"
)

// Client reads and updates records of one Creator report.
type Client struct {
	baseURL    string
	owner      string
	app        string
	report     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client that refreshes its access token with the
// configured refresh token.
func NewClient(cfg config.ZohoConfig, logger *zap.Logger) *Client {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimRight(cfg.AccountsURL, "/") + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	source := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	httpClient := oauth2.NewClient(ctx, zohoTokenSource{source: source})
	httpClient.Timeout = timeout

	return newClient(cfg, httpClient, logger)
}

func newClient(cfg config.ZohoConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		owner:      cfg.Owner,
		app:        cfg.App,
		report:     cfg.Report,
		httpClient: httpClient,
		logger:     logger,
	}
}

// zohoTokenSource presents tokens with the scheme Creator expects in the
// Authorization header.
type zohoTokenSource struct {
	source oauth2.TokenSource
}

func (s zohoTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}
	out := *token
	out.TokenType = authTokenType
	return &out, nil
}

type creatorResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// GetRecordByID fetches one checkout record.
func (c *Client) GetRecordByID(ctx context.Context, recordID string) (*entity.CRMRecord, error) {
	var fields map[string]interface{}
	resp, err := c.do(ctx, http.MethodGet, c.recordURL(recordID), nil)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.Code == codeNoRecordFound:
		return nil, domainErrors.NewRecordNotFoundError(recordID)
	case resp.Code != codeSuccess:
		return nil, c.responseError(resp)
	}

	if err := json.Unmarshal(resp.Data, &fields); err != nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     "invalid_response",
			Message:  "failed to decode record",
			Details:  err.Error(),
		}
	}
	if len(fields) == 0 {
		return nil, domainErrors.NewRecordNotFoundError(recordID)
	}

	return toCRMRecord(recordID, fields), nil
}

// UpdateRecord patches the given fields on a record.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, fields entity.CRMFields) error {
	body, err := json.Marshal(map[string]interface{}{"data": fields})
	if err != nil {
		return fmt.Errorf("failed to encode record update: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPatch, c.recordURL(recordID), body)
	if err != nil {
		return err
	}
	if resp.Code == codeNoRecordFound {
		return domainErrors.NewRecordNotFoundError(recordID)
	}
	if resp.Code != codeSuccess {
		return c.responseError(resp)
	}

	c.logger.Debug("Zoho record updated",
		zap.String("record_id", recordID),
		zap.Int("fields", len(fields)))
	return nil
}

func (c *Client) recordURL(recordID string) string {
	return fmt.Sprintf("%s/data/%s/%s/report/%s/%s",
		c.baseURL,
		url.PathEscape(c.owner),
		url.PathEscape(c.app),
		url.PathEscape(c.report),
		url.PathEscape(recordID),
	)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*creatorResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Zoho request failed",
			zap.String("method", method),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     "request_failed",
			Message:  "failed to reach Zoho",
			Details:  err.Error(),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out creatorResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("Unexpected Zoho response",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(string(raw), 256)))
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     strconv.Itoa(resp.StatusCode),
			Message:  "unexpected response",
			Details:  truncate(string(raw), 256),
		}
	}

	if resp.StatusCode == http.StatusNotFound && out.Code == 0 {
		out.Code = codeNoRecordFound
	}
	if resp.StatusCode >= 400 && out.Code == codeSuccess {
		out.Code = resp.StatusCode
	}
	return &out, nil
}

func (c *Client) responseError(resp *creatorResponse) error {
	c.logger.Error("Zoho returned an error",
		zap.Int("code", resp.Code),
		zap.String("message", resp.Message))
	return &provider.ProviderError{
		Provider: providerName,
		Code:     strconv.Itoa(resp.Code),
		Message:  resp.Message,
	}
}

func toCRMRecord(recordID string, fields map[string]interface{}) *entity.CRMRecord {
	record := &entity.CRMRecord{
		ID:               stringField(fields, "ID"),
		StripeCustomerID: stringField(fields, "Stripe_Customer_ID"),
		InvoiceType:      stringField(fields, "Invoice_Type"),
		InvoiceName:      stringField(fields, "Invoice_Name"),
		Amount:           decimalField(fields, "Amount"),
		PaymentStatus:    stringField(fields, "Payment_Status"),
		Fields:           fields,
	}
	if record.ID == "" {
		record.ID = recordID
	}

	items, _ := fields["Invoiced_Items"].([]interface{})
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		record.Items = append(record.Items, entity.CRMInvoiceItem{
			ID:          stringField(item, "ID"),
			ProductName: stringField(item, "Product_Name"),
			Description: stringField(item, "Product_Description"),
			Amount:      decimalField(item, "Amount"),
			Quantity:    decimalField(item, "Quantity").IntPart(),
		})
	}
	return record
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// decimalField accepts both quoted and bare numbers; Creator returns
// currency fields as strings, sometimes with thousands separators.
func decimalField(fields map[string]interface{}, key string) decimal.Decimal {
	switch v := fields[key].(type) {
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
