package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
)

// InvoiceLine is one line of the sale invoice request.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoicer is the accounting collaborator contract. The lifecycle
// service only cares about success/failure plus the created id.
type Invoicer interface {
	CreateInvoice(ctx context.Context, buyerID uuid.UUID, lines []InvoiceLine) (uuid.UUID, error)
}

// APIError is returned when the accounting API responds with a
// non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("accounting API error (%d): %s", e.StatusCode, e.Message)
}

// Client manages communication with the accounting API.
type Client struct {
	BaseURL      *url.URL
	APIKey       string
	HTTPClient   *http.Client
	MaxRetries   int           // how many times to retry on 429
	RetryInitial time.Duration // initial backoff
}

// NewClient initializes a new accounting client with the given API key.
// maxRetries and retryInitial define how we handle 429 rate-limits.
func NewClient(baseURL, apiKey string, maxRetries int, retryInitial time.Duration) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryInitial <= 0 {
		retryInitial = 1 * time.Second
	}

	return &Client{
		BaseURL:      parsed,
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		MaxRetries:   maxRetries,
		RetryInitial: retryInitial,
	}, nil
}

type createInvoiceRequest struct {
	PartnerID uuid.UUID     `json:"partner_id"`
	MoveType  string        `json:"move_type"`
	Lines     []InvoiceLine `json:"lines"`
}

type createInvoiceResponse struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// CreateInvoice posts one out_invoice for the buyer.
func (c *Client) CreateInvoice(ctx context.Context, buyerID uuid.UUID, lines []InvoiceLine) (uuid.UUID, error) {
	req := createInvoiceRequest{
		PartnerID: buyerID,
		MoveType:  "out_invoice",
		Lines:     lines,
	}
	var resp createInvoiceResponse
	if err := c.doRequest(ctx, http.MethodPost, "invoices", req, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("CreateInvoice error: %w", err)
	}
	return resp.InvoiceID, nil
}

// doRequest builds, executes and parses an HTTP request with minimal
// backoff for 429.
func (c *Client) doRequest(ctx context.Context, method, reqPath string, body any, out any) error {
	var attempt int
	backoff := c.RetryInitial

	u := *c.BaseURL
	u.Path = path.Join(u.Path, reqPath)

	for {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("marshal request: %w", err)
			}
			reader = bytes.NewReader(payload)
		}

		httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := c.HTTPClient.Do(httpReq)
		if err != nil {
			return err
		}

		if httpResp.StatusCode == http.StatusTooManyRequests && attempt < c.MaxRetries {
			httpResp.Body.Close()
			attempt++
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		defer httpResp.Body.Close()
		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return err
		}

		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			return &APIError{StatusCode: httpResp.StatusCode, Message: string(raw)}
		}

		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}
}
