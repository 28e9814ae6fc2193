package stocks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stocks api error: status=%d, message=%s", e.StatusCode, e.Message)
}

// errorBody covers both error shapes the service emits.
type errorBody struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Fields  []string `json:"fields"`
}

// ListResponse mirrors GET /stocks/{user_code}.
type ListResponse struct {
	Status string               `json:"status"`
	Count  int                  `json:"count"`
	Data   []models.StockRecord `json:"data"`
}

// RecordResponse mirrors POST /stock/{user_code}.
type RecordResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Data    models.StockRecord `json:"data"`
}

// UpdateResponse mirrors PUT /stock/{user_code}.
type UpdateResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Data    []models.StockRecord `json:"data"`
}

// MessageResponse mirrors DELETE /stock/{user_code}.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client is a resty-backed client for the stock record API.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{httpClient: restyClient}
}

// Login exchanges credentials for the caller's user code.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var result struct {
		UserCode any `json:"usercode"`
	}
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{"username": username, "password": password}).
		SetResult(&result).
		SetError(apiErr).
		Post("/login")
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return "", err
	}

	return models.UserCodeOf(result.UserCode)
}

// List fetches every record owned by code.
func (c *Client) List(ctx context.Context, code string) (*ListResponse, error) {
	result := new(ListResponse)
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("user_code", code).
		SetResult(result).
		SetError(apiErr).
		Get("/stocks/{user_code}")
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// Create stores one record; fields must contain every column except user_code.
func (c *Client) Create(ctx context.Context, code string, fields map[string]any) (*RecordResponse, error) {
	result := new(RecordResponse)
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("user_code", code).
		SetHeader("Content-Type", "application/json").
		SetBody(fields).
		SetResult(result).
		SetError(apiErr).
		Post("/stock/{user_code}")
	if err != nil {
		return nil, fmt.Errorf("create stock: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// Update patches every record owned by code.
func (c *Client) Update(ctx context.Context, code string, patch map[string]any) (*UpdateResponse, error) {
	result := new(UpdateResponse)
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("user_code", code).
		SetHeader("Content-Type", "application/json").
		SetBody(patch).
		SetResult(result).
		SetError(apiErr).
		Put("/stock/{user_code}")
	if err != nil {
		return nil, fmt.Errorf("update stocks: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes every record owned by code.
func (c *Client) Delete(ctx context.Context, code string) (*MessageResponse, error) {
	result := new(MessageResponse)
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("user_code", code).
		SetResult(result).
		SetError(apiErr).
		Delete("/stock/{user_code}")
	if err != nil {
		return nil, fmt.Errorf("delete stocks: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

func checkResponse(resp *resty.Response, body *errorBody) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode())
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: message, Fields: body.Fields}
}
