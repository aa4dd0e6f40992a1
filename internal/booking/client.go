package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-booking-capture-service/internal/models"
)

// Client is a plain REST client for the booking CRUD API, used downstream
// of voice confirmation: manual creation after a clarification, status
// changes, and table moves.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a booking API client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Create books a table manually.
func (c *Client) Create(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(ctx, http.MethodPost, "/api/v1/bookings", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Get fetches a booking by ID.
func (c *Client) Get(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(ctx, http.MethodGet, "/api/v1/bookings/"+id, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ChangeStatus moves a booking through its lifecycle (confirmed, seated,
// cancelled, no_show).
func (c *Client) ChangeStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	payload := struct {
		Status string `json:"status"`
	}{Status: status}

	var booking models.Booking
	if err := c.do(ctx, http.MethodPatch, "/api/v1/bookings/"+id+"/status", payload, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// SwitchTablePosition reassigns a booking to a different table.
func (c *Client) SwitchTablePosition(ctx context.Context, id, tableID string) (*models.Booking, error) {
	payload := struct {
		TableID string `json:"table_id"`
	}{TableID: tableID}

	var booking models.Booking
	if err := c.do(ctx, http.MethodPatch, "/api/v1/bookings/"+id+"/table", payload, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: backend returned %d: %s", method, path, resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
