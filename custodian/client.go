package custodian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the external custody service holding all pool funds. The
// pool never touches balances directly; every movement of funds goes through
// this surface.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a custody client for the given base URL
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type transferRequest struct {
	ParticipantID int64 `json:"participant_id"`
	Amount        int64 `json:"amount"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type allowanceResponse struct {
	Allowance int64 `json:"allowance"`
}

// Debit pulls funds from a participant into pool custody
func (c *Client) Debit(ctx context.Context, from int64, amount int64) error {
	return c.post(ctx, "/custody/debit", transferRequest{ParticipantID: from, Amount: amount})
}

// Credit pushes funds from pool custody to a participant
func (c *Client) Credit(ctx context.Context, to int64, amount int64) error {
	return c.post(ctx, "/custody/credit", transferRequest{ParticipantID: to, Amount: amount})
}

// BalanceOf returns the funds currently held in pool custody
func (c *Client) BalanceOf(ctx context.Context) (int64, error) {
	var out balanceResponse
	if err := c.get(ctx, "/custody/balance", &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

// AllowanceOf returns how much the participant has authorized the pool to debit
func (c *Client) AllowanceOf(ctx context.Context, from int64) (int64, error) {
	var out allowanceResponse
	if err := c.get(ctx, fmt.Sprintf("/custody/allowance/%d", from), &out); err != nil {
		return 0, err
	}
	return out.Allowance, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode custody request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build custody request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("custody request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("custody %s http %d", path, res.StatusCode)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build custody request: %w", err)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("custody request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("custody %s http %d", path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode custody response: %w", err)
	}

	return nil
}
