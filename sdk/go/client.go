package ptaplansdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal PTA HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// User represents the API user model.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Activity represents the API activity model (partial).
type Activity struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Status        string  `json:"status"`
	UnitCost      *string `json:"unit_cost,omitempty"`
	Quantity      *string `json:"quantity,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	IsLate        bool    `json:"is_late"`
	DaysRemaining *int    `json:"days_remaining,omitempty"`
}

// Suivi represents a progress record.
type Suivi struct {
	ID                  string `json:"id"`
	ActivityID          string `json:"activity_id"`
	ObservationDate     string `json:"observation_date"`
	Remark              string `json:"remark,omitempty"`
	Advancement         *int   `json:"advancement,omitempty"`
	LateNotification    bool   `json:"late_notification"`
	NotificationMessage string `json:"notification_message,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login authenticates and stores the bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "v1/auth/login", body, &resp); err != nil {
		return User{}, err
	}
	c.BearerToken = resp.Token
	return resp.User, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodGet, "v1/auth/me", nil, &resp)
	return resp, err
}

// CreateActivity creates an activity. Fields beyond the description are
// passed through extra as-is (dates, costs, reference ids).
func (c *Client) CreateActivity(ctx context.Context, description string, extra map[string]any) (Activity, error) {
	body := map[string]any{"description": description}
	for k, v := range extra {
		body[k] = v
	}
	var resp Activity
	err := c.do(ctx, http.MethodPost, "v1/activities", body, &resp)
	return resp, err
}

// Activities lists activities, optionally filtered by status.
func (c *Client) Activities(ctx context.Context, status string) ([]Activity, error) {
	endpoint := "v1/activities"
	if status != "" {
		endpoint = fmt.Sprintf("%s?status=%s", endpoint, url.QueryEscape(status))
	}
	var resp []Activity
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetActivity fetches an activity by id.
func (c *Client) GetActivity(ctx context.Context, id string) (Activity, error) {
	var resp Activity
	err := c.do(ctx, http.MethodGet, "v1/activities/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// RecordProgress records a progress observation on an activity.
func (c *Client) RecordProgress(ctx context.Context, activityID, observationDate, remark string, advancement *int) (Suivi, error) {
	body := map[string]any{
		"activity_id":      activityID,
		"observation_date": observationDate,
		"remark":           remark,
	}
	if advancement != nil {
		body["advancement"] = *advancement
	}
	var resp Suivi
	err := c.do(ctx, http.MethodPost, "v1/suivis", body, &resp)
	return resp, err
}

// Suivis lists progress records for an activity.
func (c *Client) Suivis(ctx context.Context, activityID string) ([]Suivi, error) {
	endpoint := "v1/suivis"
	if activityID != "" {
		endpoint = fmt.Sprintf("%s?activity_id=%s", endpoint, url.QueryEscape(activityID))
	}
	var resp []Suivi
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
