// Package lh3 is a minimal client for the LibraryH3lp chat-transcript API.
package lh3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"ask_analytics/config"
	apperrors "ask_analytics/errors"
	"ask_analytics/internal/metrics"
)

// Chat is one raw transcript record as the API returns it. Wait and
// duration are reported in seconds; normalization to minutes happens in
// the chatlog package.
type Chat struct {
	ID              int64   `json:"id"`
	Queue           string  `json:"queue"`
	Profile         string  `json:"profile"`
	Operator        string  `json:"operator"`
	Guest           string  `json:"guest"`
	Protocol        string  `json:"protocol"`
	Referrer        string  `json:"referrer"`
	Started         string  `json:"started"`
	Accepted        string  `json:"accepted"`
	Ended           string  `json:"ended"`
	WaitSeconds     float64 `json:"wait"`
	DurationSeconds float64 `json:"duration"`
}

// Client talks to one configured LibraryH3lp server. It logs in lazily on
// the first request and keeps the session cookie for the rest of the run.
type Client struct {
	cfg      config.Config
	http     *http.Client
	loggedIn bool
}

// NewClient builds a client using the configured request timeout.
func NewClient(cfg config.Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.RequestTimeout(),
			Jar:     jar,
		},
	}, nil
}

func (c *Client) login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	payload, _ := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	})
	url := c.cfg.BaseURL() + "/auth"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperrors.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &apperrors.AuthenticationError{Server: c.cfg.Server, Status: resp.StatusCode}
	case resp.StatusCode >= 300:
		return &apperrors.TransportError{URL: url, Status: resp.StatusCode}
	}
	c.loggedIn = true
	return nil
}

// ListDay returns every chat the service logged on one calendar day.
func (c *Client) ListDay(ctx context.Context, day time.Time) ([]Chat, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/chats/list_day/%d/%d/%d", c.cfg.BaseURL(), day.Year(), int(day.Month()), day.Day())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, &apperrors.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.FetchErrors.Inc()
		return nil, &apperrors.AuthenticationError{Server: c.cfg.Server, Status: resp.StatusCode}
	case resp.StatusCode >= 300:
		metrics.FetchErrors.Inc()
		return nil, &apperrors.TransportError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, &apperrors.TransportError{URL: url, Err: err}
	}
	var chats []Chat
	if err := json.Unmarshal(body, &chats); err != nil {
		return nil, &apperrors.TransportError{URL: url, Err: fmt.Errorf("decode: %w", err)}
	}
	metrics.DaysFetched.Inc()
	return chats, nil
}

// DayLister lists one calendar day of chats. *Client implements it;
// wrappers that consult a local cache first do too.
type DayLister interface {
	ListDay(ctx context.Context, day time.Time) ([]Chat, error)
}

// FetchRange walks the days of [start, end] inclusively through src and
// returns every record, oldest day first. Any day's failure is terminal
// for the invocation and propagates unchanged; partial results are
// discarded so a fetch error can never masquerade as a small result set.
func FetchRange(ctx context.Context, src DayLister, start, end time.Time) ([]Chat, error) {
	var all []Chat
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		chats, err := src.ListDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", day.Format("2006-01-02"), err)
		}
		all = append(all, chats...)
	}
	return all, nil
}
