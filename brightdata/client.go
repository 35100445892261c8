package brightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"forum-harvest/logger"
	"forum-harvest/retry"
)

var (
	ErrTriggerFailed      = errors.New("brightdata: trigger request failed")
	ErrMissingSnapshotID  = errors.New("brightdata: snapshot id missing from trigger response")
	ErrPollFailed         = errors.New("brightdata: snapshot request failed")
	ErrSnapshotNotReady   = errors.New("brightdata: snapshot not ready")
	ErrPollBudgetExceeded = errors.New("brightdata: snapshot not ready within wait budget")
)

const maxErrorBody = 512

// TriggerInput is one entry of the trigger payload.
type TriggerInput struct {
	URL    string `json:"url"`
	SortBy string `json:"sort_by,omitempty"`
}

type triggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// Item is one post of a snapshot. Only the fields collection reads are decoded, so
// the provider changing the type of any other field cannot fail the run.
type Item struct {
	Description string `json:"description"`
	DatePosted  string `json:"date_posted"`
}

// PollPolicy controls how long WaitForSnapshot keeps asking.
type PollPolicy struct {
	Backoff retry.Backoff
	// MaxWait bounds the total time spent polling. 0 means unbounded.
	MaxWait time.Duration
}

type Config struct {
	TriggerURL      string
	SnapshotBaseURL string
	APIToken        string
}

// Client talks to the datasets v3 trigger and snapshot endpoints.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
}

// Trigger starts a collection job and returns its snapshot id.
func (c *Client) Trigger(ctx context.Context, inputs []TriggerInput) (string, error) {
	payload, err := json.Marshal(inputs)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TriggerURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTriggerFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrTriggerFailed, resp.StatusCode, readSnippet(resp.Body))
	}

	var tr triggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrMissingSnapshotID, err)
	}
	if strings.TrimSpace(tr.SnapshotID) == "" {
		return "", ErrMissingSnapshotID
	}
	return tr.SnapshotID, nil
}

// SnapshotURL is where the items of a snapshot are served.
func (c *Client) SnapshotURL(snapshotID string) string {
	return strings.TrimRight(c.cfg.SnapshotBaseURL, "/") + "/" + url.PathEscape(snapshotID) + "?format=json"
}

// Snapshot fetches a snapshot once. A 202 yields ErrSnapshotNotReady.
func (c *Client) Snapshot(ctx context.Context, snapshotID string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SnapshotURL(snapshotID), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPollFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var items []Item
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", ErrPollFailed, err)
		}
		return items, nil
	case http.StatusAccepted:
		return nil, ErrSnapshotNotReady
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrPollFailed, resp.StatusCode, readSnippet(resp.Body))
	}
}

// WaitForSnapshot polls until the snapshot is ready, backing off between attempts.
// Only "not ready" answers are retried; any other failure ends the wait.
func (c *Client) WaitForSnapshot(ctx context.Context, snapshotID string, policy PollPolicy) ([]Item, error) {
	b := backoff.WithContext(policy.Backoff.Exponential(policy.MaxWait), ctx)

	attempt := 0
	started := time.Now()
	items, err := backoff.RetryNotifyWithData(func() ([]Item, error) {
		attempt++
		items, err := c.Snapshot(ctx, snapshotID)
		if err != nil && !errors.Is(err, ErrSnapshotNotReady) {
			return nil, backoff.Permanent(err)
		}
		return items, err
	}, b, func(_ error, wait time.Duration) {
		logger.InfoCtx(ctx, "snapshot not ready, waiting", logger.Fields{
			"snapshot_id": snapshotID,
			"attempt":     attempt,
			"wait":        wait.String(),
		})
	})
	if errors.Is(err, ErrSnapshotNotReady) {
		return nil, fmt.Errorf("%w: snapshot %s after %s", ErrPollBudgetExceeded, snapshotID, time.Since(started).Round(time.Millisecond))
	}
	return items, err
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
