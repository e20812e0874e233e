// Package sheets talks to the expedition's Google Apps Script endpoint.
// The script fronts a spreadsheet and answers every action with a
// {status, data} envelope; data is the row list on read and a message
// string otherwise.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"tellfind/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TELLFIND_HTTP_TIMEOUT"

	// FindsSheet is the spreadsheet tab that holds find rows.
	FindsSheet = "ממצאים"

	errorSnippetLen = 200
)

// ErrNoScriptURL means no Apps Script endpoint is configured.
var ErrNoScriptURL = errors.New("no apps script url configured")

// Row is one spreadsheet row keyed by header.
type Row map[string]any

// Client is an HTTP client for the Apps Script endpoint.
type Client struct {
	scriptURL string
	http      *http.Client
}

// NewClient creates a client for the given Apps Script URL. An empty
// URL yields a client whose calls fail with ErrNoScriptURL.
func NewClient(scriptURL string) *Client {
	return &Client{
		scriptURL: strings.TrimSpace(scriptURL),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Read fetches all rows of a sheet.
func (c *Client) Read(ctx context.Context, sheet string) ([]Row, error) {
	if c.scriptURL == "" {
		return nil, ErrNoScriptURL
	}

	endpoint, err := url.Parse(c.scriptURL)
	if err != nil {
		return nil, fmt.Errorf("bad script url: %w", err)
	}
	query := endpoint.Query()
	query.Set("action", "read")
	query.Set("sheet", sheet)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode sheet rows: %w", err)
	}
	return rows, nil
}

// Write appends one row to a sheet. The script matches form fields to
// header names, so values go out form-encoded.
func (c *Client) Write(ctx context.Context, sheet string, row map[string]string) error {
	if c.scriptURL == "" {
		return ErrNoScriptURL
	}

	form := url.Values{}
	form.Set("action", "write")
	form.Set("sheet", sheet)
	for key, value := range row {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	_, err = c.do(req)
	return err
}

// PushFind appends a find as one row of the finds sheet.
func (c *Client) PushFind(ctx context.Context, find models.Find) error {
	return c.Write(ctx, FindsSheet, FindRow(find))
}

// FindRow maps a find onto the spreadsheet's Hebrew headers. Media
// binaries stay local; the row carries only the attachment count.
func FindRow(find models.Find) map[string]string {
	return map[string]string{
		"מזהה":       find.ID,
		"אתר":        find.Site,
		"שטח":        find.Plot,
		"שכבה":       find.Layer,
		"תיאור":      find.Description,
		"מיקום":      find.Location,
		"תאריך":      find.DatetimeText,
		"נרשם על ידי": find.CreatedBy,
		"מדיה":       strconv.Itoa(len(find.Media)),
	}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(text, &env); err != nil {
		return nil, fmt.Errorf("sheets api returned non-JSON: %s", snippet(text))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sheets api HTTP %d: %s", resp.StatusCode, snippet(text))
	}
	if env.Status != "success" {
		var message string
		if err := json.Unmarshal(env.Data, &message); err != nil || message == "" {
			message = "sheets api error"
		}
		return nil, fmt.Errorf("sheets api: %s", message)
	}
	return env.Data, nil
}

func snippet(text []byte) string {
	s := string(text)
	if len(s) > errorSnippetLen {
		s = s[:errorSnippetLen]
	}
	return s
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}
	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	return defaultHTTPTimeout
}
