package frappe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

var (
	ErrMissingCredentials = errors.New("frappe api key and secret are required")
	ErrUnexpectedStatus   = errors.New("unexpected status from frappe")
)

const (
	DefaultPageSize = 100
	DefaultTimeout  = 30 * time.Second
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	PageSize  int
	Timeout   time.Duration
	// ServerLocation is the zone naive ERP timestamps are written in.
	ServerLocation *time.Location
	// Location is the zone every returned timestamp is converted to.
	Location *time.Location
}

// Client talks to the Frappe/ERPNext REST API using token authentication.
type Client struct {
	baseURL   string
	http      *http.Client
	pageSize  int
	serverLoc *time.Location
	loc       *time.Location
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, ErrMissingCredentials
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("frappe base url is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ServerLocation == nil {
		cfg.ServerLocation = cfg.Location
	}

	// Frappe expects "Authorization: token <key>:<secret>"; a static oauth2
	// token with type "token" renders exactly that header.
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIKey + ":" + cfg.APISecret,
		TokenType:   "token",
	})
	base := &http.Client{Timeout: cfg.Timeout}
	httpClient := oauth2.NewClient(context.WithValue(context.Background(), oauth2.HTTPClient, base), src)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      httpClient,
		pageSize:  cfg.PageSize,
		serverLoc: cfg.ServerLocation,
		loc:       cfg.Location,
	}, nil
}

// Filter is one Frappe filter triple, e.g. {"time", ">=", "2024-03-01 00:00:00"}.
type Filter [3]any

type ListQuery struct {
	Fields    []string
	Filters   []Filter
	OrFilters []Filter
	OrderBy   string
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

// listAll pages through a doctype until a short or empty page. The first
// failing page stops the listing; rows already read are returned with the error.
func listAll[T any](ctx context.Context, c *Client, doctype string, q ListQuery) ([]T, error) {
	var rows []T
	for start := 0; ; start += c.pageSize {
		page, err := fetchPage[T](ctx, c, doctype, q, start)
		if err != nil {
			return rows, fmt.Errorf("failed to fetch %s page at offset %d: %w", doctype, start, err)
		}
		rows = append(rows, page...)
		if len(page) < c.pageSize {
			return rows, nil
		}
	}
}

func fetchPage[T any](ctx context.Context, c *Client, doctype string, q ListQuery, start int) ([]T, error) {
	params := url.Values{}
	if len(q.Fields) > 0 {
		b, err := json.Marshal(q.Fields)
		if err != nil {
			return nil, err
		}
		params.Set("fields", string(b))
	}
	if len(q.Filters) > 0 {
		b, err := json.Marshal(q.Filters)
		if err != nil {
			return nil, err
		}
		params.Set("filters", string(b))
	}
	if len(q.OrFilters) > 0 {
		b, err := json.Marshal(q.OrFilters)
		if err != nil {
			return nil, err
		}
		params.Set("or_filters", string(b))
	}
	if q.OrderBy != "" {
		params.Set("order_by", q.OrderBy)
	}
	params.Set("limit_start", strconv.Itoa(start))
	params.Set("limit_page_length", strconv.Itoa(c.pageSize))

	endpoint := c.baseURL + "/api/resource/" + url.PathEscape(doctype) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded listResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return decoded.Data, nil
}

// parseTimestamp reads ERP datetimes ("2006-01-02 15:04:05[.ffffff]" in the
// server zone, or RFC 3339) and converts them to the client's zone.
func (c *Client) parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(c.loc), nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, c.serverLoc); err == nil {
			return t.In(c.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func (c *Client) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), c.loc)
}

// flexBool accepts 0/1, "0"/"1" and true/false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.TrimSpace(string(data)), `"`) {
	case "1", "true":
		*b = true
	case "0", "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}
