package store

import (
	"bytes"
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/ninjabank/internal/domain"
)

var ErrRecordNotFound = errors.New("no matching record")

var storeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ninjabank_store_requests_total",
	Help: "Record store calls, labeled by table, operation and outcome",
}, []string{"table", "op", "outcome"})

const (
	Asc  = "asc"
	Desc = "desc"

	maxErrorBody = 512
)

// Record is a row as the store returns it. Numeric cells decode as float64.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type Sort struct {
	Field     string
	Direction string
}

// Query selects records. A zero Query returns every record of a table.
type Query struct {
	Filter     Formula
	Sort       []Sort
	Fields     []string
	MaxRecords int
	PageSize   int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("filterByFormula", string(q.Filter))
	}
	for i, s := range q.Sort {
		v.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		if s.Direction != "" {
			v.Set(fmt.Sprintf("sort[%d][direction]", i), s.Direction)
		}
	}
	for _, f := range q.Fields {
		v.Add("fields[]", f)
	}
	if q.MaxRecords > 0 {
		v.Set("maxRecords", strconv.Itoa(q.MaxRecords))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

type newRecord struct {
	Fields map[string]any `json:"fields"`
}

type createRequest struct {
	Records []newRecord `json:"records"`
}

type createResponse struct {
	Records []Record `json:"records"`
}

type ClientConfig struct {
	APIURL  string
	BaseID  string
	APIKey  string
	Timeout time.Duration

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the hosted tabular store over its REST API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	timeout time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.APIURL, "/") + "/v0/" + url.PathEscape(cfg.BaseID),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
	}
}

// FindOne returns the first record matching q, or ErrRecordNotFound.
func (c *Client) FindOne(ctx context.Context, table string, q Query) (*Record, error) {
	q.MaxRecords = 1
	var page listResponse
	if err := c.do(ctx, http.MethodGet, table, "find_one", q.values(), nil, &page); err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, ErrRecordNotFound
	}
	return &page.Records[0], nil
}

// FindAll follows pagination until every matching record is read.
func (c *Client) FindAll(ctx context.Context, table string, q Query) ([]Record, error) {
	values := q.values()
	var all []Record
	for {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, table, "find_all", values, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		values.Set("offset", page.Offset)
	}
}

// Insert creates a single record and returns it as stored.
func (c *Client) Insert(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	body := createRequest{Records: []newRecord{{Fields: fields}}}
	var created createResponse
	if err := c.do(ctx, http.MethodPost, table, "insert", nil, body, &created); err != nil {
		return nil, err
	}
	if len(created.Records) == 0 {
		return nil, fmt.Errorf("%w: insert into %s returned no records", domain.ErrStoreQuery, table)
	}
	return &created.Records[0], nil
}

func (c *Client) do(ctx context.Context, method, table, op string, query url.Values, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + "/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode %s request: %v", domain.ErrStoreQuery, table, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: build %s request: %v", domain.ErrStoreQuery, table, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		storeRequestsTotal.WithLabelValues(table, op, "unavailable").Inc()
		return fmt.Errorf("%w: %s %s: %v", domain.ErrStoreUnavailable, method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		sentinel, outcome := domain.ErrStoreQuery, "query_error"
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			sentinel, outcome = domain.ErrStoreUnavailable, "unavailable"
		}
		storeRequestsTotal.WithLabelValues(table, op, outcome).Inc()
		return fmt.Errorf("%w: %s %s: status %d: %s", sentinel, method, table, resp.StatusCode, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		storeRequestsTotal.WithLabelValues(table, op, "query_error").Inc()
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrStoreQuery, table, err)
	}

	storeRequestsTotal.WithLabelValues(table, op, "ok").Inc()
	return nil
}
