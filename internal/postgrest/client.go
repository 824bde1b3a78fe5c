package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pagination"
)

// CodeRangeNotSatisfiable is the PostgREST error code for an offset past the last row.
const CodeRangeNotSatisfiable = "PGRST103"

// DefaultTable is the table queried when Config.Table is empty.
const DefaultTable = "resources"

// Config configures a Client.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Table   string        `yaml:"table"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the defaults for everything but BaseURL and APIKey.
func DefaultConfig() Config {
	return Config{
		Table:   DefaultTable,
		Timeout: 10 * time.Second,
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Table, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Error is an error body returned by PostgREST.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("postgrest: status %d: %s: %s", e.Status, e.Code, e.Message)
}

var _ catalog.Service = (*Client)(nil)

// Client serves the catalog from a PostgREST endpoint.
type Client struct {
	http   *resty.Client
	table  string
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("postgrest config: %w", err)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		rc.SetHeader("apikey", key)
		rc.SetHeader("Authorization", "Bearer "+key)
	}

	c := &Client{
		http:   rc,
		table:  cfg.Table,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "postgrest").Str("table", c.table).Logger()
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) path() string {
	return "/" + c.table
}

// Fetch implements catalog.QueryService. A page past the end fails with a
// *catalog.RangeError carrying the total PostgREST reported.
func (c *Client) Fetch(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	if err := q.Validate(); err != nil {
		return catalog.Page{}, fmt.Errorf("invalid query: %w", err)
	}

	from := pagination.Offset(q.Page, q.PageSize)
	to := from + q.PageSize - 1

	var records []catalog.Resource
	req := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(filterParams(q.Filters)).
		SetQueryParam("select", "*").
		SetQueryParam("order", "updated_at.desc,id.asc").
		SetHeader("Range-Unit", "items").
		SetHeader("Range", fmt.Sprintf("%d-%d", from, to)).
		SetHeader("Prefer", "count=exact").
		SetResult(&records)

	resp, err := req.Get(c.path())
	if err != nil {
		return catalog.Page{}, fmt.Errorf("fetch page %d: %w", q.Page, err)
	}

	total, known := parseContentRange(resp.Header().Get("Content-Range"))
	if resp.IsError() {
		perr := errorFromResponse(resp)
		if perr.Status == http.StatusRequestedRangeNotSatisfiable || perr.Code == CodeRangeNotSatisfiable {
			if !known {
				total = catalog.UnknownTotal
			}
			c.logger.Debug().Int("page", q.Page).Int("total", total).Msg("range not satisfiable")
			return catalog.Page{}, catalog.NewRangeError(q.Page, total)
		}
		return catalog.Page{}, perr
	}

	if records == nil {
		records = []catalog.Resource{}
	}
	if !known {
		total = from + len(records)
	}
	c.logger.Debug().Int("page", q.Page).Int("rows", len(records)).Int("total", total).Msg("fetched page")
	return catalog.Page{Records: records, TotalCount: total}, nil
}

// FetchAll implements catalog.QueryService.
func (c *Client) FetchAll(ctx context.Context, filters catalog.Filters) ([]catalog.Resource, error) {
	var records []catalog.Resource
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(filterParams(filters)).
		SetQueryParam("select", "*").
		SetQueryParam("order", "updated_at.desc,id.asc").
		SetResult(&records).
		Get(c.path())
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	if records == nil {
		records = []catalog.Resource{}
	}
	return records, nil
}

// Suggest implements catalog.Suggester.
func (c *Client) Suggest(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = catalog.DefaultSuggestionLimit
	}

	var rows []struct {
		Title string `json:"title"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "title").
		SetQueryParam("title", "ilike."+likePattern(term)).
		SetQueryParam("order", "updated_at.desc").
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&rows).
		Get(c.path())
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", term, err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}

	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// payload is the writable shape of a resource row.
type payload struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Cover       string   `json:"cover,omitempty"`
}

func toPayload(r catalog.Resource) payload {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return payload{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Category:    r.Category,
		Tags:        tags,
		Rating:      r.Rating,
		Reviews:     r.Reviews,
		Cover:       r.Cover,
	}
}

// Create implements catalog.Mutator.
func (c *Client) Create(ctx context.Context, r catalog.Resource) (catalog.Resource, error) {
	var rows []catalog.Resource
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody([]payload{toPayload(r)}).
		SetResult(&rows).
		Post(c.path())
	if err != nil {
		return catalog.Resource{}, fmt.Errorf("create resource: %w", err)
	}
	if resp.IsError() {
		return catalog.Resource{}, errorFromResponse(resp)
	}
	if len(rows) == 0 {
		return catalog.Resource{}, fmt.Errorf("create resource: empty representation")
	}
	return rows[0], nil
}

// Update implements catalog.Mutator.
func (c *Client) Update(ctx context.Context, id string, r catalog.Resource) (catalog.Resource, error) {
	var rows []catalog.Resource
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		SetHeader("Prefer", "return=representation").
		SetBody(toPayload(r)).
		SetResult(&rows).
		Patch(c.path())
	if err != nil {
		return catalog.Resource{}, fmt.Errorf("update resource %s: %w", id, err)
	}
	if resp.IsError() {
		return catalog.Resource{}, errorFromResponse(resp)
	}
	if len(rows) == 0 {
		return catalog.Resource{}, fmt.Errorf("resource %s: %w", id, catalog.ErrNotFound)
	}
	return rows[0], nil
}

// Delete implements catalog.Mutator.
func (c *Client) Delete(ctx context.Context, id string) error {
	var rows []json.RawMessage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		SetQueryParam("select", "id").
		SetHeader("Prefer", "return=representation").
		SetResult(&rows).
		Delete(c.path())
	if err != nil {
		return fmt.Errorf("delete resource %s: %w", id, err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	if len(rows) == 0 {
		return fmt.Errorf("resource %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

func errorFromResponse(resp *resty.Response) *Error {
	perr := &Error{Status: resp.StatusCode()}
	body := strings.TrimSpace(resp.String())
	if body == "" {
		perr.Message = http.StatusText(perr.Status)
		return perr
	}
	if err := json.Unmarshal([]byte(body), perr); err != nil || (perr.Code == "" && perr.Message == "") {
		perr.Message = body
	}
	return perr
}
