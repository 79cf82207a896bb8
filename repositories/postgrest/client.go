// Package postgrest stores posts and comments through the hosted platform's
// REST gateway. Writes carry the caller's access token so the platform's
// row-level security attributes them to the caller.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cppla/miniblog/repositories"
)

const (
	restPath      = "/rest/v1/"
	objectMedia   = "application/vnd.pgrst.object+json"
	codeNoRows    = "PGRST116"
	codeBadFormat = "22P02"
)

// APIError is the error body returned by the gateway.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("postgrest: status %d: %s (%s)", e.Status, e.Message, e.Code)
}

// Store talks to one project's REST gateway.
type Store struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Store. httpClient may be nil.
func New(baseURL, apiKey string, httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

type request struct {
	method string
	table  string
	query  url.Values
	token  string
	body   interface{}
	single bool
	header http.Header
}

// do executes r and decodes a successful body into out when out is non-nil.
func (s *Store) do(ctx context.Context, r request, out interface{}) (http.Header, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.table, err)
		}
		body = bytes.NewReader(b)
	}

	u := s.baseURL + restPath + r.table
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	bearer := r.token
	if bearer == "" {
		bearer = s.apiKey
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.single {
		req.Header.Set("Accept", objectMedia)
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.Header, decodeError(resp)
	}
	if out == nil || r.method == http.MethodHead {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("decode %s response: %w", r.table, err)
	}
	return resp.Header, nil
}

// decodeError turns a gateway error into repositories.ErrNotFound when the
// request matched no row, otherwise into an *APIError.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(raw) > 0 && json.Unmarshal(raw, apiErr) != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	switch {
	case apiErr.Code == codeNoRows, apiErr.Code == codeBadFormat:
		return fmt.Errorf("%w: %v", repositories.ErrNotFound, apiErr)
	case resp.StatusCode == http.StatusNotAcceptable && apiErr.Code == "":
		return fmt.Errorf("%w: %v", repositories.ErrNotFound, apiErr)
	}
	return apiErr
}

// contentRangeTotal reads N from a "0-9/N" or "*/N" Content-Range header.
func contentRangeTotal(h http.Header) (int64, error) {
	v := h.Get("Content-Range")
	i := strings.LastIndexByte(v, '/')
	if i < 0 || v[i+1:] == "*" {
		return 0, fmt.Errorf("content-range %q carries no total", v)
	}
	n, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("content-range %q: %w", v, err)
	}
	return n, nil
}

func eq(v string) string { return "eq." + v }

// searchFilter builds the case-insensitive OR filter over title and content.
// The term is double quoted so reserved characters survive the filter grammar.
func searchFilter(term string) string {
	q := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(term)
	pattern := `"*` + q + `*"`
	return "(title.ilike." + pattern + ",content.ilike." + pattern + ")"
}
