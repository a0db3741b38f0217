package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

// Logical endpoint names, used in error reporting and recovery mapping.
const (
	EndpointDashboardPage = "dashboard-page"
	EndpointUpdateStatus  = "update-submission-status"
	EndpointAddSubmission = "add-submissions"
	EndpointGetComments   = "get-submissions-comment"
	EndpointAddComment    = "create-submissions-comment"
	EndpointStatistics    = "statistics"
	EndpointCSRFToken     = "csrf-token"
	EndpointContact       = "contact-submissions"
)

// Error is a failed API call: transport failures wrap the underlying error,
// HTTP failures carry the status and the parsed error body when available.
type Error struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api: %s: %v", e.Endpoint, e.Err)
	case e.Message != "":
		return fmt.Sprintf("api: %s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	default:
		return fmt.Sprintf("api: %s: HTTP %d", e.Endpoint, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Client talks to the dashboard REST API. Every failure is reported once on
// the api:error topic before being returned, so subscribers see errors even
// from call sites that swallow them.
type Client struct {
	baseURL string
	http    *http.Client
	bus     *bus.Bus
}

// New builds a client rooted at baseURL (e.g. "http://host/api/v1"). The
// underlying http.Client keeps a cookie jar so session cookies ride along
// on every request.
func New(baseURL string, b *bus.Bus) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
		bus:     b,
	}
}

// NewWithHTTPClient is used by tests and by callers that need transport
// control (timeouts are the transport's business, not this layer's).
func NewWithHTTPClient(baseURL string, b *bus.Bus, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc, bus: b}
}

// FetchSubmissions loads one server page, optionally sorted.
func (c *Client) FetchSubmissions(ctx context.Context, page, perPage int, sort model.Sort) (model.PageResult, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if sort.By != "" {
		q.Set("sort_by", sort.By)
	}
	if sort.Order != "" {
		q.Set("order", string(sort.Order))
	}

	var result model.PageResult
	err := c.request(ctx, EndpointDashboardPage, http.MethodPost, "/admin/dashboard-page?"+q.Encode(), nil, &result)
	return result, err
}

// UpdateSubmissionStatus persists a status change. Any non-2xx response is
// a failure; callers must not commit the new status locally until this
// returns nil.
func (c *Client) UpdateSubmissionStatus(ctx context.Context, id string, status model.Status) error {
	body := map[string]any{
		"submission_id": id,
		"status":        status,
	}
	return c.request(ctx, EndpointUpdateStatus, http.MethodPut, "/admin/update-submission-status", body, nil)
}

// AddSubmission creates a lead from the admin form and returns the
// server-assigned submission id.
func (c *Client) AddSubmission(ctx context.Context, form model.ContactForm) (string, error) {
	var resp struct {
		SubmissionID string `json:"submission_id"`
	}
	err := c.request(ctx, EndpointAddSubmission, http.MethodPost, "/admin/add-submissions", form, &resp)
	return resp.SubmissionID, err
}

// FetchComments loads the admin comments for a submission, normalizing
// whichever historical response shape the backend speaks.
func (c *Client) FetchComments(ctx context.Context, submissionID string) ([]model.Comment, error) {
	body := map[string]any{"submissions_id": submissionID}
	var raw json.RawMessage
	err := c.request(ctx, EndpointGetComments, http.MethodPost, "/admin/get-submissions-comment", body, &raw)
	if err != nil {
		return nil, err
	}
	return NormalizeComments(raw), nil
}

// AddComment posts a new admin comment. The returned comment may have an
// empty ID when the server response does not unambiguously carry one; the
// caller assigns a temporary id in that case.
func (c *Client) AddComment(ctx context.Context, submissionID, text string) (model.Comment, error) {
	body := map[string]any{
		"submissions_id": submissionID,
		"text":           text,
	}
	var raw json.RawMessage
	err := c.request(ctx, EndpointAddComment, http.MethodPost, "/admin/create-submissions-comment", body, &raw)
	if err != nil {
		return model.Comment{}, err
	}
	return NormalizeCreatedComment(raw), nil
}

// FetchStats loads the aggregate submission counters.
func (c *Client) FetchStats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	err := c.request(ctx, EndpointStatistics, http.MethodGet, "/admin/statistics", nil, &stats)
	return stats, err
}

// CSRFToken requests a fresh token for the public contact form. expiresIn
// is the token lifetime in seconds.
func (c *Client) CSRFToken(ctx context.Context) (token string, expiresIn int, err error) {
	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	err = c.request(ctx, EndpointCSRFToken, http.MethodGet, "/csrf-token", nil, &resp)
	return resp.Token, resp.ExpiresIn, err
}

// SubmitContact sends a public contact-form submission under a previously
// issued CSRF token.
func (c *Client) SubmitContact(ctx context.Context, form model.ContactForm, csrfToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/contact-submissions", form)
	if err != nil {
		return c.fail(EndpointContact, &Error{Endpoint: EndpointContact, Err: err})
	}
	req.Header.Set("X-CSRF-Token", csrfToken)
	return c.do(EndpointContact, req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) request(ctx context.Context, endpoint, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return c.fail(endpoint, &Error{Endpoint: endpoint, Err: err})
	}
	return c.do(endpoint, req, out)
}

func (c *Client) do(endpoint string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(endpoint, &Error{Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(endpoint, &Error{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  errorMessage(resp),
		})
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(endpoint, &Error{Endpoint: endpoint, Err: err})
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.fail(endpoint, &Error{Endpoint: endpoint, Err: err})
	}
	return nil
}

// errorMessage pulls a server-provided message out of an error response
// body when one is parseable.
func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return string(bytes.TrimSpace(data))
}

func (c *Client) fail(endpoint string, err *Error) error {
	if c.bus != nil {
		c.bus.Publish(bus.APIError, bus.RequestError{Endpoint: endpoint, Err: err})
	}
	return err
}
