package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"residadmin/pkg/generator"
	"residadmin/pkg/session"
)

const (
	DefaultTimeout  = 15 * time.Second
	contentTypeJSON = "application/json"
)

// TokenSource is read before every request.
type TokenSource interface {
	Current() (session.Session, bool)
}

// Clearer drops the session when token is still the current one.
type Clearer interface {
	ClearIfToken(ctx context.Context, token string) (bool, error)
}

// Raw receives a 2xx answer undecoded, for callers that pass backend
// payloads through.
type Raw struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// UnauthorizedHook is called for every 401 before the error reaches the caller.
type UnauthorizedHook func(ctx context.Context, err *ResponseError)

// Gateway sends every backend request. It attaches the bearer token of the
// current session and reports 401 answers; it never retries.
type Gateway struct {
	base    *url.URL
	headers http.Header
	source  TokenSource
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	hooks   []UnauthorizedHook
	clearer Clearer
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		if c != nil {
			g.client = c
		}
	}
}

// WithTimeout bounds every request. It applies to a copy of the client, so a
// client passed through WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithUnauthorizedHook(h UnauthorizedHook) Option {
	return func(g *Gateway) {
		if h != nil {
			g.hooks = append(g.hooks, h)
		}
	}
}

// WithAutoClear drops the session on 401, but only if the rejected token is
// still current, so a sign-in that raced the failing request survives.
func WithAutoClear(c Clearer) Option {
	return func(g *Gateway) {
		g.clearer = c
	}
}

func New(baseURL string, headers http.Header, source TokenSource, opts ...Option) (*Gateway, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	h := http.Header{}
	h.Set("Content-Type", contentTypeJSON)
	h.Set("Accept", contentTypeJSON)
	for k, v := range headers {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	g := &Gateway{
		base:    base,
		headers: h,
		source:  source,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.timeout > 0 {
		c := *g.client
		c.Timeout = g.timeout
		g.client = &c
	}
	g.logger = g.logger.With("component", "gateway")
	return g, nil
}

func (g *Gateway) BaseURL() string {
	return g.base.String()
}

// Do sends one request. body may be nil, []byte, io.Reader or any value
// encodable as JSON. A 2xx body is decoded into out when out is non-nil, or
// copied when out is a *Raw; any other status returns *ResponseError,
// transport failures *NetworkError.
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target, err := g.resolve(path, query)
	if err != nil {
		return err
	}

	reader, err := encodeBody(body)
	if err != nil {
		return fmt.Errorf("encode %s %s body: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	token := g.authorize(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := &ResponseError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       data,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			g.unauthorized(ctx, rerr, token)
		}
		return rerr
	}

	if raw, ok := out.(*Raw); ok {
		raw.StatusCode = resp.StatusCode
		raw.ContentType = resp.Header.Get("Content-Type")
		raw.Body = data
		return nil
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	return g.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (g *Gateway) Patch(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// authorize applies the default headers, the request id and the bearer
// credential, and returns the token it attached.
func (g *Gateway) authorize(req *http.Request) string {
	for k, v := range g.headers {
		req.Header[k] = append([]string(nil), v...)
	}
	if id := generator.RequestIDFrom(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if g.source == nil {
		return ""
	}
	sess, ok := g.source.Current()
	if !ok || sess.AccessToken == "" {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	return sess.AccessToken
}

func (g *Gateway) unauthorized(ctx context.Context, rerr *ResponseError, token string) {
	g.logger.Warn("token invalid or expired, authentication required",
		"method", rerr.Method, "url", rerr.URL, "status", rerr.StatusCode, "had_token", token != "")

	for _, h := range g.hooks {
		h(ctx, rerr)
	}

	if g.clearer == nil || token == "" {
		return
	}
	cleared, err := g.clearer.ClearIfToken(ctx, token)
	if err != nil {
		g.logger.Error("failed to clear rejected session", "error", err)
		return
	}
	if cleared {
		g.logger.Info("rejected session cleared")
	}
}

func (g *Gateway) resolve(path string, query url.Values) (string, error) {
	var u *url.URL
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		parsed, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("invalid url %q: %w", path, err)
		}
		u = parsed
	} else {
		rel, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("invalid path %q: %w", path, err)
		}
		joined := *g.base
		joined.Path = strings.TrimRight(g.base.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
		joined.RawPath = strings.TrimRight(g.base.EscapedPath(), "/") + "/" + strings.TrimLeft(rel.EscapedPath(), "/")
		joined.RawQuery = rel.RawQuery
		u = &joined
	}

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(data, []byte("null")) {
		return nil, errors.New("nil body value")
	}
	return bytes.NewReader(data), nil
}
