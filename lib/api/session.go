// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inferex/inferex/lib/clock"
	"github.com/inferex/inferex/lib/netutil"
	"github.com/inferex/inferex/lib/version"
)

// DefaultBaseURL is the hosted inferex API.
const DefaultBaseURL = "https://api.inferex.com"

// Config holds configuration for creating a [Session].
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// DefaultBaseURL. Must be http or https.
	BaseURL string

	// APIVersion, when set, is appended to BaseURL as a path segment
	// ("v1" turns https://api.inferex.com into
	// https://api.inferex.com/v1).
	APIVersion string

	// Token is the initial bearer token. May be empty when the first
	// call is a login or when Credentials can obtain one on a 401.
	Token string

	// Credentials supplies the username and password used to log in
	// again after a 401. Defaults to EnvCredentials.
	Credentials CredentialSource

	// TokenStore persists tokens obtained by logging in. Optional.
	TokenStore TokenStore

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations for retry backoff. Defaults to
	// clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// MaxAttempts bounds the number of sends per request when the
	// server keeps answering with a transient status. Defaults to 3.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt. Each
	// later delay doubles, up to MaxBackoff. Defaults to 200ms and 2s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Session is a long-lived API client bound to one base URL and one
// bearer token. A Session is safe for concurrent use; the token is
// replaced atomically when a request triggers a login.
type Session struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialSource
	tokenStore  TokenStore
	clock       clock.Clock
	logger      *slog.Logger
	userAgent   string

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// mu guards token and generation. generation increases every
	// time the token changes so a request that got a 401 can tell
	// whether someone else already refreshed it.
	mu         sync.Mutex
	token      string
	generation uint64

	// reauthMu serializes logins triggered by 401 responses.
	reauthMu sync.Mutex
}

// NewSession creates a Session from the given configuration. Returns
// an error if the base URL is not an absolute http(s) URL.
func NewSession(config Config) (*Session, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", baseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("api: base URL must be an absolute http or https URL (got %q)", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if apiVersion := strings.Trim(config.APIVersion, "/"); apiVersion != "" {
		baseURL += "/" + apiVersion
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	credentials := config.Credentials
	if credentials == nil {
		credentials = EnvCredentials{}
	}

	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	initialBackoff := config.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = 200 * time.Millisecond
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 2 * time.Second
	}

	return &Session{
		baseURL:        baseURL,
		httpClient:     httpClient,
		credentials:    credentials,
		tokenStore:     config.TokenStore,
		clock:          clk,
		logger:         logger,
		userAgent:      version.UserAgent(),
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		token:          config.Token,
	}, nil
}

// BaseURL returns the resolved API root, including any version
// segment.
func (s *Session) BaseURL() string { return s.baseURL }

// Token returns the current bearer token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken replaces the bearer token used by subsequent requests.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.generation++
}

func (s *Session) currentToken() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.generation
}

// Request describes one API call.
type Request struct {
	Method string

	// Path is relative to the session's base URL ("deployments/status").
	Path string

	Query url.Values
	Body  Body

	// Header holds extra headers. They override the standard ones.
	Header http.Header

	// Token overrides the session token for the first send. A replay
	// after reauthentication uses the refreshed session token.
	Token string

	// NoAuth sends the request without an Authorization header and
	// disables reauthentication. Used by login.
	NoAuth bool

	// Progress, when set, is called with the number of body bytes
	// sent and the body length. Reported values never decrease, even
	// across retries.
	Progress func(sent, total int64)
}

// Response is a completed API call. The body has been read in full.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response (request %s): %w", r.RequestID, err)
	}
	return nil
}

// Do sends request and returns the response when it is 2xx.
//
// Transient statuses (see [Retryable]) are retried up to the session's
// attempt limit with exponential backoff. A 401 triggers one login
// from the session's credentials and one replay with the new token;
// when the login is impossible or fails, the original 401 is
// returned. Any other non-success status, and a transient status that
// outlasts the retries, is returned as a [*TransportError].
func (s *Session) Do(ctx context.Context, request Request) (*Response, error) {
	requestID := uuid.NewString()
	progress := monotonic(request.Progress)

	response, generation, err := s.send(ctx, request, requestID, progress)
	if err != nil {
		return nil, err
	}

	if response.StatusCode == http.StatusUnauthorized && !request.NoAuth {
		s.logger.Warn("unauthorized, logging in again",
			"method", request.Method,
			"path", request.Path,
			"request_id", requestID,
		)
		if reauthError := s.reauthenticate(ctx, generation); reauthError != nil {
			s.logger.Warn("reauthentication failed", "error", reauthError)
		} else {
			request.Token = ""
			response, _, err = s.send(ctx, request, requestID, progress)
			if err != nil {
				return nil, err
			}
		}
	}

	if !response.OK() {
		return nil, &TransportError{
			StatusCode: response.StatusCode,
			Detail:     parseDetail(response.Body),
			Method:     request.Method,
			URL:        s.url(request.Path, nil),
			RequestID:  requestID,
		}
	}
	return response, nil
}

// attempt performs a single HTTP exchange. The returned generation
// identifies the token that was sent.
func (s *Session) attempt(ctx context.Context, request Request, requestID string, progress func(sent, total int64)) (*Response, uint64, error) {
	target := s.url(request.Path, request.Query)

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("api: creating request: %w", err)
	}

	if request.Body != nil {
		reader, length, err := request.Body.Open()
		if err != nil {
			return nil, 0, fmt.Errorf("api: opening request body: %w", err)
		}
		// The transport closes the body once it has been sent.
		httpRequest.Body = &readCloser{
			Reader: netutil.NewProgressReader(reader, length, progress),
			Closer: reader,
		}
		httpRequest.ContentLength = length
		httpRequest.Header.Set("Content-Type", request.Body.ContentType())
	}

	httpRequest.Header.Set("Accept", "application/json")
	httpRequest.Header.Set("User-Agent", s.userAgent)
	httpRequest.Header.Set("X-Request-ID", requestID)

	token, generation := s.currentToken()
	if request.Token != "" {
		token = request.Token
	}
	if !request.NoAuth && token != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+token)
	}

	for name, values := range request.Header {
		httpRequest.Header[name] = values
	}

	httpResponse, err := s.httpClient.Do(httpRequest)
	if err != nil {
		s.logger.Error("request failed",
			"method", request.Method,
			"url", target,
			"request_id", requestID,
			"error", err,
		)
		return nil, 0, &TransportError{Method: request.Method, URL: target, RequestID: requestID, Err: err}
	}
	defer httpResponse.Body.Close()

	body, err := netutil.ReadResponse(httpResponse.Body)
	if err != nil {
		s.logger.Error("reading response failed",
			"method", request.Method,
			"url", target,
			"request_id", requestID,
			"error", err,
		)
		return nil, 0, &TransportError{Method: request.Method, URL: target, RequestID: requestID, Err: err}
	}

	s.logger.Debug("api response",
		"status", httpResponse.StatusCode,
		"method", request.Method,
		"path", request.Path,
		"request_id", requestID,
	)

	return &Response{
		StatusCode: httpResponse.StatusCode,
		Header:     httpResponse.Header,
		Body:       body,
		RequestID:  requestID,
	}, generation, nil
}

// url joins path and query onto the base URL.
func (s *Session) url(path string, query url.Values) string {
	target := s.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// monotonic wraps a progress callback so it never reports a smaller
// byte count than it already has. The transport may call it from its
// own goroutine.
func monotonic(progress func(sent, total int64)) func(sent, total int64) {
	if progress == nil {
		return nil
	}
	var (
		mu   sync.Mutex
		high int64
	)
	return func(sent, total int64) {
		mu.Lock()
		defer mu.Unlock()
		if sent <= high {
			return
		}
		high = sent
		progress(sent, total)
	}
}
