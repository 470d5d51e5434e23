// ABOUTME: HTTP gateway client for the lot-ecom REST backend
// ABOUTME: Attaches the bearer credential, decodes envelopes and clears the session on 401

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every backend call.
	DefaultTimeout = 10 * time.Second

	loginPath       = "/auth/login"
	maxResponseSize = 10 << 20
)

// Credentials is the session's single bearer credential.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client talks to the backend. The zero value is not usable; call New.
// A Client bound to credentials with For is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	logger     *slog.Logger
}

// New creates a client for baseURL (e.g. https://host/api/v1). A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "backend"),
	}
}

// For returns a copy of c that authenticates with creds.
func (c *Client) For(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the response wrapper every backend endpoint uses.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) serverMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// filePart is one file in a multipart request.
type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// multipartBody is a multipart/form-data request body.
type multipartBody struct {
	fields map[string]string
	files  []filePart
}

func (m multipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range m.fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	for _, f := range m.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", fmt.Errorf("writing file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// do performs one backend call and returns the decoded envelope.
// body may be nil, a multipartBody, or any JSON-encodable value.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case multipartBody:
		r, ct, err := b.encode()
		if err != nil {
			return nil, err
		}
		reader, contentType = r, ct
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.creds != nil {
		token, err := c.creds.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
			}
			return nil, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}

	c.logger.Debug("backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	var (
		env       envelope
		decodeErr error
	)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{Status: resp.StatusCode, Payload: raw}
		if decodeErr == nil {
			httpErr.Message = env.serverMessage()
		}
		if resp.StatusCode == http.StatusUnauthorized && path != loginPath {
			c.expire(ctx)
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, httpErr)
		}
		return nil, httpErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, decodeErr)
	}
	if env.Success != nil && !*env.Success {
		return nil, &HTTPError{Status: resp.StatusCode, Message: env.serverMessage(), Payload: raw}
	}
	return &env, nil
}

// expire clears the credential after the backend rejected it. The clear runs even
// when the request context is already done.
func (c *Client) expire(ctx context.Context) {
	if c.creds == nil {
		return
	}
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.creds.Clear(clearCtx); err != nil {
		c.logger.Error("failed to clear expired credential", "error", err)
		return
	}
	c.logger.Info("backend rejected credential; session cleared")
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
