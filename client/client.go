// Package client talks to the frext backend API. Every call returns the
// uniform model.APIResponse envelope; failures never surface as panics or
// bare errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/model"
	"github.com/aki307/frext/pkg/logger"
	"github.com/google/uuid"
)

const (
	DefaultPrefix  = "/api/v1"
	DefaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL    string
	Prefix     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	// SkipValidation turns off response schema checks.
	SkipValidation bool
}

// Client is safe for concurrent use. Its header map is private to the
// instance; use WithToken to derive a per-context client.
type Client struct {
	baseURL string
	prefix  string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
	schemas *schemaSet

	mu      sync.RWMutex
	headers map[string]string
}

func New(cfg Config) *Client {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  "/" + strings.Trim(cfg.Prefix, "/"),
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}

	if !cfg.SkipValidation {
		set, err := responseSchemas()
		if err != nil {
			c.logger.Warn("api.schema.compile_error", "error", err)
		}
		c.schemas = set
	}
	return c
}

// NewFromConfig builds a client from the application config.
func NewFromConfig(cfg *config.Config, l *slog.Logger) *Client {
	return New(Config{
		BaseURL: cfg.API.BaseURL,
		Prefix:  cfg.API.Prefix,
		Timeout: cfg.Timeout(),
		Logger:  l,
	})
}

// WithToken returns a copy of c that sends token as its bearer credential.
// The copy shares the transport but not the headers.
func (c *Client) WithToken(token string) *Client {
	c.mu.RLock()
	headers := make(map[string]string, len(c.headers)+1)
	for k, v := range c.headers {
		headers[k] = v
	}
	c.mu.RUnlock()

	cp := &Client{
		baseURL: c.baseURL,
		prefix:  c.prefix,
		timeout: c.timeout,
		http:    c.http,
		logger:  c.logger,
		schemas: c.schemas,
		headers: headers,
	}
	if token != "" {
		cp.headers["Authorization"] = "Bearer " + token
	} else {
		delete(cp.headers, "Authorization")
	}
	return cp
}

// SetAuthToken affects every later request made through c.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers["Authorization"] = "Bearer " + token
}

func (c *Client) ClearAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.headers, "Authorization")
}

// AuthToken returns the bearer token currently set, or "".
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimPrefix(c.headers["Authorization"], "Bearer ")
}

// SetHeader adds a default header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// URL composes the absolute URL for an API path.
func (c *Client) URL(path string) string {
	return c.baseURL + c.prefix + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// filePart is one file field of a multipart request.
type filePart struct {
	field    string
	fileName string
	content  io.Reader
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	fields  map[string]string
	file    *filePart
	headers map[string]string
	schema  string
}

func (r *request) multipart() bool { return r.file != nil || r.fields != nil }

// encode returns the request body and, for multipart requests, its content type.
func (r *request) encode() (io.Reader, string, error) {
	if r.multipart() {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if r.file != nil {
			if r.file.content == nil {
				return nil, "", fmt.Errorf("form file %s: no content", r.file.field)
			}
			part, err := w.CreateFormFile(r.file.field, r.file.fileName)
			if err != nil {
				return nil, "", fmt.Errorf("create form file: %w", err)
			}
			if _, err := io.Copy(part, r.file.content); err != nil {
				return nil, "", fmt.Errorf("copy form file: %w", err)
			}
		}
		for k, v := range r.fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", k, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("close multipart: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	}
	if r.body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(r.body)
	if err != nil {
		return nil, "", fmt.Errorf("encode json: %w", err)
	}
	return bytes.NewReader(b), "", nil
}

func (c *Client) headerSnapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		h[k] = v
	}
	return h
}

// call performs r and converts every outcome into an envelope.
func call[T any](ctx context.Context, c *Client, op string, r request) *model.APIResponse[T] {
	reqID := uuid.New().String()
	ctx = logger.WithOperation(logger.WithRequestID(ctx, reqID), op)
	log := logger.WithContext(ctx, c.logger)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, contentType, err := r.encode()
	if err != nil {
		log.Error("api.encode_error", "error", err)
		return model.Failure[T](err.Error(), &Error{Kind: KindUnknown, Message: err.Error(), Err: err})
	}

	target := c.URL(r.path)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		log.Error("api.build_request_error", "error", err)
		return model.Failure[T](err.Error(), &Error{Kind: KindUnknown, Message: err.Error(), Err: err})
	}

	headers := c.headerSnapshot()
	for k, v := range r.headers {
		headers[k] = v
	}
	if r.multipart() {
		// the writer owns the boundary
		headers["Content-Type"] = contentType
	} else if body == nil {
		delete(headers, "Content-Type")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	log.Debug("api.request", "method", r.method, "url", target)

	resp, err := c.http.Do(req)
	if err != nil {
		e := classify(err)
		log.Warn("api.send_error", "kind", e.Kind.String(), "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return model.Failure[T](e.Message, e)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warn("api.response_body_close_error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e := classify(err)
		log.Warn("api.read_error", "kind", e.Kind.String(), "error", err)
		return model.Failure[T](e.Message, e)
	}

	log.Info("api.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		msg := errorMessage(raw)
		if msg == "" {
			msg = httpStatusMessage(resp.StatusCode)
		}
		return model.Failure[T](msg, &Error{Kind: KindHTTP, Status: resp.StatusCode, Message: msg})
	}

	return decode[T](c, log, resp.StatusCode, raw, r.schema)
}

// envelopeProbe detects a server-side envelope around the payload.
type envelopeProbe struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decode[T any](c *Client, log *slog.Logger, status int, raw []byte, schema string) *model.APIResponse[T] {
	payload := bytes.TrimSpace(raw)
	message := ""

	if len(payload) > 0 && payload[0] == '{' {
		var probe envelopeProbe
		if err := json.Unmarshal(payload, &probe); err == nil && probe.Success != nil {
			if !*probe.Success {
				msg := probe.Error
				if msg == "" {
					msg = probe.Message
				}
				if msg == "" {
					msg = MsgRequestFailed
				}
				return model.Failure[T](msg, &Error{Kind: KindAPI, Status: status, Message: msg})
			}
			payload = bytes.TrimSpace(probe.Data)
			message = probe.Message
		}
	}

	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return model.OK[T](nil, message)
	}

	invalid := func(err error) *model.APIResponse[T] {
		log.Warn("api.invalid_response", "error", err)
		return model.Failure[T](MsgInvalidResponse, &Error{Kind: KindInvalidResponse, Status: status, Message: MsgInvalidResponse, Err: err})
	}

	if schema != "" && c.schemas != nil {
		var generic any
		if err := json.Unmarshal(payload, &generic); err != nil {
			return invalid(fmt.Errorf("parse response: %w", err))
		}
		if err := c.schemas.validate(schema, generic); err != nil {
			return invalid(err)
		}
	}

	var data T
	if err := json.Unmarshal(payload, &data); err != nil {
		return invalid(fmt.Errorf("parse response: %w", err))
	}
	return model.OK(&data, message)
}

// errorMessage extracts the message of an error body, if it has one.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
