package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aki307/frext/model"
)

// OCRRequest is the multipart upload shared by ProcessOCR and ProcessComplete.
type OCRRequest struct {
	FileName   string
	Image      io.Reader
	TemplateID string
	Options    *model.ProcessingOptions

	// Headers are sent with this call only, over the client defaults.
	Headers map[string]string
}

func (r OCRRequest) toRequest(path, schema string) (request, error) {
	fields := map[string]string{}
	if r.TemplateID != "" {
		fields["templateId"] = r.TemplateID
	}
	if r.Options != nil {
		opts, err := json.Marshal(r.Options)
		if err != nil {
			return request{}, err
		}
		fields["options"] = string(opts)
	}
	name := r.FileName
	if name == "" {
		name = "image"
	}
	return request{
		method:  http.MethodPost,
		path:    path,
		file:    &filePart{field: "image", fileName: name, content: r.Image},
		fields:  fields,
		headers: r.Headers,
		schema:  schema,
	}, nil
}

type GPTRequest struct {
	Text       string                   `json:"text"`
	TemplateID string                   `json:"templateId,omitempty"`
	Options    *model.ProcessingOptions `json:"options,omitempty"`
	Headers    map[string]string        `json:"-"`
}

// HistoryQuery holds pagination and filters; zero values are omitted.
type HistoryQuery struct {
	Page       int
	Limit      int
	Status     string
	TemplateID string
}

func (q HistoryQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.TemplateID != "" {
		v.Set("templateId", q.TemplateID)
	}
	return v
}

func (c *Client) ProcessOCR(ctx context.Context, in OCRRequest) *model.APIResponse[model.OCRResult] {
	r, err := in.toRequest("/ocr/process", schemaOCR)
	if err != nil {
		return model.Failure[model.OCRResult](err.Error(), err)
	}
	return call[model.OCRResult](ctx, c, "ocr.process", r)
}

func (c *Client) ProcessGPT(ctx context.Context, in GPTRequest) *model.APIResponse[model.GPTResult] {
	return call[model.GPTResult](ctx, c, "gpt.process", request{
		method:  http.MethodPost,
		path:    "/gpt/process",
		body:    in,
		headers: in.Headers,
		schema:  schemaGPT,
	})
}

// ProcessComplete runs OCR and GPT server-side in one call.
func (c *Client) ProcessComplete(ctx context.Context, in OCRRequest) *model.APIResponse[model.CompleteResult] {
	r, err := in.toRequest("/process/complete", schemaComplete)
	if err != nil {
		return model.Failure[model.CompleteResult](err.Error(), err)
	}
	return call[model.CompleteResult](ctx, c, "process.complete", r)
}

// GetTemplates lists templates, optionally filtered by category.
func (c *Client) GetTemplates(ctx context.Context, category string) *model.APIResponse[[]model.Template] {
	var q url.Values
	if category != "" {
		q = url.Values{"category": {category}}
	}
	return call[[]model.Template](ctx, c, "templates.list", request{
		method: http.MethodGet,
		path:   "/templates",
		query:  q,
		schema: schemaTemplates,
	})
}

func (c *Client) GetTemplate(ctx context.Context, id string) *model.APIResponse[model.Template] {
	return call[model.Template](ctx, c, "templates.get", request{
		method: http.MethodGet,
		path:   "/templates/" + url.PathEscape(id),
		schema: schemaTemplate,
	})
}

func (c *Client) GetProcessingHistory(ctx context.Context, q HistoryQuery) *model.APIResponse[model.HistoryPage] {
	return call[model.HistoryPage](ctx, c, "history.list", request{
		method: http.MethodGet,
		path:   "/history",
		query:  q.values(),
		schema: schemaHistory,
	})
}

func (c *Client) SaveProcessingResult(ctx context.Context, rec model.ProcessingRecord) *model.APIResponse[model.ProcessingRecord] {
	return call[model.ProcessingRecord](ctx, c, "results.save", request{
		method: http.MethodPost,
		path:   "/results/save",
		body:   rec,
		schema: schemaRecord,
	})
}

func (c *Client) GetProcessingResult(ctx context.Context, id string) *model.APIResponse[model.ProcessingRecord] {
	return call[model.ProcessingRecord](ctx, c, "results.get", request{
		method: http.MethodGet,
		path:   "/results/" + url.PathEscape(id),
		schema: schemaRecord,
	})
}

func (c *Client) GetUserProfile(ctx context.Context) *model.APIResponse[model.User] {
	return call[model.User](ctx, c, "user.profile", request{
		method: http.MethodGet,
		path:   "/user/profile",
		schema: schemaUser,
	})
}

func (c *Client) GetUsageStats(ctx context.Context) *model.APIResponse[model.UsageStats] {
	return call[model.UsageStats](ctx, c, "user.usage_stats", request{
		method: http.MethodGet,
		path:   "/user/usage-stats",
		schema: schemaUsage,
	})
}

// TestConnection hits the health endpoint.
func (c *Client) TestConnection(ctx context.Context) *model.APIResponse[model.HealthStatus] {
	return call[model.HealthStatus](ctx, c, "health", request{
		method: http.MethodGet,
		path:   "/health",
		schema: schemaHealth,
	})
}

func (c *Client) GetSystemInfo(ctx context.Context) *model.APIResponse[model.SystemInfo] {
	return call[model.SystemInfo](ctx, c, "system.info", request{
		method: http.MethodGet,
		path:   "/system/info",
		schema: schemaSystem,
	})
}

// Credentials is the login and signup body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) *model.APIResponse[model.AuthResult] {
	return call[model.AuthResult](ctx, c, "auth.login", request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   Credentials{Email: email, Password: password},
		schema: schemaAuth,
	})
}

func (c *Client) Signup(ctx context.Context, email, password, name string) *model.APIResponse[model.AuthResult] {
	return call[model.AuthResult](ctx, c, "auth.signup", request{
		method: http.MethodPost,
		path:   "/auth/signup",
		body:   Credentials{Email: email, Password: password, Name: name},
		schema: schemaAuth,
	})
}

func (c *Client) Logout(ctx context.Context) *model.APIResponse[json.RawMessage] {
	return call[json.RawMessage](ctx, c, "auth.logout", request{
		method: http.MethodPost,
		path:   "/auth/logout",
	})
}

// VerifyToken checks the current bearer token and returns its user.
func (c *Client) VerifyToken(ctx context.Context) *model.APIResponse[model.User] {
	return call[model.User](ctx, c, "auth.verify", request{
		method: http.MethodGet,
		path:   "/auth/verify",
		schema: schemaUser,
	})
}
