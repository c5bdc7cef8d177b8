package model

import (
	"errors"
	"time"
)

// OCRResult is the text extracted from an uploaded image
type OCRResult struct {
	ExtractedText  string  `json:"extractedText"`
	Confidence     float64 `json:"confidence"`     // 0..1
	ProcessingTime float64 `json:"processingTime"` // seconds
}

// GPTResult is the summary and structured data produced from OCR text
type GPTResult struct {
	Summary       string         `json:"summary"`
	Categories    []string       `json:"categories"`
	ExtractedData map[string]any `json:"extractedData"`
	Confidence    float64        `json:"confidence"`
}

// CompleteResult is returned by the combined OCR+GPT endpoint
type CompleteResult struct {
	OCRResult *OCRResult `json:"ocrResult"`
	GPTResult *GPTResult `json:"gptResult"`
}

// Template describes the fields a document type is expected to carry
type Template struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	ExpectedFields []string `json:"expectedFields"`
	UsageCount     int      `json:"usageCount"`
	IsActive       bool     `json:"isActive"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProcessingOptions travels as the JSON-encoded "options" form field
type ProcessingOptions struct {
	Language      string `json:"language,omitempty"`
	EnhanceImage  bool   `json:"enhanceImage,omitempty"`
	ExtractTables bool   `json:"extractTables,omitempty"`
}

// Processing status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ProcessingRecord is one entry of the processing history
type ProcessingRecord struct {
	ID         string     `json:"id"`
	FileName   string     `json:"fileName"`
	TemplateID string     `json:"templateId,omitempty"`
	Status     string     `json:"status"`
	OCRResult  *OCRResult `json:"ocrResult,omitempty"`
	GPTResult  *GPTResult `json:"gptResult,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type HistoryPage struct {
	Items []ProcessingRecord `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type UsageStats struct {
	TotalProcessed    int     `json:"totalProcessed"`
	MonthlyProcessed  int     `json:"monthlyProcessed"`
	RemainingQuota    int     `json:"remainingQuota"`
	AverageConfidence float64 `json:"averageConfidence"`
}

type SystemInfo struct {
	Version   string `json:"version"`
	OCREngine string `json:"ocrEngine"`
	GPTModel  string `json:"gptModel"`
	Status    string `json:"status"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AuthResult is returned by login and signup
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIResponse is the uniform envelope of every backend call. Success and Data
// are not cross-checked: a successful response may carry no data.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	// Err is the typed cause of a failure; it is never serialized.
	Err error `json:"-"`
}

func OK[T any](data *T, message string) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Data: data, Message: message}
}

func Failure[T any](msg string, cause error) *APIResponse[T] {
	return &APIResponse[T]{Success: false, Error: msg, Err: cause}
}

// Cause returns nil on success and a non-nil error otherwise.
func (r *APIResponse[T]) Cause() error {
	if r == nil {
		return errors.New("no response")
	}
	if r.Success {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	if r.Error != "" {
		return errors.New(r.Error)
	}
	return errors.New("request failed")
}
