package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aki307/frext/model"
)

const (
	mockOCRConfidence = 0.95
	mockGPTConfidence = 0.92
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateInactive = errors.New("template is not active")
	ErrEmptyText        = errors.New("text is required")
)

// Processor fakes the OCR and GPT pipeline: it waits for the configured
// delay and answers with text derived from the chosen template.
type Processor struct {
	delay   time.Duration
	catalog *Catalog
}

func NewProcessor(delay time.Duration, catalog *Catalog) *Processor {
	return &Processor{delay: delay, catalog: catalog}
}

// OCRInput describes an uploaded image.
type OCRInput struct {
	FileName   string
	Size       int64
	TemplateID string
	Options    *model.ProcessingOptions
}

func (p *Processor) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Processor) template(id string) (model.Template, error) {
	if id == "" {
		return model.Template{}, nil
	}
	t, ok := p.catalog.Get(id)
	if !ok {
		return model.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if !t.IsActive {
		return model.Template{}, fmt.Errorf("%w: %s", ErrTemplateInactive, id)
	}
	return t, nil
}

func (p *Processor) OCR(ctx context.Context, in OCRInput) (*model.OCRResult, error) {
	tpl, err := p.template(in.TemplateID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	english := in.Options != nil && strings.EqualFold(in.Options.Language, "en")
	var b strings.Builder
	switch {
	case tpl.ID == "":
		if english {
			fmt.Fprintf(&b, "Text extracted from %s", in.FileName)
		} else {
			fmt.Fprintf(&b, "%s から抽出されたテキスト", in.FileName)
		}
	default:
		b.WriteString(tpl.Name)
		for _, f := range tpl.ExpectedFields {
			fmt.Fprintf(&b, "\n%s: %s", f, sampleValue(f))
		}
	}

	return &model.OCRResult{
		ExtractedText:  b.String(),
		Confidence:     mockOCRConfidence,
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

func (p *Processor) GPT(ctx context.Context, text, templateID string) (*model.GPTResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	tpl, err := p.template(templateID)
	if err != nil {
		return nil, err
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	res := &model.GPTResult{
		Categories:    []string{"document"},
		ExtractedData: map[string]any{},
		Confidence:    mockGPTConfidence,
	}
	first, _, _ := strings.Cut(text, "\n")
	if tpl.ID == "" {
		res.Summary = fmt.Sprintf("文書の要約: %s", truncate(first, 40))
		return res, nil
	}

	res.Summary = fmt.Sprintf("%sとして解析しました（%d項目）", tpl.Name, len(tpl.ExpectedFields))
	res.Categories = []string{tpl.Category, tpl.ID}
	for _, f := range tpl.ExpectedFields {
		res.ExtractedData[f] = sampleValue(f)
	}
	return res, nil
}

func sampleValue(field string) string {
	switch field {
	case "totalAmount":
		return "12,800円"
	case "taxAmount":
		return "1,163円"
	case "date", "dueDate", "birthDate":
		return "2024-04-30"
	case "email":
		return "taro@example.com"
	case "phone":
		return "03-1234-5678"
	case "name":
		return "山田 太郎"
	default:
		return "サンプル"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
