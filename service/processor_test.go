package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aki307/frext/model"
)

func TestProcessorOCR(t *testing.T) {
	p := NewProcessor(0, NewCatalog())
	ctx := context.Background()

	res, err := p.OCR(ctx, OCRInput{FileName: "inv.png", TemplateID: "invoice"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(res.ExtractedText, "請求書") || !strings.Contains(res.ExtractedText, "totalAmount") {
		t.Errorf("Unexpected text %q", res.ExtractedText)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Errorf("Expected confidence in (0,1], got %f", res.Confidence)
	}

	res, err = p.OCR(ctx, OCRInput{FileName: "scan.png", Options: &model.ProcessingOptions{Language: "en"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.ExtractedText != "Text extracted from scan.png" {
		t.Errorf("Unexpected text %q", res.ExtractedText)
	}
}

func TestProcessorRejectsTemplates(t *testing.T) {
	p := NewProcessor(0, NewCatalog())
	ctx := context.Background()

	if _, err := p.OCR(ctx, OCRInput{TemplateID: "missing"}); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := p.GPT(ctx, "text", "handwritten_note"); !errors.Is(err, ErrTemplateInactive) {
		t.Errorf("Expected ErrTemplateInactive, got %v", err)
	}
	if _, err := p.GPT(ctx, "  ", ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
}

func TestProcessorGPT(t *testing.T) {
	p := NewProcessor(0, NewCatalog())

	res, err := p.GPT(context.Background(), "領収書\nstore: サンプル", "receipt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Categories) != 2 || res.Categories[0] != "business" || res.Categories[1] != "receipt" {
		t.Errorf("Unexpected categories %v", res.Categories)
	}
	if res.ExtractedData["totalAmount"] != "12,800円" {
		t.Errorf("Unexpected extracted data %v", res.ExtractedData)
	}

	plain, err := p.GPT(context.Background(), strings.Repeat("あ", 60), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasSuffix(plain.Summary, "…") {
		t.Errorf("Expected truncated summary, got %q", plain.Summary)
	}
}

func TestProcessorDelayHonorsContext(t *testing.T) {
	p := NewProcessor(time.Hour, NewCatalog())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.OCR(ctx, OCRInput{FileName: "slow.png"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Expected processing to stop at the deadline")
	}
}
