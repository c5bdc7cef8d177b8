package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	pngHead  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHead = []byte("\xff\xd8\xff\xe0\x00\x10JFIF")
	pdfHead  = []byte("%PDF-1.7\n")
	gifHead  = []byte("GIF89a\x01\x00")
	webpHead = []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1_234_567, "1.18 MB"},
		{10 * 1024 * 1024, "10 MB"},
		{15 * 1024 * 1024, "15 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.expected {
			t.Errorf("FormatFileSize(%d): expected %q, got %q", tt.bytes, tt.expected, got)
		}
	}
}

func TestValidateAllowedTypes(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		expected string
	}{
		{"scan.png", pngHead, "image/png"},
		{"scan.jpg", jpegHead, "image/jpeg"},
		{"scan.pdf", pdfHead, "application/pdf"},
		{"scan.gif", gifHead, "image/gif"},
		{"scan.webp", webpHead, "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.name, 2048, tt.head)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestValidateTooLarge(t *testing.T) {
	_, err := Validate("big.png", 15*1024*1024, pngHead)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "15 MB") {
		t.Errorf("Expected message to quote 15 MB, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "10 MB") {
		t.Errorf("Expected message to quote the limit, got %q", err.Error())
	}

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Name != "big.png" {
		t.Errorf("Expected ValidationError for big.png, got %#v", err)
	}
}

func TestValidateLimitBoundary(t *testing.T) {
	if _, err := Validate("edge.png", DefaultMaxSize, pngHead); err != nil {
		t.Errorf("Expected exactly 10 MB to pass, got %v", err)
	}
	if _, err := Validate("edge.png", DefaultMaxSize+1, pngHead); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected one byte over to fail, got %v", err)
	}

	small := Validator{MaxSize: 1024}
	if _, err := small.Validate("a.png", 2048, pngHead); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected custom limit to apply, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	if _, err := Validate("notes.txt", 100, []byte("hello world")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
	// extension does not matter, content does
	if _, err := Validate("fake.png", 100, []byte("<html><body>")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for disguised html, got %v", err)
	}
	if _, err := Validate("empty.png", 0, nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.pdf")
	if err := os.WriteFile(path, append(pdfHead, []byte("rest of document")...), 0o600); err != nil {
		t.Fatal(err)
	}

	f, contentType, err := Validator{}.Open(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer f.Close()

	if contentType != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", contentType)
	}
	buf := make([]byte, 4)
	if _, err := f.Read(buf); err != nil || string(buf) != "%PDF" {
		t.Errorf("Expected file rewound to start, got %q (%v)", buf, err)
	}

	if _, _, err := (Validator{}).Open(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}
