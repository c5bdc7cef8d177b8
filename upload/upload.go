// Package upload checks a file locally before it is sent for processing.
package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const DefaultMaxSize int64 = 10 * 1024 * 1024

var (
	ErrEmpty       = errors.New("file is empty")
	ErrTooLarge    = errors.New("file too large")
	ErrUnsupported = errors.New("unsupported file type")
)

// AllowedTypes are the content types the OCR endpoint accepts.
var AllowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"application/pdf": true,
}

// ValidationError carries a user-facing message for a rejected file.
type ValidationError struct {
	Name    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with 1024-based units and at most two
// decimals: 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	return s + " " + sizeUnits[i]
}

type Validator struct {
	MaxSize int64
}

func (v Validator) maxSize() int64 {
	if v.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return v.MaxSize
}

// Validate checks size and sniffed content type. head should hold the
// first 512 bytes of the file.
func (v Validator) Validate(name string, size int64, head []byte) (string, error) {
	if size == 0 {
		return "", &ValidationError{Name: name, Message: "ファイルが空です。", Err: ErrEmpty}
	}
	if size > v.maxSize() {
		return "", &ValidationError{
			Name: name,
			Message: fmt.Sprintf("ファイルサイズが大きすぎます（%s）。%s以下のファイルを選択してください。",
				FormatFileSize(size), FormatFileSize(v.maxSize())),
			Err: ErrTooLarge,
		}
	}

	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !AllowedTypes[contentType] {
		return "", &ValidationError{
			Name:    name,
			Message: fmt.Sprintf("対応していないファイル形式です（%s）。JPEG、PNG、WebP、GIF、PDFを選択してください。", filepath.Ext(name)),
			Err:     ErrUnsupported,
		}
	}
	return contentType, nil
}

// Validate uses the default size limit.
func Validate(name string, size int64, head []byte) (string, error) {
	return Validator{}.Validate(name, size, head)
}

// Open validates the file at path and returns it positioned at the start.
func (v Validator) Open(path string) (*os.File, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("stat %s: %w", path, err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	contentType, err := v.Validate(filepath.Base(path), info.Size(), head[:n])
	if err != nil {
		f.Close()
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("seek %s: %w", path, err)
	}
	return f, contentType, nil
}
