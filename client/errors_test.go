package client

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"peer closed", &url.Error{Op: "Get", URL: "http://h", Err: io.EOF}, KindNetwork},
		{"truncated", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), KindNetwork},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), KindNetwork},
		{"eof in text only", errors.New("gzip: invalid header, unexpected eof in stream"), KindUnknown},
		{"geofence", errors.New("geofence rejected request"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err).Kind; got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
