package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// User-facing messages for failures that carry no server text.
const (
	MsgTimeout         = "リクエストがタイムアウトしました。しばらくしてから再度お試しください。"
	MsgNetwork         = "ネットワークエラーが発生しました。サーバーに接続できません。"
	MsgInvalidResponse = "サーバーから不正なレスポンスを受信しました。"
	MsgRequestFailed   = "リクエストに失敗しました。"
)

// Kind classifies why a call failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetwork
	KindHTTP
	KindAPI // 2xx envelope with success=false
	KindInvalidResponse
)

var (
	ErrTimeout         = errors.New("request timed out")
	ErrNetwork         = errors.New("network failure")
	ErrHTTPStatus      = errors.New("http error status")
	ErrRejected        = errors.New("request rejected by server")
	ErrInvalidResponse = errors.New("invalid response")
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindAPI:
		return "api"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindNetwork:
		return ErrNetwork
	case KindHTTP:
		return ErrHTTPStatus
	case KindAPI:
		return ErrRejected
	case KindInvalidResponse:
		return ErrInvalidResponse
	default:
		return nil
	}
}

// Error is the typed cause attached to failed envelopes.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindHTTP && e.Kind != KindAPI {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on the kind sentinels.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// KindOf returns the failure kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var networkPatterns = []string{
	"connection refused",
	"no such host",
	"network is unreachable",
	"connection reset",
	"broken pipe",
}

// classify turns a transport error into a typed Error with a display message.
func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &Error{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	}
	if isNetwork(err) {
		return &Error{Kind: KindNetwork, Message: MsgNetwork, Err: err}
	}
	msg := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Err.Error()
	}
	if msg == "" {
		msg = MsgRequestFailed
	}
	return &Error{Kind: KindUnknown, Message: msg, Err: err}
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func isNetwork(err error) bool {
	// the peer hung up mid-exchange
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func httpStatusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}
