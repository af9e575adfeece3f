package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxResponseBytes = 4 << 20

var (
	// ErrTransport - сеть недоступна или внешний API ответил не 2xx.
	ErrTransport = errors.New("upstream transport failure")
	// ErrRejected - внешний API обработал запрос, но отказал (success:false / {"error"}).
	ErrRejected = errors.New("upstream rejected the request")
)

// StatusError is returned for non-2xx responses. It always matches ErrTransport.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream responded %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// RejectedError carries the reason reported by the upstream application.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// HeaderOverrideTransport decorates a RoundTripper with a request hook.
type HeaderOverrideTransport struct {
	Request func(req *http.Request)

	wrappedRT http.RoundTripper
}

func NewHeaderOverrideTransport(wrapped http.RoundTripper, hook func(req *http.Request)) *HeaderOverrideTransport {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &HeaderOverrideTransport{Request: hook, wrappedRT: wrapped}
}

// RoundTrip applies the Request hook on a clone, the caller's request is left untouched.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}
	return t.wrappedRT.RoundTrip(req2)
}

// decodeBody reads a bounded JSON body into dst.
func decodeBody(resp *http.Response, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed response body: %v", ErrTransport, err)
	}
	return nil
}

// statusError builds a StatusError, keeping the upstream {"error"} text when present.
func statusError(resp *http.Response) error {
	var env struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = json.Unmarshal(body, &env)
	return &StatusError{StatusCode: resp.StatusCode, Message: env.Error}
}
