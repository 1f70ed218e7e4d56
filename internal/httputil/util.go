// Package httputil writes the JSON error responses of the HTTP handlers.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-sod/boss/internal/logging"
)

var bufPool = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// WriteJSON encodes v into a pooled buffer and writes it with status.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// DecodeErr answers a request whose JSON body could not be decoded.
func DecodeErr(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := decodeStatus(err)
	if status == http.StatusInternalServerError {
		RespInternalError(ctx, w, `{"error": "failed to decode json %v"}`, err)
		return
	}
	logging.FromContext(ctx).Debug(msg)
	RespJSON(w, status, "%s", msg)
}

func decodeStatus(err error) (int, string) {
	var (
		syntaxErr      *json.SyntaxError
		unmarshalError *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return http.StatusBadRequest, fmt.Sprintf(`{"error": "malformed json at position %v"}`, syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, `{"error": "malformed json"}`
	case errors.As(err, &unmarshalError):
		return http.StatusBadRequest, fmt.Sprintf(`{"error": "invalid value %v at position %v"}`, unmarshalError.Field, unmarshalError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return http.StatusBadRequest, fmt.Sprintf(`{"error": "unknown field %s"}`, strings.TrimPrefix(err.Error(), "json: unknown field "))
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, `{"error": "body must not be empty"}`
	case err.Error() == "http: request body too large":
		return http.StatusRequestEntityTooLarge, `{"error": "body too large"}`
	default:
		return http.StatusInternalServerError, ""
	}
}

func RespBadRequest(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	RespJSON(w, http.StatusBadRequest, "%s", msg)
}

func RespInternalError(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	logging.FromContext(ctx).Errorf(format, args...)
	RespJSON(w, http.StatusInternalServerError, `{"error": "internal error"}`)
}

// RespJSON writes a formatted JSON body with the given status.
func RespJSON(w http.ResponseWriter, status int, format string, args ...interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, format, args...)
}
