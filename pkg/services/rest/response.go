package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rtbo/scull/pkg/services/session"
	"github.com/rtbo/scull/pkg/storage/device"
	"github.com/rtbo/scull/pkg/storage/engine"
	"go.uber.org/zap"
)

// OffsetHeader carries the advanced session cursor or device offset
// of a transfer response.
const OffsetHeader = "X-Scull-Offset"

// ErrorHeader reports the failure that cut a transfer short when a
// partial body is still delivered.
const ErrorHeader = "X-Scull-Error"

// statusClientClosedRequest mirrors the de facto status for an
// aborted request; the standard library defines no constant for it.
const statusClientClosedRequest = 499

type errPayload struct {
	Error string `json:"error"`
}

type writePayload struct {
	Written int    `json:"written"`
	Offset  uint64 `json:"offset"`
	Error   string `json:"error,omitempty"`
}

// statusOf maps a service failure to the HTTP status reported to the
// client.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoDevice), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBadMode), errors.Is(err, session.ErrBadSeek):
		return http.StatusBadRequest
	case errors.Is(err, device.ErrNoMemory):
		return http.StatusInsufficientStorage
	case errors.Is(err, device.ErrFault):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("could not encode response", zap.Error(err))
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusOf(err), errPayload{Error: err.Error()})
}

// allow checks the request method and reports 405 itself when it
// does not match.
func (s *Service) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		s.writeJSON(w, http.StatusMethodNotAllowed, errPayload{Error: "method not allowed"})

		return false
	}

	return true
}

func readJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
