package rest

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rtbo/scull/pkg/services/session"
	"go.uber.org/zap"
)

type openRequest struct {
	Device int    `json:"device"`
	Mode   string `json:"mode"`
}

type openResponse struct {
	Token  string `json:"token"`
	Device int    `json:"device"`
	Mode   string `json:"mode"`
}

type seekRequest struct {
	Offset int64  `json:"offset"`
	Whence string `json:"whence"`
}

type seekResponse struct {
	Offset uint64 `json:"offset"`
}

// handleSessions serves POST /v1/sessions.
func (s *Service) handleSessions(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}

	var req openRequest
	if err := readJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "invalid body: " + err.Error()})
		return
	}

	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: err.Error()})
		return
	}

	ses, err := s.sessions.Open(r.Context(), req.Device, mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// a write-only open drops the device content
	if mode == session.ModeWriteOnly {
		s.emitTrim(req.Device)
	}

	s.writeJSON(w, http.StatusOK, openResponse{
		Token:  ses.Token(),
		Device: ses.Device(),
		Mode:   ses.Mode().String(),
	})
}

// handleSessionVerbs routes requests under /v1/sessions/.
func (s *Service) handleSessionVerbs(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/sessions/"), "/")

	token := parts[0]
	if token == "" {
		http.NotFound(w, r)
		return
	}

	switch len(parts) {
	case 1:
		if !s.allow(w, r, http.MethodDelete) {
			return
		}

		if err := s.sessions.Release(token); err != nil {
			s.writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	case 2:
		if !s.allow(w, r, http.MethodPost) {
			return
		}

		switch parts[1] {
		case "read":
			s.sessionRead(w, r, token)
		case "write":
			s.sessionWrite(w, r, token)
		case "seek":
			s.sessionSeek(w, r, token)
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

// sessionRead transfers up to ?count bytes from the session cursor.
// End-of-data and holes surface as 204; a failure mid-transfer still
// delivers the collected prefix, with the failure in a header.
func (s *Service) sessionRead(w http.ResponseWriter, r *http.Request, token string) {
	count, err := strconv.ParseUint(r.URL.Query().Get("count"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "invalid count: " + err.Error()})
		return
	}

	data, err := s.sessions.Read(r.Context(), token, count)
	if err != nil && len(data) == 0 {
		s.writeError(w, err)
		return
	}

	if err != nil {
		s.log.Debug("session read cut short",
			zap.String("token", token),
			zap.Int("transferred", len(data)),
			zap.Error(err),
		)

		w.Header().Set(ErrorHeader, err.Error())
	}

	if ses, err := s.sessions.Get(token); err == nil {
		w.Header().Set(OffsetHeader, strconv.FormatUint(ses.Cursor(), 10))
	}

	if len(data) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err := w.Write(data); err != nil {
		s.log.Debug("could not write response body", zap.Error(err))
	}
}

// sessionWrite stores the request body at the session cursor. On a
// failure mid-transfer the response still reports the bytes that
// made it in, so the client can resume.
func (s *Service) sessionWrite(w http.ResponseWriter, r *http.Request, token string) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "could not read body: " + err.Error()})
		return
	}

	n, werr := s.sessions.Write(r.Context(), token, data)

	var off uint64
	if ses, err := s.sessions.Get(token); err == nil {
		off = ses.Cursor()

		if n > 0 {
			s.emitWrite(r, ses.Device(), off-uint64(n), n)
		}
	}

	if werr != nil {
		s.writeJSON(w, statusOf(werr), writePayload{
			Written: n,
			Offset:  off,
			Error:   werr.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, writePayload{
		Written: n,
		Offset:  off,
	})
}

// sessionSeek repositions the session cursor.
func (s *Service) sessionSeek(w http.ResponseWriter, r *http.Request, token string) {
	var req seekRequest
	if err := readJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "invalid body: " + err.Error()})
		return
	}

	whence, err := parseWhence(req.Whence)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: err.Error()})
		return
	}

	off, err := s.sessions.Seek(r.Context(), token, req.Offset, whence)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, seekResponse{Offset: off})
}

func parseWhence(s string) (int, error) {
	switch s {
	case "set", "":
		return io.SeekStart, nil
	case "cur":
		return io.SeekCurrent, nil
	case "end":
		return io.SeekEnd, nil
	default:
		return 0, fmt.Errorf("unsupported whence %q", s)
	}
}
