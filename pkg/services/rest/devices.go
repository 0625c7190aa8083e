package rest

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rtbo/scull/pkg/storage/engine"
	"go.uber.org/zap"
)

// handleDevices serves GET /v1/devices.
func (s *Service) handleDevices(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodGet) {
		return
	}

	infos, err := s.eng.DumpAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, infos)
}

// handleDeviceVerbs routes requests under /v1/devices/.
func (s *Service) handleDeviceVerbs(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/devices/")

	if rest == "dump" {
		s.handleDump(w, r)
		return
	}

	parts := strings.Split(rest, "/")

	dev, err := strconv.Atoi(parts[0])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch len(parts) {
	case 1:
		if !s.allow(w, r, http.MethodGet) {
			return
		}

		info, err := s.eng.DumpInfo(r.Context(), dev)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, info)
	case 2:
		switch parts[1] {
		case "data":
			switch r.Method {
			case http.MethodGet:
				s.deviceRead(w, r, dev)
			case http.MethodPut:
				s.deviceWrite(w, r, dev)
			default:
				w.Header().Set("Allow", http.MethodGet+", "+http.MethodPut)
				s.writeJSON(w, http.StatusMethodNotAllowed, errPayload{Error: "method not allowed"})
			}
		case "trim":
			s.deviceTrim(w, r, dev)
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

// deviceRead serves the stateless ranged read. The per-quantum
// engine calls are looped until ?count bytes are collected or the
// transfer hits end-of-data or a hole.
func (s *Service) deviceRead(w http.ResponseWriter, r *http.Request, dev int) {
	q := r.URL.Query()

	count, err := strconv.ParseUint(q.Get("count"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "invalid count: " + err.Error()})
		return
	}

	off, err := queryOffset(q.Get("offset"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "invalid offset: " + err.Error()})
		return
	}

	var out []byte

	for uint64(len(out)) < count {
		var prm engine.ReadPrm
		prm.SetDevice(dev)
		prm.SetRange(off, count-uint64(len(out)))

		res, rerr := s.eng.Read(r.Context(), prm)
		if rerr != nil {
			if len(out) == 0 {
				s.writeError(w, rerr)
				return
			}

			s.log.Debug("device read cut short",
				zap.Int("device", dev),
				zap.Int("transferred", len(out)),
				zap.Error(rerr),
			)

			w.Header().Set(ErrorHeader, rerr.Error())

			break
		}

		if len(res.Data()) == 0 {
			break
		}

		out = append(out, res.Data()...)
		off = res.NewOffset()
	}

	if len(out) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set(OffsetHeader, strconv.FormatUint(off, 10))
	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err := w.Write(out); err != nil {
		s.log.Debug("could not write response body", zap.Error(err))
	}
}

// deviceWrite serves the stateless ranged write of the request body
// at ?offset.
func (s *Service) deviceWrite(w http.ResponseWriter, r *http.Request, dev int) {
	off, err := queryOffset(r.URL.Query().Get("offset"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "invalid offset: " + err.Error()})
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errPayload{Error: "could not read body: " + err.Error()})
		return
	}

	start := off

	var written int

	for written < len(data) {
		var prm engine.WritePrm
		prm.SetDevice(dev)
		prm.SetOffset(off)
		prm.SetData(data[written:])

		res, werr := s.eng.Write(r.Context(), prm)
		if werr != nil {
			if written > 0 {
				s.emitWrite(r, dev, start, written)
			}

			s.writeJSON(w, statusOf(werr), writePayload{
				Written: written,
				Offset:  off,
				Error:   werr.Error(),
			})
			return
		}

		written += res.Written()
		off = res.NewOffset()
	}

	if written > 0 {
		s.emitWrite(r, dev, start, written)
	}

	s.writeJSON(w, http.StatusOK, writePayload{
		Written: written,
		Offset:  off,
	})
}

// deviceTrim serves POST /v1/devices/{id}/trim: the truncating open
// of the original driver, dropping all device content.
func (s *Service) deviceTrim(w http.ResponseWriter, r *http.Request, dev int) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}

	var prm engine.OpenPrm
	prm.SetDevice(dev)
	prm.SetTruncate(true)

	if _, err := s.eng.Open(r.Context(), prm); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.eng.Release(dev); err != nil {
		s.writeError(w, err)
		return
	}

	s.emitTrim(dev)

	w.WriteHeader(http.StatusNoContent)
}

// queryOffset parses an optional offset query value, absent means 0.
func queryOffset(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.ParseUint(s, 10, 64)
}
