package rest

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rtbo/scull/pkg/storage/device"
)

// handleDump serves GET /v1/devices/dump: the plain-text state
// listing in the format the original driver exposed through /proc.
func (s *Service) handleDump(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodGet) {
		return
	}

	infos, err := s.eng.DumpAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	for _, info := range infos {
		writeDeviceDump(w, info)
	}
}

func writeDeviceDump(w io.Writer, info device.Info) {
	fmt.Fprintf(w, "Device %d: %d items (qset=%d, quantum=%d), size = %d\n",
		info.ID, len(info.Segments), info.QSet, info.Quantum, info.Size)

	for _, seg := range info.Segments {
		slots := seg.SlotsRef
		if slots == "" {
			slots = "0x0"
		}

		fmt.Fprintf(w, "  item at %s, qset at %s\n", seg.Ref, slots)

		for _, q := range seg.Quanta {
			fmt.Fprintf(w, "    %4d: %s\n", q.Slot, q.Ref)
		}
	}
}
