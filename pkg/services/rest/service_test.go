package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rtbo/scull/pkg/services/notificator"
	"github.com/rtbo/scull/pkg/services/session"
	"github.com/rtbo/scull/pkg/storage/device"
	"github.com/rtbo/scull/pkg/storage/engine"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordEmitter struct {
	mtx    sync.Mutex
	events []notificator.Event
}

func (e *recordEmitter) Notify(ev notificator.Event) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.events = append(e.events, ev)
}

func (e *recordEmitter) list() []notificator.Event {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return append([]notificator.Event(nil), e.events...)
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	eng := engine.New(
		engine.WithLogger(zaptest.NewLogger(t)),
		engine.WithDeviceCount(2),
		engine.WithDeviceOptions(
			device.WithQuantum(4),
			device.WithQSet(2),
		),
	)

	tokens, err := session.NewTokenStore(eng)
	require.NoError(t, err)

	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)

	srv := httptest.NewServer(New(eng, tokens, opts...).Handler())
	t.Cleanup(srv.Close)

	return srv
}

func doReq(t *testing.T, srv *httptest.Server, method, path string, body []byte) *http.Response {
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	return resp
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body, out interface{}) int {
	var payload []byte

	if body != nil {
		var err error

		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	resp := doReq(t, srv, method, path, payload)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func readBody(t *testing.T, resp *http.Response) []byte {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return b
}

func openSession(t *testing.T, srv *httptest.Server, dev int, mode string) string {
	var res openResponse

	code := doJSON(t, srv, http.MethodPost, "/v1/sessions",
		openRequest{Device: dev, Mode: mode}, &res)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, res.Token)
	require.Equal(t, dev, res.Device)

	return res.Token
}

func TestService_SessionFlow(t *testing.T) {
	srv := newTestServer(t)

	token := openSession(t, srv, 0, "rw")

	// the 10-byte payload takes three per-quantum engine calls, yet
	// the transfer is observably one contiguous operation
	var wres writePayload

	resp := doReq(t, srv, http.MethodPost, "/v1/sessions/"+token+"/write", []byte("ABCDEFGHIJ"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wres))
	resp.Body.Close()
	require.Equal(t, 10, wres.Written)
	require.EqualValues(t, 10, wres.Offset)

	// cursor sits at the end, the next read hits end-of-data
	resp = doReq(t, srv, http.MethodPost, "/v1/sessions/"+token+"/read?count=4", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// rewind and read everything back
	var sres seekResponse

	code := doJSON(t, srv, http.MethodPost, "/v1/sessions/"+token+"/seek",
		seekRequest{Offset: 0, Whence: "set"}, &sres)
	require.Equal(t, http.StatusOK, code)
	require.Zero(t, sres.Offset)

	resp = doReq(t, srv, http.MethodPost, "/v1/sessions/"+token+"/read?count=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "10", resp.Header.Get(OffsetHeader))
	require.Equal(t, []byte("ABCDEFGHIJ"), readBody(t, resp))

	// interior range, crossing a quantum boundary
	code = doJSON(t, srv, http.MethodPost, "/v1/sessions/"+token+"/seek",
		seekRequest{Offset: 2, Whence: "set"}, &sres)
	require.Equal(t, http.StatusOK, code)

	resp = doReq(t, srv, http.MethodPost, "/v1/sessions/"+token+"/read?count=4", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []byte("CDEF"), readBody(t, resp))

	// seek relative to the end resolves against the device size
	code = doJSON(t, srv, http.MethodPost, "/v1/sessions/"+token+"/seek",
		seekRequest{Offset: -4, Whence: "end"}, &sres)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 6, sres.Offset)

	resp = doReq(t, srv, http.MethodDelete, "/v1/sessions/"+token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doReq(t, srv, http.MethodDelete, "/v1/sessions/"+token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestService_SessionErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("unknown device", func(t *testing.T) {
		code := doJSON(t, srv, http.MethodPost, "/v1/sessions",
			openRequest{Device: 9}, nil)
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("bad mode", func(t *testing.T) {
		code := doJSON(t, srv, http.MethodPost, "/v1/sessions",
			openRequest{Device: 0, Mode: "rwx"}, nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown token", func(t *testing.T) {
		resp := doReq(t, srv, http.MethodPost, "/v1/sessions/nosuch/read?count=1", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing count", func(t *testing.T) {
		token := openSession(t, srv, 0, "rw")

		resp := doReq(t, srv, http.MethodPost, "/v1/sessions/"+token+"/read", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad whence", func(t *testing.T) {
		token := openSession(t, srv, 0, "rw")

		code := doJSON(t, srv, http.MethodPost, "/v1/sessions/"+token+"/seek",
			seekRequest{Offset: 0, Whence: "around"}, nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("negative position", func(t *testing.T) {
		token := openSession(t, srv, 0, "rw")

		code := doJSON(t, srv, http.MethodPost, "/v1/sessions/"+token+"/seek",
			seekRequest{Offset: -1, Whence: "set"}, nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("mode violations", func(t *testing.T) {
		ro := openSession(t, srv, 0, "ro")

		resp := doReq(t, srv, http.MethodPost, "/v1/sessions/"+ro+"/write", []byte("A"))
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		wo := openSession(t, srv, 1, "wo")

		resp = doReq(t, srv, http.MethodPost, "/v1/sessions/"+wo+"/read?count=1", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := doReq(t, srv, http.MethodGet, "/v1/sessions", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestService_DeviceData(t *testing.T) {
	srv := newTestServer(t)

	resp := doReq(t, srv, http.MethodPut, "/v1/devices/1/data?offset=2", []byte("ABCDEFGH"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var wres writePayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wres))
	resp.Body.Close()
	require.Equal(t, 8, wres.Written)
	require.EqualValues(t, 10, wres.Offset)

	resp = doReq(t, srv, http.MethodGet, "/v1/devices/1/data?offset=2&count=8", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []byte("ABCDEFGH"), readBody(t, resp))

	// listing sees the size, the untouched device stays empty
	var infos []device.Info

	code := doJSON(t, srv, http.MethodGet, "/v1/devices", nil, &infos)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, infos, 2)
	require.Zero(t, infos[0].Size)
	require.EqualValues(t, 10, infos[1].Size)

	var info device.Info

	code = doJSON(t, srv, http.MethodGet, "/v1/devices/1", nil, &info)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 10, info.Size)
	require.Len(t, info.Segments, 2)

	resp = doReq(t, srv, http.MethodPost, "/v1/devices/1/trim", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	code = doJSON(t, srv, http.MethodGet, "/v1/devices/1", nil, &info)
	require.Equal(t, http.StatusOK, code)
	require.Zero(t, info.Size)
	require.Empty(t, info.Segments)

	t.Run("hole", func(t *testing.T) {
		// positions 6-7 land in the second slot, leaving the first
		// slot of the segment untouched
		resp := doReq(t, srv, http.MethodPut, "/v1/devices/0/data?offset=6", []byte("XY"))
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doReq(t, srv, http.MethodGet, "/v1/devices/0/data?offset=0&count=2", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doReq(t, srv, http.MethodGet, "/v1/devices/0/data?offset=6&count=2", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, []byte("XY"), readBody(t, resp))
	})

	t.Run("resolution failures", func(t *testing.T) {
		for _, path := range []string{
			"/v1/devices/5",
			"/v1/devices/x",
			"/v1/devices/1/nosuch",
		} {
			resp := doReq(t, srv, http.MethodGet, path, nil)
			resp.Body.Close()
			require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		}
	})
}

func TestService_Dump(t *testing.T) {
	srv := newTestServer(t)

	resp := doReq(t, srv, http.MethodPut, "/v1/devices/0/data", []byte("ABCDEFGHIJ"))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doReq(t, srv, http.MethodGet, "/v1/devices/dump", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	dump := string(readBody(t, resp))

	require.Contains(t, dump, "Device 0: 2 items (qset=2, quantum=4), size = 10")
	require.Contains(t, dump, "Device 1: 0 items (qset=2, quantum=4), size = 0")
	require.Contains(t, dump, "  item at 0x")
	require.Contains(t, dump, "qset at 0x")

	// quantum refs are listed for the final item only: one occupied
	// slot line in the whole dump
	require.Equal(t, 1, strings.Count(dump, ": 0x"))
}

func TestService_Events(t *testing.T) {
	rec := new(recordEmitter)
	srv := newTestServer(t, WithEventEmitter(rec))

	resp := doReq(t, srv, http.MethodPut, "/v1/devices/0/data", []byte("ABCDEFGH"))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doReq(t, srv, http.MethodPost, "/v1/devices/0/trim", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// write-only session open drops the device content as well
	openSession(t, srv, 1, "wo")

	events := rec.list()
	require.Len(t, events, 3)

	require.Equal(t, notificator.OpWrite, events[0].Op)
	require.Equal(t, 0, events[0].Device)
	require.Zero(t, events[0].Offset)
	require.Equal(t, 8, events[0].Count)
	require.EqualValues(t, 8, events[0].Size)

	require.Equal(t, notificator.OpTrim, events[1].Op)
	require.Equal(t, 0, events[1].Device)

	require.Equal(t, notificator.OpTrim, events[2].Op)
	require.Equal(t, 1, events[2].Device)
}

func TestService_NoMemory(t *testing.T) {
	eng := engine.New(
		engine.WithDeviceCount(1),
		engine.WithDeviceOptions(
			device.WithQuantum(4),
			device.WithQSet(2),
			// segment record, slot array and a single quantum fit
			// exactly, the second quantum does not
			device.WithMemoryLimit(100),
		),
	)

	tokens, err := session.NewTokenStore(eng)
	require.NoError(t, err)

	srv := httptest.NewServer(New(eng, tokens).Handler())
	t.Cleanup(srv.Close)

	resp := doReq(t, srv, http.MethodPut, "/v1/devices/0/data", []byte("ABCDEFGH"))
	require.Equal(t, http.StatusInsufficientStorage, resp.StatusCode)

	var wres writePayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wres))
	resp.Body.Close()

	// the first quantum made it in, the client can resume from there
	require.Equal(t, 4, wres.Written)
	require.EqualValues(t, 4, wres.Offset)
	require.NotEmpty(t, wres.Error)

	resp = doReq(t, srv, http.MethodGet, fmt.Sprintf("/v1/devices/0/data?offset=0&count=%d", wres.Written), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []byte("ABCD"), readBody(t, resp))
}
