package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rtbo/scull/pkg/services/rest"
	"github.com/rtbo/scull/pkg/storage/device"
)

// ListDevicesPrm groups parameters of ListDevices operation.
type ListDevicesPrm struct {
	commonPrm
}

// ListDevicesRes groups resulting values of ListDevices operation.
type ListDevicesRes struct {
	infos []device.Info
}

// Devices returns the state summaries of the node's device table.
func (x ListDevicesRes) Devices() []device.Info {
	return x.infos
}

// ListDevices requests the state of every device of the node.
//
// Returns any error prevented the operation from completing correctly in error return.
func ListDevices(ctx context.Context, prm ListDevicesPrm) (res ListDevicesRes, err error) {
	err = prm.cli.getJSON(ctx, "/devices", nil, &res.infos)

	return
}

// GetDevicePrm groups parameters of GetDevice operation.
type GetDevicePrm struct {
	commonPrm
	devicePrm
}

// GetDeviceRes groups resulting values of GetDevice operation.
type GetDeviceRes struct {
	info device.Info
}

// Info returns the state summary of the device.
func (x GetDeviceRes) Info() device.Info {
	return x.info
}

// GetDevice requests the state of a single device.
//
// Returns any error prevented the operation from completing correctly in error return.
func GetDevice(ctx context.Context, prm GetDevicePrm) (res GetDeviceRes, err error) {
	err = prm.cli.getJSON(ctx, "/devices/"+strconv.Itoa(prm.dev), nil, &res.info)

	return
}

// DumpPrm groups parameters of Dump operation.
type DumpPrm struct {
	commonPrm
}

// DumpRes groups resulting values of Dump operation.
type DumpRes struct {
	text []byte
}

// Text returns the raw state listing.
func (x DumpRes) Text() []byte {
	return x.text
}

// Dump requests the textual state listing of the device table.
//
// Returns any error prevented the operation from completing correctly in error return.
func Dump(ctx context.Context, prm DumpPrm) (res DumpRes, err error) {
	req, err := prm.cli.newRequest(ctx, http.MethodGet, "/devices/dump", nil, nil)
	if err != nil {
		return
	}

	resp, err := prm.cli.do(req, http.StatusOK)
	if err != nil {
		return
	}

	defer resp.Body.Close()

	res.text, err = io.ReadAll(resp.Body)

	return
}

// ReadRangePrm groups parameters of ReadRange operation.
type ReadRangePrm struct {
	commonPrm
	devicePrm

	off   uint64
	count int
}

// SetOffset sets the device position to read from.
func (x *ReadRangePrm) SetOffset(off uint64) {
	x.off = off
}

// SetCount sets the number of bytes to read.
func (x *ReadRangePrm) SetCount(n int) {
	x.count = n
}

// ReadRangeRes groups resulting values of ReadRange operation.
type ReadRangeRes struct {
	data []byte

	off uint64
}

// Data returns the bytes read. A single transfer may return less than
// requested: it stops at the quantum boundary and at end of data, and
// returns nothing over a hole.
func (x ReadRangeRes) Data() []byte {
	return x.data
}

// Offset returns the device position following the bytes read.
func (x ReadRangeRes) Offset() uint64 {
	return x.off
}

// ReadRange reads a byte range of the device without a session.
//
// If the transfer broke partway, the collected prefix is returned
// along with the error.
func ReadRange(ctx context.Context, prm ReadRangePrm) (res ReadRangeRes, err error) {
	query := make(url.Values)
	query.Set("offset", strconv.FormatUint(prm.off, 10))
	query.Set("count", strconv.Itoa(prm.count))

	req, err := prm.cli.newRequest(ctx, http.MethodGet, "/devices/"+strconv.Itoa(prm.dev)+"/data", query, nil)
	if err != nil {
		return
	}

	resp, err := prm.cli.h.Do(req)
	if err != nil {
		return
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		// hole or end of data
		res.off = prm.off
		return
	default:
		err = decodeAPIError(resp)
		return
	}

	res.data, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	res.off = offsetFromHeader(resp, prm.off+uint64(len(res.data)))

	if reason := resp.Header.Get(rest.ErrorHeader); reason != "" {
		err = &APIError{
			Status: resp.StatusCode,
			Reason: reason,
		}
	}

	return
}

// WriteRangePrm groups parameters of WriteRange operation.
type WriteRangePrm struct {
	commonPrm
	devicePrm

	off uint64

	payload io.Reader
}

// SetOffset sets the device position to write at.
func (x *WriteRangePrm) SetOffset(off uint64) {
	x.off = off
}

// SetPayloadReader sets the reader of the bytes to write.
func (x *WriteRangePrm) SetPayloadReader(r io.Reader) {
	x.payload = r
}

// WriteRangeRes groups resulting values of WriteRange operation.
type WriteRangeRes struct {
	written int

	off uint64
}

// Written returns the number of bytes stored.
func (x WriteRangeRes) Written() int {
	return x.written
}

// Offset returns the device position following the bytes stored. A
// broken transfer can be resumed from it.
func (x WriteRangeRes) Offset() uint64 {
	return x.off
}

// WriteRange writes the payload to the device at the given position
// without a session.
//
// If the transfer broke partway, the progress made is returned along
// with the error.
func WriteRange(ctx context.Context, prm WriteRangePrm) (res WriteRangeRes, err error) {
	query := make(url.Values)
	query.Set("offset", strconv.FormatUint(prm.off, 10))

	req, err := prm.cli.newRequest(ctx, http.MethodPut, "/devices/"+strconv.Itoa(prm.dev)+"/data", query, prm.payload)
	if err != nil {
		return
	}

	return writeResult(prm.cli.h.Do(req))
}

// writeResult decodes the transfer report shared by the device and
// session write responses.
func writeResult(resp *http.Response, err error) (res WriteRangeRes, _ error) {
	if err != nil {
		return res, err
	}

	defer resp.Body.Close()

	var p struct {
		Written int    `json:"written"`
		Offset  uint64 `json:"offset"`
		Error   string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return res, err
	}

	res.written = p.Written
	res.off = p.Offset

	if resp.StatusCode != http.StatusOK {
		reason := p.Error
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}

		return res, &APIError{
			Status: resp.StatusCode,
			Reason: reason,
		}
	}

	return res, nil
}

// TrimDevicePrm groups parameters of TrimDevice operation.
type TrimDevicePrm struct {
	commonPrm
	devicePrm
}

// TrimDeviceRes groups resulting values of TrimDevice operation.
type TrimDeviceRes struct{}

// TrimDevice frees all data of the device and resets its geometry to
// the node defaults.
//
// Returns any error prevented the operation from completing correctly in error return.
func TrimDevice(ctx context.Context, prm TrimDevicePrm) (res TrimDeviceRes, err error) {
	req, err := prm.cli.newRequest(ctx, http.MethodPost, "/devices/"+strconv.Itoa(prm.dev)+"/trim", nil, nil)
	if err != nil {
		return
	}

	resp, err := prm.cli.do(req, http.StatusNoContent)
	if err != nil {
		return
	}

	resp.Body.Close()

	return
}

// OpenSessionPrm groups parameters of OpenSession operation.
type OpenSessionPrm struct {
	commonPrm
	devicePrm

	mode string
}

// SetMode sets the access mode to open the session with: "rw", "ro"
// or "wo". Empty mode opens a read-write session.
func (x *OpenSessionPrm) SetMode(mode string) {
	x.mode = mode
}

// OpenSessionRes groups resulting values of OpenSession operation.
type OpenSessionRes struct {
	token string
}

// Token returns the token of the opened session.
func (x OpenSessionRes) Token() string {
	return x.token
}

// OpenSession opens a session on the device.
//
// Returns any error prevented the operation from completing correctly in error return.
func OpenSession(ctx context.Context, prm OpenSessionPrm) (res OpenSessionRes, err error) {
	body, err := json.Marshal(map[string]interface{}{
		"device": prm.dev,
		"mode":   prm.mode,
	})
	if err != nil {
		return
	}

	req, err := prm.cli.newRequest(ctx, http.MethodPost, "/sessions", nil, bytes.NewReader(body))
	if err != nil {
		return
	}

	resp, err := prm.cli.do(req, http.StatusOK)
	if err != nil {
		return
	}

	defer resp.Body.Close()

	var p struct {
		Token string `json:"token"`
	}

	if err = json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return
	}

	res.token = p.Token

	return
}

// ReleaseSessionPrm groups parameters of ReleaseSession operation.
type ReleaseSessionPrm struct {
	commonPrm
	tokenPrm
}

// ReleaseSessionRes groups resulting values of ReleaseSession operation.
type ReleaseSessionRes struct{}

// ReleaseSession closes the session.
//
// Returns any error prevented the operation from completing correctly in error return.
func ReleaseSession(ctx context.Context, prm ReleaseSessionPrm) (res ReleaseSessionRes, err error) {
	req, err := prm.cli.newRequest(ctx, http.MethodDelete, "/sessions/"+prm.token, nil, nil)
	if err != nil {
		return
	}

	resp, err := prm.cli.do(req, http.StatusNoContent)
	if err != nil {
		return
	}

	resp.Body.Close()

	return
}

// SessionReadPrm groups parameters of SessionRead operation.
type SessionReadPrm struct {
	commonPrm
	tokenPrm

	count int
}

// SetCount sets the number of bytes to read.
func (x *SessionReadPrm) SetCount(n int) {
	x.count = n
}

// SessionReadRes groups resulting values of SessionRead operation.
type SessionReadRes struct {
	data []byte

	off uint64
}

// Data returns the bytes read. Empty data means the cursor sits at
// end of data or over a hole.
func (x SessionReadRes) Data() []byte {
	return x.data
}

// Offset returns the session cursor after the transfer.
func (x SessionReadRes) Offset() uint64 {
	return x.off
}

// SessionRead reads from the session cursor, advancing it.
//
// If the transfer broke partway, the collected prefix is returned
// along with the error.
func SessionRead(ctx context.Context, prm SessionReadPrm) (res SessionReadRes, err error) {
	query := make(url.Values)
	query.Set("count", strconv.Itoa(prm.count))

	req, err := prm.cli.newRequest(ctx, http.MethodPost, "/sessions/"+prm.token+"/read", query, nil)
	if err != nil {
		return
	}

	resp, err := prm.cli.h.Do(req)
	if err != nil {
		return
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		res.off = offsetFromHeader(resp, 0)
		return
	default:
		err = decodeAPIError(resp)
		return
	}

	res.data, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	res.off = offsetFromHeader(resp, 0)

	if reason := resp.Header.Get(rest.ErrorHeader); reason != "" {
		err = &APIError{
			Status: resp.StatusCode,
			Reason: reason,
		}
	}

	return
}

// SessionWritePrm groups parameters of SessionWrite operation.
type SessionWritePrm struct {
	commonPrm
	tokenPrm

	payload io.Reader
}

// SetPayloadReader sets the reader of the bytes to write.
func (x *SessionWritePrm) SetPayloadReader(r io.Reader) {
	x.payload = r
}

// SessionWrite writes the payload at the session cursor, advancing it.
//
// If the transfer broke partway, the progress made is returned along
// with the error.
func SessionWrite(ctx context.Context, prm SessionWritePrm) (res WriteRangeRes, err error) {
	req, err := prm.cli.newRequest(ctx, http.MethodPost, "/sessions/"+prm.token+"/write", nil, prm.payload)
	if err != nil {
		return
	}

	return writeResult(prm.cli.h.Do(req))
}

// SessionSeekPrm groups parameters of SessionSeek operation.
type SessionSeekPrm struct {
	commonPrm
	tokenPrm

	off    int64
	whence string
}

// SetOffset sets the seek offset, interpreted against the whence.
func (x *SessionSeekPrm) SetOffset(off int64) {
	x.off = off
}

// SetWhence sets the seek origin: "set", "cur" or "end". Empty whence
// seeks from the start.
func (x *SessionSeekPrm) SetWhence(whence string) {
	x.whence = whence
}

// SessionSeekRes groups resulting values of SessionSeek operation.
type SessionSeekRes struct {
	off uint64
}

// Offset returns the session cursor after the seek.
func (x SessionSeekRes) Offset() uint64 {
	return x.off
}

// SessionSeek repositions the session cursor.
//
// Returns any error prevented the operation from completing correctly in error return.
func SessionSeek(ctx context.Context, prm SessionSeekPrm) (res SessionSeekRes, err error) {
	body, err := json.Marshal(map[string]interface{}{
		"offset": prm.off,
		"whence": prm.whence,
	})
	if err != nil {
		return
	}

	req, err := prm.cli.newRequest(ctx, http.MethodPost, "/sessions/"+prm.token+"/seek", nil, bytes.NewReader(body))
	if err != nil {
		return
	}

	resp, err := prm.cli.do(req, http.StatusOK)
	if err != nil {
		return
	}

	defer resp.Body.Close()

	var p struct {
		Offset uint64 `json:"offset"`
	}

	if err = json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return
	}

	res.off = p.Offset

	return
}

// offsetFromHeader reads the position header of a transfer response,
// falling back to the given value when the header is absent or
// malformed.
func offsetFromHeader(resp *http.Response, fallback uint64) uint64 {
	v := resp.Header.Get(rest.OffsetHeader)
	if v == "" {
		return fallback
	}

	off, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}

	return off
}
