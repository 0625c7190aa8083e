package device

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testDevice returns a device with a deliberately tiny geometry so
// that tests cross quantum and segment boundaries early.
func testDevice(t *testing.T, opts ...Option) *Device {
	return New(append([]Option{
		WithQuantum(4),
		WithQSet(2),
		WithLogger(zaptest.NewLogger(t)),
	}, opts...)...)
}

func testPayload(sz int) []byte {
	data := make([]byte, sz)
	rand.Read(data)

	return data
}

// faultCopier fails every transfer while fail is set, imitating an
// inaccessible caller buffer.
type faultCopier struct {
	fail bool
}

func (c *faultCopier) Copy(dst, src []byte) error {
	if c.fail {
		return errors.New("bad user page")
	}

	copy(dst, src)

	return nil
}

// writeAll loops single-quantum writes until the whole payload is
// consumed, the way a caller of the original driver loops on short
// writes.
func writeAll(t *testing.T, d *Device, off uint64, data []byte) uint64 {
	for len(data) > 0 {
		var prm WritePrm
		prm.SetOffset(off)
		prm.SetData(data)

		res, err := d.Write(context.Background(), prm)
		require.NoError(t, err)
		require.Positive(t, res.Written())
		require.Equal(t, off+uint64(res.Written()), res.NewOffset())

		off = res.NewOffset()
		data = data[res.Written():]
	}

	return off
}

// readAll loops single-quantum reads, stopping at end-of-data or at
// a hole.
func readAll(t *testing.T, d *Device, off, ln uint64) []byte {
	var out []byte

	for uint64(len(out)) < ln {
		var prm ReadPrm
		prm.SetRange(off, ln-uint64(len(out)))

		res, err := d.Read(context.Background(), prm)
		require.NoError(t, err)

		if len(res.Data()) == 0 {
			break
		}

		out = append(out, res.Data()...)
		off = res.NewOffset()
	}

	return out
}

func TestDevice_ReadWrite(t *testing.T) {
	t.Run("quantum boundary clamp", func(t *testing.T) {
		d := testDevice(t)

		var prm WritePrm
		prm.SetOffset(0)
		prm.SetData([]byte("ABCDEFGH"))

		res, err := d.Write(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, 4, res.Written())
		require.EqualValues(t, 4, res.NewOffset())

		var rdPrm ReadPrm
		rdPrm.SetRange(0, 8)

		rdRes, err := d.Read(context.Background(), rdPrm)
		require.NoError(t, err)
		require.Equal(t, []byte("ABCD"), rdRes.Data())
		require.EqualValues(t, 4, rdRes.NewOffset())
	})

	t.Run("contiguous transfer across quanta", func(t *testing.T) {
		d := testDevice(t)

		end := writeAll(t, d, 0, []byte("ABCDEFGH"))
		require.EqualValues(t, 8, end)

		require.Equal(t, []byte("ABCDEFGH"), readAll(t, d, 0, 8))

		// unaligned range spanning two quanta of the first segment
		require.Equal(t, []byte("CDEF"), readAll(t, d, 2, 4))
	})

	t.Run("read past end of data", func(t *testing.T) {
		d := testDevice(t)

		writeAll(t, d, 0, []byte("ABCDEFGH"))

		var prm ReadPrm
		prm.SetRange(100, 5)

		res, err := d.Read(context.Background(), prm)
		require.NoError(t, err)
		require.Empty(t, res.Data())
		require.EqualValues(t, 100, res.NewOffset())
	})

	t.Run("read clamped to size", func(t *testing.T) {
		d := testDevice(t)

		writeAll(t, d, 0, []byte("ABC"))

		require.Equal(t, []byte("ABC"), readAll(t, d, 0, 100))
	})

	t.Run("huge requested length stays within size", func(t *testing.T) {
		d := testDevice(t)

		writeAll(t, d, 0, []byte("ABCDE"))

		// the naive off+ln end-of-data check would wrap around here
		var prm ReadPrm
		prm.SetRange(4, ^uint64(0))

		res, err := d.Read(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, []byte("E"), res.Data())
		require.EqualValues(t, 5, res.NewOffset())

		prm.SetRange(0, ^uint64(0))

		res, err = d.Read(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, []byte("ABCD"), res.Data())
		require.EqualValues(t, 4, res.NewOffset())
	})

	t.Run("empty write is a no-op", func(t *testing.T) {
		d := testDevice(t)

		var prm WritePrm
		prm.SetOffset(42)
		prm.SetData(nil)

		res, err := d.Write(context.Background(), prm)
		require.NoError(t, err)
		require.Zero(t, res.Written())
		require.EqualValues(t, 42, res.NewOffset())

		info, err := d.DumpInfo(context.Background())
		require.NoError(t, err)
		require.Zero(t, info.Size)
		require.Empty(t, info.Segments)
	})

	t.Run("random roundtrip over many segments", func(t *testing.T) {
		d := New(
			WithQuantum(16),
			WithQSet(4),
			WithLogger(zaptest.NewLogger(t)),
		)

		payload := testPayload(1000)
		writeAll(t, d, 0, payload)

		require.Equal(t, payload, readAll(t, d, 0, 1000))

		// overwrite a middle range and read it back
		patch := testPayload(100)
		writeAll(t, d, 333, patch)

		require.Equal(t, patch, readAll(t, d, 333, 100))
		require.Equal(t, payload[:333], readAll(t, d, 0, 333))
	})
}

func TestDevice_Holes(t *testing.T) {
	t.Run("absent segment reads as hole", func(t *testing.T) {
		d := testDevice(t)

		// lands in segment 2, leaving segments 0 and 1 untouched
		writeAll(t, d, 16, []byte("Z"))

		info, err := d.DumpInfo(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 17, info.Size)
		require.Len(t, info.Segments, 3)

		var prm ReadPrm
		prm.SetRange(0, 4)

		res, err := d.Read(context.Background(), prm)
		require.NoError(t, err)
		require.Empty(t, res.Data())
		require.EqualValues(t, 0, res.NewOffset())
	})

	t.Run("untouched tail of an allocated quantum reads as zeros", func(t *testing.T) {
		d := testDevice(t)

		// offset 10 translates to segment 1, slot 0, intra offset 2:
		// the quantum covering [8,12) is allocated, bytes [8,10) stay
		// zero-filled
		writeAll(t, d, 10, []byte("Z"))

		info, err := d.DumpInfo(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 11, info.Size)

		require.Equal(t, []byte{0, 0}, readAll(t, d, 8, 2))
	})
}

func TestDevice_Size(t *testing.T) {
	d := testDevice(t)

	sizeOf := func() uint64 {
		info, err := d.DumpInfo(context.Background())
		require.NoError(t, err)

		return info.Size
	}

	writeAll(t, d, 0, []byte("AB"))
	require.EqualValues(t, 2, sizeOf())

	writeAll(t, d, 10, []byte("CDE"))
	require.EqualValues(t, 13, sizeOf())

	// writing below the current size does not shrink it
	writeAll(t, d, 1, []byte("X"))
	require.EqualValues(t, 13, sizeOf())
}

func TestDevice_Trim(t *testing.T) {
	d := testDevice(t)

	// 3 segments, 5 quanta
	writeAll(t, d, 0, testPayload(16))
	writeAll(t, d, 16, testPayload(4))

	info, err := d.DumpInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Segments, 3)
	require.EqualValues(t, 20, info.Size)

	// diverged geometry must be restored by trim
	require.NoError(t, d.lockDevice(context.Background()))
	d.quantum = 100
	d.qset = 100
	d.trim()
	d.unlockDevice()

	info, err = d.DumpInfo(context.Background())
	require.NoError(t, err)
	require.Zero(t, info.Size)
	require.Empty(t, info.Segments)
	require.Equal(t, 4, info.Quantum)
	require.Equal(t, 2, info.QSet)

	var prm ReadPrm
	prm.SetRange(0, 100)

	res, err := d.Read(context.Background(), prm)
	require.NoError(t, err)
	require.Empty(t, res.Data())
}

func TestDevice_OpenRelease(t *testing.T) {
	t.Run("plain open keeps state", func(t *testing.T) {
		d := testDevice(t)

		writeAll(t, d, 0, []byte("ABCD"))

		_, err := d.Open(context.Background(), OpenPrm{})
		require.NoError(t, err)

		require.Equal(t, []byte("ABCD"), readAll(t, d, 0, 4))
		require.NoError(t, d.Release())
	})

	t.Run("truncating open trims", func(t *testing.T) {
		d := testDevice(t)

		writeAll(t, d, 0, []byte("ABCD"))

		var prm OpenPrm
		prm.SetTruncate(true)

		_, err := d.Open(context.Background(), prm)
		require.NoError(t, err)

		info, err := d.DumpInfo(context.Background())
		require.NoError(t, err)
		require.Zero(t, info.Size)
		require.Empty(t, info.Segments)
	})
}

func TestDevice_LockCancellation(t *testing.T) {
	d := testDevice(t)

	// hold the device lock to force every operation into the wait
	require.NoError(t, d.lockDevice(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var wrPrm WritePrm
	wrPrm.SetOffset(0)
	wrPrm.SetData([]byte("A"))

	_, err := d.Write(ctx, wrPrm)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var rdPrm ReadPrm
	rdPrm.SetRange(0, 1)

	_, err = d.Read(ctx, rdPrm)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = d.DumpInfo(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	d.unlockDevice()

	// no state was touched by the cancelled calls
	info, err := d.DumpInfo(context.Background())
	require.NoError(t, err)
	require.Zero(t, info.Size)
	require.Empty(t, info.Segments)
}

func TestDevice_CopierFault(t *testing.T) {
	fc := new(faultCopier)

	d := testDevice(t, WithCopier(fc))

	writeAll(t, d, 0, []byte("ABCD"))

	fc.fail = true

	var wrPrm WritePrm
	wrPrm.SetOffset(4)
	wrPrm.SetData([]byte("EF"))

	_, err := d.Write(context.Background(), wrPrm)
	require.ErrorIs(t, err, ErrFault)

	var rdPrm ReadPrm
	rdPrm.SetRange(0, 4)

	_, err = d.Read(context.Background(), rdPrm)
	require.ErrorIs(t, err, ErrFault)

	fc.fail = false

	// the faulted write advanced nothing
	info, err := d.DumpInfo(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 4, info.Size)

	require.Equal(t, []byte("ABCD"), readAll(t, d, 0, 4))
}

func TestDevice_IndependentDevices(t *testing.T) {
	d1 := testDevice(t)
	d2 := testDevice(t, WithID(1))

	// hold the first device's lock; the second one must stay
	// reachable
	require.NoError(t, d1.lockDevice(context.Background()))
	defer d1.unlockDevice()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var prm WritePrm
	prm.SetOffset(0)
	prm.SetData([]byte("A"))

	_, err := d2.Write(ctx, prm)
	require.NoError(t, err)
}
