package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rtbo/scull/pkg/storage/device"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testEngine(t *testing.T, opts ...Option) *StorageEngine {
	return New(append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithDeviceCount(2),
		WithDeviceOptions(
			device.WithQuantum(4),
			device.WithQSet(2),
		),
	}, opts...)...)
}

func testWrite(t *testing.T, e *StorageEngine, dev int, off uint64, data []byte) {
	for len(data) > 0 {
		var prm WritePrm
		prm.SetDevice(dev)
		prm.SetOffset(off)
		prm.SetData(data)

		res, err := e.Write(context.Background(), prm)
		require.NoError(t, err)
		require.Positive(t, res.Written())

		off = res.NewOffset()
		data = data[res.Written():]
	}
}

func testRead(t *testing.T, e *StorageEngine, dev int, off, ln uint64) []byte {
	var out []byte

	for uint64(len(out)) < ln {
		var prm ReadPrm
		prm.SetDevice(dev)
		prm.SetRange(off, ln-uint64(len(out)))

		res, err := e.Read(context.Background(), prm)
		require.NoError(t, err)

		if len(res.Data()) == 0 {
			break
		}

		out = append(out, res.Data()...)
		off = res.NewOffset()
	}

	return out
}

func TestStorageEngine_DeviceResolution(t *testing.T) {
	e := testEngine(t)

	require.Equal(t, 2, e.DeviceCount())

	for _, idx := range []int{-1, 2, 100} {
		var prm ReadPrm
		prm.SetDevice(idx)
		prm.SetRange(0, 1)

		_, err := e.Read(context.Background(), prm)
		require.ErrorIs(t, err, ErrNoDevice, "index %d", idx)
	}
}

func TestStorageEngine_ReadWrite(t *testing.T) {
	e := testEngine(t)

	testWrite(t, e, 0, 0, []byte("device zero"))
	testWrite(t, e, 1, 0, []byte("device one"))

	require.Equal(t, []byte("device zero"), testRead(t, e, 0, 0, 11))
	require.Equal(t, []byte("device one"), testRead(t, e, 1, 0, 10))
}

func TestStorageEngine_TruncatingOpen(t *testing.T) {
	e := testEngine(t)

	testWrite(t, e, 0, 0, []byte("ABCDEFGH"))

	var prm OpenPrm
	prm.SetDevice(0)
	prm.SetTruncate(true)

	_, err := e.Open(context.Background(), prm)
	require.NoError(t, err)

	info, err := e.DumpInfo(context.Background(), 0)
	require.NoError(t, err)
	require.Zero(t, info.Size)
	require.Empty(t, info.Segments)

	require.NoError(t, e.Release(0))
}

func TestStorageEngine_Close(t *testing.T) {
	e := testEngine(t)

	testWrite(t, e, 0, 0, []byte("ABCD"))

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	var rdPrm ReadPrm
	rdPrm.SetDevice(0)
	rdPrm.SetRange(0, 4)

	_, err := e.Read(context.Background(), rdPrm)
	require.ErrorIs(t, err, ErrClosed)

	var wrPrm WritePrm
	wrPrm.SetDevice(0)
	wrPrm.SetData([]byte("A"))

	_, err = e.Write(context.Background(), wrPrm)
	require.ErrorIs(t, err, ErrClosed)

	_, err = e.DumpAll(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestStorageEngine_DumpAll(t *testing.T) {
	e := testEngine(t)

	testWrite(t, e, 1, 0, []byte("AB"))

	infos, err := e.DumpAll(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, 0, infos[0].ID)
	require.Equal(t, 1, infos[1].ID)
	require.Zero(t, infos[0].Size)
	require.EqualValues(t, 2, infos[1].Size)
}

type testMetrics struct {
	readCnt, writeCnt, trimCnt int

	readBytes, writeBytes int

	readDur, writeDur int
}

func (m *testMetrics) AddReadDuration(time.Duration)  { m.readDur++ }
func (m *testMetrics) AddWriteDuration(time.Duration) { m.writeDur++ }
func (m *testMetrics) IncReadCounter()                { m.readCnt++ }
func (m *testMetrics) IncWriteCounter()               { m.writeCnt++ }
func (m *testMetrics) IncTrimCounter()                { m.trimCnt++ }
func (m *testMetrics) AddReadBytes(n int)             { m.readBytes += n }
func (m *testMetrics) AddWriteBytes(n int)            { m.writeBytes += n }

func TestStorageEngine_Metrics(t *testing.T) {
	m := new(testMetrics)

	e := testEngine(t, WithMetrics(m))

	testWrite(t, e, 0, 0, []byte("ABCDEFGH"))

	require.Equal(t, 2, m.writeCnt)
	require.Equal(t, 8, m.writeBytes)
	require.Equal(t, 2, m.writeDur)

	_ = testRead(t, e, 0, 0, 8)

	require.Equal(t, 2, m.readCnt)
	require.Equal(t, 8, m.readBytes)

	var prm OpenPrm
	prm.SetDevice(0)
	prm.SetTruncate(true)

	_, err := e.Open(context.Background(), prm)
	require.NoError(t, err)
	require.Equal(t, 1, m.trimCnt)
}

func TestStorageEngine_ConcurrentDevices(t *testing.T) {
	const workers = 8

	e := New(
		WithLogger(zaptest.NewLogger(t)),
		WithDeviceCount(workers),
		WithDeviceOptions(
			device.WithQuantum(16),
			device.WithQSet(4),
		),
	)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(dev int) {
			defer wg.Done()

			payload := []byte(fmt.Sprintf("payload of device %d", dev))

			off := uint64(0)
			data := payload

			for len(data) > 0 {
				var prm WritePrm
				prm.SetDevice(dev)
				prm.SetOffset(off)
				prm.SetData(data)

				res, err := e.Write(context.Background(), prm)
				if err != nil {
					t.Error(err)
					return
				}

				off = res.NewOffset()
				data = data[res.Written():]
			}
		}(i)
	}

	wg.Wait()

	for i := 0; i < workers; i++ {
		expected := []byte(fmt.Sprintf("payload of device %d", i))
		require.Equal(t, expected, testRead(t, e, i, 0, uint64(len(expected))))
	}
}

func TestStorageEngine_SameDeviceSerialization(t *testing.T) {
	e := testEngine(t)

	var wg sync.WaitGroup

	// concurrent writers into disjoint quanta of one device
	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func(slot int) {
			defer wg.Done()

			var prm WritePrm
			prm.SetDevice(0)
			prm.SetOffset(uint64(slot * 4))
			prm.SetData([]byte{byte('A' + slot), byte('A' + slot), byte('A' + slot), byte('A' + slot)})

			_, err := e.Write(context.Background(), prm)
			if err != nil {
				t.Error(err)
			}
		}(i)
	}

	wg.Wait()

	require.Equal(t, []byte("AAAABBBBCCCCDDDD"), testRead(t, e, 0, 0, 16))
}
