package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/panjf2000/ants/v2"
	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	workersFlag  = "workers"
	totalFlag    = "total"
	chunkFlag    = "chunk"
	readBackFlag = "read"
)

// sizeValue is a flag value accepting plain bytes or a k/m/g suffixed
// form, powers of 1024.
type sizeValue uint64

var _ pflag.Value = (*sizeValue)(nil)

func (s *sizeValue) String() string {
	return strconv.FormatUint(uint64(*s), 10)
}

func (s *sizeValue) Set(v string) error {
	n, err := parseSize(v)
	if err != nil {
		return err
	}

	*s = sizeValue(n)

	return nil
}

func (*sizeValue) Type() string {
	return "size"
}

func parseSize(v string) (uint64, error) {
	v = strings.ToLower(strings.TrimSpace(v))

	mul := uint64(1)

	switch {
	case strings.HasSuffix(v, "k"):
		mul, v = 1<<10, v[:len(v)-1]
	case strings.HasSuffix(v, "m"):
		mul, v = 1<<20, v[:len(v)-1]
	case strings.HasSuffix(v, "g"):
		mul, v = 1<<30, v[:len(v)-1]
	}

	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, err
	}

	return n * mul, nil
}

var benchTotal = sizeValue(1 << 20)

var benchCmd = &cobra.Command{
	Use:   "bench <device>",
	Short: "Measure data API throughput on a device",
	Long: `Measure data API throughput with concurrent ranged writes and an
optional verifying read-back pass. The device is trimmed first and is
left filled with the benchmark pattern.`,
	Args: cobra.ExactArgs(1),
	Run:  benchDevice,
}

func init() {
	ff := benchCmd.Flags()

	ff.Int(workersFlag, 4, "Number of concurrent transfers")
	ff.Var(&benchTotal, totalFlag, "Total bytes to transfer (k/m/g suffixes allowed)")
	ff.Int(chunkFlag, 4096, "Bytes per transfer")
	ff.Bool(readBackFlag, false, "Read the data back and verify it")
	ff.Bool(noProgressFlag, false, "Do not show progress bar")
}

func benchDevice(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	dev, err := strconv.Atoi(args[0])
	common.ExitOnErr(cmd, "invalid device index: %w", err)

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	workers, _ := cmd.Flags().GetInt(workersFlag)
	total := uint64(benchTotal)
	chunk, _ := cmd.Flags().GetInt(chunkFlag)
	readBack, _ := cmd.Flags().GetBool(readBackFlag)
	noProgress, _ := cmd.Flags().GetBool(noProgressFlag)

	if workers <= 0 || chunk <= 0 {
		common.ExitOnErr(cmd, "", fmt.Errorf("workers and chunk must be positive"))
	}

	chunks := int(total / uint64(chunk))
	if chunks == 0 {
		chunks = 1
	}

	var trimPrm internalclient.TrimDevicePrm
	trimPrm.SetClient(cli)
	trimPrm.SetDevice(dev)

	_, err = internalclient.TrimDevice(ctx, trimPrm)
	common.ExitOnErr(cmd, "trim failed: %w", err)

	pool, err := ants.NewPool(workers)
	common.ExitOnErr(cmd, "can't create worker pool: %w", err)

	defer pool.Release()

	run := func(name string, task func(i int) error) {
		var p *pb.ProgressBar

		if !noProgress {
			p = pb.New(chunks * chunk)
			p.Output = cmd.OutOrStdout()
			p.Start()
		}

		var (
			wg   sync.WaitGroup
			mtx  sync.Mutex
			ferr error
		)

		start := time.Now()

		for i := 0; i < chunks; i++ {
			i := i

			wg.Add(1)

			err := pool.Submit(func() {
				defer wg.Done()

				if err := task(i); err != nil {
					mtx.Lock()
					if ferr == nil {
						ferr = err
					}
					mtx.Unlock()

					return
				}

				if p != nil {
					p.Add(chunk)
				}
			})
			if err != nil {
				wg.Done()
				common.ExitOnErr(cmd, "can't submit task: %w", err)
			}
		}

		wg.Wait()

		dur := time.Since(start)

		if p != nil {
			p.Finish()
		}

		common.ExitOnErr(cmd, name+" failed: %w", ferr)

		rate := float64(chunks*chunk) / (1 << 20) / dur.Seconds()
		cmd.Printf("%s: %d bytes in %v (%.1f MiB/s)\n",
			name, chunks*chunk, dur.Round(time.Millisecond), rate)
	}

	run("write", func(i int) error {
		var prm internalclient.WriteRangePrm
		prm.SetClient(cli)
		prm.SetDevice(dev)
		prm.SetOffset(uint64(i * chunk))
		prm.SetPayloadReader(bytes.NewReader(benchPattern(i, chunk)))

		_, err := internalclient.WriteRange(ctx, prm)

		return err
	})

	if readBack {
		run("read", func(i int) error {
			buf := make([]byte, chunk)

			if err := benchReadFull(ctx, cli, dev, uint64(i*chunk), buf); err != nil {
				return err
			}

			if !bytes.Equal(buf, benchPattern(i, chunk)) {
				return fmt.Errorf("data mismatch in chunk %d", i)
			}

			return nil
		})
	}
}

// benchPattern derives the chunk content from its index, so the
// read-back pass verifies placement as well as content.
func benchPattern(i, chunk int) []byte {
	buf := make([]byte, chunk)
	for j := range buf {
		buf[j] = byte(i + j)
	}

	return buf
}

// benchReadFull collects the whole range, looping over the per-call
// quantum boundary cut.
func benchReadFull(ctx context.Context, cli *internalclient.Client, dev int, off uint64, buf []byte) error {
	filled := 0

	for filled < len(buf) {
		var prm internalclient.ReadRangePrm
		prm.SetClient(cli)
		prm.SetDevice(dev)
		prm.SetOffset(off + uint64(filled))
		prm.SetCount(len(buf) - filled)

		res, err := internalclient.ReadRange(ctx, prm)
		if err != nil {
			return err
		}

		if len(res.Data()) == 0 {
			return fmt.Errorf("unexpected end of data at offset %d", off+uint64(filled))
		}

		copy(buf[filled:], res.Data())
		filled += len(res.Data())
	}

	return nil
}
