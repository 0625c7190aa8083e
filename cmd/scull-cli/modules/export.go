package cmd

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/cheggaaa/pb"
	"github.com/klauspost/compress/zstd"
	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// archiveChunk is the transfer unit of export and import.
const archiveChunk = 64 * 1024

// archiveHeader opens a device archive: one JSON line, followed by
// the logical device content, all inside a single zstd stream.
type archiveHeader struct {
	Device  int    `json:"device"`
	Size    uint64 `json:"size"`
	Quantum int    `json:"quantum"`
	QSet    int    `json:"qset"`
}

var exportCmd = &cobra.Command{
	Use:   "export <device>",
	Short: "Export the content of a device to a compressed archive",
	Long: `Export the content of a device to a zstd-compressed archive.

The archive carries the logical content of the device: holes are
materialized as zero bytes. Zero runs compress to almost nothing, and
import turns the aligned ones back into holes.`,
	Args: cobra.ExactArgs(1),
	Run:  exportDevice,
}

func init() {
	ff := exportCmd.Flags()

	ff.String(fileFlag, "", "File to write the archive to")
	ff.Bool(noProgressFlag, false, "Do not show progress bar")

	_ = exportCmd.MarkFlagFilename(fileFlag)
	_ = exportCmd.MarkFlagRequired(fileFlag)
}

func exportDevice(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	dev, err := strconv.Atoi(args[0])
	common.ExitOnErr(cmd, "invalid device index: %w", err)

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	var infoPrm internalclient.GetDevicePrm
	infoPrm.SetClient(cli)
	infoPrm.SetDevice(dev)

	infoRes, err := internalclient.GetDevice(ctx, infoPrm)
	common.ExitOnErr(cmd, "request failed: %w", err)

	info := infoRes.Info()

	filename, _ := cmd.Flags().GetString(fileFlag)

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	common.ExitOnErr(cmd, "can't open file: %w", err)

	defer f.Close()

	zw, err := zstd.NewWriter(f)
	common.ExitOnErr(cmd, "can't create compressed writer: %w", err)

	hdr, err := json.Marshal(archiveHeader{
		Device:  info.ID,
		Size:    info.Size,
		Quantum: info.Quantum,
		QSet:    info.QSet,
	})
	common.ExitOnErr(cmd, "can't encode archive header: %w", err)

	_, err = zw.Write(append(hdr, '\n'))
	common.ExitOnErr(cmd, "can't write archive header: %w", err)

	var p *pb.ProgressBar

	noProgress, _ := cmd.Flags().GetBool(noProgressFlag)
	if !noProgress && term.IsTerminal(int(os.Stdout.Fd())) {
		p = pb.New64(int64(info.Size))
		p.Output = cmd.OutOrStdout()
		p.Start()
	}

	var (
		off   uint64
		zeros []byte
	)

	for off < info.Size {
		count := info.Size - off
		if count > archiveChunk {
			count = archiveChunk
		}

		var prm internalclient.ReadRangePrm
		prm.SetClient(cli)
		prm.SetDevice(dev)
		prm.SetOffset(off)
		prm.SetCount(int(count))

		res, err := internalclient.ReadRange(ctx, prm)
		common.ExitOnErr(cmd, "read failed: %w", err)

		if len(res.Data()) == 0 {
			// a hole: unwritten positions up to the next quantum
			// boundary read back as zeros
			quantum := uint64(info.Quantum)
			next := (off/quantum + 1) * quantum
			if next > info.Size {
				next = info.Size
			}

			if zeros == nil {
				zeros = make([]byte, archiveChunk)
			}

			for off < next {
				n := next - off
				if n > uint64(len(zeros)) {
					n = uint64(len(zeros))
				}

				_, err = zw.Write(zeros[:n])
				common.ExitOnErr(cmd, "can't write archive: %w", err)

				off += n

				if p != nil {
					p.Add64(int64(n))
				}
			}

			continue
		}

		_, err = zw.Write(res.Data())
		common.ExitOnErr(cmd, "can't write archive: %w", err)

		if p != nil {
			p.Add(len(res.Data()))
		}

		off = res.Offset()
	}

	common.ExitOnErr(cmd, "can't finish archive: %w", zw.Close())

	if p != nil {
		p.Finish()
	}

	cmd.Printf("exported device %d (%d bytes) to %s\n", dev, info.Size, filename)
}
