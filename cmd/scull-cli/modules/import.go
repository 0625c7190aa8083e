package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
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

var importCmd = &cobra.Command{
	Use:   "import <device>",
	Short: "Import a device archive",
	Long: `Import an archive produced by export into a device.

The device is truncated first. Zero chunks of the archive are seeked
over instead of written, so they come back as holes; the final chunk
is always written to settle the device size.`,
	Args: cobra.ExactArgs(1),
	Run:  importDevice,
}

func init() {
	ff := importCmd.Flags()

	ff.String(fileFlag, "", "File to read the archive from")
	ff.Bool(noProgressFlag, false, "Do not show progress bar")

	_ = importCmd.MarkFlagFilename(fileFlag)
	_ = importCmd.MarkFlagRequired(fileFlag)
}

func importDevice(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	dev, err := strconv.Atoi(args[0])
	common.ExitOnErr(cmd, "invalid device index: %w", err)

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	filename, _ := cmd.Flags().GetString(fileFlag)

	f, err := os.Open(filename)
	common.ExitOnErr(cmd, "can't open file: %w", err)

	defer f.Close()

	zr, err := zstd.NewReader(f)
	common.ExitOnErr(cmd, "can't open compressed reader: %w", err)

	defer zr.Close()

	br := bufio.NewReader(zr)

	line, err := br.ReadBytes('\n')
	common.ExitOnErr(cmd, "can't read archive header: %w", err)

	var hdr archiveHeader
	common.ExitOnErr(cmd, "can't decode archive header: %w", json.Unmarshal(line, &hdr))

	common.PrintVerbose("archive of device %d: %d bytes, quantum %d, qset %d",
		hdr.Device, hdr.Size, hdr.Quantum, hdr.QSet)

	// a write-only session truncates the device on open
	var openPrm internalclient.OpenSessionPrm
	openPrm.SetClient(cli)
	openPrm.SetDevice(dev)
	openPrm.SetMode("wo")

	openRes, err := internalclient.OpenSession(ctx, openPrm)
	common.ExitOnErr(cmd, "can't open session: %w", err)

	token := openRes.Token()

	defer func() {
		var prm internalclient.ReleaseSessionPrm
		prm.SetClient(cli)
		prm.SetToken(token)

		if _, err := internalclient.ReleaseSession(ctx, prm); err != nil {
			cmd.PrintErrf("can't release session: %v\n", err)
		}
	}()

	var p *pb.ProgressBar

	noProgress, _ := cmd.Flags().GetBool(noProgressFlag)
	if !noProgress && term.IsTerminal(int(os.Stdout.Fd())) {
		p = pb.New64(int64(hdr.Size))
		p.Output = cmd.OutOrStdout()
		p.Start()
	}

	var (
		total uint64

		cur  = make([]byte, archiveChunk)
		next = make([]byte, archiveChunk)
	)

	n, err := readChunk(br, cur)
	common.ExitOnErr(cmd, "can't read archive: %w", err)

	for n > 0 {
		m, nerr := readChunk(br, next)
		common.ExitOnErr(cmd, "can't read archive: %w", nerr)

		// the last chunk is written even when zero: the session
		// cursor alone does not grow the device
		if m > 0 && allZero(cur[:n]) {
			var prm internalclient.SessionSeekPrm
			prm.SetClient(cli)
			prm.SetToken(token)
			prm.SetOffset(int64(n))
			prm.SetWhence("cur")

			_, err = internalclient.SessionSeek(ctx, prm)
			common.ExitOnErr(cmd, "seek failed: %w", err)
		} else {
			var prm internalclient.SessionWritePrm
			prm.SetClient(cli)
			prm.SetToken(token)
			prm.SetPayloadReader(bytes.NewReader(cur[:n]))

			_, err = internalclient.SessionWrite(ctx, prm)
			common.ExitOnErr(cmd, "write failed: %w", err)
		}

		total += uint64(n)

		if p != nil {
			p.Add(n)
		}

		cur, next = next, cur
		n = m
	}

	if p != nil {
		p.Finish()
	}

	if total != hdr.Size {
		cmd.PrintErrf("archive content is %d bytes, header declares %d\n", total, hdr.Size)
	}

	cmd.Printf("imported %d bytes into device %d\n", total, dev)
}

// readChunk fills buf as far as the stream goes. A clean end of
// stream is not an error: it returns the bytes that fit, possibly
// none.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}

	return n, err
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}
