package cmd

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb"
	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	dataFlag       = "data"
	noProgressFlag = "no-progress"
)

var writeCmd = &cobra.Command{
	Use:   "write <device>",
	Short: "Write a byte range to a device",
	Long: `Write a byte range to a device without a session.

Writing past the current end grows the device; positions skipped over
stay holes. If the transfer breaks partway, the bytes that made it in
stay stored and the reported offset is the position to resume from.`,
	Args: cobra.ExactArgs(1),
	Run:  writeDevice,
}

func init() {
	ff := writeCmd.Flags()

	ff.Uint64(offsetFlag, 0, "Device position to write at")
	ff.String(fileFlag, "", "File with the payload (default is stdin)")
	ff.String(dataFlag, "", "Payload passed as a literal string")
	ff.Bool(noProgressFlag, false, "Do not show progress bar")

	_ = writeCmd.MarkFlagFilename(fileFlag)
}

func writeDevice(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	dev, err := strconv.Atoi(args[0])
	common.ExitOnErr(cmd, "invalid device index: %w", err)

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	off, _ := cmd.Flags().GetUint64(offsetFlag)

	var (
		payload io.Reader
		total   int64 = -1
	)

	filename, _ := cmd.Flags().GetString(fileFlag)
	data, _ := cmd.Flags().GetString(dataFlag)

	switch {
	case filename != "" && data != "":
		common.ExitOnErr(cmd, "", errors.New("flags 'file' and 'data' are mutually exclusive"))
	case filename != "":
		f, err := os.Open(filename)
		common.ExitOnErr(cmd, "can't open file: %w", err)

		defer f.Close()

		if fi, err := f.Stat(); err == nil {
			total = fi.Size()
		}

		payload = f
	case data != "":
		payload = strings.NewReader(data)
		total = int64(len(data))
	default:
		payload = cmd.InOrStdin()
	}

	var p *pb.ProgressBar

	noProgress, _ := cmd.Flags().GetBool(noProgressFlag)
	if !noProgress && total >= 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		p = pb.New64(total)
		p.Output = cmd.OutOrStdout()
		payload = p.NewProxyReader(payload)
		p.Start()
	}

	var prm internalclient.WriteRangePrm
	prm.SetClient(cli)
	prm.SetDevice(dev)
	prm.SetOffset(off)
	prm.SetPayloadReader(payload)

	res, err := internalclient.WriteRange(ctx, prm)
	if p != nil {
		p.Finish()
	}

	if err != nil && res.Written() > 0 {
		cmd.PrintErrf("transfer interrupted after %d bytes, resume from offset %d\n",
			res.Written(), res.Offset())
	}
	common.ExitOnErr(cmd, "write failed: %w", err)

	cmd.Printf("written %d bytes, device offset is now %d\n", res.Written(), res.Offset())
}
