package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
)

const (
	offsetFlag = "offset"
	countFlag  = "count"
	fileFlag   = "file"
	hexFlag    = "hex"
)

var readCmd = &cobra.Command{
	Use:   "read <device>",
	Short: "Read a byte range of a device",
	Long: `Read a byte range of a device without a session.

The transfer stops early at end of data and at the first hole: bytes
under a hole were never written and have no content to return.`,
	Args: cobra.ExactArgs(1),
	Run:  readDevice,
}

func init() {
	ff := readCmd.Flags()

	ff.Uint64(offsetFlag, 0, "Device position to read from")
	ff.Int(countFlag, 0, "Number of bytes to read (default is the rest of the device)")
	ff.String(fileFlag, "", "Write data to the file instead of stdout")
	ff.Bool(hexFlag, false, "Pretty-print data as a hex dump")

	_ = readCmd.MarkFlagFilename(fileFlag)
}

func readDevice(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	dev, err := strconv.Atoi(args[0])
	common.ExitOnErr(cmd, "invalid device index: %w", err)

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	off, _ := cmd.Flags().GetUint64(offsetFlag)
	count, _ := cmd.Flags().GetInt(countFlag)

	if count <= 0 {
		var prm internalclient.GetDevicePrm
		prm.SetClient(cli)
		prm.SetDevice(dev)

		res, err := internalclient.GetDevice(ctx, prm)
		common.ExitOnErr(cmd, "request failed: %w", err)

		if res.Info().Size > off {
			count = int(res.Info().Size - off)
		}
	}

	start := off

	var collected []byte

	// a single transfer stops at the quantum boundary, so collect
	// the range in rounds
	for count > 0 {
		var prm internalclient.ReadRangePrm
		prm.SetClient(cli)
		prm.SetDevice(dev)
		prm.SetOffset(off)
		prm.SetCount(count)

		res, err := internalclient.ReadRange(ctx, prm)
		common.ExitOnErr(cmd, "read failed: %w", err)

		if len(res.Data()) == 0 {
			break
		}

		collected = append(collected, res.Data()...)
		count -= len(res.Data())
		off = res.Offset()
	}

	var out io.Writer = cmd.OutOrStdout()

	if filename, _ := cmd.Flags().GetString(fileFlag); filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		common.ExitOnErr(cmd, "can't open file: %w", err)

		defer f.Close()

		out = f
	}

	if useHex, _ := cmd.Flags().GetBool(hexFlag); useHex {
		_, err = fmt.Fprint(out, hex.Dump(collected))
	} else {
		_, err = out.Write(collected)
	}
	common.ExitOnErr(cmd, "can't write data: %w", err)

	common.PrintVerbose("read %d bytes at offset %d", len(collected), start)
}
