package cmd

import (
	"strconv"

	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
)

var trimCmd = &cobra.Command{
	Use:   "trim <device>",
	Short: "Free all data of a device",
	Long:  "Free all data of a device and reset its geometry to the node defaults",
	Args:  cobra.ExactArgs(1),
	Run:   trimDevice,
}

func trimDevice(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	dev, err := strconv.Atoi(args[0])
	common.ExitOnErr(cmd, "invalid device index: %w", err)

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	var prm internalclient.TrimDevicePrm
	prm.SetClient(cli)
	prm.SetDevice(dev)

	_, err = internalclient.TrimDevice(ctx, prm)
	common.ExitOnErr(cmd, "trim failed: %w", err)

	cmd.Printf("device %d trimmed\n", dev)
}
