package cmd

import (
	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the state listing of the device table",
	Long:  "Print the textual state listing of every device, segment by segment",
	Args:  cobra.NoArgs,
	Run:   dumpDevices,
}

func dumpDevices(cmd *cobra.Command, _ []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	var prm internalclient.DumpPrm
	prm.SetClient(cli)

	res, err := internalclient.Dump(ctx, prm)
	common.ExitOnErr(cmd, "request failed: %w", err)

	cmd.Print(string(res.Text()))
}
