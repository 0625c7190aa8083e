package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/rtbo/scull/pkg/storage/device"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const formatFlag = "format"

var statusCmd = &cobra.Command{
	Use:   "status [device]",
	Short: "Show the device table of the node",
	Long:  "Show the device table of the node, or the state of a single device",
	Args:  cobra.MaximumNArgs(1),
	Run:   deviceStatus,
}

func init() {
	statusCmd.Flags().String(formatFlag, "", "Output format: 'json' or 'yaml' (default is a table)")
}

func deviceStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := commonflags.GetCommandContext(cmd)
	defer cancel()

	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	var infos []device.Info

	if len(args) == 1 {
		dev, err := strconv.Atoi(args[0])
		common.ExitOnErr(cmd, "invalid device index: %w", err)

		var prm internalclient.GetDevicePrm
		prm.SetClient(cli)
		prm.SetDevice(dev)

		res, err := internalclient.GetDevice(ctx, prm)
		common.ExitOnErr(cmd, "request failed: %w", err)

		infos = append(infos, res.Info())
	} else {
		var prm internalclient.ListDevicesPrm
		prm.SetClient(cli)

		res, err := internalclient.ListDevices(ctx, prm)
		common.ExitOnErr(cmd, "request failed: %w", err)

		infos = res.Devices()
	}

	format, _ := cmd.Flags().GetString(formatFlag)

	switch format {
	case "":
		prettyPrintStatus(cmd, infos)
	case "json":
		buf := bytes.NewBuffer(nil)
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		common.ExitOnErr(cmd, "cannot encode device info to JSON: %w", enc.Encode(infos))

		cmd.Print(buf.String()) // pretty printer emits newline, so no need for Println
	case "yaml":
		data, err := yaml.Marshal(infos)
		common.ExitOnErr(cmd, "cannot encode device info to YAML: %w", err)

		cmd.Print(string(data))
	default:
		common.ExitOnErr(cmd, "", fmt.Errorf("unsupported format %q", format))
	}
}

func prettyPrintStatus(cmd *cobra.Command, infos []device.Info) {
	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"Device", "Size", "Quantum", "QSet", "Segments"})
	out.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, info := range infos {
		out.Append([]string{
			strconv.Itoa(info.ID),
			strconv.FormatUint(info.Size, 10),
			strconv.Itoa(info.Quantum),
			strconv.Itoa(info.QSet),
			strconv.Itoa(len(info.Segments)),
		})
	}

	out.Render()
}
