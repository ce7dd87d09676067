package commands

import (
	"github.com/spf13/cobra"

	"github.com/lorien/weblib/logutil"
	"github.com/lorien/weblib/mcpserver"
	"github.com/lorien/weblib/version"
)

func newMCPCommand(info *version.Info) *cobra.Command {
	var (
		perSecond float64
		burst     int
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the normalizers as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logutil.Info("starting mcp server", "version", info.Version, "rate", perSecond, "burst", burst)
			return mcpserver.New(info.Version, perSecond, burst).Serve()
		},
	}
	cmd.Flags().Float64Var(&perSecond, "rate", 10, "Tool calls allowed per second")
	cmd.Flags().IntVar(&burst, "burst", 20, "Tool calls allowed in a burst")
	return cmd
}
