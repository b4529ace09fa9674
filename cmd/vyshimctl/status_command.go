package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vyshim/internal/logging"
	"vyshim/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon reachability, commit marker and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("vyshim", colorize) {
				fmt.Fprintln(out, line)
			}
			source := ctx.configPath + " (defaults)"
			if ctx.configSeen {
				source = ctx.configPath
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, source, colorize))
			fmt.Fprintln(out, renderStatusLine("Endpoint", statusInfo, cfg.Daemon.Endpoint, colorize))
			fmt.Fprintln(out, renderStatusLine("Pass-through", statusInfo, cfg.PassThrough.Mode, colorize))
			debug := "off"
			if logging.DebugBuild() {
				debug = "on"
			}
			fmt.Fprintln(out, renderStatusLine("Debug build", statusInfo, debug, colorize))

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				fmt.Fprintln(out, renderResult(result, colorize))
			}
			return nil
		},
	}
}
