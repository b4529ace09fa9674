package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vyshim/internal/logging"
	"vyshim/internal/session"
)

func newMarkerCommand(ctx *commandContext) *cobra.Command {
	markerCmd := &cobra.Command{
		Use:   "marker",
		Short: "Manage the commit session marker",
	}

	markerCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Report whether the next invocation will initialize",
		RunE: func(cmd *cobra.Command, args []string) error {
			marker, err := markerFor(ctx)
			if err != nil {
				return err
			}
			exists, err := marker.Exists()
			if err != nil {
				return err
			}
			state := "absent"
			if exists {
				state = "present"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", marker.Path(), state)
			return nil
		},
	})

	markerCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Create the marker so the next invocation performs the init handshake",
		RunE: func(cmd *cobra.Command, args []string) error {
			marker, err := markerFor(ctx)
			if err != nil {
				return err
			}
			if err := marker.Create(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", marker.Path())
			return nil
		},
	})

	markerCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the marker without initializing",
		RunE: func(cmd *cobra.Command, args []string) error {
			marker, err := markerFor(ctx)
			if err != nil {
				return err
			}
			removed, err := marker.Clear()
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", marker.Path())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No marker at %s\n", marker.Path())
			}
			return nil
		},
	})

	return markerCmd
}

func markerFor(ctx *commandContext) (*session.Marker, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.MarkerFromConfig(cfg, logging.NewNop()), nil
}
