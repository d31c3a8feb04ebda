package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/mdblog"
	"github.com/eringen/mdblog/logger"
)

func newBuildCmd(g *globalFlags) *cobra.Command {
	var (
		out    string
		drafts bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the blog as a static site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.config().WithDefaults()
			manifest, err := mdblog.Build(cmd.Context(), mdblog.BuildConfig{
				Site:   cfg,
				OutDir: out,
				Drafts: drafts,
				Log:    logger.New(cfg.LogLevel, cfg.LogFormat),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d posts into %s (build %s)\n", len(manifest.Posts), out, manifest.BuildID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft posts")
	return cmd
}
