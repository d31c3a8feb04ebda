package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/mdblog"
)

// globalFlags are shared by every command and override the environment.
type globalFlags struct {
	contentDir string
	siteURL    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "mdblog",
		Short:         "mdblog: a markdown blog built with Go, Echo, and templ",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.contentDir, "content-dir", "", "directory holding the markdown posts (env CONTENT_DIR)")
	pf.StringVar(&g.siteURL, "site-url", "", "canonical site URL (env SITE_URL)")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	pf.StringVar(&g.logFormat, "log-format", "", "json or pretty (env LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(g),
		newBuildCmd(g),
		newListCmd(g),
		newNewCmd(),
		newVersionCmd(),
	)
	return root
}

// config reads the environment and applies any flags that were set.
func (g *globalFlags) config() mdblog.SiteConfig {
	cfg := mdblog.ConfigFromEnv()
	if g.contentDir != "" {
		cfg.ContentDir = g.contentDir
	}
	if g.siteURL != "" {
		cfg.URL = g.siteURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	return cfg
}
