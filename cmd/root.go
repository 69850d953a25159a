// Package cmd implements the jobmon command line interface: a thin
// cobra front end over the JSON control socket protocol in pkg/wire.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamnew123456/jobmon/pkg/client"
	"github.com/adamnew123456/jobmon/pkg/config"
)

var cfg *config.Config
var cl *client.Client

var rootCmd = &cobra.Command{
	Use:   "jobmon",
	Short: "A small job-lifecycle process supervisor",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.ConfigFileFlag, "config", "c", "/etc/jobmon.yml", "path to the jobmon config file")
	rootCmd.PersistentFlags().StringVarP(&config.LogLevelFlag, "log-level", "l", "", "override the configured log level")
}

// mustLoadConfig loads cfg/cl once, exiting the process on failure. It
// is called by each subcommand that needs it (from its Run or its own
// PersistentPreRun) rather than from a root-level PersistentPreRun, so
// that "version" can run without a config file on disk.
func mustLoadConfig() {
	if cfg != nil {
		return
	}

	c, err := config.Load(config.ConfigFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if config.LogLevelFlag != "" {
		c.Supervisor.LogLevel = config.LogLevelFlag
	}

	cfg = c
	cl = client.New(cfg.ControlSocketPath())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
