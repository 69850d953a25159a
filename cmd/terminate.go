package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var terminateCmd = &cobra.Command{
	Use:   "terminate",
	Short: "Gracefully shut the supervisor daemon down",
	Args:  cobra.NoArgs,
	Run:   execTerminateCmd,
}

func init() {
	terminateCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		mustLoadConfig()
		if !isDaemonRunning() {
			log.Fatalln("ERROR: jobmon daemon is not running.")
		}
	}

	rootCmd.AddCommand(terminateCmd)
}

func execTerminateCmd(cmd *cobra.Command, args []string) {
	if err := cl.Terminate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("terminate requested")
}
