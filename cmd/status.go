package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <job...>",
	Short: "Print the phase of one or more jobs",
	Args:  cobra.MinimumNArgs(1),
	Run:   execStatusCmd,
}

func init() {
	statusCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		mustLoadConfig()
		if !isDaemonRunning() {
			log.Fatalln("ERROR: jobmon daemon is not running.")
		}
	}

	rootCmd.AddCommand(statusCmd)
}

// execStatusCmd follows the single-job exit-code contract exactly when
// given one job (0 running, positive stopped, negative error); with
// several jobs there is no single phase to report in the exit code, so
// it exits 0 unless a lookup itself failed.
func execStatusCmd(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		phase, err := cl.Status(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
			os.Exit(-1)
		}
		fmt.Printf("%s %s\n", phase, args[0])
		if phase != "RUNNING" {
			os.Exit(1)
		}
		return
	}

	failed := false
	for _, name := range args {
		phase, err := cl.Status(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
			continue
		}
		fmt.Printf("%s %s\n", phase, name)
	}
	if failed {
		os.Exit(1)
	}
}
