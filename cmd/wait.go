package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait <job>",
	Short: "Block until job's next RUNNING or STOPPED transition",
	Args:  cobra.ExactArgs(1),
	Run:   execWaitCmd,
}

func init() {
	waitCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		mustLoadConfig()
		if !isDaemonRunning() {
			log.Fatalln("ERROR: jobmon daemon is not running.")
		}
	}

	rootCmd.AddCommand(waitCmd)
}

func execWaitCmd(cmd *cobra.Command, args []string) {
	// This can legitimately block a long time (a Defer'd cooldown, or a
	// job that just never exits), so the client's usual request
	// deadline does not apply here.
	cl.Timeout = 0

	phase, err := cl.Wait(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}

	fmt.Printf("%s %s\n", phase, args[0])
}
