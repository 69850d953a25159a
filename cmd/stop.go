package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop <job...>",
	Short: "Stop one or more jobs",
	Args:  cobra.MinimumNArgs(1),
	Run:   execStopCmd,
}

func init() {
	stopCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		mustLoadConfig()
		if !isDaemonRunning() {
			log.Fatalln("ERROR: jobmon daemon is not running.")
		}
	}

	rootCmd.AddCommand(stopCmd)
}

func execStopCmd(cmd *cobra.Command, args []string) {
	for _, name := range args {
		if err := cl.Stop(name); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			continue
		}
		fmt.Printf("%s stopped\n", name)
	}
}
