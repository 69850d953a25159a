package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamnew123456/jobmon/pkg/config"
)

var startCmd = &cobra.Command{
	Use:   "start [job...]",
	Short: "Start the supervisor daemon, or start specific jobs",
	Run:   execStartCmd,
}

func init() {
	startCmd.Flags().BoolVarP(&config.ForegroundFlag, "foreground", "f", false, "run the supervisor daemon in the foreground")
	rootCmd.AddCommand(startCmd)
}

func execStartCmd(cmd *cobra.Command, args []string) {
	mustLoadConfig()

	if !isDaemonRunning() {
		if config.ForegroundFlag {
			execDaemonCmd(cmd, nil)
			return
		}

		if err := tryRunDaemon(); err != nil {
			log.Fatal(err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	for _, name := range args {
		if err := cl.Start(name); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			continue
		}
		fmt.Printf("%s started\n", name)
	}
}
