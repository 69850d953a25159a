package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List every configured job and its current phase",
	Args:  cobra.NoArgs,
	Run:   execListCmd,
}

func init() {
	listCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		mustLoadConfig()
		if !isDaemonRunning() {
			log.Fatalln("ERROR: jobmon daemon is not running.")
		}
	}

	rootCmd.AddCommand(listCmd)
}

func execListCmd(cmd *cobra.Command, args []string) {
	jobs, err := cl.ListJobs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	for _, j := range jobs {
		fmt.Printf("%s %s\n", j.Status, j.Name)
	}
}
