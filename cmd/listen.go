package cmd

import (
	"fmt"
	"log"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamnew123456/jobmon/pkg/wire"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Stream job phase transitions as they happen",
	Args:  cobra.NoArgs,
	Run:   execListenCmd,
}

func init() {
	listenCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		mustLoadConfig()
		if !isDaemonRunning() {
			log.Fatalln("ERROR: jobmon daemon is not running.")
		}
	}

	rootCmd.AddCommand(listenCmd)
}

func execListenCmd(cmd *cobra.Command, args []string) {
	conn, err := net.Dial("unix", cfg.EventSocketPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	dec := wire.NewDecoder(conn)
	for {
		var evt wire.Event
		if err := dec.Decode(&evt); err != nil {
			return
		}
		fmt.Printf("%s %s\n", evt.Status, evt.Job)
	}
}
