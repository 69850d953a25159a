package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamnew123456/jobmon/pkg/bus"
	"github.com/adamnew123456/jobmon/pkg/config"
	"github.com/adamnew123456/jobmon/pkg/daemonize"
	"github.com/adamnew123456/jobmon/pkg/logger"
	"github.com/adamnew123456/jobmon/pkg/reaper"
	"github.com/adamnew123456/jobmon/pkg/sockets"
	"github.com/adamnew123456/jobmon/pkg/supervisor"
	"github.com/adamnew123456/jobmon/pkg/utils"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the jobmon supervisor itself",
	Run:   execDaemonCmd,
}

func init() {
	daemonCmd.Flags().BoolVarP(&config.ForegroundFlag, "foreground", "f", false, "stay attached to the controlling terminal")
	rootCmd.AddCommand(daemonCmd)
}

func execDaemonCmd(cmd *cobra.Command, args []string) {
	mustLoadConfig()

	if !config.ForegroundFlag {
		if err := daemonize.Daemonize(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}

	if err := utils.EnsureControlDir(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Options{Level: cfg.Supervisor.LogLevel, LogFile: cfg.Supervisor.LogFile})
	log := logger.Logging("daemon")

	if err := daemonize.WritePidFile(cfg.Supervisor.PidFile, os.Getpid()); err != nil {
		log.Fatalw("writing pidfile", "error", err)
	}
	defer daemonize.RemovePidFile(cfg.Supervisor.PidFile)

	eventBus := bus.New(bus.DefaultWatermark)
	engine := supervisor.New(cfg, eventBus, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go engine.Run(ctx)
	go reaper.Run(ctx, engine.PidTable(), engine, logger.Logging("reaper"))

	engine.Bootstrap()

	controlListener, err := sockets.Listen(cfg.ControlSocketPath(), logger.Logging("control-socket"))
	if err != nil {
		log.Fatalw("opening control socket", "error", err)
	}
	defer controlListener.Close()

	eventListener, err := sockets.Listen(cfg.EventSocketPath(), logger.Logging("event-socket"))
	if err != nil {
		log.Fatalw("opening event socket", "error", err)
	}
	defer eventListener.Close()

	terminateCh := make(chan struct{}, 1)
	requestTerminate := func() {
		select {
		case terminateCh <- struct{}{}:
		default:
		}
	}

	control := sockets.NewControlServer(controlListener, engine, logger.Logging("control"), requestTerminate)
	events := sockets.NewEventServer(eventListener, engine, logger.Logging("events"))

	go control.Serve(ctx)
	go events.Serve(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-sigCh:
		log.Info("received shutdown signal")
	case <-terminateCh:
		log.Info("received terminate request")
	}

	engine.Terminate(context.Background(), supervisor.DefaultShutdownDeadline)
	cancel()
}
