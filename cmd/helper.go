package cmd

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/adamnew123456/jobmon/pkg/config"
	"github.com/adamnew123456/jobmon/pkg/utils"
)

func isDaemonRunning() bool {
	daemonPid, err := utils.ReadPid(cfg.Supervisor.PidFile)
	if err != nil {
		return false
	}

	if daemonPid < 0 {
		return false
	}

	return isPidActive(daemonPid)
}

func isPidActive(p int) bool {
	_, err := syscall.Getpgid(p)

	return err == nil
}

func tryRunDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	args := []string{"daemon", "--config", config.ConfigFileFlag}

	cmd := exec.Command(exe, args...)
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	cmd.Stdin = os.Stdin

	return cmd.Start()
}
