// Package utils
package utils

import (
	"fmt"
	"os"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
)

var RuntimeInfo, _ = debug.ReadBuildInfo()
var RuntimeModuleInfo = strings.Split(RuntimeInfo.Main.Path, "/")
var RuntimeModuleName = RuntimeModuleInfo[len(RuntimeModuleInfo)-1]

var pidPattern = regexp.MustCompile(`^[0-9]+$`)

// CheckPerm verifies tmpDir is writable by actually creating and
// removing a scratch file in it, rather than inspecting permission
// bits (which can lie under ACLs, other uids, etc).
func CheckPerm(tmpDir string) error {
	tmpFile, err := os.CreateTemp(tmpDir, "*")
	if err != nil {
		return err
	}
	return os.Remove(tmpFile.Name())
}

// ReadPid reads and parses the pid recorded at pidFile by
// pkg/daemonize.WritePidFile.
func ReadPid(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return -1, err
	}

	pidStr := strings.TrimSpace(string(data))
	if !pidPattern.MatchString(pidStr) {
		return -1, fmt.Errorf("pidfile %s does not contain a pid: %q", pidFile, pidStr)
	}
	return strconv.Atoi(pidStr)
}
