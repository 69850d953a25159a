package utils

import (
	"fmt"
	"os"

	"github.com/adamnew123456/jobmon/pkg/config"
)

// EnsureControlDir makes sure cfg's control directory exists and is
// writable before the control/event sockets are opened in it.
func EnsureControlDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Supervisor.ControlDir, 0755); err != nil {
		return fmt.Errorf("creating control dir %q: %w", cfg.Supervisor.ControlDir, err)
	}
	if err := CheckPerm(cfg.Supervisor.ControlDir); err != nil {
		return fmt.Errorf("control dir %q is not writable: %w", cfg.Supervisor.ControlDir, err)
	}
	return nil
}
