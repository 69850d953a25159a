// Package sockets implements the two local endpoints spec.md 4.F
// describes: the control socket (one JSON request/response exchange per
// line) and the event socket (a one-way newline-delimited JSON stream).
// Both are thin translators between wire JSON and dispatcher calls; they
// carry no state machine logic of their own.
package sockets

import (
	"fmt"
	"net"
	"os"

	"go.uber.org/zap"
)

// Listen opens a Unix-domain socket at path, removing any stale socket
// file left behind by a previous, uncleanly-terminated run.
func Listen(path string, logger *zap.SugaredLogger) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", path, err)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}

	logger.Infow("listening", "socket", path)
	return l, nil
}
