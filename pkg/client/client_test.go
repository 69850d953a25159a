package client_test

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adamnew123456/jobmon/pkg/client"
	"github.com/adamnew123456/jobmon/pkg/wire"
)

// fakeServer accepts exactly one connection, decodes one request, and
// replies with resp.
func fakeServer(t *testing.T, sockPath string, resp wire.Response) {
	t.Helper()

	l, err := net.Listen("unix", sockPath)
	require.NoError(t, err)

	go func() {
		defer l.Close()
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var req wire.Request
		dec := wire.NewDecoder(conn)
		if err := dec.Decode(&req); err != nil {
			return
		}

		enc := wire.NewEncoder(conn)
		_ = enc.Encode(resp)
	}()
}

func TestStartSuccess(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "control.sock")
	fakeServer(t, sockPath, wire.Response{OK: true})

	c := client.New(sockPath)
	require.NoError(t, c.Start("web"))
}

func TestStartErrorResponse(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "control.sock")
	fakeServer(t, sockPath, wire.Response{OK: false, Error: wire.ErrUnknownJob})

	c := client.New(sockPath)
	err := c.Start("nope")
	require.Error(t, err)

	var errResp *client.ErrResponse
	require.ErrorAs(t, err, &errResp)
	require.Equal(t, wire.ErrUnknownJob, errResp.Code)
}

func TestDialFailureIsReported(t *testing.T) {
	c := client.New(filepath.Join(t.TempDir(), "does-not-exist.sock"))
	require.Error(t, c.Start("web"))
}

func TestStatusReturnsPhase(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "control.sock")
	fakeServer(t, sockPath, wire.Response{OK: true, Payload: "RUNNING"})

	c := client.New(sockPath)
	phase, err := c.Status("web")
	require.NoError(t, err)
	require.Equal(t, "RUNNING", phase)
}

