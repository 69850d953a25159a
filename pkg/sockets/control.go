package sockets

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"

	"github.com/adamnew123456/jobmon/pkg/supervisor"
	"github.com/adamnew123456/jobmon/pkg/wire"
)

// ControlServer accepts connections on the control socket and serves the
// start/stop/status/list-jobs/wait/terminate commands against an Engine.
type ControlServer struct {
	listener  net.Listener
	engine    *supervisor.Engine
	logger    *zap.SugaredLogger
	terminate func()
}

func NewControlServer(l net.Listener, engine *supervisor.Engine, logger *zap.SugaredLogger, terminate func()) *ControlServer {
	return &ControlServer{listener: l, engine: engine, logger: logger, terminate: terminate}
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed.
func (s *ControlServer) Serve(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warnw("accept failed", "error", err)
			return
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *ControlServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dec := wire.NewDecoder(conn)
	enc := wire.NewEncoder(conn)

	// A single dedicated goroutine owns all reads off this connection,
	// so that a "wait" in flight can still notice the client hanging
	// up without racing a second reader against the decoder.
	reqCh := make(chan wire.Request)
	go func() {
		defer close(reqCh)
		for {
			var req wire.Request
			if err := dec.Decode(&req); err != nil {
				return
			}
			select {
			case reqCh <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-reqCh:
			if !ok {
				return
			}
			if !s.handleRequest(ctx, conn, reqCh, &req, enc) {
				return
			}
		}
	}
}

// handleRequest processes one request and writes its response. It
// returns false when the connection should be closed (terminate, or the
// client hung up mid-wait).
func (s *ControlServer) handleRequest(ctx context.Context, conn net.Conn, reqCh <-chan wire.Request, req *wire.Request, enc *wire.Encoder) bool {
	switch req.Command {
	case wire.CmdStart:
		return s.respond(enc, s.engine.Start(req.Job), "")
	case wire.CmdStop:
		return s.respond(enc, s.engine.Stop(req.Job), "")
	case wire.CmdStatus:
		phase, err := s.engine.Status(req.Job)
		return s.respond(enc, err, phase)
	case wire.CmdListJobs:
		jobs := s.engine.ListJobs()
		payload := make([]wire.JobStatus, 0, len(jobs))
		for _, j := range jobs {
			payload = append(payload, wire.JobStatus{Name: j.Name, Status: j.Phase})
		}
		_ = enc.Encode(wire.Response{OK: true, Payload: payload})
		return true
	case wire.CmdWait:
		return s.handleWait(ctx, reqCh, req, enc)
	case wire.CmdTerminate:
		_ = enc.Encode(wire.Response{OK: true})
		if s.terminate != nil {
			go s.terminate()
		}
		return false
	default:
		_ = enc.Encode(wire.Response{OK: false, Error: wire.ErrBadRequest})
		return true
	}
}

func (s *ControlServer) handleWait(ctx context.Context, reqCh <-chan wire.Request, req *wire.Request, enc *wire.Encoder) bool {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		phase string
		err   error
	}
	resultCh := make(chan result, 1)
	go func() {
		rec, err := s.engine.Wait(waitCtx, req.Job)
		resultCh <- result{phase: rec.Status, err: err}
	}()

	select {
	case r := <-resultCh:
		return s.respond(enc, r.err, r.phase)
	case _, ok := <-reqCh:
		cancel()
		<-resultCh
		return ok
	case <-ctx.Done():
		cancel()
		<-resultCh
		return false
	}
}

func (s *ControlServer) respond(enc *wire.Encoder, err error, phase string) bool {
	if err == nil {
		if phase != "" {
			_ = enc.Encode(wire.Response{OK: true, Payload: phase})
		} else {
			_ = enc.Encode(wire.Response{OK: true})
		}
		return true
	}

	_ = enc.Encode(wire.Response{OK: false, Error: errorCode(err)})
	return true
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, supervisor.ErrUnknownJob):
		return wire.ErrUnknownJob
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return wire.ErrAlreadyRunning
	case errors.Is(err, supervisor.ErrAlreadyStopped):
		return wire.ErrAlreadyStopped
	default:
		var spawnErr *supervisor.SpawnError
		if errors.As(err, &spawnErr) {
			return wire.ErrSpawnFailed
		}
		return wire.ErrBadRequest
	}
}
