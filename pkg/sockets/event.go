package sockets

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/adamnew123456/jobmon/pkg/bus"
	"github.com/adamnew123456/jobmon/pkg/supervisor"
	"github.com/adamnew123456/jobmon/pkg/wire"
)

// EventServer accepts connections on the event socket and streams every
// RUNNING/STOPPED transition to each connected subscriber until it
// disconnects or falls behind (spec.md 4.D, 4.F).
type EventServer struct {
	listener net.Listener
	engine   *supervisor.Engine
	logger   *zap.SugaredLogger
}

func NewEventServer(l net.Listener, engine *supervisor.Engine, logger *zap.SugaredLogger) *EventServer {
	return &EventServer{listener: l, engine: engine, logger: logger}
}

func (s *EventServer) Serve(ctx context.Context) {
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

func (s *EventServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sub := s.engine.Subscribe("")
	defer s.engine.Unsubscribe(sub)

	enc := wire.NewEncoder(conn)

	for {
		rec, err := sub.Recv(ctx)
		if err != nil {
			if err == bus.ErrSlowSubscriber {
				s.logger.Warnw("event subscriber disconnected, too slow", "remote", conn.RemoteAddr())
			}
			return
		}

		if err := enc.Encode(wire.Event{Job: rec.Job, Status: rec.Status}); err != nil {
			return
		}
	}
}
