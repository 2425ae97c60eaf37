package workers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"chat-relay/contract"
	"chat-relay/runtime"
)

const acceptRetryDelay = 100 * time.Millisecond

// TCPListener accepts raw stream connections and spawns one supervised
// Session per connection. Accept failures are logged and retried, never
// fatal to the process; a fatal Listen failure is returned so the
// supervisor restarts the worker.
type TCPListener struct {
	addr           string
	registry       *runtime.Registry
	router         *runtime.Router
	supervisor     contract.ISupervisor
	log            *slog.Logger
	readBufferSize int

	// Ready receives the bound address once, letting callers (and tests)
	// bind port 0 and discover the port actually chosen.
	Ready chan net.Addr
}

func NewTCPListener(
	log *slog.Logger,
	addr string,
	registry *runtime.Registry,
	router *runtime.Router,
	supervisor contract.ISupervisor,
	readBufferSize int,
) *TCPListener {
	return &TCPListener{
		addr:           addr,
		registry:       registry,
		router:         router,
		supervisor:     supervisor,
		log:            log,
		readBufferSize: readBufferSize,
		Ready:          make(chan net.Addr, 1),
	}
}

func (w *TCPListener) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", w.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", w.addr, err)
	}
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	w.log.Info("Relay listening", "addr", listener.Addr().String())
	select {
	case w.Ready <- listener.Addr():
	default:
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Warn("Accept failed, retrying", "error", err)
			time.Sleep(acceptRetryDelay)
			continue
		}
		session := runtime.NewSession(conn, w.registry, w.router, w.log, w.readBufferSize)
		w.supervisor.Start(ctx, session)
	}
}
