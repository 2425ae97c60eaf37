package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
)

const gatewayShutdownTimeout = 5 * time.Second

// WebSocketGateway is a second front door onto the same relay: it upgrades
// HTTP connections on /ws and feeds them through the identical Session
// state machine. WebSocket frames map cleanly onto the relay's framing
// model, since one frame really is one logical message, which a raw TCP
// stream only approximates.
type WebSocketGateway struct {
	addr           string
	registry       *runtime.Registry
	router         *runtime.Router
	supervisor     contract.ISupervisor
	log            *slog.Logger
	readBufferSize int
	upgrader       websocket.Upgrader
}

func NewWebSocketGateway(
	log *slog.Logger,
	addr string,
	registry *runtime.Registry,
	router *runtime.Router,
	supervisor contract.ISupervisor,
	readBufferSize int,
) *WebSocketGateway {
	return &WebSocketGateway{
		addr:           addr,
		registry:       registry,
		router:         router,
		supervisor:     supervisor,
		log:            log,
		readBufferSize: readBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  domain.MaxMessageSize,
			WriteBufferSize: domain.MaxMessageSize,
			// The relay has no origin policy; auth is out of scope.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (w *WebSocketGateway) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(rw http.ResponseWriter, req *http.Request) {
		conn, err := w.upgrader.Upgrade(rw, req, nil)
		if err != nil {
			w.log.Warn("WebSocket upgrade failed", "remote", req.RemoteAddr, "error", err)
			return
		}
		session := runtime.NewSession(newWSStream(conn), w.registry, w.router, w.log, w.readBufferSize)
		w.supervisor.Start(ctx, session)
	})

	server := &http.Server{Addr: w.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gatewayShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	w.log.Info("WebSocket gateway listening", "addr", w.addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// wsStream adapts a gorilla connection to the MessageStream contract.
// Read yields exactly one message per call, truncated to the buffer if the
// frame is larger.
type wsStream struct {
	conn *websocket.Conn
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn}
}

func (s *wsStream) Read(p []byte) (int, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return 0, err
	}
	return copy(p, data), nil
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
