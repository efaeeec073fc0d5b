package socket

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/corey/seek/internal/ports"
)

// AppQueries is what server handlers need from the app.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	Search(params SearchParams, requestID string) *ports.Response
	Health() HealthResult
	Reindex() (ReindexResult, error)
	Import(path string) (ReindexResult, error)
}

// Server is the daemon that listens on a Unix socket and serves search requests.
// Searches run on a shared worker pool so a burst of connections cannot
// spawn unbounded query goroutines.
type Server struct {
	queries  AppQueries
	pool     *ants.Pool
	log      *slog.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server. pool runs search requests; log may be nil.
func NewServer(queries AppQueries, pool *ants.Pool, sockPath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		queries:    queries,
		pool:       pool,
		log:        log,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent, so a remote shutdown followed by a signal is fine.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodSearch:
		return s.handleSearch(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodReindex:
		return s.handleReindex(req)
	case MethodImport:
		return s.handleImport(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleSearch(req Request) Response {
	// Re-marshal params to decode into SearchParams
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: "invalid search params"}
	}
	var params SearchParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid search params"}
	}

	start := time.Now()
	var resp *ports.Response
	if err := RunOnPool(s.pool, func() { resp = s.queries.Search(params, req.ID) }); err != nil {
		s.log.Warn("search rejected", "id", req.ID, "error", err)
		return Response{ID: req.ID, Error: err.Error()}
	}
	elapsed := time.Since(start)
	s.log.Debug("search", "id", req.ID, "query", params.Query, "results", len(resp.Results), "elapsed", elapsed)

	return Response{
		ID:     req.ID,
		Result: SearchResult{Response: *resp, Elapsed: elapsed.String()},
	}
}

// RunOnPool runs fn on pool and waits for it. A nil pool runs fn inline.
func RunOnPool(pool *ants.Pool, fn func()) error {
	if pool == nil {
		fn()
		return nil
	}
	done := make(chan struct{})
	err := pool.Submit(func() {
		defer close(done)
		fn()
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return fmt.Errorf("server shutting down: %w", err)
		}
		return fmt.Errorf("submit search: %w", err)
	}
	<-done
	return nil
}

func (s *Server) handleHealth(req Request) Response {
	h := s.queries.Health()
	h.Uptime = time.Since(s.started).Round(time.Second).String()
	return Response{ID: req.ID, Result: h}
}

func (s *Server) handleReindex(req Request) Response {
	result, err := s.queries.Reindex()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleImport(req Request) Response {
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: "invalid import params"}
	}
	var params ImportParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil || params.Path == "" {
		return Response{ID: req.ID, Error: "invalid import params"}
	}
	result, err := s.queries.Import(params.Path)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", "id", resp.ID, "error", err)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
