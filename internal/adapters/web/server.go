package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/ports"
)

// Server serves the search page and JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	pool     *ants.Pool
	log      *slog.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // <data dir>/http.port
}

// NewServer creates an HTTP server. The portFilePath is where the bound port
// is written for discovery; empty skips it. log may be nil.
func NewServer(queries socket.AppQueries, pool *ants.Pool, portFilePath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		queries:      queries,
		pool:         pool,
		log:          log,
		portFilePath: portFilePath,
		started:      time.Now(),
	}
}

// DefaultPort computes a data-dir-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(dataDir string) int {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		abs = dataDir
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Router builds the route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleSearchGet).Methods("GET")
	api.HandleFunc("/search", s.handleSearchPost).Methods("POST")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/reindex", s.handleReindex).Methods("POST")

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	router.Handle("/", http.FileServer(http.FS(static))).Methods("GET")
	return router
}

// Start begins listening on the preferred port (0 picks a free one) and
// writes the bound port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.portFilePath != "" {
		if err := os.WriteFile(s.portFilePath, []byte(strconv.Itoa(s.port)), 0644); err != nil {
			s.log.Warn("write port file", "path", s.portFilePath, "error", err)
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("http serve", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the search page URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// handleSearchGet serves GET /api/search?q=&subfilter=&focus=&limit=&web=.
// subfilter applies to the scope named by the query prefix.
func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	params := socket.SearchParams{Query: v.Get("q")}
	if id := v.Get("subfilter"); id != "" {
		params.Subfilter = &ports.SubfilterSelection{ID: id}
	}
	if f := v.Get("focus"); f != "" {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "focus must be a tab id")
			return
		}
		params.FocusedTabID = id
	}
	if l := v.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		params.Limit = n
	}
	params.WebSearch = v.Get("web") == "1" || v.Get("web") == "true"
	s.search(w, r, params)
}

// handleSearchPost serves POST /api/search with a SearchParams body, which
// can carry a navigation stack.
func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var params socket.SearchParams
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid search body")
		return
	}
	s.search(w, r, params)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, params socket.SearchParams) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	var resp *ports.Response
	if err := socket.RunOnPool(s.pool, func() { resp = s.queries.Search(params, requestID) }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	elapsed := time.Since(start)
	s.log.Debug("search", "id", requestID, "query", params.Query, "results", len(resp.Results), "elapsed", elapsed)

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, socket.SearchResult{Response: *resp, Elapsed: elapsed.String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.queries.Health()
	h.Uptime = time.Since(s.started).Round(time.Second).String()
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.Reindex()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
