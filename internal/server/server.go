package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests may run after
// the serve context is cancelled.
const shutdownTimeout = 5 * time.Second

// HashesResponse is the summary body: the root hash identifying the
// file and how many real pieces it has.
type HashesResponse struct {
	Hash   string `json:"hash"`
	Pieces int    `json:"pieces"`
}

// PieceResponse carries one piece plus the sibling chain a client
// needs to verify it against the root hash.
type PieceResponse struct {
	Content string   `json:"content"`
	Proof   []string `json:"proof"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes a Registry of trees over two read-only HTTP
// endpoints:
//
//	GET /hashes                        summary of the registered file
//	GET /piece/{hashID}/{pieceIndex}   piece content + Merkle proof
type Server struct {
	log      *slog.Logger
	addr     string
	registry *Registry
}

// NewServer returns a Server bound to addr, answering from registry.
func NewServer(log *slog.Logger, addr string, registry *Registry) *Server {
	return &Server{
		log:      log,
		addr:     addr,
		registry: registry,
	}
}

// Handler builds the route table. Split out from Run so tests can
// drive it through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hashes", s.handleHashes)
	mux.HandleFunc("GET /piece/{hashID}/{pieceIndex}", s.handlePiece)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHashes(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.registry.First()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no files registered")
		return
	}

	s.writeJSON(w, http.StatusOK, HashesResponse{
		Hash:   tree.RootHash().String(),
		Pieces: tree.PieceCount(),
	})
}

func (s *Server) handlePiece(w http.ResponseWriter, r *http.Request) {
	hashID := r.PathValue("hashID")
	indexStr := r.PathValue("pieceIndex")

	tree, ok := s.registry.Get(hashID)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "no files available for hash requested")
		return
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid piece requested")
		return
	}

	content, err := tree.PieceContent(index)
	if err != nil {
		// Out-of-range and padding-only indexes both land here.
		s.writeError(w, http.StatusBadRequest, "invalid piece requested")
		return
	}

	proof, err := tree.Proof(index)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid piece requested")
		return
	}

	hexProof := make([]string, len(proof))
	for i, d := range proof {
		hexProof[i] = d.String()
	}

	s.writeJSON(w, http.StatusOK, PieceResponse{
		Content: content,
		Proof:   hexProof,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
