// Command konversond is a thin demonstration of the engine's external
// interface: a search request/reply endpoint and a websocket stream of
// per-depth progress. It holds no game-session state of its own — no
// turn loop, no move history, no persistence — the engine's Request/Reply
// contract is the entire surface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/starfish1900/konverson/internal/engine"
)

type placementDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type moveDTO struct {
	Placements []placementDTO `json:"placements"`
	Score      int            `json:"score,omitempty"`
}

type pieceDTO struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Color   string `json:"color"`
	Posture string `json:"posture"`
}

type searchRequestDTO struct {
	BoardSize          int            `json:"board_size"`
	Pieces             []pieceDTO     `json:"pieces"`
	CurrentPlayerIndex int            `json:"current_player_index"`
	TurnCount          int            `json:"turn_count"`
	Config             *engine.Config `json:"config,omitempty"`
}

type searchReplyDTO struct {
	BestMove *moveDTO `json:"best_move"`
	Score    int      `json:"score"`
	Depth    int      `json:"depth"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(os.Stdout).With().Timestamp().Logger()

	configStore := engine.NewConfigStore(engine.DefaultConfig())
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, configStore.Get())
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		var cfg engine.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid config payload"})
			return
		}
		if err := cfg.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		configStore.Update(cfg)
		writeJSON(w, http.StatusOK, configStore.Get())
	})

	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		handleSearch(w, r, configStore, hub)
	})

	r.Get("/ws/ghost", func(w http.ResponseWriter, r *http.Request) {
		serveGhostWS(hub, w, r)
	})

	server := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Msg("konversond listening on :8080")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info().Err(sigCtx.Err()).Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}
	cancel()
	if runErr != nil {
		log.Error().Err(runErr).Msg("exiting after server error")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func handleSearch(w http.ResponseWriter, r *http.Request, configStore *engine.ConfigStore, hub *Hub) {
	var payload searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	cfg := configStore.Get()
	if payload.Config != nil {
		cfg = *payload.Config
	}
	if payload.BoardSize != 0 {
		cfg.BoardSize = payload.BoardSize
	}
	if err := cfg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	board, err := boardFromDTO(cfg.BoardSize, payload.Pieces)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	requestID := middleware.GetReqID(r.Context())
	orchestrator := engine.NewOrchestrator(cfg)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(cfg.AISearchTimeMS+1000)*time.Millisecond)
	defer cancel()

	reply, err := orchestrator.Search(ctx, engine.Request{
		Board:              board,
		CurrentPlayerIndex: payload.CurrentPlayerIndex,
		TurnCount:          payload.TurnCount,
		Config:             cfg,
		OnDepth: func(depth int, bestMove engine.Move, score int) {
			hub.Publish(ghostUpdate{
				RequestID: requestID,
				Depth:     depth,
				Score:     score,
				Move:      moveToDTO(bestMove),
			})
		},
	})
	if err != nil && !errors.Is(err, engine.ErrNoLegalMove) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := searchReplyDTO{Score: reply.Score, Depth: reply.Depth}
	if reply.BestMove != nil {
		dto := moveToDTO(*reply.BestMove)
		resp.BestMove = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

func serveGhostWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{send: make(chan []byte, 16)}
	hub.Register(client)

	go func() {
		defer conn.Close()
		_ = writeWSWithHeartbeat(conn, client.send)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}

func boardFromDTO(size int, pieces []pieceDTO) (engine.Board, error) {
	b := engine.NewBoard(size)
	for _, p := range pieces {
		color, err := parseColor(p.Color)
		if err != nil {
			return engine.Board{}, err
		}
		posture, err := parsePosture(p.Posture)
		if err != nil {
			return engine.Board{}, err
		}
		if !b.InBounds(p.Row, p.Col) {
			return engine.Board{}, errors.New("piece out of bounds")
		}
		b.Set(p.Row, p.Col, engine.Piece{Color: color, Posture: posture})
	}
	return b, nil
}

func parseColor(s string) (engine.Color, error) {
	switch s {
	case "A":
		return engine.ColorA, nil
	case "B":
		return engine.ColorB, nil
	case "C":
		return engine.ColorC, nil
	case "D":
		return engine.ColorD, nil
	default:
		return 0, errors.New("unknown color: " + s)
	}
}

func parsePosture(s string) (engine.Posture, error) {
	switch s {
	case "new", "":
		return engine.PostureNew, nil
	case "old":
		return engine.PostureOld, nil
	default:
		return 0, errors.New("unknown posture: " + s)
	}
}

func moveToDTO(m engine.Move) moveDTO {
	dto := moveDTO{Score: m.Score}
	for _, p := range m.Placements {
		dto.Placements = append(dto.Placements, placementDTO{Row: p.Row, Col: p.Col})
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
