package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-hub-service/internal/domain"
	"trivia-hub-service/internal/game"
)

// FileLister enumerates the available question files for UI pickers.
type FileLister interface {
	ListFiles() ([]string, error)
}

// Handler exposes the game control surface over HTTP. It is the host-side
// replacement for a hub's service registry: start/stop/advance/answer plus an
// endpoint for inbound notification action callbacks.
type Handler struct {
	session *game.Session
	files   FileLister
}

func NewHandler(session *game.Session, files FileLister) *Handler {
	return &Handler{session: session, files: files}
}

// RegisterRoutes attaches all game endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /game/start", h.handleStart)
	mux.HandleFunc("POST /game/stop", h.handleStop)
	mux.HandleFunc("POST /game/advance", h.handleAdvance)
	mux.HandleFunc("POST /game/answer", h.handleAnswer)
	mux.HandleFunc("POST /actions", h.handleAction)
	mux.HandleFunc("GET /game/status", h.handleStatus)
	mux.HandleFunc("GET /game/files", h.handleFiles)
}

type startRequest struct {
	File       string   `json:"file"`
	Difficulty string   `json:"difficulty"`
	Count      int      `json:"count"`
	Devices    []string `json:"devices"`
}

type answerRequest struct {
	Player int    `json:"player"`
	Label  string `json:"label"`
}

type advanceRequest struct {
	Player int `json:"player"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.session.Start(r.Context(), game.StartConfig{
		File:       req.File,
		Difficulty: req.Difficulty,
		Count:      req.Count,
		Devices:    req.Devices,
	}); err != nil {
		log.Printf("start game: %v", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Stop(r.Context()); err != nil {
		log.Printf("stop game: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Player == 0 {
		// solo-button case: a bare advance drives player 1
		req.Player = 1
	}
	if err := h.session.Advance(r.Context(), req.Player); err != nil {
		log.Printf("advance player %d: %v", req.Player, err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleAnswer checks a player's answer. Stale or malformed submissions are
// logged and swallowed so a double-tap never surfaces as a caller error.
func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.checkAnswer(r, req.Player, domain.Label(req.Label))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleAction receives forwarded notification action events from the hub's
// webhook automation (an alternative to the websocket event subscription).
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	label, player, err := game.ParseAction(req.Action)
	if err != nil {
		log.Printf("ignoring action %q: %v", req.Action, err)
		writeJSON(w, http.StatusOK, okResponse{OK: true})
		return
	}
	h.checkAnswer(r, player, label)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) checkAnswer(r *http.Request, player int, label domain.Label) {
	if err := h.session.CheckAnswer(r.Context(), player, label); err != nil {
		log.Printf("answer from player %d (%s): %v", player, label, err)
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Status())
}

func (h *Handler) handleFiles(w http.ResponseWriter, _ *http.Request) {
	files, err := h.files.ListFiles()
	if err != nil {
		log.Printf("list question files: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoQuestionFile),
		errors.Is(err, domain.ErrNoPlayers),
		errors.Is(err, domain.ErrUnknownPlayer),
		errors.Is(err, domain.ErrDifficultyNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGameActive),
		errors.Is(err, domain.ErrGameNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{OK: false, Error: err.Error()})
}
