package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ScoresHandler serves the REST aliases of the two commands.
type ScoresHandler struct {
	deps         Dependencies
	defaultLimit int
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies, defaultLimit int) *ScoresHandler {
	if defaultLimit < 1 {
		defaultLimit = 5
	}
	return &ScoresHandler{deps: deps, defaultLimit: defaultLimit}
}

type scoreRequest struct {
	Name string  `json:"name"`
	Time float64 `json:"time"`
}

// HandleScores handles GET /scores?limit=N and POST /scores.
func (h *ScoresHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ScoresHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_scores"
	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	scores, err := h.deps.TopScores(r.Context(), n)
	if err != nil {
		status := statusFor(err)
		writeError(w, status, errorCode(status), Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (h *ScoresHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_score"
	var req scoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInvokeBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	score, err := h.deps.AddScore(r.Context(), req.Name, req.Time)
	if err != nil {
		status := statusFor(err)
		writeError(w, status, errorCode(status), Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, score)
}
