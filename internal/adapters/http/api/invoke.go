package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Command names the host shell invokes.
const (
	CommandAddScore     = "add_score"
	CommandGetTopScores = "get_top_scores"
)

const maxInvokeBody = 64 << 10

type commandFunc func(ctx context.Context, args json.RawMessage) (any, error)

// InvokeHandler dispatches POST /invoke/{command} to the named command. A
// successful command answers 200 with its JSON result; a failed one answers
// with a JSON string describing the error.
type InvokeHandler struct {
	commands map[string]commandFunc
}

// NewInvokeHandler creates a new invoke handler.
func NewInvokeHandler(deps Dependencies) *InvokeHandler {
	h := &InvokeHandler{}
	h.commands = map[string]commandFunc{
		CommandAddScore:     addScoreCommand(deps),
		CommandGetTopScores: getTopScoresCommand(deps),
	}
	return h
}

// addScoreArgs uses pointers so a missing key is distinguishable from a zero value.
type addScoreArgs struct {
	Name *string  `json:"name"`
	Time *float64 `json:"time"`
}

type getTopScoresArgs struct {
	Limit *int `json:"limit"`
}

func addScoreCommand(deps Dependencies) commandFunc {
	const op = "api.add_score"
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args addScoreArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, WrapKind(op, ErrBadRequest, err)
		}
		switch {
		case args.Name == nil:
			return nil, WrapKind(op, ErrBadRequest, fmt.Errorf("missing required key name"))
		case args.Time == nil:
			return nil, WrapKind(op, ErrBadRequest, fmt.Errorf("missing required key time"))
		}
		score, err := deps.AddScore(ctx, *args.Name, *args.Time)
		if err != nil {
			return nil, Wrap(op, err)
		}
		return score, nil
	}
}

func getTopScoresCommand(deps Dependencies) commandFunc {
	const op = "api.get_top_scores"
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args getTopScoresArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, WrapKind(op, ErrBadRequest, err)
		}
		if args.Limit == nil {
			return nil, WrapKind(op, ErrBadRequest, fmt.Errorf("missing required key limit"))
		}
		scores, err := deps.TopScores(ctx, *args.Limit)
		if err != nil {
			return nil, Wrap(op, err)
		}
		return scores, nil
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// HandleInvoke handles POST /invoke/{command} requests.
func (h *InvokeHandler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	const op = "api.invoke"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/invoke/")
	cmd, ok := h.commands[name]
	if !ok || name == "" || strings.Contains(name, "/") {
		writeErrorString(w, http.StatusNotFound, WrapKind(op, ErrUnknownCommand, fmt.Errorf("%q", name)))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInvokeBody))
	if err != nil {
		writeErrorString(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := cmd(r.Context(), body)
	if err != nil {
		writeErrorString(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
