package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/flumox/flumox-server/internal/action"
	"github.com/flumox/flumox-server/internal/apperr"
	"github.com/flumox/flumox-server/internal/session"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/flumox/flumox-server/internal/sync"
	"github.com/flumox/flumox-server/internal/view"
	"github.com/flumox/flumox-server/internal/widget"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, reason := apperr.Classify(err)
	writeJSON(w, status, map[string]string{"result": string(reason)})
}

// authenticate resolves the bearer token carried on authTokenHeader to
// the game and team it belongs to.
func (s *Server) authenticate(r *http.Request) (gameID, teamID uuid.UUID, err error) {
	raw := r.Header.Get(authTokenHeader)
	if raw == "" {
		return uuid.Nil, uuid.Nil, apperr.New(http.StatusUnauthorized, apperr.ReasonUnauthorized, "api: missing auth token")
	}
	tok, err := session.ParseToken(raw)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.New(http.StatusUnauthorized, apperr.ReasonUnauthorized, "api: malformed auth token")
	}
	return s.store.TeamBySessionToken(r.Context(), tok)
}

type loginRequest struct {
	AccessCode string `json:"access_code"`
}

type loginResponse struct {
	Result string            `json:"result"`
	Token  *session.Token    `json:"token,omitempty"`
	Team   *storage.TeamInfo `json:"team,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"result": "bad_request"})
		return
	}

	gameID, teamID, name, tok, err := s.store.Login(r.Context(), req.AccessCode)
	if err != nil {
		if err == storage.ErrInvalidAccessCode {
			s.log.Event("login_failed", req.AccessCode, "incorrect access code")
			writeJSON(w, http.StatusOK, loginResponse{Result: "incorrect-code"})
			return
		}
		s.log.Error("login: " + err.Error())
		writeError(w, err)
		return
	}

	s.log.Event("login_succeeded", teamID.String(), name)
	writeJSON(w, http.StatusOK, loginResponse{
		Result: "success",
		Token:  &tok,
		Team:   &storage.TeamInfo{Game: gameID, Team: teamID, Name: name},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	gameID, teamID, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := s.store.TeamInfo(r.Context(), gameID, teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	gameID, teamID, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	game, ids, err := s.store.LoadState(r.Context(), nil, gameID, teamID)
	if err != nil {
		s.log.Error("view: " + err.Error())
		writeError(w, err)
		return
	}
	render, err := view.Build(game, ids, time.Now())
	if err != nil {
		s.log.Error("view: " + err.Error())
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render)
}

type submission struct {
	Widget    uuid.UUID         `json:"widget"`
	Kind      widget.ActionKind `json:"kind"`
	Answer    string            `json:"answer,omitempty"`
	HintIdent string            `json:"ident,omitempty"`
}

type submissionResponse struct {
	Result string        `json:"result"`
	Toast  *widget.Toast `json:"toast,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	gameID, teamID, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var sub submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, submissionResponse{Result: "dispatch-failed"})
		return
	}

	act := widget.Action{Kind: sub.Kind, Answer: sub.Answer, HintIdent: sub.HintIdent}
	result, err := action.Submit(r.Context(), s.store, s.channels, s.limiter, gameID, teamID, sub.Widget, act, nil)
	if err != nil {
		if err == widget.ErrActionNotSupported || widget.IsUnknownIdent(err) {
			writeJSON(w, http.StatusOK, submissionResponse{Result: "dispatch-failed"})
			return
		}
		if err == widget.ErrNotPossible {
			writeJSON(w, http.StatusOK, submissionResponse{Result: "not-possible"})
			return
		}
		s.log.Error("action: " + err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submissionResponse{Result: "success", Toast: result.Toast})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("sync: websocket upgrade failed: " + err.Error())
		return
	}
	go func() {
		if err := sync.Run(s.ctx, ws, s.store, s.channels, s.log); err != nil {
			s.log.Warn("sync: connection closed: " + err.Error())
		}
	}()
}
