// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quillnote/quillnote/internal/auth"
	"github.com/quillnote/quillnote/internal/mail"
	"github.com/quillnote/quillnote/internal/notes"
	"github.com/quillnote/quillnote/pkg/errutil"
)

// maxBodyBytes bounds request bodies; notes are text, not uploads.
const maxBodyBytes = 1 << 20

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type noteRequest struct {
	Content string `json:"content"`
}

type changeUsernameRequest struct {
	Username string `json:"username"`
}

type changeEmailRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	SessionID string       `json:"session_id"`
	User      userResponse `json:"user"`
	Remember  string       `json:"remember_token,omitempty"`
}

type noteResponse struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// sessionFor resolves the request's session: an explicit session id header
// wins; otherwise a fresh session is opened and, if the URL carries a
// remember token, a best-effort resume is attempted.
func (s *Server) sessionFor(r *http.Request) *auth.Session {
	if raw := r.Header.Get(SessionHeader); raw != "" {
		if id, err := ulid.Parse(raw); err == nil {
			if sess, ok := s.sessions.Get(id); ok {
				return sess
			}
		}
	}

	sess := s.sessions.Open()
	if token := r.URL.Query().Get(RememberParam); token != "" {
		s.auth.Resume(r.Context(), sess, token)
	}
	return sess
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.accounts.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	s.respond(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess := s.sessionFor(r)
	user, err := s.auth.Login(r.Context(), sess, req.Email, req.Password, req.Remember)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		s.respondError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}

	w.Header().Set(SessionHeader, sess.ID.String())
	s.respond(w, http.StatusOK, loginResponse{
		SessionID: sess.ID.String(),
		User:      userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
		Remember:  sess.RememberToken(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	s.auth.Logout(sess)
	s.sessions.Close(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.resets.RequestReset(r.Context(), req.Email); err != nil {
		if s.metrics != nil {
			s.metrics.ResetsTotal.WithLabelValues("failure").Inc()
		}
		s.respondError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ResetsTotal.WithLabelValues("success").Inc()
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	user := sess.User()
	if user == nil {
		s.respondError(w, oops.Code("AUTH_REQUIRED").Errorf("not logged in"))
		return
	}

	list, err := s.notes.ListByUser(r.Context(), user.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	out := make([]noteResponse, 0, len(list))
	for _, n := range list {
		out = append(out, noteResponse{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339)})
	}
	w.Header().Set(SessionHeader, sess.ID.String())
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	user := sess.User()
	if user == nil {
		s.respondError(w, oops.Code("AUTH_REQUIRED").Errorf("not logged in"))
		return
	}

	var req noteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.respondError(w, oops.Code("VALIDATION_NOTE").Errorf("note content cannot be empty"))
		return
	}

	id, err := s.notes.Create(r.Context(), req.Content, user.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.NoteOpsTotal.WithLabelValues("create").Inc()
	}
	s.respond(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	user := sess.User()
	if user == nil {
		s.respondError(w, oops.Code("AUTH_REQUIRED").Errorf("not logged in"))
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondError(w, oops.Code("VALIDATION_NOTE").Errorf("invalid note id"))
		return
	}

	var req noteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.respondError(w, oops.Code("VALIDATION_NOTE").Errorf("note content cannot be empty"))
		return
	}

	if err := s.notes.Update(r.Context(), id, user.ID, req.Content); err != nil {
		s.respondError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.NoteOpsTotal.WithLabelValues("update").Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	user := sess.User()
	if user == nil {
		s.respondError(w, oops.Code("AUTH_REQUIRED").Errorf("not logged in"))
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondError(w, oops.Code("VALIDATION_NOTE").Errorf("invalid note id"))
		return
	}

	if err := s.notes.Delete(r.Context(), id, user.ID); err != nil {
		s.respondError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.NoteOpsTotal.WithLabelValues("delete").Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeUsername(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	var req changeUsernameRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.accounts.ChangeUsername(r.Context(), sess, req.Username); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeEmail(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	var req changeEmailRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.accounts.ChangeEmail(r.Context(), sess, req.Email); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	var req changePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.accounts.ChangePassword(r.Context(), sess, req.Current, req.New); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleArmDelete(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	if err := s.accounts.ArmDelete(sess); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	if err := s.accounts.ConfirmDelete(r.Context(), sess); err != nil {
		s.respondError(w, err)
		return
	}
	s.sessions.Close(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	s.accounts.CancelDelete(sess)
	w.WriteHeader(http.StatusNoContent)
}

// decode parses a JSON request body; on failure it writes the error
// response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.respond(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errutil.LogError(s.logger, "encode response", err)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Every branch is
// a user-visible message; nothing is retried here.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, notes.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, mail.ErrDelivery):
		status = http.StatusBadGateway
	}

	var code string
	if oopsErr, ok := oops.AsOops(err); ok {
		code, _ = oopsErr.Code().(string)
		if status == http.StatusInternalServerError {
			switch {
			case strings.HasPrefix(code, "VALIDATION"):
				status = http.StatusBadRequest
			case code == "AUTH_REQUIRED", code == "SESSION_REQUIRED":
				status = http.StatusUnauthorized
			case code == "DELETE_NOT_ARMED":
				status = http.StatusConflict
			case code == "RESET_UNAVAILABLE":
				status = http.StatusServiceUnavailable
			}
		}
	}

	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
		s.respond(w, status, errorResponse{Error: "internal error"})
		return
	}
	s.respond(w, status, errorResponse{Error: err.Error(), Code: code})
}
