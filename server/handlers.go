package server

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/auth"
	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/export"
	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// HEALTH / SESSION
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"dataset": s.store.Status(),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Username      string          `json:"username,omitempty"`
	Dataset       *engine.Message `json:"dataset,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrCredentialsUnavailable):
		s.metrics.logins.WithLabelValues("unavailable").Inc()
		writeError(w, http.StatusServiceUnavailable, "credentials_unavailable", auth.Message(err))
		return
	case err != nil:
		s.metrics.logins.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.Message(err))
		return
	}
	s.metrics.logins.WithLabelValues("success").Inc()

	sess := s.sessions.Create(user)
	http.SetCookie(w, &http.Cookie{
		Name:     s.conf.SidCookieKey,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.conf.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	// The dashboard loads its data once someone is signed in.
	if !s.store.Status().Loaded {
		if _, err := s.store.Reload(r.Context()); err != nil {
			loggerFrom(r.Context(), s.log).WithError(err).Warn("dataset load after login failed")
		}
	}
	msg := engine.LoadMessage(s.store.Status())
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Username: user, Dataset: &msg})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.conf.SidCookieKey); err == nil {
		s.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.conf.SidCookieKey,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Username: sess.Username})
}

// ============================================================================
// DATASET
// ============================================================================

type datasetResponse struct {
	Status  roster.Status  `json:"status"`
	Message engine.Message `json:"message"`
	Fields  []string       `json:"fields,omitempty"`
}

func (s *Server) datasetResponse() datasetResponse {
	st := s.store.Status()
	resp := datasetResponse{Status: st, Message: engine.LoadMessage(st)}
	if ds := s.current(); ds != nil {
		resp.Fields = ds.FieldNames()
	}
	return resp
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.datasetResponse())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Reload(r.Context()); err != nil {
		s.metrics.reloads.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusBadGateway, s.datasetResponse())
		return
	}
	s.metrics.reloads.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, s.datasetResponse())
}

// ============================================================================
// DASHBOARD OPERATIONS
// ============================================================================

type operation func(ds *roster.Dataset, st engine.ViewState) (engine.ViewState, *engine.Outcome)

// run applies op to the session's state and writes its outcome.
func (s *Server) run(w http.ResponseWriter, r *http.Request, op operation) {
	sess := sessionFrom(r.Context())
	ds := s.current()

	var out *engine.Outcome
	sess.Update(func(st engine.ViewState) engine.ViewState {
		st, out = op(ds, st)
		return st
	})
	if out.Err != nil {
		loggerFrom(r.Context(), s.log).WithField("code", out.Code).Debug(out.Message.Text)
	}
	writeJSON(w, statusFor(out.Err), out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var c engine.Criteria
	if !decodeBody(w, r, &c) {
		return
	}
	s.run(w, r, func(ds *roster.Dataset, st engine.ViewState) (engine.ViewState, *engine.Outcome) {
		return s.engine.Search(ds, st, c)
	})
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &engine.Outcome{
		Success:    true,
		FilterOpts: s.engine.FilterOptions(s.current()),
	})
}

func (s *Server) handleTogglePivot(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.engine.TogglePivot)
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	var sel engine.Selection
	if !decodeBody(w, r, &sel) {
		return
	}
	s.run(w, r, func(ds *roster.Dataset, st engine.ViewState) (engine.ViewState, *engine.Outcome) {
		return s.engine.Pivot(ds, st, sel)
	})
}

func (s *Server) handleDrillDown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.run(w, r, func(_ *roster.Dataset, st engine.ViewState) (engine.ViewState, *engine.Outcome) {
		return s.engine.DrillDown(st, req.Key)
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "index is required")
		return
	}
	s.run(w, r, func(_ *roster.Dataset, st engine.ViewState) (engine.ViewState, *engine.Outcome) {
		return s.engine.Select(st, *req.Index)
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	s.run(w, r, func(_ *roster.Dataset, st engine.ViewState) (engine.ViewState, *engine.Outcome) {
		return s.engine.Details(st, all)
	})
}

// ============================================================================
// EXPORTS
// ============================================================================

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	rec := sessionFrom(r.Context()).State().Selected
	var buf bytes.Buffer
	if err := export.WriteRecordCSV(&buf, rec, s.engine.DateFormat()); err != nil {
		writeEngineError(w, err)
		return
	}
	attachment(w, export.ContentTypeCSV, export.RecordFilename(rec, ".csv"), buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	rec := sessionFrom(r.Context()).State().Selected
	var buf bytes.Buffer
	if err := export.WriteRecordXLSX(&buf, rec, s.engine.DateFormat()); err != nil {
		writeEngineError(w, err)
		return
	}
	attachment(w, export.ContentTypeXLSX, export.RecordFilename(rec, ".xlsx"), buf.Bytes())
}

func (s *Server) handleExportPivot(w http.ResponseWriter, r *http.Request) {
	result := sessionFrom(r.Context()).State().Pivot
	var buf bytes.Buffer
	if err := export.WritePivotXLSX(&buf, result, s.engine.Axes()); err != nil {
		writeEngineError(w, err)
		return
	}
	attachment(w, export.ContentTypeXLSX, export.PivotFilename(result), buf.Bytes())
}
