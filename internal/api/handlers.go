package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
)

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type answerRequest struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
	Selected  *int   `json:"selected"`
	RtMs      *int64 `json:"rtMs"`
}

type explainRequest struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			writeErr(w, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Start(r.Context(), r.UserAgent()))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	var missing []string
	if req.SessionID == "" {
		missing = append(missing, "sessionId")
	}
	if req.ItemID == "" {
		missing = append(missing, "itemId")
	}
	if req.Selected == nil {
		missing = append(missing, "selected")
	}
	if req.RtMs == nil {
		missing = append(missing, "rtMs")
	}
	if len(missing) > 0 {
		writeErr(w, http.StatusBadRequest, CodeValidation, "missing "+strings.Join(missing, ", "))
		return
	}

	out, err := s.engine.Answer(r.Context(), assessment.AnswerInput{
		SessionID: req.SessionID,
		ItemID:    req.ItemID,
		Selected:  *req.Selected,
		RtMs:      *req.RtMs,
	})
	if err != nil {
		s.writeEngineErr(w, r, err, CodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// sessionID decodes a {sessionId} body.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return "", false
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, CodeValidation, "missing sessionId")
		return "", false
	}
	return req.SessionID, true
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	res, err := s.engine.Finish(r.Context(), id)
	if err != nil {
		s.writeEngineErr(w, r, err, CodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFinishLite(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	res, err := s.engine.FinishLite(r.Context(), id)
	if err != nil {
		s.writeEngineErr(w, r, err, CodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	out, err := s.engine.Insights(r.Context(), id)
	if err != nil {
		s.writeEngineErr(w, r, err, CodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.engine.Explain(r.Context(), req.SessionID, req.ItemID)
	if err != nil {
		s.writeEngineErr(w, r, err, CodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Result(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeEngineErr(w, r, err, CodeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.Next(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeEngineErr(w, r, err, CodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
