package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
	"github.com/sohumt123/Tickker/store"
)

// errBadRequest marks malformed parameters.
var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	baseline, err := dateParam(r, "baseline_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var symbols []string
	if v := r.URL.Query().Get("symbols"); v != "" {
		symbols = strings.Split(v, ",")
	}
	resp, err := s.engine.Comparison(r.Context(), user, tickker.ComparisonRequest{Baseline: baseline, Symbols: symbols})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	baseline, err := dateParam(r, "baseline_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.Performance(r.Context(), user, baseline)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleNetReturn(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := dateParam(r, "start_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := dateParam(r, "end_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.NetReturn(r.Context(), user, date.NewRange(from, to))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	on, err := dateParam(r, "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.Holdings(r.Context(), user, on)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	group, err := groupID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	week := date.Weekly.Range(s.today())
	if v := r.URL.Query().Get("week"); v != "" {
		if week, err = date.ParseWeek(v); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
	}
	resp, err := s.engine.WeeklyLeaderboard(r.Context(), group, week)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGroupComparison(w http.ResponseWriter, r *http.Request) {
	group, err := groupID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	baseline, err := dateParam(r, "baseline_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.GroupComparison(r.Context(), group, baseline)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := dateParam(r, "start_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := dateParam(r, "end_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.History(r.Context(), user, date.NewRange(from, to))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			s.writeError(w, r, fmt.Errorf("%w: invalid limit %q", errBadRequest, v))
			return
		}
	}
	resp, err := s.engine.Trades(r.Context(), user, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGroupRanking(w http.ResponseWriter, r *http.Request) {
	group, err := groupID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	baseline, err := dateParam(r, "baseline_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.GroupRanking(r.Context(), group, baseline)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func idParam(r *http.Request, name string) (int64, error) {
	v := chi.URLParam(r, name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, v)
	}
	return id, nil
}

func userID(r *http.Request) (tickker.UserID, error) {
	id, err := idParam(r, "userID")
	return tickker.UserID(id), err
}

func groupID(r *http.Request) (tickker.GroupID, error) {
	id, err := idParam(r, "groupID")
	return tickker.GroupID(id), err
}

// dateParam parses the query parameter name, the zero date when absent.
func dateParam(r *http.Request, name string) (date.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(v)
	if err != nil {
		return date.Date{}, fmt.Errorf("%w: %s: %w", errBadRequest, name, err)
	}
	return d, nil
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	var invalid *tickker.InvalidBaselineError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tickker.ErrNoTransactions), errors.Is(err, store.ErrUnknownGroup):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		msg = http.StatusText(status)
	}
	s.writeJSON(w, r, status, map[string]string{"error": msg})
}
