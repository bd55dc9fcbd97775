package http

import (
	"net/http"
	"time"

	"sanko/internal/core"
	"sanko/internal/log"
)

const metricsCacheKey = "dashboard"

type metricsResponse struct {
	TotalBalance           float64 `json:"totalBalance"`
	TotalBalanceDisplay    string  `json:"totalBalanceDisplay"`
	ExpectedMonthly        float64 `json:"expectedMonthly"`
	ExpectedMonthlyDisplay string  `json:"expectedMonthlyDisplay"`
	Groups                 int     `json:"groups"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spec := req.spec(time.Now())
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id := s.engine.CreateGroup(spec)
	s.invalidateMetrics()
	s.logger.InfoContext(r.Context(), "Group created",
		log.FieldGroupID, id,
		"name", spec.Name)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")

	var req addMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spec := req.spec()
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !s.engine.AddMember(groupID, spec) {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	s.invalidateMetrics()
	s.logger.InfoContext(r.Context(), "Member added",
		log.FieldGroupID, groupID,
		"name", spec.Name)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")

	var req addPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spec := req.spec()
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !s.engine.AddPayment(groupID, spec) {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	s.invalidateMetrics()
	s.logger.InfoContext(r.Context(), "Payment recorded",
		log.FieldGroupID, groupID,
		log.FieldMemberID, spec.MemberID,
		log.FieldAmount, spec.Amount,
		"type", string(spec.Type))
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req setViewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.View.IsValid() {
		writeError(w, http.StatusUnprocessableEntity, "invalid view")
		return
	}

	s.engine.SetCurrentView(req.View)
	writeJSON(w, http.StatusOK, map[string]string{"currentView": string(req.View)})
}

func (s *Server) handleSetSelectedGroup(w http.ResponseWriter, r *http.Request) {
	var req selectGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	groupID := ""
	if req.GroupID != nil {
		groupID = *req.GroupID
	}
	s.engine.SetSelectedGroup(groupID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetSelectedGroup resolves the selection; no selection (or a
// dangling id) answers with a null group rather than an error.
func (s *Server) handleGetSelectedGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := s.engine.SelectedGroup()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]*core.Group{"group": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]*core.Group{"group": &group})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics())
}

// metrics returns the dashboard metrics, memoized until the next
// mutation or TTL expiry.
func (s *Server) metrics() metricsResponse {
	if m, found := s.metricsCache.Get(metricsCacheKey); found {
		s.logger.Debug("Metrics cache hit")
		return m
	}

	total := s.engine.TotalBalance()
	expected := s.engine.ExpectedMonthly()
	m := metricsResponse{
		TotalBalance:           total,
		TotalBalanceDisplay:    core.FormatAmount(total),
		ExpectedMonthly:        expected,
		ExpectedMonthlyDisplay: core.FormatAmount(expected),
		Groups:                 len(s.engine.Snapshot().Groups),
	}
	s.metricsCache.Set(metricsCacheKey, m)
	return m
}

func (s *Server) invalidateMetrics() {
	s.metricsCache.Delete(metricsCacheKey)
}

// handleReset clears the persisted snapshot and reinstalls the initial
// state, the API equivalent of the settings screen's clear-data action.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Snapshot clear failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to clear saved data")
		return
	}

	s.engine.Reset(s.resetState())
	s.invalidateMetrics()
	s.logger.InfoContext(r.Context(), "State reset", log.FieldOperation, "reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
