package http

import (
	"net/http"
	"time"

	"sanko/internal/core"
	"sanko/internal/log"
)

type groupRow struct {
	Name     string
	Saved    string
	Target   string
	Width    int
	Members  int
	DaysLeft int
	Status   string
	Overdue  bool
}

type dashboardData struct {
	TotalBalance    string
	ExpectedMonthly string
	GroupCount      int
	Groups          []groupRow
}

// handleIndex renders the dashboard: headline metrics plus a progress
// bar per group.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	snap := s.engine.Snapshot()
	m := s.metrics()
	now := time.Now()

	data := dashboardData{
		TotalBalance:    m.TotalBalanceDisplay,
		ExpectedMonthly: m.ExpectedMonthlyDisplay,
		GroupCount:      len(snap.Groups),
	}
	for _, g := range snap.Groups {
		data.Groups = append(data.Groups, groupRow{
			Name:     g.Name,
			Saved:    core.FormatAmount(g.CurrentAmount),
			Target:   core.FormatAmount(g.TargetAmount),
			Width:    progressWidth(g),
			Members:  len(g.Members),
			DaysLeft: g.DaysLeft(now),
			Status:   string(g.Status),
			Overdue:  g.HasOverdueMembers(),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err,
			"template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// progressWidth maps a group's progress to a bar width, keeping tiny
// balances visible and capping overfunded groups at 100.
func progressWidth(g core.Group) int {
	width := int(g.Progress())
	if g.CurrentAmount > 0 && width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	if width < 0 {
		width = 0
	}
	return width
}
