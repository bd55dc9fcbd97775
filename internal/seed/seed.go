// Package seed produces the deterministic demonstration dataset used on
// first run, when no persisted snapshot exists.
package seed

import (
	"time"

	"sanko/internal/core"
)

const day = 24 * time.Hour

// InitialState wraps the sample groups in a fresh AppState.
func InitialState(now time.Time) core.AppState {
	return core.AppState{
		Groups:      InitialGroups(now),
		CurrentView: core.ViewDashboard,
	}
}

// InitialGroups returns two demonstration savings groups with members
// and a few months of contribution history, dated relative to now. The
// derived aggregates (group balances, member totals) are recomputed from
// the payment lists so the seeded state satisfies the same invariants
// the engine maintains.
func InitialGroups(now time.Time) []core.Group {
	sixMonthsAgo := now.Add(-6 * 30 * day)
	twelveMonthsOut := now.Add(12 * 30 * day)

	vacation := core.Group{
		ID:                    "1",
		Name:                  "Vacation Fund 2025",
		Description:           "Saving for a family vacation to Dubai",
		TargetAmount:          2000000,
		ContributionAmount:    50000,
		ContributionFrequency: core.Monthly,
		StartDate:             sixMonthsAgo,
		EndDate:               twelveMonthsOut,
		Status:                core.GroupActive,
		CreatedAt:             sixMonthsAgo,
		Members: []core.Member{
			{
				ID:       "m1",
				Name:     "John Adebayo",
				Phone:    "+234 801 234 5678",
				JoinedAt: sixMonthsAgo,
				Status:   core.MemberActive,
			},
			{
				ID:       "m2",
				Name:     "Sarah Okafor",
				Phone:    "+234 802 345 6789",
				JoinedAt: sixMonthsAgo.Add(30 * day),
				Status:   core.MemberActive,
			},
		},
		Payments: []core.Payment{
			{ID: "p1", MemberID: "m1", Amount: 50000, Date: now.Add(-60 * day), Type: core.Contribution, Description: "Monthly contribution - January"},
			{ID: "p2", MemberID: "m2", Amount: 50000, Date: now.Add(-45 * day), Type: core.Contribution, Description: "Monthly contribution - January"},
			{ID: "p3", MemberID: "m1", Amount: 50000, Date: now.Add(-30 * day), Type: core.Contribution, Description: "Monthly contribution - February"},
		},
	}

	emergency := core.Group{
		ID:                    "2",
		Name:                  "Emergency Fund",
		Description:           "Building an emergency fund for unexpected expenses",
		TargetAmount:          1000000,
		ContributionAmount:    30000,
		ContributionFrequency: core.Monthly,
		StartDate:             sixMonthsAgo.Add(-60 * day),
		EndDate:               twelveMonthsOut.Add(180 * day),
		Status:                core.GroupActive,
		CreatedAt:             sixMonthsAgo.Add(-60 * day),
		Members: []core.Member{
			{
				ID:       "m3",
				Name:     "Michael Okonkwo",
				Phone:    "+234 803 456 7890",
				JoinedAt: sixMonthsAgo.Add(-60 * day),
				Status:   core.MemberActive,
			},
			{
				ID:       "m4",
				Name:     "Grace Nnenna",
				Phone:    "+234 804 567 8901",
				JoinedAt: sixMonthsAgo.Add(-30 * day),
				Status:   core.MemberActive,
			},
		},
		Payments: []core.Payment{
			{ID: "p4", MemberID: "m3", Amount: 30000, Date: now.Add(-50 * day), Type: core.Contribution, Description: "Emergency fund contribution"},
			{ID: "p5", MemberID: "m4", Amount: 30000, Date: now.Add(-40 * day), Type: core.Contribution, Description: "Emergency fund contribution"},
			{ID: "p6", MemberID: "m3", Amount: 30000, Date: now.Add(-20 * day), Type: core.Contribution, Description: "February contribution"},
		},
	}

	groups := []core.Group{vacation, emergency}
	for i := range groups {
		reconcile(&groups[i])
	}
	return groups
}

// reconcile recomputes the derived aggregates from the payment log:
// group balance, per-member contribution totals and last payment dates.
func reconcile(g *core.Group) {
	totals := make(map[string]float64)
	lastPaid := make(map[string]time.Time)

	g.CurrentAmount = 0
	for _, p := range g.Payments {
		if p.Type == core.Contribution {
			g.CurrentAmount += p.Amount
			totals[p.MemberID] += p.Amount
		}
		if last, ok := lastPaid[p.MemberID]; !ok || p.Date.After(last) {
			lastPaid[p.MemberID] = p.Date
		}
	}

	for i := range g.Members {
		m := &g.Members[i]
		m.TotalContributed = totals[m.ID]
		if last, ok := lastPaid[m.ID]; ok {
			paid := last
			m.LastPaymentDate = &paid
		}
	}
}
