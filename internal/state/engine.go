// Package state implements the state engine: the single owner of the
// authoritative application state. All mutations go through the Engine,
// which maintains the derived balances and notifies subscribers with a
// snapshot after every change so persistence can follow along.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"sanko/internal/core"
)

// WeeksPerMonth normalizes weekly contribution schedules to a monthly
// projection (average weeks in a month).
const WeeksPerMonth = 4.33

// Engine owns a core.AppState behind a single-writer lock. Lookups that
// miss (unknown group or member ids) are absorbed as no-ops rather than
// errors; mutations report whether the target group existed so stricter
// callers can tell the difference.
type Engine struct {
	mu       sync.Mutex
	state    core.AppState
	now      func() time.Time
	newID    func() string
	onChange []func(core.AppState)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the id source. The default is uuid.NewString;
// ids must stay unique even for back-to-back creations, so wall-clock
// derived schemes are not acceptable here.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates an engine owning the given initial state.
func New(initial core.AppState, opts ...Option) *Engine {
	e := &Engine{
		state: cloneState(initial),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers a subscriber invoked with a snapshot after every
// mutation. Subscribers run outside the engine lock and receive a deep
// copy, so they may safely call back into the engine or hold the value.
func (e *Engine) OnChange(fn func(core.AppState)) {
	e.mu.Lock()
	e.onChange = append(e.onChange, fn)
	e.mu.Unlock()
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() core.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// CreateGroup appends a new group built from spec and returns its id.
// Duplicate names are permitted; there is no failure mode for
// well-typed input.
func (e *Engine) CreateGroup(spec core.GroupSpec) string {
	e.mu.Lock()
	group := core.Group{
		ID:                    e.newID(),
		Name:                  spec.Name,
		Description:           spec.Description,
		TargetAmount:          spec.TargetAmount,
		CurrentAmount:         0,
		ContributionAmount:    spec.ContributionAmount,
		ContributionFrequency: spec.ContributionFrequency,
		StartDate:             spec.StartDate,
		EndDate:               spec.EndDate,
		Members:               []core.Member{},
		Payments:              []core.Payment{},
		CreatedAt:             e.now(),
		Status:                spec.Status,
	}
	e.state.Groups = append(e.state.Groups, group)
	snap := cloneState(e.state)
	e.mu.Unlock()

	e.notify(snap)
	return group.ID
}

// AddMember appends a new active member to the group. When groupID does
// not match any group the state is left untouched and false is returned.
func (e *Engine) AddMember(groupID string, spec core.MemberSpec) bool {
	e.mu.Lock()
	group := e.findGroup(groupID)
	if group == nil {
		e.mu.Unlock()
		return false
	}
	group.Members = append(group.Members, core.Member{
		ID:               e.newID(),
		Name:             spec.Name,
		Phone:            spec.Phone,
		JoinedAt:         e.now(),
		TotalContributed: 0,
		Status:           core.MemberActive,
	})
	snap := cloneState(e.state)
	e.mu.Unlock()

	e.notify(snap)
	return true
}

// AddPayment records a payment against the group. The payment is always
// appended when the group exists, even when spec.MemberID matches no
// member (an orphaned payment is tolerated). Contribution payments move
// the group balance and the member's running total; penalties and
// withdrawals are recorded without touching either balance. Any payment
// type marks the member active and stamps its last payment date.
//
// Returns false without touching state when groupID matches no group.
func (e *Engine) AddPayment(groupID string, spec core.PaymentSpec) bool {
	e.mu.Lock()
	group := e.findGroup(groupID)
	if group == nil {
		e.mu.Unlock()
		return false
	}

	paidAt := e.now()
	group.Payments = append(group.Payments, core.Payment{
		ID:          e.newID(),
		MemberID:    spec.MemberID,
		Amount:      spec.Amount,
		Date:        paidAt,
		Type:        spec.Type,
		Description: spec.Description,
	})

	for i := range group.Members {
		if group.Members[i].ID != spec.MemberID {
			continue
		}
		if spec.Type == core.Contribution {
			group.Members[i].TotalContributed += spec.Amount
		}
		last := paidAt
		group.Members[i].LastPaymentDate = &last
		group.Members[i].Status = core.MemberActive
		break
	}

	if spec.Type == core.Contribution {
		group.CurrentAmount += spec.Amount
	}

	snap := cloneState(e.state)
	e.mu.Unlock()

	e.notify(snap)
	return true
}

// SetCurrentView unconditionally switches the active view.
func (e *Engine) SetCurrentView(view core.View) {
	e.mu.Lock()
	e.state.CurrentView = view
	snap := cloneState(e.state)
	e.mu.Unlock()

	e.notify(snap)
}

// SetSelectedGroup records the selected group id without an existence
// check; an empty id clears the selection. Dangling ids are tolerated
// and resolve to "none" on lookup.
func (e *Engine) SetSelectedGroup(groupID string) {
	e.mu.Lock()
	e.state.SelectedGroupID = groupID
	snap := cloneState(e.state)
	e.mu.Unlock()

	e.notify(snap)
}

// SelectedGroup resolves the selected group id. The second return is
// false when nothing is selected or the id matches no group.
func (e *Engine) SelectedGroup() (core.Group, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.SelectedGroupID == "" {
		return core.Group{}, false
	}
	if g := e.findGroup(e.state.SelectedGroupID); g != nil {
		return cloneGroup(*g), true
	}
	return core.Group{}, false
}

// TotalBalance sums the current balance across all groups.
func (e *Engine) TotalBalance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var total float64
	for i := range e.state.Groups {
		total += e.state.Groups[i].CurrentAmount
	}
	return total
}

// ExpectedMonthly projects the expected monthly inflow across all
// groups: contribution amount times member count, normalized per
// schedule (weekly x4.33, quarterly /3).
func (e *Engine) ExpectedMonthly() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var total float64
	for i := range e.state.Groups {
		g := &e.state.Groups[i]
		perPeriod := g.ContributionAmount * float64(len(g.Members))
		switch g.ContributionFrequency {
		case core.Monthly:
			total += perPeriod
		case core.Weekly:
			total += perPeriod * WeeksPerMonth
		case core.Quarterly:
			total += perPeriod / 3
		}
	}
	return total
}

// Reset replaces the whole state, e.g. after the persisted snapshot has
// been cleared and the sample data reseeded.
func (e *Engine) Reset(initial core.AppState) {
	e.mu.Lock()
	e.state = cloneState(initial)
	snap := cloneState(e.state)
	e.mu.Unlock()

	e.notify(snap)
}

// findGroup returns a pointer into e.state; callers must hold e.mu.
func (e *Engine) findGroup(groupID string) *core.Group {
	for i := range e.state.Groups {
		if e.state.Groups[i].ID == groupID {
			return &e.state.Groups[i]
		}
	}
	return nil
}

func (e *Engine) notify(snap core.AppState) {
	e.mu.Lock()
	subs := make([]func(core.AppState), len(e.onChange))
	copy(subs, e.onChange)
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func cloneState(s core.AppState) core.AppState {
	out := s
	out.Groups = make([]core.Group, len(s.Groups))
	for i, g := range s.Groups {
		out.Groups[i] = cloneGroup(g)
	}
	return out
}

func cloneGroup(g core.Group) core.Group {
	out := g
	out.Members = make([]core.Member, len(g.Members))
	for i, m := range g.Members {
		out.Members[i] = m
		if m.LastPaymentDate != nil {
			last := *m.LastPaymentDate
			out.Members[i].LastPaymentDate = &last
		}
	}
	out.Payments = make([]core.Payment, len(g.Payments))
	copy(out.Payments, g.Payments)
	return out
}
