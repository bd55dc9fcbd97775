package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Contribution PaymentType = "contribution"
	Penalty      PaymentType = "penalty"
	Withdrawal   PaymentType = "withdrawal"
)

const (
	Weekly    ContributionFrequency = "weekly"
	Monthly   ContributionFrequency = "monthly"
	Quarterly ContributionFrequency = "quarterly"
)

const (
	GroupActive    GroupStatus = "active"
	GroupCompleted GroupStatus = "completed"
	GroupPaused    GroupStatus = "paused"
)

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
	MemberOverdue  MemberStatus = "overdue"
)

const (
	ViewDashboard View = "dashboard"
	ViewGroups    View = "groups"
	ViewPayments  View = "payments"
	ViewSettings  View = "settings"
)

type (
	PaymentType           string
	ContributionFrequency string
	GroupStatus           string
	MemberStatus          string
	View                  string

	// Member is a participant in a savings group. TotalContributed is a
	// running sum of contribution payments maintained by the state engine.
	Member struct {
		ID               string       `json:"id"`
		Name             string       `json:"name"`
		Phone            string       `json:"phone"`
		JoinedAt         time.Time    `json:"joinedAt"`
		TotalContributed float64      `json:"totalContributed"`
		LastPaymentDate  *time.Time   `json:"lastPaymentDate,omitempty"`
		Status           MemberStatus `json:"status"`
	}

	// Payment is an immutable financial event recorded against a member
	// of a group. Payments are append-only; there is no edit or delete.
	Payment struct {
		ID          string      `json:"id"`
		MemberID    string      `json:"memberId"`
		Amount      float64     `json:"amount"`
		Date        time.Time   `json:"date"`
		Type        PaymentType `json:"type"`
		Description string      `json:"description,omitempty"`
	}

	// Group is a savings pool with a target, a contribution schedule and
	// its owned members and payments. CurrentAmount is derived: the sum
	// of contribution payments. Penalties and withdrawals are recorded
	// but never move the balance.
	Group struct {
		ID                    string                `json:"id"`
		Name                  string                `json:"name"`
		Description           string                `json:"description"`
		TargetAmount          float64               `json:"targetAmount"`
		CurrentAmount         float64               `json:"currentAmount"`
		ContributionAmount    float64               `json:"contributionAmount"`
		ContributionFrequency ContributionFrequency `json:"contributionFrequency"`
		StartDate             time.Time             `json:"startDate"`
		EndDate               time.Time             `json:"endDate"`
		Members               []Member              `json:"members"`
		Payments              []Payment             `json:"payments"`
		CreatedAt             time.Time             `json:"createdAt"`
		Status                GroupStatus           `json:"status"`
	}

	// AppState is the full application state: every group plus the UI
	// selection. An empty SelectedGroupID means no group is selected.
	AppState struct {
		Groups          []Group `json:"groups"`
		SelectedGroupID string  `json:"selectedGroupId,omitempty"`
		CurrentView     View    `json:"currentView"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyMemberID    = errors.New("empty member id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid contribution frequency")
	ErrInvalidType      = errors.New("invalid payment type")
	ErrInvalidStatus    = errors.New("invalid group status")
	ErrEndBeforeStart   = errors.New("end date before start date")
)

func (t PaymentType) IsValid() bool {
	switch t {
	case Contribution, Penalty, Withdrawal:
		return true
	default:
		return false
	}
}

func (f ContributionFrequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Quarterly:
		return true
	default:
		return false
	}
}

func (s GroupStatus) IsValid() bool {
	switch s {
	case GroupActive, GroupCompleted, GroupPaused:
		return true
	default:
		return false
	}
}

func (v View) IsValid() bool {
	switch v {
	case ViewDashboard, ViewGroups, ViewPayments, ViewSettings:
		return true
	default:
		return false
	}
}

// GroupSpec is the caller-supplied shape for creating a group. Identity,
// timestamps and derived fields are filled in by the state engine.
type GroupSpec struct {
	Name                  string                `json:"name"`
	Description           string                `json:"description"`
	TargetAmount          float64               `json:"targetAmount"`
	ContributionAmount    float64               `json:"contributionAmount"`
	ContributionFrequency ContributionFrequency `json:"contributionFrequency"`
	StartDate             time.Time             `json:"startDate"`
	EndDate               time.Time             `json:"endDate"`
	Status                GroupStatus           `json:"status"`
}

// MemberSpec is the caller-supplied shape for adding a member.
type MemberSpec struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PaymentSpec is the caller-supplied shape for recording a payment.
type PaymentSpec struct {
	MemberID    string      `json:"memberId"`
	Amount      float64     `json:"amount"`
	Type        PaymentType `json:"type"`
	Description string      `json:"description,omitempty"`
}

// Validation lives at the caller boundary: the engine stores whatever
// well-typed values it receives, so the HTTP layer validates specs
// before invoking it.

func (s GroupSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.TargetAmount <= 0 || s.ContributionAmount <= 0 {
		return ErrInvalidAmount
	}
	if !s.ContributionFrequency.IsValid() {
		return ErrInvalidFrequency
	}
	if !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

func (s MemberSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (s PaymentSpec) Validate() error {
	if strings.TrimSpace(s.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if s.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !s.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

// Progress returns the percentage saved toward the target, 0 when the
// target is not positive.
func (g Group) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return g.CurrentAmount / g.TargetAmount * 100
}

// DaysLeft returns the number of days until the group's end date,
// rounded up. Negative when the end date has passed.
func (g Group) DaysLeft(now time.Time) int {
	return int(math.Ceil(g.EndDate.Sub(now).Hours() / 24))
}

// HasOverdueMembers reports whether any member of the group is overdue.
func (g Group) HasOverdueMembers() bool {
	for _, m := range g.Members {
		if m.Status == MemberOverdue {
			return true
		}
	}
	return false
}
