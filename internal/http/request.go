package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sanko/internal/core"
)

// maxBodyBytes caps API request bodies; the payloads here are small
// structured documents, never uploads.
const maxBodyBytes = 64 << 10

// amount accepts a JSON number or a formatted currency string
// ("₦50,000"), so clients can post back exactly what the UI displays.
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("amount must be a number or a currency string")
	}
	*a = amount(core.ParseAmount(s))
	return nil
}

// decodeJSON reads and decodes the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

type createGroupRequest struct {
	Name                  string                     `json:"name"`
	Description           string                     `json:"description"`
	TargetAmount          amount                     `json:"targetAmount"`
	ContributionAmount    amount                     `json:"contributionAmount"`
	ContributionFrequency core.ContributionFrequency `json:"contributionFrequency"`
	StartDate             time.Time                  `json:"startDate"`
	EndDate               time.Time                  `json:"endDate"`
	Status                core.GroupStatus           `json:"status"`
}

// spec converts the request into a validated-ready GroupSpec, filling
// the defaults the UI form fills: active status, start today.
func (req createGroupRequest) spec(now time.Time) core.GroupSpec {
	spec := core.GroupSpec{
		Name:                  req.Name,
		Description:           req.Description,
		TargetAmount:          float64(req.TargetAmount),
		ContributionAmount:    float64(req.ContributionAmount),
		ContributionFrequency: req.ContributionFrequency,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		Status:                req.Status,
	}
	if spec.Status == "" {
		spec.Status = core.GroupActive
	}
	if spec.StartDate.IsZero() {
		spec.StartDate = now
	}
	return spec
}

type addMemberRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (req addMemberRequest) spec() core.MemberSpec {
	return core.MemberSpec{Name: req.Name, Phone: req.Phone}
}

type addPaymentRequest struct {
	MemberID    string           `json:"memberId"`
	Amount      amount           `json:"amount"`
	Type        core.PaymentType `json:"type"`
	Description string           `json:"description"`
}

// spec converts the request into a PaymentSpec; an omitted type means a
// regular contribution, the payment form's default.
func (req addPaymentRequest) spec() core.PaymentSpec {
	spec := core.PaymentSpec{
		MemberID:    req.MemberID,
		Amount:      float64(req.Amount),
		Type:        req.Type,
		Description: req.Description,
	}
	if spec.Type == "" {
		spec.Type = core.Contribution
	}
	return spec
}

type setViewRequest struct {
	View core.View `json:"view"`
}

type selectGroupRequest struct {
	// A null or missing groupId clears the selection.
	GroupID *string `json:"groupId"`
}
