package library

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/normalize"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/shopspring/decimal"
)

// Band values accepted by [Filters]. An empty band or "any" matches everything.
const (
	Any = "any"

	DurationShort  = "short"  // up to 10h
	DurationMedium = "medium" // between 10h and 30h
	DurationLong   = "long"   // 30h and more

	ValueGood = "good" // up to ₺10 per hour
	ValueOK   = "ok"   // up to ₺20 per hour
	ValuePoor = "poor" // above ₺20 per hour

	Score80 = "80+"
	Score70 = "70+"
)

var (
	shortHours = 10.0
	longHours  = 30.0
	goodValue  = decimal.NewFromInt(10)
	okValue    = decimal.NewFromInt(20)
)

// Filters narrows a library listing.
//
// Platform, Status, Member, Account and Service compare case-insensitively;
// Member and Account accept either the id or the display name.
type Filters struct {
	Platform string `json:"platform,omitempty"`
	Status   string `json:"status,omitempty"`
	Member   string `json:"member,omitempty"`
	Account  string `json:"account,omitempty"`
	Service  string `json:"service,omitempty"`
	Score    string `json:"score,omitempty"`
	Duration string `json:"duration,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Validate rejects unknown band names.
func (f Filters) Validate() error {
	checks := []struct {
		name, value string
		allowed     []string
	}{
		{"score", f.Score, []string{Score80, Score70}},
		{"duration", f.Duration, []string{DurationShort, DurationMedium, DurationLong}},
		{"value", f.Value, []string{ValueGood, ValueOK, ValuePoor}},
	}
	for _, c := range checks {
		v := strings.ToLower(strings.TrimSpace(c.value))
		if v == "" || v == Any {
			continue
		}
		if !slices.Contains(c.allowed, v) {
			return fmt.Errorf("%w: %s must be one of %s", shared.ErrInvalidFlag, c.name, strings.Join(c.allowed, ", "))
		}
	}
	return nil
}

// Match reports whether r passes every set filter.
// Rows missing the value a band filter needs never match that filter.
func (f Filters) Match(r Row) bool {
	if set(f.Platform) && !strings.EqualFold(string(r.Platform()), strings.TrimSpace(f.Platform)) {
		return false
	}
	if set(f.Status) && !strings.EqualFold(string(r.Status), strings.TrimSpace(f.Status)) {
		return false
	}
	if set(f.Member) && !matchMember(r, f.Member) {
		return false
	}
	if set(f.Account) && !matchAccount(r, f.Account) {
		return false
	}
	if set(f.Service) && !matchService(r, f.Service) {
		return false
	}
	if set(f.Score) && !matchScore(r, band(f.Score)) {
		return false
	}
	if set(f.Duration) && !matchDuration(r, band(f.Duration)) {
		return false
	}
	if set(f.Value) && !matchValue(r, band(f.Value)) {
		return false
	}
	return true
}

// Apply returns the rows matching f, in order.
func (f Filters) Apply(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func set(v string) bool {
	v = band(v)
	return v != "" && v != Any
}

func band(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func matchMember(r Row, want string) bool {
	key := normalize.Label(want)
	if key == r.MemberID || key == normalize.Label(r.MemberName()) {
		return true
	}
	return r.MemberID == "" && key == normalize.EveryoneMemberID
}

func matchAccount(r Row, want string) bool {
	if r.Account == nil {
		return false
	}
	key := normalize.Label(want)
	return key == normalize.Label(r.Account.ID) || key == normalize.Label(r.Account.Label)
}

func matchService(r Row, want string) bool {
	for _, s := range r.Services {
		if strings.EqualFold(s, strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func matchScore(r Row, b string) bool {
	if r.OCScore == nil {
		return false
	}
	switch b {
	case Score80:
		return *r.OCScore >= 80
	case Score70:
		return *r.OCScore >= 70
	}
	return false
}

func matchDuration(r Row, b string) bool {
	if r.TTBMedianMainH == nil {
		return false
	}
	h := *r.TTBMedianMainH
	switch b {
	case DurationShort:
		return h <= shortHours
	case DurationMedium:
		return h > shortHours && h < longHours
	case DurationLong:
		return h >= longHours
	}
	return false
}

func matchValue(r Row, b string) bool {
	pph := r.PricePerHour()
	if pph == nil {
		return false
	}
	switch b {
	case ValueGood:
		return pph.LessThanOrEqual(goodValue)
	case ValueOK:
		return pph.GreaterThan(goodValue) && pph.LessThanOrEqual(okValue)
	case ValuePoor:
		return pph.GreaterThan(okValue)
	}
	return false
}
