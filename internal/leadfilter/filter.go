package leadfilter

import (
	"strconv"
	"strings"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// Query is the full set of inputs to the engine. The zero value passes
// every lead through unchanged.
type Query struct {
	// Search is a case-insensitive substring matched against owner name,
	// property address, tax id or email. Empty means no search.
	Search string `json:"search,omitempty"`

	// Status filters by pipeline status, case-insensitive. Empty or "all"
	// is a pass-through.
	Status string `json:"status,omitempty"`

	// Conditions are ANDed in insertion order.
	Conditions []domain.FilterCondition `json:"conditions,omitempty"`

	// SortKey is one of the sortable field names; unrecognized keys leave
	// the order untouched.
	SortKey string `json:"sort_key,omitempty"`
}

// Apply runs the query over the collection and returns a new slice. The
// input slice is never reordered or modified.
func Apply(leads []domain.Lead, q Query) []domain.Lead {
	out := make([]domain.Lead, 0, len(leads))
	for i := range leads {
		if matches(&leads[i], q) {
			out = append(out, leads[i])
		}
	}
	sortLeads(out, q.SortKey)
	return out
}

func matches(l *domain.Lead, q Query) bool {
	if !matchesSearch(l, q.Search) {
		return false
	}
	if !matchesStatus(l, q.Status) {
		return false
	}
	for _, cond := range q.Conditions {
		if !evalCondition(l, cond) {
			return false
		}
	}
	return true
}

func matchesSearch(l *domain.Lead, term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	for _, v := range []string{l.OwnerName, l.PropertyAddress, l.TaxID, l.Email} {
		if strings.Contains(strings.ToLower(v), t) {
			return true
		}
	}
	return false
}

func matchesStatus(l *domain.Lead, status string) bool {
	if status == "" || strings.EqualFold(status, "all") {
		return true
	}
	return strings.EqualFold(string(l.Status), status)
}

// evalCondition applies one advanced filter. A condition with an empty
// value is skipped (always true) unless its operator tests emptiness
// itself.
func evalCondition(l *domain.Lead, c domain.FilterCondition) bool {
	if c.Value == "" && c.Operator != domain.OpIsEmpty && c.Operator != domain.OpIsNotEmpty {
		return true
	}

	value, present := fieldValue(l, c.Field)

	switch c.Operator {
	case domain.OpEquals:
		return value == c.Value
	case domain.OpContains:
		return present && strings.Contains(strings.ToLower(value), strings.ToLower(c.Value))
	case domain.OpStartsWith:
		return present && strings.HasPrefix(strings.ToLower(value), strings.ToLower(c.Value))
	case domain.OpEndsWith:
		return present && strings.HasSuffix(strings.ToLower(value), strings.ToLower(c.Value))
	case domain.OpGreater:
		fv, cv, ok := parseBoth(value, c.Value, present)
		return ok && fv > cv
	case domain.OpLess:
		fv, cv, ok := parseBoth(value, c.Value, present)
		return ok && fv < cv
	case domain.OpIsEmpty:
		return !present || value == ""
	case domain.OpIsNotEmpty:
		return present && value != ""
	default:
		// Unknown operators never match; a malformed condition should
		// surface as an empty result, not a silent pass-through.
		return false
	}
}

func parseBoth(fieldValue, condValue string, present bool) (fv, cv float64, ok bool) {
	if !present {
		return 0, 0, false
	}
	fv, err := strconv.ParseFloat(fieldValue, 64)
	if err != nil {
		return 0, 0, false
	}
	cv, err = strconv.ParseFloat(condValue, 64)
	if err != nil {
		return 0, 0, false
	}
	return fv, cv, true
}
