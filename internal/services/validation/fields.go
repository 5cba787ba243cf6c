package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// Generic field checks shared by the components. They only ever append to the
// accumulator; none of them stop the run.

var (
	payeeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:@-]{0,127}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
)

func itemField(index int, name string) string {
	return fmt.Sprintf("payouts[%d].%s", index, name)
}

func payeeField(payeeID string) string {
	return "payees." + payeeID
}

// requireString records a missing_required_field error when value is blank
func requireString(acc *accumulator, value, field string) bool {
	if strings.TrimSpace(value) == "" {
		acc.addError(domain.CodeMissingRequiredField, field, "%s is required", field)
		return false
	}
	return true
}

// requireDecimal records a missing_required_field error when value is absent
func requireDecimal(acc *accumulator, value *decimal.Decimal, field string) bool {
	if value == nil {
		acc.addError(domain.CodeMissingRequiredField, field, "%s is required", field)
		return false
	}
	return true
}

// nonNegative records a negative_amount error for present, negative values
func nonNegative(acc *accumulator, value *decimal.Decimal, field string) bool {
	if value != nil && value.IsNegative() {
		acc.addError(domain.CodeNegativeAmount, field, "%s must not be negative (got %s)", field, value.String())
		return false
	}
	return true
}

// parseDateField parses a date field, recording invalid_date on failure
func parseDateField(acc *accumulator, value, field string) (time.Time, bool) {
	t, err := timeutil.ParseDate(value)
	if err != nil {
		acc.addError(domain.CodeInvalidDate, field, "%s is not a valid date: %q", field, value)
		return time.Time{}, false
	}
	return t, true
}

// exceedsPrecision reports whether d carries more than places significant decimals
func exceedsPrecision(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Round(places))
}

// withinTolerance reports whether |a - b| <= tolerance
func withinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func inRange(d, min, max decimal.Decimal) bool {
	return d.GreaterThanOrEqual(min) && d.LessThanOrEqual(max)
}

func isValidPayeeID(id string) bool {
	return payeeIDPattern.MatchString(id)
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func isDigits(s string, length int) bool {
	return len(s) == length && digitsPattern.MatchString(s)
}

// sortedKeys returns map keys in a stable order so findings are deterministic
func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// orderedSet keeps distinct values in first-seen order
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) len() int {
	return len(s.items)
}

func (s *orderedSet) String() string {
	return strings.Join(s.items, ", ")
}
