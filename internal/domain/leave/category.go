package leave

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	CategoryVacation Category = "vacation"
	CategorySick     Category = "sick"
	CategoryParental Category = "parental"
	CategoryPersonal Category = "personal"
	CategoryUnpaid   Category = "unpaid"
	CategoryOther    Category = "other"
)

// UnpaidLeaveType is the canonical spelling every "sin goce" variant folds to.
const UnpaidLeaveType = "permiso sin goce de sueldo"

// NormalizeType strips accents, casefolds and collapses whitespace.
// Any type mentioning "sin goce" becomes UnpaidLeaveType.
func NormalizeType(leaveType string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, leaveType)
	if err != nil {
		folded = leaveType
	}
	folded = strings.Join(strings.Fields(strings.ToLower(folded)), " ")
	if strings.Contains(folded, "sin goce") {
		return UnpaidLeaveType
	}
	return folded
}

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryUnpaid, []string{UnpaidLeaveType, "unpaid"}},
	{CategoryVacation, []string{"vacacion", "vacation", "annual"}},
	{CategorySick, []string{"incapacidad", "enfermedad", "medic", "sick"}},
	{CategoryParental, []string{"maternidad", "paternidad", "maternity", "paternity"}},
	{CategoryPersonal, []string{"personal", "con goce", "casual"}},
}

// CategoryOf classifies a leave type. The input need not be normalized.
func CategoryOf(leaveType string) Category {
	normalized := NormalizeType(leaveType)
	for _, c := range categoryKeywords {
		for _, k := range c.keywords {
			if strings.Contains(normalized, k) {
				return c.category
			}
		}
	}
	return CategoryOther
}
