package leave

// Policy decides which leave types reduce a day's expected hours.
type Policy struct {
	noAdjustCategories map[Category]bool
	noAdjustTypes      map[string]bool
}

// DefaultPolicy exempts unpaid leave from adjustment.
func DefaultPolicy() Policy {
	return NewPolicy(nil)
}

// NewPolicy exempts unpaid leave plus the listed leave types.
func NewPolicy(noAdjustTypes []string) Policy {
	p := Policy{
		noAdjustCategories: map[Category]bool{CategoryUnpaid: true},
		noAdjustTypes:      make(map[string]bool, len(noAdjustTypes)),
	}
	for _, t := range noAdjustTypes {
		if n := NormalizeType(t); n != "" {
			p.noAdjustTypes[n] = true
		}
	}
	return p
}

// Adjusts reports whether leave of this type deducts expected hours.
func (p Policy) Adjusts(leaveType string) bool {
	if p.noAdjustTypes[NormalizeType(leaveType)] {
		return false
	}
	return !p.noAdjustCategories[CategoryOf(leaveType)]
}
