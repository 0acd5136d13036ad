package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday follows ISO numbering: 1=Monday, ..., 7=Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf returns the ISO weekday of date.
func WeekdayOf(date time.Time) Weekday {
	wd := int(date.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd)
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return strconv.Itoa(int(w))
	}
	return DayCatalog[w-1].Name
}

// Day is one entry of the weekday catalog.
type Day struct {
	ID     Weekday
	Name   string
	Letter string
}

// DayCatalog lists weekdays with the single-letter codes used by day patterns.
var DayCatalog = []Day{
	{ID: Monday, Name: "Lunes", Letter: "L"},
	{ID: Tuesday, Name: "Martes", Letter: "M"},
	{ID: Wednesday, Name: "Miércoles", Letter: "X"},
	{ID: Thursday, Name: "Jueves", Letter: "J"},
	{ID: Friday, Name: "Viernes", Letter: "V"},
	{ID: Saturday, Name: "Sábado", Letter: "S"},
	{ID: Sunday, Name: "Domingo", Letter: "D"},
}

var letterToWeekday = map[rune]Weekday{
	'L': Monday,
	'M': Tuesday,
	'X': Wednesday,
	'J': Thursday,
	'V': Friday,
	'S': Saturday,
	'D': Sunday,
}

// Quincena is the half of the month a rule applies to.
type Quincena int

const (
	QuincenaAny Quincena = iota
	QuincenaFirst
	QuincenaSecond
)

// QuincenaOf returns QuincenaFirst for days 1-15 and QuincenaSecond otherwise.
func QuincenaOf(date time.Time) Quincena {
	if date.Day() <= 15 {
		return QuincenaFirst
	}
	return QuincenaSecond
}

func ParseQuincena(s string) (Quincena, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "any", "ambas":
		return QuincenaAny, nil
	case "1", "first", "primera":
		return QuincenaFirst, nil
	case "2", "second", "segunda":
		return QuincenaSecond, nil
	}
	return QuincenaAny, fmt.Errorf("%w: %q", ErrInvalidQuincena, s)
}

func (q Quincena) String() string {
	switch q {
	case QuincenaFirst:
		return "first"
	case QuincenaSecond:
		return "second"
	default:
		return "any"
	}
}

// TimeOfDay is an offset from midnight.
type TimeOfDay time.Duration

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	limits := []int{23, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		total += time.Duration(n) * units[i]
	}
	return TimeOfDay(total), nil
}

// TimeOfDayOf extracts the wall-clock offset of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

// On anchors t to the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t))
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

// DaySelector is the day applicability of a rule: ExactDay or PatternDay.
type DaySelector interface {
	Includes(w Weekday) bool
	Exact() bool
	String() string
}

type ExactDay struct {
	Weekday Weekday
}

func (d ExactDay) Includes(w Weekday) bool { return d.Weekday == w }
func (d ExactDay) Exact() bool             { return true }
func (d ExactDay) String() string          { return strconv.Itoa(int(d.Weekday)) }

// PatternDay covers a set of weekdays written as a range ("L-V") or a letter set ("L,M,X").
type PatternDay struct {
	Code string
	days [8]bool
}

func (p PatternDay) Includes(w Weekday) bool {
	return w.Valid() && p.days[w]
}

func (p PatternDay) Exact() bool    { return false }
func (p PatternDay) String() string { return p.Code }

// ParsePattern parses a day-range code such as "L-V", "L-J", "M-V" or a
// letter set such as "L,M,X" or "SD". Letters: L M X J V S D.
func ParsePattern(code string) (PatternDay, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	normalized = strings.ReplaceAll(normalized, "–", "-")
	p := PatternDay{Code: normalized}

	if from, to, ok := strings.Cut(normalized, "-"); ok {
		start, okStart := singleLetter(from)
		end, okEnd := singleLetter(to)
		if !okStart || !okEnd {
			return PatternDay{}, fmt.Errorf("%w: %q", ErrInvalidDayPattern, code)
		}
		for w := start; ; w = w%Sunday + 1 {
			p.days[w] = true
			if w == end {
				break
			}
		}
		return p, nil
	}

	letters := strings.NewReplacer(",", "", " ", "").Replace(normalized)
	if letters == "" {
		return PatternDay{}, fmt.Errorf("%w: %q", ErrInvalidDayPattern, code)
	}
	for _, r := range letters {
		w, ok := letterToWeekday[r]
		if !ok {
			return PatternDay{}, fmt.Errorf("%w: %q", ErrInvalidDayPattern, code)
		}
		p.days[w] = true
	}
	return p, nil
}

func singleLetter(s string) (Weekday, bool) {
	s = strings.TrimSpace(s)
	if len([]rune(s)) != 1 {
		return 0, false
	}
	w, ok := letterToWeekday[[]rune(s)[0]]
	return w, ok
}

// ParseDaySelector reads the stored representation of a rule's days: a
// weekday number 1-7 for ExactDay, anything else as a PatternDay.
func ParseDaySelector(s string) (DaySelector, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		w := Weekday(n)
		if !w.Valid() {
			return nil, fmt.Errorf("%w: weekday %d", ErrInvalidDayPattern, n)
		}
		return ExactDay{Weekday: w}, nil
	}
	p, err := ParsePattern(s)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ScheduleRule assigns a shift to an employee for the days and quincena it covers.
type ScheduleRule struct {
	ID           int64
	EmployeeCode string
	BranchName   string
	Days         DaySelector
	Quincena     Quincena
	Entry        TimeOfDay
	Exit         TimeOfDay
	Overnight    bool
}

// IsOvernight reports whether the shift crosses midnight, either flagged or
// implied by an exit earlier than the entry.
func (r ScheduleRule) IsOvernight() bool {
	return r.Overnight || r.Exit < r.Entry
}

// Tier ranks how specifically the rule matches weekday w in quincena q:
// 1 exact day with matching quincena, 2 exact day any quincena,
// 3 pattern with matching quincena, 4 pattern any quincena.
// 0 means the rule does not apply.
func (r ScheduleRule) Tier(w Weekday, q Quincena) int {
	if r.Days == nil || !r.Days.Includes(w) {
		return 0
	}
	if r.Quincena != QuincenaAny && r.Quincena != q {
		return 0
	}

	tier := 1
	if r.Quincena == QuincenaAny {
		tier++
	}
	if !r.Days.Exact() {
		tier += 2
	}
	return tier
}

// Shift materializes the rule as the shift definition used by the engine.
func (r ScheduleRule) Shift() ShiftDefinition {
	return ShiftDefinition{
		RuleID:    r.ID,
		Entry:     r.Entry,
		Exit:      r.Exit,
		Overnight: r.IsOvernight(),
	}
}

type ShiftDefinition struct {
	RuleID    int64
	Entry     TimeOfDay
	Exit      TimeOfDay
	Overnight bool
}

// ExpectedDuration is the scheduled span. Overnight shifts count
// (24h - entry) + exit.
func (s ShiftDefinition) ExpectedDuration() time.Duration {
	if s.Overnight {
		return 24*time.Hour - s.Entry.Duration() + s.Exit.Duration()
	}
	return s.Exit.Duration() - s.Entry.Duration()
}

// EntryOn returns the scheduled entry instant for the shift starting on date.
func (s ShiftDefinition) EntryOn(date time.Time) time.Time {
	return s.Entry.On(date)
}

// ExitOn returns the scheduled exit instant for the shift starting on date.
func (s ShiftDefinition) ExitOn(date time.Time) time.Time {
	if s.Overnight {
		return s.Exit.On(date.AddDate(0, 0, 1))
	}
	return s.Exit.On(date)
}
