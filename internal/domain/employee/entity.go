package employee

import "time"

type Employee struct {
	Code      string
	FullName  string
	Branch    string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
