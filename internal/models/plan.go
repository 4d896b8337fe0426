package models

// Plan is a per-calendar-day target, keyed by a DayKey date string. A plan
// with neither hours nor hands is meaningless and is deleted rather than
// stored as zeros.
type Plan struct {
	Hours float64 `json:"hours"`
	Hands int     `json:"hands"`
}

// IsZero reports whether the plan carries no target at all.
func (p Plan) IsZero() bool {
	return p.Hours <= 0 && p.Hands <= 0
}
