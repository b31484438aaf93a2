package loan

import "time"

const (
	installmentThresholdDays = 30
	installmentFrequencyDays = 30
	graceEarlyDays           = 3
	graceLateDays            = 7
)

// Schedule is reporting metadata derived from the loan duration. It is used
// to judge whether a payment lands "on schedule"; it never blocks early or
// partial payments.
type Schedule struct {
	Installments   uint32 `json:"installments"`
	FrequencyDays  uint32 `json:"frequency_days"`
	GraceEarlyDays uint32 `json:"grace_early_days"`
	GraceLateDays  uint32 `json:"grace_late_days"`
}

// Bullet reports whether the loan is repaid in a single payment at the due
// date.
func (s Schedule) Bullet() bool { return s.Installments == 0 }

// Schedule derives the repayment schedule: durations of at least 30 days get
// monthly installments with a 3-day-early/7-day-late grace window, shorter
// ones a single bullet payment.
func (l *LoanRequest) Schedule() Schedule {
	if l.DurationDays < installmentThresholdDays {
		return Schedule{}
	}
	return Schedule{
		Installments:   l.DurationDays / installmentFrequencyDays,
		FrequencyDays:  installmentFrequencyDays,
		GraceEarlyDays: graceEarlyDays,
		GraceLateDays:  graceLateDays,
	}
}

// RepaymentSpan is the time between funding and the final due date.
func (l *LoanRequest) RepaymentSpan() time.Duration {
	s := l.Schedule()
	days := l.DurationDays
	if !s.Bullet() {
		days = s.Installments * s.FrequencyDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// InDefault reports whether the loan is past its (grace-extended) due date
// with money still outstanding. Time-based, so evaluated lazily at query and
// claim time; nothing runs in the background.
func (l *LoanRequest) InDefault(now time.Time, grace time.Duration) bool {
	if l.Status != StatusFunded && l.Status != StatusRepaying {
		return false
	}
	if l.DueAt == nil {
		return false
	}
	return now.After(l.DueAt.Add(grace)) && l.Outstanding() > 0
}
