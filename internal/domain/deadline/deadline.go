// Package deadline derives resolution due dates from incident severity and
// classifies how a notification stands against its deadline.
package deadline

import (
	"time"

	"github.com/hsvida/incident-workflow/internal/domain/entity"
)

// DateLayout is the ISO layout deadline dates are persisted with.
const DateLayout = "2006-01-02"

// Label identifies how a notification stands against its deadline.
type Label string

const (
	LabelOnTrack    Label = "No Prazo"
	LabelDueSoon    Label = "Prazo Próximo"
	LabelOverdue    Label = "Atrasada"
	LabelNoDeadline Label = "Nenhum prazo definido"
	LabelUnknown    Label = "N/A"
)

// Severity orders labels for display emphasis.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityOK
	SeverityWarning
	SeverityCritical
)

// Status couples the display label with its severity.
type Status struct {
	Label    Label
	Severity Severity
}

// dueSoonWindowDays is the remaining-days threshold below which an open
// notification is flagged as approaching its deadline.
const dueSoonWindowDays = 7

// daysByCategory maps NNC categories to resolution days. "Evento com dano"
// resolves through daysByDamage instead.
var daysByCategory = map[string]int{
	entity.NNCNonConformity:    30,
	entity.NNCRiskCircumstance: 30,
	entity.NNCNearMiss:         30,
	entity.NNCEventNoHarm:      10,
}

var daysByDamage = map[string]int{
	entity.DamageMild:     7,
	entity.DamageModerate: 5,
	entity.DamageSevere:   3,
	entity.DamageDeath:    3,
}

// Days returns the resolution window for a category/damage-level pair.
// Unknown combinations resolve to 0 days; that is the documented degenerate
// case, not an error.
func Days(category, damageLevel string) int {
	if category == entity.NNCEventWithHarm {
		return daysByDamage[damageLevel]
	}
	return daysByCategory[category]
}

// DateFrom computes the deadline date for a classification made today.
func DateFrom(category, damageLevel string, today time.Time) time.Time {
	return today.AddDate(0, 0, Days(category, damageLevel))
}

// Evaluate derives the deadline status for a notification. completion, when
// non-nil, is the conclusion timestamp: a completion on or before the deadline
// is on track, anything later is overdue even though the work is done. Open
// notifications are measured against today.
func Evaluate(deadlineDate string, completion *time.Time, today time.Time) Status {
	if deadlineDate == "" {
		return Status{Label: LabelNoDeadline, Severity: SeverityNone}
	}

	due, err := time.Parse(DateLayout, deadlineDate)
	if err != nil {
		return Status{Label: LabelUnknown, Severity: SeverityNone}
	}

	if completion != nil {
		completed := truncateToDate(*completion)
		if !completed.After(due) {
			return Status{Label: LabelOnTrack, Severity: SeverityOK}
		}
		return Status{Label: LabelOverdue, Severity: SeverityCritical}
	}

	daysRemaining := int(due.Sub(truncateToDate(today)).Hours() / 24)
	switch {
	case daysRemaining < 0:
		return Status{Label: LabelOverdue, Severity: SeverityCritical}
	case daysRemaining <= dueSoonWindowDays:
		return Status{Label: LabelDueSoon, Severity: SeverityWarning}
	default:
		return Status{Label: LabelOnTrack, Severity: SeverityOK}
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
