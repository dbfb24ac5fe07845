// Package report filters and aggregates a snapshot of registrations for the
// dashboard. Every function is pure: inputs are never mutated and the same
// snapshot always yields the same result.
package report

import (
	"sort"
	"strings"

	"eventreg/internal/registration/models"
	dErrors "eventreg/pkg/domain-errors"
)

// AllDepartments is the filter value meaning "any department".
const AllDepartments = "all"

// Filter selects registrations. Zero values mean "no filter".
type Filter struct {
	Department string
	Day        *models.Day
}

// ParseFilter builds a Filter from raw department and day values, as typed in
// a query string or on the command line. Both are optional; "all" (or nothing)
// means no department filter. Unknown departments and malformed days are
// bad_request errors rather than filters that silently match nothing.
func ParseFilter(catalog models.Catalog, department, day string) (Filter, error) {
	var filter Filter

	department = strings.TrimSpace(department)
	if department != "" && department != AllDepartments {
		if !catalog.HasDepartment(department) {
			return Filter{}, dErrors.New(dErrors.CodeBadRequest, "Departamento inválido")
		}
		filter.Department = department
	}

	if raw := strings.TrimSpace(day); raw != "" {
		d, err := models.ParseDay(raw)
		if err != nil {
			return Filter{}, dErrors.New(dErrors.CodeBadRequest, "Data inválida")
		}
		filter.Day = &d
	}
	return filter, nil
}

// IsEmpty reports whether the filter selects everything.
func (f Filter) IsEmpty() bool {
	return !f.filtersDepartment() && f.Day == nil
}

func (f Filter) filtersDepartment() bool {
	return f.Department != "" && f.Department != AllDepartments
}

// Matches reports whether r passes both criteria.
func (f Filter) Matches(r *models.Registration) bool {
	if f.filtersDepartment() && r.Department != f.Department {
		return false
	}
	if f.Day != nil && r.ParticipationDay != *f.Day {
		return false
	}
	return true
}

// FilterBy returns the registrations matching f, in input order, as a new slice.
func FilterBy(records []*models.Registration, f Filter) []*models.Registration {
	out := make([]*models.Registration, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ZeroCounts selects whether categories nobody picked appear in a breakdown.
type ZeroCounts bool

const (
	// IncludeZero lists every configured category (summary and export views).
	IncludeZero ZeroCounts = true
	// SuppressZero drops categories with no registrations (dashboard charts).
	SuppressZero ZeroCounts = false
)

// Count is one category of a breakdown.
type Count struct {
	Key   string `json:"chave"`
	Label string `json:"rotulo"`
	Total int    `json:"total"`
}

// DayCount is the number of registrations for one participation day.
type DayCount struct {
	Day   models.Day `json:"dia"`
	Label string     `json:"rotulo"`
	Total int        `json:"total"`
}

// CountByDepartment counts registrations per department in the order of departments.
func CountByDepartment(records []*models.Registration, departments []string, zeros ZeroCounts) []Count {
	totals := make(map[string]int, len(departments))
	for _, r := range records {
		totals[r.Department]++
	}

	counts := make([]Count, 0, len(departments))
	for _, d := range departments {
		if totals[d] == 0 && zeros == SuppressZero {
			continue
		}
		counts = append(counts, Count{Key: d, Label: d, Total: totals[d]})
	}
	return counts
}

// CountByAutomationLevel counts registrations per level in the order of
// levels; Label carries the level's display label.
func CountByAutomationLevel(records []*models.Registration, levels []models.Level, zeros ZeroCounts) []Count {
	totals := make(map[string]int, len(levels))
	for _, r := range records {
		totals[r.AutomationLevel]++
	}

	counts := make([]Count, 0, len(levels))
	for _, l := range levels {
		if totals[l.Value] == 0 && zeros == SuppressZero {
			continue
		}
		counts = append(counts, Count{Key: l.Value, Label: l.Label, Total: totals[l.Value]})
	}
	return counts
}

// CountByDay groups registrations by exact participation day, in
// chronological order, labelled dd/MM.
func CountByDay(records []*models.Registration) []DayCount {
	totals := make(map[models.Day]int)
	for _, r := range records {
		totals[r.ParticipationDay]++
	}

	counts := make([]DayCount, 0, len(totals))
	for day, total := range totals {
		counts = append(counts, DayCount{Day: day, Label: day.ShortLabel(), Total: total})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Day.Before(counts[j].Day) })
	return counts
}

// CountWithAccessibility counts registrations that asked for accessibility support.
func CountWithAccessibility(records []*models.Registration) int {
	n := 0
	for _, r := range records {
		if r.NeedsAccessibility {
			n++
		}
	}
	return n
}

// DistinctDepartmentsWithRegistrants counts configured departments with at least one registration.
func DistinctDepartmentsWithRegistrants(records []*models.Registration, departments []string) int {
	return len(CountByDepartment(records, departments, SuppressZero))
}

// Summary is the dashboard's view of one snapshot.
type Summary struct {
	Total              int        `json:"total"`
	DepartmentsWithAny int        `json:"departamentos_com_inscritos"`
	WithAccessibility  int        `json:"com_acessibilidade"`
	ByDepartment       []Count    `json:"por_departamento"`
	ByAutomationLevel  []Count    `json:"por_nivel_automacao"`
	ByDay              []DayCount `json:"por_dia"`
}

// Summarize computes every dashboard statistic over records.
func Summarize(records []*models.Registration, catalog models.Catalog, zeros ZeroCounts) Summary {
	return Summary{
		Total:              len(records),
		DepartmentsWithAny: DistinctDepartmentsWithRegistrants(records, catalog.Departments),
		WithAccessibility:  CountWithAccessibility(records),
		ByDepartment:       CountByDepartment(records, catalog.Departments, zeros),
		ByAutomationLevel:  CountByAutomationLevel(records, catalog.Levels, zeros),
		ByDay:              CountByDay(records),
	}
}
