package models

import "slices"

// Level is one automation-familiarity option: the stored value and its display label.
type Level struct {
	Value string `json:"value" mapstructure:"value"`
	Label string `json:"label" mapstructure:"label"`
}

// Catalog holds the fixed enumerations of one event: which departments and
// levels a form may choose, and the inclusive window of participation days.
type Catalog struct {
	Departments []string `json:"departamentos" mapstructure:"departments"`
	Levels      []Level  `json:"niveis_automacao" mapstructure:"levels"`
	FirstDay    Day      `json:"primeiro_dia" mapstructure:"first_day"`
	LastDay     Day      `json:"ultimo_dia" mapstructure:"last_day"`
}

// DefaultCatalog is the January 2025 workshop.
func DefaultCatalog() Catalog {
	return Catalog{
		Departments: []string{"RH", "TI", "Vendas", "Operações", "Financeiro", "Marketing"},
		Levels: []Level{
			{Value: "baixo", Label: "Baixo"},
			{Value: "medio", Label: "Médio"},
			{Value: "alto", Label: "Alto"},
		},
		FirstDay: "2025-01-15",
		LastDay:  "2025-01-20",
	}
}

func (c Catalog) HasDepartment(department string) bool {
	return slices.Contains(c.Departments, department)
}

func (c Catalog) HasLevel(value string) bool {
	return slices.ContainsFunc(c.Levels, func(l Level) bool { return l.Value == value })
}

// LevelLabel returns the display label of value, or value itself when unknown.
func (c Catalog) LevelLabel(value string) string {
	for _, l := range c.Levels {
		if l.Value == value {
			return l.Label
		}
	}
	return value
}

// InWindow reports whether d falls inside the inclusive event window.
func (c Catalog) InWindow(d Day) bool {
	return !d.Before(c.FirstDay) && !c.LastDay.Before(d)
}

// Days lists every day of the event window in order.
func (c Catalog) Days() []Day {
	first, err := c.FirstDay.Time()
	if err != nil {
		return nil
	}
	last, err := c.LastDay.Time()
	if err != nil {
		return nil
	}
	var days []Day
	for t := first; !t.After(last); t = t.AddDate(0, 0, 1) {
		days = append(days, DayOf(t))
	}
	return days
}
