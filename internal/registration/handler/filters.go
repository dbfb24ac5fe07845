package handler

import (
	"net/url"
	"strings"

	"eventreg/internal/registration/models"
	"eventreg/internal/registration/report"
)

// Query parameters understood by the list, export and dashboard endpoints.
const (
	queryDepartment = "departamento"
	queryDay        = "dia"
	queryZeros      = "zeros"
	zerosInclude    = "incluir"
)

func parseFilter(q url.Values, catalog models.Catalog) (report.Filter, error) {
	return report.ParseFilter(catalog, q.Get(queryDepartment), q.Get(queryDay))
}

func parseZeroCounts(q url.Values) report.ZeroCounts {
	if strings.EqualFold(strings.TrimSpace(q.Get(queryZeros)), zerosInclude) {
		return report.IncludeZero
	}
	return report.SuppressZero
}
