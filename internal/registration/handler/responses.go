package handler

import (
	"eventreg/internal/registration/models"
	"eventreg/internal/registration/service"
)

// ListResponse is one page of the dashboard table.
type ListResponse struct {
	Registrations []*models.Registration `json:"inscricoes"`
	// Total counts every registration; Showing those that passed the filter.
	Total   int `json:"total"`
	Showing int `json:"exibindo"`
}

func newListResponse(result *service.ListResult) ListResponse {
	registrations := result.Registrations
	if registrations == nil {
		registrations = []*models.Registration{}
	}
	return ListResponse{
		Registrations: registrations,
		Total:         result.Total,
		Showing:       result.Showing(),
	}
}

// DayOption is one selectable participation day.
type DayOption struct {
	Value models.Day `json:"valor"`
	Label string     `json:"rotulo"`
}

// CatalogResponse gives a form everything it needs to render its options.
type CatalogResponse struct {
	models.Catalog
	Days []DayOption `json:"dias"`
}

func newCatalogResponse(catalog models.Catalog) CatalogResponse {
	days := catalog.Days()
	options := make([]DayOption, 0, len(days))
	for _, d := range days {
		options = append(options, DayOption{Value: d, Label: d.Display()})
	}
	return CatalogResponse{Catalog: catalog, Days: options}
}
