package handler

import (
	"context"
	"net/http"

	"github.com/safecommute/safecommute/internal/api/models"
	"github.com/safecommute/safecommute/internal/api/response"
)

// CityLister lists the cities the planning service has graphs for.
type CityLister interface {
	Cities(ctx context.Context) ([]string, error)
}

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	cities CityLister
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(cities CityLister) *MetadataHandler {
	return &MetadataHandler{cities: cities}
}

// ListCities handles GET /v1/metadata/cities.
func (h *MetadataHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.cities.Cities(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, r, "could not list cities")
		return
	}
	if cities == nil {
		cities = []string{}
	}
	response.JSON(w, r, http.StatusOK, models.CitiesResponse{Cities: cities})
}
