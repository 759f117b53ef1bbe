// Package handler provides HTTP handlers for the companion API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safecommute/safecommute/internal/api/models"
	"github.com/safecommute/safecommute/internal/api/response"
	"github.com/safecommute/safecommute/internal/geocode"
	"github.com/safecommute/safecommute/internal/planner"
	"github.com/safecommute/safecommute/internal/safety"
	"github.com/safecommute/safecommute/internal/trip"
	"github.com/safecommute/safecommute/internal/viewport"
	"github.com/safecommute/safecommute/pkg/polyline"
)

// TripHandler handles the route-planning session endpoints.
type TripHandler struct {
	orchestrator *trip.Orchestrator
	viewport     *viewport.Controller
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(orchestrator *trip.Orchestrator) *TripHandler {
	return &TripHandler{
		orchestrator: orchestrator,
		viewport:     viewport.NewController(),
	}
}

// GetSession handles GET /v1/trip - current session projection.
func (h *TripHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := h.orchestrator.Snapshot()
	response.JSON(w, r, http.StatusOK, h.toTripView(session))
}

// PlanRoutes handles POST /v1/trip/routes.
func (h *TripHandler) PlanRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	session, err := h.orchestrator.PlanRoutes(r.Context(), req.City, req.Src, req.Dst)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, h.toTripView(session))
}

// SelectTab handles PUT /v1/trip/tab.
func (h *TripHandler) SelectTab(w http.ResponseWriter, r *http.Request) {
	var req models.SelectTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	session, err := h.orchestrator.SelectTab(trip.RouteKind(req.Tab))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, h.toTripView(session))
}

// Panic handles POST /v1/trip/panic - safe zones near the source.
func (h *TripHandler) Panic(w http.ResponseWriter, r *http.Request) {
	zones, err := h.orchestrator.Panic(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	views := make([]models.SafeZoneView, 0, len(zones))
	for _, z := range zones {
		views = append(views, toSafeZoneView(z))
	}
	response.JSON(w, r, http.StatusOK, views)
}

// SubmitReport handles POST /v1/trip/reports.
func (h *TripHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	report, err := h.orchestrator.SubmitReport(r.Context(), req.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusCreated, toReportView(report))
}

// writeError maps orchestrator errors onto the API error taxonomy.
func (h *TripHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, trip.ErrMissingQuery):
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "src", Message: "source and destination are required", Code: "required"},
			{Field: "dst", Message: "source and destination are required", Code: "required"},
		})
	case errors.Is(err, trip.ErrNoSourceLocation),
		errors.Is(err, trip.ErrNoDestinationLocation),
		errors.Is(err, trip.ErrUnknownTab):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, geocode.ErrNotFound):
		response.NotFound(w, r, "invalid location: "+err.Error())
	case errors.Is(err, trip.ErrNoSafeZones):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, trip.ErrSuperseded):
		response.Conflict(w, r, err.Error())
	default:
		// ServiceUnavailable, MalformedResponse, circuit open, timeouts.
		response.ServiceUnavailable(w, r, "remote service failure, please try again")
	}
}

// toTripView projects the session for rendering: safety labels, encoded
// polylines, emergency numbers, and the fitted viewport.
func (h *TripHandler) toTripView(session trip.Session) models.TripView {
	view := models.TripView{
		City:      session.City,
		SrcQuery:  session.SrcQuery,
		DstQuery:  session.DstQuery,
		ActiveTab: string(session.ActiveTab),
		SafeZones: make([]models.SafeZoneView, 0, len(session.SafeZones)),
		Reports:   make([]models.ReportView, 0, len(session.Reports)),
	}

	if session.Src != nil {
		view.Src = toPlace(session.Src)
	}
	if session.Dst != nil {
		view.Dst = toPlace(session.Dst)
	}
	if session.Fastest != nil {
		view.Fastest = toRouteView(session.Fastest)
	}
	if session.Safest != nil {
		view.Safest = toRouteView(session.Safest)
	}

	h.viewport.Update(session.Fastest, session.Safest)
	if region, ok := h.viewport.Region(); ok {
		view.Viewport = &models.Viewport{
			MinLat: region.MinLat,
			MinLon: region.MinLon,
			MaxLat: region.MaxLat,
			MaxLon: region.MaxLon,
		}
	}

	for _, z := range session.SafeZones {
		view.SafeZones = append(view.SafeZones, toSafeZoneView(z))
	}
	for _, rep := range session.Reports {
		view.Reports = append(view.Reports, toReportView(rep))
	}

	return view
}

func toPlace(loc *geocode.ResolvedLocation) *models.Place {
	return &models.Place{
		Lat:         loc.Point.Lat,
		Lon:         loc.Point.Lon,
		DisplayName: loc.DisplayName,
		Query:       loc.Query,
	}
}

func toRouteView(route *planner.Route) *models.RouteView {
	coords := make([]polyline.Coordinate, 0, len(route.Coords))
	for _, c := range route.Coords {
		coords = append(coords, polyline.Coordinate{Lat: c.Lat, Lon: c.Lon})
	}

	return &models.RouteView{
		Geometry:    polyline.Encode(coords),
		DistanceKm:  route.DistanceKm,
		TimeMin:     route.TimeMin,
		SafetyScore: route.SafetyScore,
		SafetyLabel: string(safety.LabelForScore(route.SafetyScore)),
		Breakdown:   route.Breakdown,
	}
}

func toSafeZoneView(zone planner.SafeZone) models.SafeZoneView {
	return models.SafeZoneView{
		Lat:             zone.Point.Lat,
		Lon:             zone.Point.Lon,
		Type:            zone.Type,
		Name:            zone.Name,
		Address:         zone.Address,
		Phone:           zone.Phone,
		DistanceM:       zone.DistanceM,
		EmergencyNumber: safety.EmergencyNumber(zone),
	}
}

func toReportView(report trip.Report) models.ReportView {
	return models.ReportView{
		ID:          report.ID,
		Lat:         report.Point.Lat,
		Lon:         report.Point.Lon,
		Note:        report.Note,
		SubmittedAt: report.SubmittedAt,
	}
}
