package models

import (
	"time"

	"github.com/safecommute/safecommute/internal/planner"
)

// PlanRoutesRequest asks for fastest and safest routes between two
// free-text place queries within a city.
type PlanRoutesRequest struct {
	City string `json:"city"`
	Src  string `json:"src"`
	Dst  string `json:"dst"`
}

// SelectTabRequest switches the active route tab.
type SelectTabRequest struct {
	Tab string `json:"tab"`
}

// SubmitReportRequest reports the resolved destination as unsafe.
type SubmitReportRequest struct {
	Note string `json:"note"`
}

// Place is a resolved location for marker rendering.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
	Query       string  `json:"query"`
}

// RouteView is one route alternative projected for rendering. Geometry
// is a Google-encoded polyline (precision 5).
type RouteView struct {
	Geometry    string                   `json:"geometry"`
	DistanceKm  float64                  `json:"distanceKm"`
	TimeMin     float64                  `json:"timeMin"`
	SafetyScore int                      `json:"safetyScore"`
	SafetyLabel string                   `json:"safetyLabel"`
	Breakdown   *planner.SafetyBreakdown `json:"breakdown,omitempty"`
}

// Viewport is the padded map region that fits the current routes.
type Viewport struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// SafeZoneView is a safe place with its derived emergency number.
type SafeZoneView struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	Type            string  `json:"type,omitempty"`
	Name            string  `json:"name,omitempty"`
	Address         string  `json:"address,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	DistanceM       float64 `json:"distanceM"`
	EmergencyNumber string  `json:"emergencyNumber"`
}

// ReportView is a submitted unsafe-spot report.
type ReportView struct {
	ID          string    `json:"id"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Note        string    `json:"note,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// TripView is the full session projection the map front end renders.
type TripView struct {
	City      string         `json:"city"`
	SrcQuery  string         `json:"srcQuery"`
	DstQuery  string         `json:"dstQuery"`
	Src       *Place         `json:"src,omitempty"`
	Dst       *Place         `json:"dst,omitempty"`
	Fastest   *RouteView     `json:"fastest,omitempty"`
	Safest    *RouteView     `json:"safest,omitempty"`
	ActiveTab string         `json:"activeTab"`
	Viewport  *Viewport      `json:"viewport,omitempty"`
	SafeZones []SafeZoneView `json:"safeZones"`
	Reports   []ReportView   `json:"reports"`
}

// CitiesResponse lists the cities the planning service covers.
type CitiesResponse struct {
	Cities []string `json:"cities"`
}

// Health is the ops health payload.
type Health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
