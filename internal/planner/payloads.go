package planner

// Wire payloads for the planning service. Field names and units
// (kilometers, minutes, 0-100 score) are a compatibility contract and
// must not change.

// routesResponse is the /route response body. The service reports soft
// failures as HTTP 200 with a top-level error field.
type routesResponse struct {
	Fastest *routePayload `json:"fastest"`
	Safest  *routePayload `json:"safest"`
	Error   string        `json:"error,omitempty"`
}

// routePayload is a single route in the /route response.
// Coords are [lat, lon] pairs.
type routePayload struct {
	Coords      [][]float64      `json:"coords"`
	DistanceKm  float64          `json:"distance_km"`
	TimeMin     float64          `json:"time_min"`
	SafetyScore int              `json:"safety_score"`
	Breakdown   *SafetyBreakdown `json:"breakdown,omitempty"`
}

// panicResponse is the /panic response body.
type panicResponse struct {
	SafeZones []safeZonePayload `json:"safe_zones"`
	Error     string            `json:"error,omitempty"`
}

// safeZonePayload is a single safe zone in the /panic response.
type safeZonePayload struct {
	Type      *string  `json:"type"`
	Name      *string  `json:"name"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Address   *string  `json:"address"`
	Phone     *string  `json:"phone"`
	DistanceM *float64 `json:"distance_m"`
}

// reportResponse is the /report response body.
type reportResponse struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Note   string  `json:"note"`
	Error  string  `json:"error,omitempty"`
}

// citiesResponse is the /cities response body.
type citiesResponse struct {
	Cities []string `json:"cities"`
}
