package trip

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/geo"
	"github.com/safecommute/safecommute/internal/geocode"
	"github.com/safecommute/safecommute/internal/planner"
)

// stubResolver resolves queries from a fixed table.
type stubResolver struct {
	mu        sync.Mutex
	locations map[string]*geocode.ResolvedLocation
	err       error
	calls     int
}

func (s *stubResolver) Resolve(_ context.Context, query, _ string) (*geocode.ResolvedLocation, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	loc, ok := s.locations[query]
	if !ok {
		return nil, geocode.ErrNotFound
	}
	return loc, nil
}

// stubPlanner delegates to overridable functions.
type stubPlanner struct {
	routesFn func(ctx context.Context, city string, src, dst geo.Coordinate) (*planner.RoutePair, error)
	zonesFn  func(ctx context.Context, city string, center geo.Coordinate) ([]planner.SafeZone, error)
	reportFn func(ctx context.Context, loc geo.Coordinate, note string) (*planner.ReportAck, error)
}

func (s *stubPlanner) FetchRoutes(ctx context.Context, city string, src, dst geo.Coordinate) (*planner.RoutePair, error) {
	if s.routesFn == nil {
		return nil, planner.ErrServiceUnavailable
	}
	return s.routesFn(ctx, city, src, dst)
}

func (s *stubPlanner) FetchSafeZones(ctx context.Context, city string, center geo.Coordinate) ([]planner.SafeZone, error) {
	if s.zonesFn == nil {
		return nil, planner.ErrServiceUnavailable
	}
	return s.zonesFn(ctx, city, center)
}

func (s *stubPlanner) SubmitReport(ctx context.Context, loc geo.Coordinate, note string) (*planner.ReportAck, error) {
	if s.reportFn == nil {
		return nil, planner.ErrServiceUnavailable
	}
	return s.reportFn(ctx, loc, note)
}

func (s *stubPlanner) Cities(context.Context) ([]string, error) {
	return []string{"bengaluru"}, nil
}

func bengaluruResolver() *stubResolver {
	return &stubResolver{locations: map[string]*geocode.ResolvedLocation{
		"Indiranagar": {
			Point:       geo.Coordinate{Lat: 12.9719, Lon: 77.6412},
			DisplayName: "Indiranagar, Bengaluru, India",
			Query:       "Indiranagar",
		},
		"MG Road": {
			Point:       geo.Coordinate{Lat: 12.9757, Lon: 77.6067},
			DisplayName: "MG Road, Bengaluru, India",
			Query:       "MG Road",
		},
	}}
}

func pairFixture() *planner.RoutePair {
	return &planner.RoutePair{
		Fastest: planner.Route{
			Coords:      []geo.Coordinate{{Lat: 12.9719, Lon: 77.6412}, {Lat: 12.9757, Lon: 77.6067}},
			DistanceKm:  5.2,
			TimeMin:     18,
			SafetyScore: 60,
		},
		Safest: planner.Route{
			Coords:      []geo.Coordinate{{Lat: 12.9719, Lon: 77.6412}, {Lat: 12.98, Lon: 77.62}, {Lat: 12.9757, Lon: 77.6067}},
			DistanceKm:  6.1,
			TimeMin:     24,
			SafetyScore: 85,
		},
	}
}

func newTestOrchestrator(resolver geocode.Resolver, p planner.Service) *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Resolver: resolver,
		Planner:  p,
		Logger:   zerolog.Nop(),
	})
}

func TestPlanRoutes_Success(t *testing.T) {
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			return pairFixture(), nil
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	session, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Fastest == nil || session.Safest == nil {
		t.Fatal("expected both route kinds to be set")
	}
	if session.Fastest.SafetyScore != 60 {
		t.Errorf("expected fastest score 60, got %d", session.Fastest.SafetyScore)
	}
	if session.Safest.SafetyScore != 85 {
		t.Errorf("expected safest score 85, got %d", session.Safest.SafetyScore)
	}
	if len(session.SafeZones) != 0 {
		t.Errorf("expected safe zones cleared, got %d", len(session.SafeZones))
	}
	if session.ActiveTab != KindFastest {
		t.Errorf("expected active tab reset to fastest, got %q", session.ActiveTab)
	}
	if session.Src == nil || session.Src.DisplayName != "Indiranagar, Bengaluru, India" {
		t.Errorf("unexpected source location: %+v", session.Src)
	}
}

func TestPlanRoutes_EmptyQueryIsValidationError(t *testing.T) {
	resolver := bengaluruResolver()
	o := newTestOrchestrator(resolver, &stubPlanner{})

	session, err := o.PlanRoutes(context.Background(), "bengaluru", "  ", "MG Road")
	if !errors.Is(err, ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("expected no geocode calls on validation failure, got %d", resolver.calls)
	}
	// The typed destination is retained even though the call failed.
	if session.DstQuery != "MG Road" {
		t.Errorf("expected destination query retained, got %q", session.DstQuery)
	}
}

func TestPlanRoutes_GeocodeFailureDiscardsPartialResolution(t *testing.T) {
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			t.Fatal("route request must not be issued when resolution fails")
			return nil, nil
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	session, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "Nowhere Street")
	if !errors.Is(err, geocode.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if session.Src != nil || session.Dst != nil {
		t.Error("expected partial resolution to be discarded entirely")
	}
}

func TestPlanRoutes_FailurePreservesLastKnownGoodRoutes(t *testing.T) {
	callCount := 0
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			callCount++
			if callCount == 1 {
				return pairFixture(), nil
			}
			return nil, &planner.Error{Code: "MISSING_ROUTE_KIND", Message: "response missing fastest or safest route", Err: planner.ErrMalformedResponse}
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	if _, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road"); err != nil {
		t.Fatalf("unexpected error on first plan: %v", err)
	}

	session, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road")
	if !errors.Is(err, planner.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}

	// Prior routes remain visible after the failed refresh.
	if session.Fastest == nil || session.Safest == nil {
		t.Fatal("expected last-known-good routes to be preserved")
	}
	if session.Fastest.DistanceKm != 5.2 {
		t.Errorf("expected preserved fastest distance 5.2, got %v", session.Fastest.DistanceKm)
	}
}

func TestPlanRoutes_Supersession(t *testing.T) {
	releaseA := make(chan struct{})
	aStarted := make(chan struct{})

	staleB := false
	p := &stubPlanner{}
	p.routesFn = func(_ context.Context, _ string, _, dst geo.Coordinate) (*planner.RoutePair, error) {
		pair := pairFixture()
		if !staleB {
			// First issued request: block until released, then answer with
			// a distinctive payload.
			staleB = true
			close(aStarted)
			<-releaseA
			pair.Fastest.DistanceKm = 1.0
			return pair, nil
		}
		pair.Fastest.DistanceKm = 2.0
		return pair, nil
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	var wg sync.WaitGroup
	wg.Add(1)
	var errA error
	go func() {
		defer wg.Done()
		_, errA = o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road")
	}()

	<-aStarted

	// Request B is issued while A is in flight and resolves first.
	sessionB, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road")
	if err != nil {
		t.Fatalf("unexpected error on request B: %v", err)
	}
	if sessionB.Fastest.DistanceKm != 2.0 {
		t.Fatalf("expected B's result committed, got distance %v", sessionB.Fastest.DistanceKm)
	}

	// A resolves late; its result must be discarded.
	close(releaseA)
	wg.Wait()

	if !errors.Is(errA, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for request A, got %v", errA)
	}

	final := o.Snapshot()
	if final.Fastest.DistanceKm != 2.0 {
		t.Errorf("expected final state to hold B's result, got distance %v", final.Fastest.DistanceKm)
	}
}

func TestPanic_RequiresResolvedSource(t *testing.T) {
	o := newTestOrchestrator(bengaluruResolver(), &stubPlanner{})

	_, err := o.Panic(context.Background())
	if !errors.Is(err, ErrNoSourceLocation) {
		t.Fatalf("expected ErrNoSourceLocation, got %v", err)
	}
	if zones := o.Snapshot().SafeZones; len(zones) != 0 {
		t.Errorf("expected safe zones unchanged, got %d", len(zones))
	}
}

func TestPanic_ReplacesZonesWholesale(t *testing.T) {
	zoneBatch := []planner.SafeZone{
		{Point: geo.Coordinate{Lat: 12.97, Lon: 77.64}, Type: "police", Name: "Indiranagar PS", DistanceM: 400},
	}
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			return pairFixture(), nil
		},
		zonesFn: func(context.Context, string, geo.Coordinate) ([]planner.SafeZone, error) {
			return zoneBatch, nil
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	if _, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road"); err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	zones, err := o.Panic(context.Background())
	if err != nil {
		t.Fatalf("unexpected panic error: %v", err)
	}
	if len(zones) != 1 || zones[0].Name != "Indiranagar PS" {
		t.Fatalf("unexpected zones: %+v", zones)
	}

	// An empty follow-up surfaces an error but retains the overlay.
	zoneBatch = nil
	_, err = o.Panic(context.Background())
	if !errors.Is(err, ErrNoSafeZones) {
		t.Fatalf("expected ErrNoSafeZones, got %v", err)
	}
	if got := o.Snapshot().SafeZones; len(got) != 1 {
		t.Errorf("expected existing overlay retained on empty result, got %d zones", len(got))
	}
}

func TestSubmitReport_AppendsWithoutDeduplication(t *testing.T) {
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			return pairFixture(), nil
		},
		reportFn: func(_ context.Context, loc geo.Coordinate, note string) (*planner.ReportAck, error) {
			return &planner.ReportAck{Status: "ok", Point: loc, Note: note}, nil
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	// A report before any destination is resolved is a local validation
	// failure.
	if _, err := o.SubmitReport(context.Background(), "dark alley"); !errors.Is(err, ErrNoDestinationLocation) {
		t.Fatalf("expected ErrNoDestinationLocation, got %v", err)
	}

	if _, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road"); err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := o.SubmitReport(context.Background(), "poor lighting"); err != nil {
			t.Fatalf("unexpected report error: %v", err)
		}
	}

	reports := o.Snapshot().Reports
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Point != reports[1].Point {
		t.Error("expected identical report coordinates, no deduplication")
	}
}

func TestSelectTab(t *testing.T) {
	o := newTestOrchestrator(bengaluruResolver(), &stubPlanner{})

	session, err := o.SelectTab(KindSafest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ActiveTab != KindSafest {
		t.Errorf("expected safest tab, got %q", session.ActiveTab)
	}

	if _, err := o.SelectTab(RouteKind("scenic")); !errors.Is(err, ErrUnknownTab) {
		t.Fatalf("expected ErrUnknownTab, got %v", err)
	}
}

func TestSnapshot_DoesNotAliasInternalSlices(t *testing.T) {
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			return pairFixture(), nil
		},
		reportFn: func(_ context.Context, loc geo.Coordinate, note string) (*planner.ReportAck, error) {
			return &planner.ReportAck{Status: "ok", Point: loc, Note: note}, nil
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	if _, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road"); err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if _, err := o.SubmitReport(context.Background(), "first"); err != nil {
		t.Fatalf("unexpected report error: %v", err)
	}

	snapshot := o.Snapshot()
	if _, err := o.SubmitReport(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected report error: %v", err)
	}

	if len(snapshot.Reports) != 1 {
		t.Errorf("expected snapshot isolated from later appends, got %d reports", len(snapshot.Reports))
	}
}

func TestPlanRoutes_ServiceUnavailableWraps(t *testing.T) {
	p := &stubPlanner{
		routesFn: func(context.Context, string, geo.Coordinate, geo.Coordinate) (*planner.RoutePair, error) {
			return nil, fmt.Errorf("fetching: %w", planner.ErrServiceUnavailable)
		},
	}
	o := newTestOrchestrator(bengaluruResolver(), p)

	_, err := o.PlanRoutes(context.Background(), "bengaluru", "Indiranagar", "MG Road")
	if !errors.Is(err, planner.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
