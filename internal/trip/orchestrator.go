package trip

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/geocode"
	"github.com/safecommute/safecommute/internal/planner"
)

// OrchestratorConfig holds dependencies for the orchestrator.
type OrchestratorConfig struct {
	// Resolver turns place queries into coordinates.
	Resolver geocode.Resolver

	// Planner is the remote planning service.
	Planner planner.Service

	// Logger for orchestrator operations.
	Logger zerolog.Logger
}

// Orchestrator sequences geocoding, route planning, and the panic and
// report side branches, and owns the session state they mutate. All
// exported methods are safe for concurrent use; the last flow to
// complete wins, except for route planning where only the most recently
// issued request may commit.
type Orchestrator struct {
	resolver geocode.Resolver
	planner  planner.Service
	logger   zerolog.Logger

	// issueGen is bumped when a plan request is issued. A completed
	// request commits only if its generation is still the latest, so
	// late-arriving superseded responses are discarded deterministically.
	issueGen atomic.Uint64

	mu      sync.Mutex
	session Session
}

// NewOrchestrator creates a new orchestrator with an idle session.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		resolver: cfg.Resolver,
		planner:  cfg.Planner,
		logger:   cfg.Logger,
		session: Session{
			ActiveTab: KindFastest,
		},
	}
}

// Snapshot returns a copy of the current session state.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.clone()
}

// PlanRoutes resolves both queries, fetches the route pair, and commits
// the result to the session. On any failure the previous route results
// are preserved; only the query inputs retain the caller's latest
// values regardless of outcome.
func (o *Orchestrator) PlanRoutes(ctx context.Context, city, srcQuery, dstQuery string) (Session, error) {
	srcQuery = strings.TrimSpace(srcQuery)
	dstQuery = strings.TrimSpace(dstQuery)

	// Queries always reflect the latest user input, success or failure.
	o.mu.Lock()
	o.session.City = city
	o.session.SrcQuery = srcQuery
	o.session.DstQuery = dstQuery
	o.mu.Unlock()

	if srcQuery == "" || dstQuery == "" {
		return o.Snapshot(), ErrMissingQuery
	}

	gen := o.issueGen.Add(1)
	log := o.logger.With().Uint64("generation", gen).Str("city", city).Logger()
	log.Info().Str("src", srcQuery).Str("dst", dstQuery).Msg("planning routes")

	src, dst, err := o.resolveEndpoints(ctx, city, srcQuery, dstQuery)
	if err != nil {
		// Partial resolution is discarded entirely; no route request is
		// made with a stale location for the other role.
		log.Warn().Err(err).Msg("location resolution failed")
		return o.Snapshot(), err
	}

	pair, err := o.planner.FetchRoutes(ctx, city, src.Point, dst.Point)
	if err != nil {
		log.Warn().Err(err).Msg("route fetch failed")
		return o.Snapshot(), err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.issueGen.Load() {
		log.Info().Msg("dropping superseded route response")
		return o.session.clone(), ErrSuperseded
	}

	// Commit atomically: both kinds together, and the safe-zone overlay
	// is invalidated since it was computed against the previous source.
	o.session.Src = src
	o.session.Dst = dst
	o.session.Fastest = &pair.Fastest
	o.session.Safest = &pair.Safest
	o.session.SafeZones = nil
	o.session.ActiveTab = KindFastest

	log.Info().
		Float64("fastest_km", pair.Fastest.DistanceKm).
		Float64("safest_km", pair.Safest.DistanceKm).
		Int("fastest_score", pair.Fastest.SafetyScore).
		Int("safest_score", pair.Safest.SafetyScore).
		Msg("routes committed")

	return o.session.clone(), nil
}

// resolveEndpoints geocodes the source and destination concurrently.
// Both must succeed before a route request is issued.
func (o *Orchestrator) resolveEndpoints(ctx context.Context, city, srcQuery, dstQuery string) (src, dst *geocode.ResolvedLocation, err error) {
	type result struct {
		loc *geocode.ResolvedLocation
		err error
	}

	srcCh := make(chan result, 1)
	dstCh := make(chan result, 1)

	go func() {
		loc, rerr := o.resolver.Resolve(ctx, srcQuery, city)
		srcCh <- result{loc: loc, err: rerr}
	}()
	go func() {
		loc, rerr := o.resolver.Resolve(ctx, dstQuery, city)
		dstCh <- result{loc: loc, err: rerr}
	}()

	srcRes := <-srcCh
	dstRes := <-dstCh

	if srcRes.err != nil {
		return nil, nil, fmt.Errorf("resolving source %q: %w", srcQuery, srcRes.err)
	}
	if dstRes.err != nil {
		return nil, nil, fmt.Errorf("resolving destination %q: %w", dstQuery, dstRes.err)
	}
	return srcRes.loc, dstRes.loc, nil
}

// Panic fetches safe zones around the resolved source location and
// replaces the overlay wholesale. An empty result surfaces
// ErrNoSafeZones and retains any overlay from a prior trigger, so a
// transient empty does not blank the map.
func (o *Orchestrator) Panic(ctx context.Context) ([]planner.SafeZone, error) {
	o.mu.Lock()
	src := o.session.Src
	city := o.session.City
	o.mu.Unlock()

	if src == nil {
		return nil, ErrNoSourceLocation
	}

	zones, err := o.planner.FetchSafeZones(ctx, city, src.Point)
	if err != nil {
		o.logger.Warn().Err(err).Msg("safe zone lookup failed")
		return nil, err
	}
	if len(zones) == 0 {
		return nil, ErrNoSafeZones
	}

	o.mu.Lock()
	o.session.SafeZones = zones
	o.mu.Unlock()

	o.logger.Info().Int("zone_count", len(zones)).Msg("safe zones updated")
	return zones, nil
}

// SubmitReport reports the resolved destination as an unsafe spot and
// appends it to the session's report list on acknowledgement.
func (o *Orchestrator) SubmitReport(ctx context.Context, note string) (Report, error) {
	o.mu.Lock()
	dst := o.session.Dst
	o.mu.Unlock()

	if dst == nil {
		return Report{}, ErrNoDestinationLocation
	}

	ack, err := o.planner.SubmitReport(ctx, dst.Point, note)
	if err != nil {
		o.logger.Warn().Err(err).Msg("report submission failed")
		return Report{}, err
	}

	report := Report{
		ID:          "rpt_" + uuid.New().String()[:22],
		Point:       ack.Point,
		Note:        ack.Note,
		SubmittedAt: time.Now(),
	}

	o.mu.Lock()
	o.session.Reports = append(o.session.Reports, report)
	o.mu.Unlock()

	o.logger.Info().
		Str("report_id", report.ID).
		Float64("lat", report.Point.Lat).
		Float64("lon", report.Point.Lon).
		Msg("report recorded")

	return report, nil
}

// SelectTab switches the active route tab.
func (o *Orchestrator) SelectTab(kind RouteKind) (Session, error) {
	if kind != KindFastest && kind != KindSafest {
		return o.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownTab, kind)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.ActiveTab = kind
	return o.session.clone(), nil
}
