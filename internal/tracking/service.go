package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/logging"
)

// Snapshot is an immutable view of the full tracking state, published after
// every processed update.
type Snapshot struct {
	LastUpdate      *LocationUpdate
	Direction       InferenceResult
	ActiveDirection catalog.Direction
	AutoDirection   bool
	JourneyActive   bool
	Progression     *ProgressionState
	ETA             ETAResult
	Warnings        []Warning
	Alerts          []Alert
}

// Service is the single writer over all journey state. Location updates and
// the staleness tick are serialized through one mutex; every update fans out
// to the engines in dependency order (direction, progression, ETA and edge
// cases, alerts) before the next one is accepted.
type Service struct {
	logger *slog.Logger
	cat    *catalog.Catalog

	mu          sync.Mutex
	tracker     *LocationTracker
	inference   *DirectionInferenceEngine
	directions  *DirectionManager
	progression *StationProgressionEngine
	eta         *ETAEngine
	monitor     *EdgeCaseMonitor
	alerts      *AlertManager

	state         *ProgressionState
	lastUpdate    *LocationUpdate
	lastInference InferenceResult

	started  bool
	stopTick chan struct{}
	wg       sync.WaitGroup
}

// NewService wires the engines around the given catalog. source feeds the
// location tracker; sink receives fired alerts.
func NewService(logger *slog.Logger, c *catalog.Catalog, source PositionSource, sink AlertSink) *Service {
	s := &Service{
		logger:      logger,
		cat:         c,
		inference:   NewDirectionInferenceEngine(c),
		directions:  NewDirectionManager(),
		progression: NewStationProgressionEngine(),
		eta:         NewETAEngine(),
		monitor:     NewEdgeCaseMonitor(c),
		alerts:      NewAlertManager(sink),
	}
	s.tracker = NewLocationTracker(source, s.handleUpdate)
	return s
}

// Start begins consuming the position source and starts the staleness tick.
// It returns an error when the position source cannot be subscribed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if !s.tracker.Start(ctx) {
		return fmt.Errorf("position source unavailable")
	}

	s.started = true
	s.stopTick = make(chan struct{})
	s.wg.Add(1)
	go s.runTicker(s.stopTick)

	logging.LogOperation(s.logger, "tracking_started")
	return nil
}

// Stop halts the ticker and the tracker deterministically and discards
// smoothing and history buffers. A new journey requires StartJourney again.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stop := s.stopTick
	s.mu.Unlock()

	close(stop)
	s.wg.Wait()
	s.tracker.Stop()

	s.mu.Lock()
	s.inference.Reset()
	s.eta.Reset()
	s.monitor.Reset()
	s.mu.Unlock()

	logging.LogOperation(s.logger, "tracking_stopped")
}

// ProcessFix ingests one raw fix synchronously: it is normalized by the
// tracker and fanned out to every engine before the call returns. The
// returned update is the normalized sample; ok is false while the tracker
// is idle.
func (s *Service) ProcessFix(fix RawFix) (LocationUpdate, bool) {
	return s.tracker.Ingest(fix)
}

// StartJourney initializes journey state toward the given destination. An
// empty direction uses the active (possibly inferred) one; an explicit
// direction counts as a manual selection. threshold <= 0 keeps the current
// alert threshold.
func (s *Service) StartJourney(direction catalog.Direction, destinationID string, threshold int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if direction != "" {
		if !direction.IsValid() {
			return fmt.Errorf("invalid direction %q", direction)
		}
		s.directions.SetManual(direction)
	} else {
		direction = s.directions.Active()
		if direction == "" {
			return fmt.Errorf("no direction selected and none inferred yet")
		}
	}

	if threshold > 0 {
		if err := s.alerts.SetThreshold(threshold); err != nil {
			return err
		}
	}

	state, err := s.progression.InitializeJourney(s.cat, direction, destinationID)
	if err != nil {
		return err
	}

	s.state = state
	s.inference.Reset()
	s.eta.Reset()
	s.monitor.Reset()
	s.alerts.Reset()
	s.lastInference = InferenceResult{}

	logging.LogOperation(s.logger, "journey_started",
		slog.String("destination", destinationID),
		slog.String("direction", string(direction)),
		slog.Int("stations", len(state.Records)))
	return nil
}

// ResetJourney discards all journey state.
func (s *Service) ResetJourney() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	s.inference.Reset()
	s.eta.Reset()
	s.monitor.Reset()
	s.alerts.Reset()
	s.lastInference = InferenceResult{}

	logging.LogOperation(s.logger, "journey_reset")
}

// MarkStationPassed is the operator override from the progression engine.
func (s *Service) MarkStationPassed(stationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return fmt.Errorf("no active journey")
	}
	return s.progression.MarkStationPassed(s.state, stationID)
}

// SetManualDirection pins the travel direction.
func (s *Service) SetManualDirection(d catalog.Direction) error {
	if !d.IsValid() {
		return fmt.Errorf("invalid direction %q", d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directions.SetManual(d)
	return nil
}

// EnableAutoDirection re-enables inference-driven direction selection.
func (s *Service) EnableAutoDirection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directions.EnableAuto()
}

// DismissWarning removes a dismissible warning by type.
func (s *Service) DismissWarning(warningType WarningType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitor.Dismiss(warningType)
}

// Snapshot returns an immutable copy of the current tracking state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *LocationUpdate
	if s.lastUpdate != nil {
		u := *s.lastUpdate
		last = &u
	}

	return Snapshot{
		LastUpdate:      last,
		Direction:       s.lastInference,
		ActiveDirection: s.directions.Active(),
		AutoDirection:   s.directions.AutoEnabled(),
		JourneyActive:   s.state != nil,
		Progression:     s.state.Clone(),
		ETA:             s.eta.Last(),
		Warnings:        s.monitor.ActiveWarnings(),
		Alerts:          s.alerts.Events(),
	}
}

// handleUpdate is the single fan-out path for every normalized location
// update. Direction resolves first so progression sees the effective
// direction for this sample.
func (s *Service) handleUpdate(u LocationUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := u.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	s.inference.AddUpdate(u)
	result := s.inference.InferDirection()
	if result.Direction == "" {
		if fallback := s.inference.InferFromStationApproach(); fallback.Direction != "" {
			fallback.Reasoning = result.Reasoning + "; " + fallback.Reasoning
			result = fallback
		}
	}
	s.lastInference = result
	active := s.directions.Apply(result)

	if s.state != nil {
		s.progression.UpdateProgression(s.state, u.Lat, u.Lon, now)
	}

	etaResult := s.eta.Update(u, s.state)

	s.monitor.HandleUpdate(u, now)
	s.monitor.HandleDirection(result, active, now)

	if s.state != nil {
		s.alerts.HandleProgression(s.state, formatETAText(etaResult), now)
	}

	s.lastUpdate = &u
}

// runTicker drives the periodic GPS staleness check.
func (s *Service) runTicker(stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(stalenessCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.monitor.CheckStaleness(time.Now())
			s.mu.Unlock()
		}
	}
}

func formatETAText(result ETAResult) string {
	if result.ETAToDestination == nil {
		return ""
	}
	minutes := int(result.ETAToDestination.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		return "under a minute"
	}
	if minutes == 1 {
		return "about 1 minute"
	}
	return fmt.Sprintf("about %d minutes", minutes)
}
