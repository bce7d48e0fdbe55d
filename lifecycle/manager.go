package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/brokerconf/conf"
	"github.com/c360/brokerconf/errors"
	"github.com/c360/brokerconf/version"
)

// State represents the lifecycle state of an orchestrator instance
type State int

const (
	// StateUnconfigured indicates no configuration has been applied yet,
	// or the engine has been shut down.
	StateUnconfigured State = iota
	// StateRunning indicates the engine is running under the current
	// configuration.
	StateRunning
)

// String returns a string representation of the orchestrator state
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ApplyResult is the structured outcome of an apply, rollback, or
// applyChanges call. All expected negative outcomes (validation failure,
// observer cancellation, delegate rejection) land here with OK false and a
// human-readable Reason; only caller misuse surfaces as a Go error.
type ApplyResult struct {
	OK     bool
	OpID   string
	Reason string
	Record *version.Record
	Diff   []conf.Change
}

// Manager is the configuration lifecycle orchestrator. It composes the
// validator, diff engine, version store, and the external broker engine
// into the apply/rollback/query protocol, serializing every mutating and
// engine-querying operation behind a single gate. Independent Manager
// instances share no state.
type Manager struct {
	// gate serializes apply, rollback, applyChanges, queries, and
	// shutdown. At most one such operation is in flight per instance;
	// concurrent callers queue in arrival order.
	gate sync.Mutex

	engine  Engine
	opts    Options
	logger  *slog.Logger
	store   *version.Store
	metrics *managerMetrics

	// Guarded by gate.
	current *conf.Document
	state   State

	// Observer lists, invoked in attachment order.
	handlersMu sync.Mutex
	changing   []ChangingHandler
	changed    []ChangedHandler
}

// NewManager creates an orchestrator over the given engine. The engine is
// selected once here and never replaced. A nil registerer disables metrics;
// a metrics registration failure is logged and the manager continues
// without instrumentation.
func NewManager(engine Engine, opts Options, logger *slog.Logger, reg prometheus.Registerer) (*Manager, error) {
	if engine == nil {
		return nil, errors.WrapInvalid(errors.ErrNilEngine, "Manager", "NewManager", "check engine")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newManagerMetrics(reg)
	if err != nil {
		logger.Error("Failed to register lifecycle metrics", "error", err)
		metrics = nil // Continue without metrics
	}

	return &Manager{
		engine:  engine,
		opts:    opts,
		logger:  logger,
		store:   version.NewStore(),
		metrics: metrics,
		state:   StateUnconfigured,
	}, nil
}

// OnChanging attaches an observer that runs before the engine is touched
// and may cancel the apply.
func (m *Manager) OnChanging(h ChangingHandler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.changing = append(m.changing, h)
}

// OnChanged attaches an observer that runs after a configuration has been
// promoted.
func (m *Manager) OnChanged(h ChangedHandler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.changed = append(m.changed, h)
}

// Apply validates the candidate, diffs it against the current
// configuration, notifies observers, delegates to the engine, and on
// success records a new version and promotes the candidate. A failed apply
// leaves current configuration, version history, and engine state exactly
// as they were.
func (m *Manager) Apply(ctx context.Context, candidate *conf.Document) (*ApplyResult, error) {
	if candidate == nil {
		return nil, errors.WrapInvalid(errors.ErrNilDocument, "Manager", "Apply", "check candidate")
	}

	m.gate.Lock()
	defer m.gate.Unlock()

	changeType := version.Update
	if m.store.Len() == 0 {
		changeType = version.Initial
	}
	return m.applyLocked(ctx, candidate, changeType, ""), nil
}

// ApplyChanges clones the current configuration, runs the mutator against
// the clone, and applies the result. It fails hard when nothing has been
// applied yet; a mutator error is reported as an apply failure with no side
// effects.
func (m *Manager) ApplyChanges(ctx context.Context, mutator func(*conf.Document) error) (*ApplyResult, error) {
	if mutator == nil {
		return nil, errors.WrapInvalid(errors.ErrNilMutator, "Manager", "ApplyChanges", "check mutator")
	}

	m.gate.Lock()
	defer m.gate.Unlock()

	if m.current == nil {
		return nil, errors.WrapInvalid(errors.ErrNotConfigured, "Manager", "ApplyChanges", "check current configuration")
	}

	candidate := m.current.Clone()
	if err := mutator(candidate); err != nil {
		return &ApplyResult{
			OK:     false,
			OpID:   uuid.NewString(),
			Reason: fmt.Sprintf("mutator failed: %v", err),
		}, nil
	}

	return m.applyLocked(ctx, candidate, version.Update, ""), nil
}

// Rollback re-applies an earlier version's configuration values as a fresh
// candidate. toVersion 0 targets the version before the current one. The
// full apply protocol runs, and a new record tagged Rollback is created;
// nothing references the old record.
func (m *Manager) Rollback(ctx context.Context, toVersion int) (*ApplyResult, error) {
	m.gate.Lock()
	defer m.gate.Unlock()

	latest, ok := m.store.GetLatest()
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrNoPriorVersion, "Manager", "Rollback", "resolve target version")
	}

	if toVersion <= 0 {
		toVersion = latest.Version - 1
	}
	if toVersion < 1 {
		return nil, errors.WrapInvalid(errors.ErrNoPriorVersion, "Manager", "Rollback", "resolve target version")
	}

	target, ok := m.store.GetVersion(toVersion)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("version %d: %w", toVersion, errors.ErrVersionNotFound),
			"Manager", "Rollback", "resolve target version")
	}

	candidate := target.Document.Clone()
	note := fmt.Sprintf("rolled back to version %d", target.Version)

	result := m.applyLocked(ctx, candidate, version.Rollback, note)
	if result.OK {
		m.metrics.recordRollback()
	}
	return result, nil
}

// applyLocked runs steps 1-8 of the apply protocol. The gate must be held.
func (m *Manager) applyLocked(ctx context.Context, candidate *conf.Document, changeType version.ChangeType, note string) *ApplyResult {
	start := time.Now()
	opID := uuid.NewString()
	logger := m.logger.With("op_id", opID, "change_type", changeType.String())

	// 1. Validate: standalone for the first configuration, transition
	// otherwise.
	var violations []conf.Violation
	if m.current == nil {
		violations = conf.Validate(candidate)
	} else {
		violations = conf.ValidateTransition(m.current, candidate)
	}
	if len(violations) > 0 {
		reason := conf.Summarize(violations)
		logger.Info("Configuration rejected by validator", "violations", len(violations), "reason", reason)
		m.metrics.recordApply("validation_failed", start, 0, 0)
		return &ApplyResult{OK: false, OpID: opID, Reason: reason}
	}

	// 2. Diff against the current configuration (empty for the first).
	diff := conf.Diff(m.current, candidate)

	// 3. Pre-notify, cancelable. Observers see deep copies only.
	var currentCopy *conf.Document
	if m.current != nil {
		currentCopy = m.current.Clone()
	}
	event := &ChangingEvent{
		Current:  currentCopy,
		Proposed: candidate.Clone(),
		Diff:     diff,
	}
	for _, h := range m.snapshotChanging() {
		h(event)
		if canceled, reason := event.Canceled(); canceled {
			logger.Info("Apply canceled by observer", "reason", reason)
			m.metrics.recordApply("canceled", start, 0, 0)
			return &ApplyResult{OK: false, OpID: opID, Reason: reason}
		}
	}

	// 4. Delegate: start when unconfigured, hot reload when running.
	flat := candidate.Flatten()
	var (
		response string
		err      error
	)
	if m.state == StateUnconfigured {
		response, err = m.engine.Start(ctx, flat)
	} else {
		response, err = m.engine.Reload(ctx, flat)
	}
	if err != nil {
		logger.Warn("Engine rejected configuration", "error", err)
		m.metrics.recordApply("delegate_failed", start, 0, 0)
		return &ApplyResult{OK: false, OpID: opID, Reason: err.Error()}
	}
	if ResponseIndicatesFailure(response) {
		logger.Warn("Engine response indicates failure", "response", response)
		m.metrics.recordApply("delegate_failed", start, 0, 0)
		return &ApplyResult{OK: false, OpID: opID, Reason: response}
	}

	// 5. Version: deep-copy the candidate into an immutable record.
	prev, hadPrev := m.store.GetLatest()
	record := m.store.Save(&version.Record{
		Document:  candidate.Clone(),
		AppliedAt: time.Now(),
		Change:    changeType,
		Note:      note,
	})

	// 6. Promote.
	m.current = candidate.Clone()
	m.state = StateRunning

	// 7. Post-notify. Only fires when a prior version existed; a panicking
	// handler cannot roll back the already-committed state.
	if hadPrev {
		changedEvent := ChangedEvent{Previous: prev, New: record, Diff: diff}
		for _, h := range m.snapshotChanged() {
			m.notifyChanged(h, changedEvent)
		}
	}

	logger.Info("Configuration applied",
		"version", record.Version,
		"changes", len(diff),
		"duration", time.Since(start))
	m.metrics.recordApply("applied", start, len(diff), record.Version)

	return &ApplyResult{OK: true, OpID: opID, Record: record, Diff: diff}
}

func (m *Manager) notifyChanged(h ChangedHandler, event ChangedEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Changed observer panicked", "panic", r)
		}
	}()
	h(event)
}

func (m *Manager) snapshotChanging() []ChangingHandler {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	out := make([]ChangingHandler, len(m.changing))
	copy(out, m.changing)
	return out
}

func (m *Manager) snapshotChanged() []ChangedHandler {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	out := make([]ChangedHandler, len(m.changed))
	copy(out, m.changed)
	return out
}

// Current returns a deep copy of the active configuration, or nil when
// unconfigured. The copy stays valid after later applies.
func (m *Manager) Current() *conf.Document {
	m.gate.Lock()
	defer m.gate.Unlock()

	if m.current == nil {
		return nil
	}
	return m.current.Clone()
}

// State reports the lifecycle state.
func (m *Manager) State() State {
	m.gate.Lock()
	defer m.gate.Unlock()
	return m.state
}

// History returns up to count version records, newest first. A
// non-positive count uses the configured history limit.
func (m *Manager) History(count int) []*version.Record {
	if count <= 0 {
		count = m.opts.HistoryLimit
	}
	return m.store.GetHistory(count)
}

// GetVersion returns the record for an exact version number.
func (m *Manager) GetVersion(n int) (*version.Record, bool) {
	return m.store.GetVersion(n)
}

// Query passes a monitoring or status request through to the engine. It
// shares the gate with apply so the answer always reflects a consistent
// view of which configuration the engine is running.
func (m *Manager) Query(ctx context.Context, operation, filter string) (string, error) {
	m.gate.Lock()
	defer m.gate.Unlock()

	if m.state != StateRunning {
		return "", errors.WrapInvalid(errors.ErrNotConfigured, "Manager", "Query", "check engine state")
	}

	response, err := m.engine.Query(ctx, operation, filter)
	if err != nil {
		return "", errors.WrapTransient(err, "Manager", "Query", "query engine")
	}
	return response, nil
}

// Shutdown stops the engine and returns the orchestrator to unconfigured;
// the last configuration and the version history remain inspectable. Gate
// acquisition is bounded by Options.ShutdownTimeout: on timeout the
// shutdown proceeds forced, and the gate is intentionally leaked for the
// life of the process rather than letting disposal hang. Engine shutdown
// errors are suppressed.
func (m *Manager) Shutdown(ctx context.Context) {
	acquired := make(chan struct{})
	go func() {
		m.gate.Lock()
		close(acquired)
	}()

	forced := false
	select {
	case <-acquired:
		defer m.gate.Unlock()
	case <-time.After(m.opts.ShutdownTimeout.Std()):
		forced = true
		m.logger.Warn("Shutdown gate acquisition timed out, proceeding forced",
			"timeout", m.opts.ShutdownTimeout.Std())
	}

	if m.state == StateRunning || forced {
		if err := m.engine.Shutdown(ctx); err != nil {
			m.logger.Warn("Engine shutdown reported an error", "error", err)
		}
	}
	if !forced {
		m.state = StateUnconfigured
	}

	m.logger.Info("Orchestrator shut down", "forced", forced)
}
