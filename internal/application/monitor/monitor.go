package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
	"github.com/aescanero/signup/pkg/ports"
)

// Directory is the subset of the directory service the monitor reads
type Directory interface {
	ListActivities(ctx context.Context) (domain.Directory, error)
	Ping(ctx context.Context) error
}

// HealthReporter receives the outcome of each store check
type HealthReporter interface {
	SetServing(serving bool)
}

// RosterMonitor watches rosters and store health
type RosterMonitor struct {
	directory Directory
	metrics   ports.MetricsCollector
	reporter  HealthReporter
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	last    *Status
}

// Status is the outcome of the latest check
type Status struct {
	Activities   int
	Full         []string
	OverCapacity []string
	StoreHealthy bool
	Timestamp    time.Time
}

// NewRosterMonitor creates a new roster monitor. reporter may be nil.
func NewRosterMonitor(directory Directory, metrics ports.MetricsCollector, reporter HealthReporter, interval time.Duration, logger *zap.Logger) *RosterMonitor {
	return &RosterMonitor{
		directory: directory,
		metrics:   metrics,
		reporter:  reporter,
		interval:  interval,
		timeout:   interval / 2,
		logger:    logger,
	}
}

// Start runs a first check immediately and then one per interval
func (m *RosterMonitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.run(m.stopCh, m.doneCh)
}

// Stop stops the monitor and waits for the loop to exit
func (m *RosterMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// LastStatus returns the latest check result, or nil before the first check
func (m *RosterMonitor) LastStatus() *Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// run is the main monitoring loop
func (m *RosterMonitor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(context.Background())
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.Check(context.Background())
		}
	}
}

// Check performs one roster and store check
func (m *RosterMonitor) Check(ctx context.Context) *Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := &Status{Timestamp: time.Now()}

	if err := m.directory.Ping(ctx); err != nil {
		m.logger.Warn("activity store unreachable", zap.Error(err))
	} else {
		status.StoreHealthy = true
	}
	m.metrics.SetStoreHealthy(status.StoreHealthy)
	if m.reporter != nil {
		m.reporter.SetServing(status.StoreHealthy)
	}

	if status.StoreHealthy {
		m.checkRosters(ctx, status)
	}

	m.mu.Lock()
	m.last = status
	m.mu.Unlock()

	return status
}

// checkRosters refreshes gauges and flags full rosters
func (m *RosterMonitor) checkRosters(ctx context.Context, status *Status) {
	activities, err := m.directory.ListActivities(ctx)
	if err != nil {
		m.logger.Error("failed to snapshot activities", zap.Error(err))
		return
	}

	status.Activities = len(activities)
	for _, activity := range activities {
		participants := len(activity.Participants)
		m.metrics.SetRoster(activity.Name, participants, activity.MaxParticipants)

		switch {
		case participants > activity.MaxParticipants:
			status.OverCapacity = append(status.OverCapacity, activity.Name)
			m.logger.Warn("activity over capacity",
				zap.String("activity", activity.Name),
				zap.Int("participants", participants),
				zap.Int("max_participants", activity.MaxParticipants))
		case participants == activity.MaxParticipants:
			status.Full = append(status.Full, activity.Name)
			m.logger.Warn("activity full",
				zap.String("activity", activity.Name),
				zap.Int("participants", participants),
				zap.Int("max_participants", activity.MaxParticipants))
		}
	}

	m.logger.Debug("roster check",
		zap.Int("activities", status.Activities),
		zap.Strings("full", status.Full),
		zap.Strings("over_capacity", status.OverCapacity))
}
