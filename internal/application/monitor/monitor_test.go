package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aescanero/signup/pkg/domain"
)

type fakeDirectory struct {
	activities domain.Directory
	pingErr    error
}

func (d *fakeDirectory) ListActivities(context.Context) (domain.Directory, error) {
	return d.activities, nil
}

func (d *fakeDirectory) Ping(context.Context) error { return d.pingErr }

type fakeMetrics struct {
	mu      sync.Mutex
	rosters map[string][2]int
	healthy []bool
}

func (m *fakeMetrics) RecordOperation(string, string)    {}
func (m *fakeMetrics) RecordEventPublished(string, bool) {}

func (m *fakeMetrics) SetRoster(activity string, participants, capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rosters == nil {
		m.rosters = make(map[string][2]int)
	}
	m.rosters[activity] = [2]int{participants, capacity}
}

func (m *fakeMetrics) SetStoreHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = append(m.healthy, healthy)
}

func (m *fakeMetrics) checks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.healthy)
}

type fakeReporter struct {
	mu      sync.Mutex
	serving []bool
}

func (r *fakeReporter) SetServing(serving bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serving = append(r.serving, serving)
}

func TestCheckFlagsRosters(t *testing.T) {
	dir := &fakeDirectory{activities: domain.Directory{
		{Name: "Chess Club", MaxParticipants: 2, Participants: []string{"a@x", "b@x"}},
		{Name: "Art Club", MaxParticipants: 1, Participants: []string{"a@x", "b@x"}},
		{Name: "Math Club", MaxParticipants: 5, Participants: []string{"a@x"}},
	}}
	metrics := &fakeMetrics{}
	reporter := &fakeReporter{}
	m := NewRosterMonitor(dir, metrics, reporter, time.Minute, zaptest.NewLogger(t))

	status := m.Check(context.Background())

	assert.True(t, status.StoreHealthy)
	assert.Equal(t, 3, status.Activities)
	assert.Equal(t, []string{"Chess Club"}, status.Full)
	assert.Equal(t, []string{"Art Club"}, status.OverCapacity)
	assert.Equal(t, [2]int{1, 5}, metrics.rosters["Math Club"])
	assert.Equal(t, []bool{true}, reporter.serving)
	assert.Same(t, status, m.LastStatus())
}

func TestCheckReportsUnhealthyStore(t *testing.T) {
	dir := &fakeDirectory{pingErr: errors.New("connection refused")}
	metrics := &fakeMetrics{}
	reporter := &fakeReporter{}
	m := NewRosterMonitor(dir, metrics, reporter, time.Minute, zaptest.NewLogger(t))

	status := m.Check(context.Background())

	assert.False(t, status.StoreHealthy)
	assert.Zero(t, status.Activities)
	assert.Equal(t, []bool{false}, metrics.healthy)
	assert.Equal(t, []bool{false}, reporter.serving)
}

func TestStartStop(t *testing.T) {
	metrics := &fakeMetrics{}
	m := NewRosterMonitor(&fakeDirectory{}, metrics, nil, 10*time.Millisecond, zaptest.NewLogger(t))
	require.Nil(t, m.LastStatus())

	m.Start()
	m.Start()
	assert.Eventually(t, func() bool { return metrics.checks() >= 3 }, 2*time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
	settled := metrics.checks()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, metrics.checks())
	assert.NotNil(t, m.LastStatus())
}

func TestCheckWarnsAboutFullAndOverCapacityRosters(t *testing.T) {
	dir := &fakeDirectory{activities: domain.Directory{
		{Name: "Chess Club", MaxParticipants: 2, Participants: []string{"a@x", "b@x"}},
		{Name: "Art Club", MaxParticipants: 1, Participants: []string{"a@x", "b@x"}},
		{Name: "Math Club", MaxParticipants: 5, Participants: []string{"a@x"}},
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	m := NewRosterMonitor(dir, &fakeMetrics{}, nil, time.Minute, zap.New(core))

	m.Check(context.Background())

	full := logs.FilterMessage("activity full").All()
	require.Len(t, full, 1)
	assert.Equal(t, "Chess Club", full[0].ContextMap()["activity"])

	over := logs.FilterMessage("activity over capacity").All()
	require.Len(t, over, 1)
	assert.Equal(t, "Art Club", over[0].ContextMap()["activity"])
}
