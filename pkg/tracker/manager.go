package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/stations"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

// DataSource is the subset of the Trafikverket client the tracker polls.
type DataSource interface {
	AllPositions(ctx context.Context) ([]trafikverket.TrainPosition, error)
	ActiveAnnouncements(ctx context.Context) ([]trafikverket.TrainAnnouncement, error)
	LatestAnnouncement(ctx context.Context, trainIdent string) (*trafikverket.TrainAnnouncement, error)
	UpcomingAnnouncements(ctx context.Context, trainIdent string) ([]trafikverket.TrainAnnouncement, error)
}

// Manager owns the marker set and drives it from two independent poll loops:
// a metadata sweep feeding the record store and a position poll emitting
// marker instructions. On-demand detail fetches interleave freely with both;
// the store's merge rules keep every interleaving safe.
type Manager struct {
	source    DataSource
	directory *stations.Directory
	store     *trainstate.Store
	registry  *trainstate.Registry
	sink      MarkerSink
	config    Config

	filterProgram *vm.Program
	focus         *focusLatch

	mu             sync.Mutex
	markers        map[string]*Marker
	visibleCount   int
	categoryFilter string
}

func NewManager(source DataSource, directory *stations.Directory, store *trainstate.Store, registry *trainstate.Registry, sink MarkerSink, config Config) (*Manager, error) {
	manager := &Manager{
		source:    source,
		directory: directory,
		store:     store,
		registry:  registry,
		sink:      sink,
		config:    config,

		focus: newFocusLatch(config.FocusTrain),

		markers:        map[string]*Marker{},
		categoryFilter: config.CategoryFilter,
	}

	if manager.categoryFilter == "" {
		manager.categoryFilter = "all"
	}

	if config.FilterExpression != "" {
		program, err := compileFilterExpression(config.FilterExpression)
		if err != nil {
			return nil, err
		}
		manager.filterProgram = program
	}

	return manager, nil
}

// Run starts the two poll loops and returns. The metadata sweep runs once
// synchronously first so the position poll has records to join against.
func (m *Manager) Run() {
	log.Info().
		Dur("positionpoll", m.config.PositionPollInterval()).
		Dur("metadatasweep", m.config.MetadataSweepInterval()).
		Str("focustrain", m.config.FocusTrain).
		Msg("Starting train tracker")

	m.processMetadata(context.Background())

	go m.runLoop(m.config.MetadataSweepInterval(), m.processMetadata)
	go m.runLoop(m.config.PositionPollInterval(), m.processPositions)
}

func (m *Manager) runLoop(refreshRate time.Duration, tick func(context.Context)) {
	for {
		startTime := time.Now()

		tick(context.Background())

		executionDuration := time.Since(startTime)
		waitTime := refreshRate - executionDuration

		if waitTime > 0 {
			time.Sleep(waitTime)
		}
	}
}

// SetCategoryFilter changes the active product filter. Markers failing the
// new filter are removed immediately; the visible count settles on the next
// position poll.
func (m *Manager) SetCategoryFilter(product string) {
	if product == "" {
		product = "all"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.categoryFilter = product

	for trainIdent := range m.markers {
		if !m.passesFiltersLocked(m.store.Get(trainIdent)) {
			m.removeMarkerLocked(trainIdent)
		}
	}
}

// Snapshot returns a copy of every live marker.
func (m *Manager) Snapshot() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]Marker, 0, len(m.markers))
	for _, marker := range m.markers {
		snapshot = append(snapshot, *marker)
	}

	return snapshot
}

// Marker returns a copy of one train's marker.
func (m *Manager) Marker(trainIdent string) (Marker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if marker := m.markers[trainIdent]; marker != nil {
		return *marker, true
	}

	return Marker{}, false
}

func (m *Manager) VisibleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.visibleCount
}

// Record exposes the reconciled record for one train.
func (m *Manager) Record(trainIdent string) trainstate.Record {
	return m.store.Get(trainIdent)
}

// LocationName resolves a location signature through the station directory.
func (m *Manager) LocationName(signature string) string {
	return m.directory.Lookup(signature)
}

// Products returns the filter control list: the synthetic "all" wildcard
// followed by every registered product label in sorted order.
func (m *Manager) Products() []string {
	return append([]string{"all"}, m.registry.Sorted()...)
}

func (m *Manager) passesFiltersLocked(record trainstate.Record) bool {
	if m.categoryFilter != "all" && record.Product != m.categoryFilter {
		return false
	}

	if m.filterProgram != nil && !runFilterExpression(m.filterProgram, record) {
		return false
	}

	return true
}

func (m *Manager) removeMarkerLocked(trainIdent string) {
	if m.markers[trainIdent] == nil {
		return
	}

	delete(m.markers, trainIdent)
	m.sink.Publish(MarkerEvent{
		Action:     MarkerActionRemove,
		TrainIdent: trainIdent,
		RecordedAt: time.Now(),
	})
}
