package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/tagkartan/tagkartan/pkg/stations"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

type fakeSource struct {
	positions    []trafikverket.TrainPosition
	positionsErr error

	announcements    []trafikverket.TrainAnnouncement
	announcementsErr error

	latest    map[string]*trafikverket.TrainAnnouncement
	latestErr error

	upcoming    map[string][]trafikverket.TrainAnnouncement
	upcomingErr error
}

func (f *fakeSource) AllPositions(ctx context.Context) ([]trafikverket.TrainPosition, error) {
	return f.positions, f.positionsErr
}

func (f *fakeSource) ActiveAnnouncements(ctx context.Context) ([]trafikverket.TrainAnnouncement, error) {
	return f.announcements, f.announcementsErr
}

func (f *fakeSource) LatestAnnouncement(ctx context.Context, trainIdent string) (*trafikverket.TrainAnnouncement, error) {
	return f.latest[trainIdent], f.latestErr
}

func (f *fakeSource) UpcomingAnnouncements(ctx context.Context, trainIdent string) ([]trafikverket.TrainAnnouncement, error) {
	return f.upcoming[trainIdent], f.upcomingErr
}

type recordingSink struct {
	mu     sync.Mutex
	events []MarkerEvent
}

func (s *recordingSink) Publish(event MarkerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
}

func (s *recordingSink) byAction(action string) []MarkerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []MarkerEvent
	for _, event := range s.events {
		if event.Action == action {
			matched = append(matched, event)
		}
	}

	return matched
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = nil
}

func testManager(source *fakeSource, config Config) (*Manager, *recordingSink, *trainstate.Store) {
	registry := trainstate.NewRegistry()
	store := trainstate.NewStore(registry)
	sink := &recordingSink{}

	manager, err := NewManager(source, stations.NewDirectory(), store, registry, sink, config)
	if err != nil {
		panic(err)
	}

	return manager, sink, store
}

func position(trainIdent string, wgs84 string) trafikverket.TrainPosition {
	pos := trafikverket.TrainPosition{
		Bearing:   90,
		Speed:     100,
		TimeStamp: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	pos.Train.AdvertisedTrainNumber = trainIdent
	pos.Position.WGS84 = wgs84

	return pos
}

func timeAt(hour int, minute int) *time.Time {
	t := time.Date(2024, 3, 14, hour, minute, 0, 0, time.UTC)
	return &t
}
