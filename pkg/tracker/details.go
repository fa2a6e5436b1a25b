package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

// FetchDetails runs the on-demand detail fetch for one train: an interim
// loading popup, then the two point queries concurrently, then the final
// popup once both have settled. Either query failing degrades only its own
// popup section. Safe to call from any goroutine, any number of times.
func (m *Manager) FetchDetails(ctx context.Context, trainIdent string) (trainstate.Record, trainstate.NextStop) {
	m.store.SetLoading(trainIdent)
	m.publishPopup(trainIdent, m.store.Get(trainIdent), &trainstate.NextStop{Status: trainstate.NextStopLoading})

	var latest *trafikverket.TrainAnnouncement
	var latestErr error
	var upcoming []trafikverket.TrainAnnouncement
	var upcomingErr error

	var waitGroup conc.WaitGroup
	waitGroup.Go(func() {
		latest, latestErr = m.source.LatestAnnouncement(ctx, trainIdent)
	})
	waitGroup.Go(func() {
		upcoming, upcomingErr = m.source.UpcomingAnnouncements(ctx, trainIdent)
	})
	waitGroup.Wait()

	if latestErr != nil {
		log.Error().Err(latestErr).Str("train", trainIdent).Msg("Failed to fetch latest announcement")
		m.store.ClearLoading(trainIdent)
	} else if latest != nil {
		m.store.IngestPoint(trainIdent, *latest)
	} else {
		m.store.ClearLoading(trainIdent)
	}

	record := m.store.Get(trainIdent)

	var nextStop trainstate.NextStop
	if upcomingErr != nil {
		log.Error().Err(upcomingErr).Str("train", trainIdent).Msg("Failed to fetch upcoming announcements")
		nextStop = trainstate.NextStop{Status: trainstate.NextStopNoData}
	} else {
		nextStop = trainstate.DeriveNextStop(upcoming, record.Location)
	}

	m.publishPopup(trainIdent, record, &nextStop)

	return record, nextStop
}

// publishPopup rebuilds a train's popup from the current record and pushes
// it to the renderer. The marker may already be gone when the fetch resolves;
// the instruction is then a wasted render, which is fine.
func (m *Manager) publishPopup(trainIdent string, record trainstate.Record, nextStop *trainstate.NextStop) {
	m.mu.Lock()

	speed := float64(0)
	if marker := m.markers[trainIdent]; marker != nil {
		speed = marker.Speed
	}

	popupHTML := BuildPopup(trainIdent, record, speed, nextStop, m.directory)

	if marker := m.markers[trainIdent]; marker != nil {
		marker.PopupHTML = popupHTML
	}

	m.mu.Unlock()

	m.sink.Publish(MarkerEvent{
		Action:     MarkerActionPopup,
		TrainIdent: trainIdent,
		RecordedAt: time.Now(),
		PopupHTML:  popupHTML,
	})
}
