package tracker

import (
	"context"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

// processPositions is one position poll tick: join the snapshot against the
// record store, apply the filters and reconcile the marker set. A fetch
// failure leaves the previous markers untouched until the next tick.
func (m *Manager) processPositions(ctx context.Context) {
	positions, err := m.source.AllPositions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch train positions")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	activeIdents := map[string]bool{}
	visibleCount := 0

	for _, position := range positions {
		trainIdent := position.Train.AdvertisedTrainNumber
		if trainIdent == "" {
			continue
		}

		record := m.store.Get(trainIdent)

		if !m.passesFiltersLocked(record) {
			m.removeMarkerLocked(trainIdent)
			continue
		}

		visibleCount++
		activeIdents[trainIdent] = true

		latitude, longitude, ok := trafikverket.ParseWGS84(position.Position.WGS84)
		if !ok || latitude < m.config.MinimumLatitude {
			// Implausible geometry skips the update but never removes an
			// existing marker on its own
			continue
		}

		marker := m.markers[trainIdent]
		created := marker == nil
		if created {
			marker = &Marker{TrainIdent: trainIdent}
			m.markers[trainIdent] = marker
		}

		marker.Latitude = latitude
		marker.Longitude = longitude
		marker.Bearing = position.Bearing
		marker.Speed = position.Speed
		marker.IconLetter = iconLetter(record)
		marker.Status = scheduleStatus(record)
		marker.Highlighted = trainIdent == m.focus.Target()

		if created {
			marker.PopupHTML = BuildPopup(trainIdent, record, marker.Speed, nil, m.directory)
		}

		markerCopy := *marker
		m.sink.Publish(MarkerEvent{
			Action:     MarkerActionUpsert,
			TrainIdent: trainIdent,
			RecordedAt: time.Now(),
			Marker:     &markerCopy,
		})

		if m.focus.Fire(trainIdent) {
			m.sink.Publish(MarkerEvent{
				Action:     MarkerActionFocus,
				TrainIdent: trainIdent,
				RecordedAt: time.Now(),
			})

			// Opening the focused popup implies a detail fetch, same as a
			// click on the marker
			go m.FetchDetails(context.Background(), trainIdent)
		}
	}

	for trainIdent := range m.markers {
		if !activeIdents[trainIdent] {
			m.removeMarkerLocked(trainIdent)
		}
	}

	m.visibleCount = visibleCount
	m.sink.Publish(MarkerEvent{
		Action:       MarkerActionCount,
		RecordedAt:   time.Now(),
		VisibleCount: visibleCount,
	})
}

// iconLetter picks the one-letter marker glyph: the product's first letter,
// falling back to the operator's, falling back to a placeholder.
func iconLetter(record trainstate.Record) string {
	source := ""
	if record.Product != "" && record.Product != trainstate.ProductOther {
		source = record.Product
	} else if record.Operator != "" {
		source = record.Operator
	}

	if source == "" {
		return "?"
	}

	runes := []rune(source)
	return string(unicode.ToUpper(runes[0]))
}

func scheduleStatus(record trainstate.Record) string {
	if !record.HasScheduleInfo {
		return StatusUnknown
	}
	if record.DeltaMinutes > 2 {
		return StatusDelayed
	}
	return StatusOnTime
}
