package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// processMetadata is one bulk sweep tick: ingest the recent departure
// announcements and, only when a new product label appeared, push a refreshed
// filter list to the renderer.
func (m *Manager) processMetadata(ctx context.Context) {
	announcements, err := m.source.ActiveAnnouncements(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch train announcements")
		return
	}

	newProducts := m.store.IngestBatch(announcements)

	log.Debug().Int("announcements", len(announcements)).Bool("newproducts", newProducts).Msg("Metadata sweep")

	if newProducts {
		m.sink.Publish(MarkerEvent{
			Action:     MarkerActionProducts,
			RecordedAt: time.Now(),
			Products:   m.Products(),
		})
	}
}
