package stations

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
)

// StationSource provides the bulk station reference table.
type StationSource interface {
	AllStations(ctx context.Context) ([]trafikverket.TrainStation, error)
}

// Directory maps location signatures to advertised station names. It is
// populated once at startup and read-only afterwards. A failed or empty load
// leaves it empty - lookups then fall back to the raw signature, so callers
// never fail on a missing entry.
type Directory struct {
	names map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		names: map[string]string{},
	}
}

func (d *Directory) Load(ctx context.Context, source StationSource) {
	stationRecords, err := source.AllStations(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load station directory")
		return
	}

	for _, station := range stationRecords {
		d.names[station.LocationSignature] = station.AdvertisedLocationName
	}

	log.Info().Int("stations", len(d.names)).Msg("Loaded station directory")
}

// Lookup returns the display name for a location signature, or the signature
// itself when unknown.
func (d *Directory) Lookup(signature string) string {
	if signature == "" {
		return "-"
	}

	if name, found := d.names[signature]; found {
		return name
	}

	return signature
}
