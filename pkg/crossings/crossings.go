package crossings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/redis_client"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
)

// CrossingSource provides the bulk crossing geometry table.
type CrossingSource interface {
	RailCrossings(ctx context.Context) ([]trafikverket.RailCrossing, error)
}

// Crossing is a level crossing ready for rendering.
type Crossing struct {
	ID        int     `groups:"basic" json:"id"`
	Name      string  `groups:"basic" json:"name"`
	Latitude  float64 `groups:"basic" json:"latitude"`
	Longitude float64 `groups:"basic" json:"longitude"`
	Tracks    int     `groups:"basic" json:"tracks"`
}

// Bump the version suffix when the cached shape changes.
const geometryCacheKey = "tagkartan_rail_crossings_v4"
const geometryCacheExpiration = 24 * time.Hour

type cachedCrossings struct {
	Crossings []Crossing `json:"crossings"`
}

func (c *cachedCrossings) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

func (c *cachedCrossings) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}

var geometryCache *cache.Cache[*cachedCrossings]

// CreateGeometryCache initialises the Redis-backed crossing geometry cache.
// The crossing table barely changes, hence the 24 hour freshness window.
func CreateGeometryCache() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(geometryCacheExpiration))
	geometryCache = cache.New[*cachedCrossings](redisStore)
}

// Set lazily loads the level crossing geometry, consulting the cache before
// the network. Every cache failure is treated as a miss; nothing here is
// ever fatal.
type Set struct {
	source CrossingSource

	mu     sync.Mutex
	loaded []Crossing
}

func NewSet(source CrossingSource) *Set {
	return &Set{source: source}
}

func (s *Set) Load(ctx context.Context) []Crossing {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded != nil {
		return s.loaded
	}

	if geometryCache != nil {
		cached, err := geometryCache.Get(ctx, geometryCacheKey)
		if err == nil && cached != nil {
			s.loaded = cached.Crossings
			log.Debug().Int("crossings", len(s.loaded)).Msg("Loaded crossing geometry from cache")
			return s.loaded
		}
	}

	rows, err := s.source.RailCrossings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch rail crossings")
		return nil
	}

	crossings := renderCrossings(rows)
	s.loaded = crossings

	if geometryCache != nil {
		if err := geometryCache.Set(ctx, geometryCacheKey, &cachedCrossings{Crossings: crossings}); err != nil {
			log.Debug().Err(err).Msg("Failed to cache crossing geometry")
		}
	}

	log.Info().Int("crossings", len(crossings)).Msg("Loaded crossing geometry")

	return crossings
}

func renderCrossings(rows []trafikverket.RailCrossing) []Crossing {
	var crossings []Crossing

	for _, row := range rows {
		latitude, longitude, ok := trafikverket.ParseWGS84(row.Geometry.WGS84)
		if !ok {
			continue
		}

		name := row.RoadName
		if name == "" {
			name = fmt.Sprintf("Crossing %d", row.LevelCrossingID)
		}

		crossings = append(crossings, Crossing{
			ID:        row.LevelCrossingID,
			Name:      name,
			Latitude:  latitude,
			Longitude: longitude,
			Tracks:    row.NumberOfTracks,
		})
	}

	return crossings
}
