package crossings

import (
	"context"
	"errors"
	"testing"

	"github.com/tagkartan/tagkartan/pkg/trafikverket"
)

type fakeCrossingSource struct {
	rows  []trafikverket.RailCrossing
	err   error
	calls int
}

func (f *fakeCrossingSource) RailCrossings(ctx context.Context) ([]trafikverket.RailCrossing, error) {
	f.calls++
	return f.rows, f.err
}

func crossingRow(id int, roadName string, wgs84 string) trafikverket.RailCrossing {
	row := trafikverket.RailCrossing{
		LevelCrossingID: id,
		RoadName:        roadName,
		NumberOfTracks:  2,
		OperatingMode:   "I drift",
	}
	row.Geometry.WGS84 = wgs84

	return row
}

func TestRenderCrossingsParsesGeometry(t *testing.T) {
	crossings := renderCrossings([]trafikverket.RailCrossing{
		crossingRow(1, "Storgatan", "POINT (15.5 62.1)"),
	})

	if len(crossings) != 1 {
		t.Fatalf("expected 1 crossing, got %d", len(crossings))
	}
	if crossings[0].Latitude != 62.1 || crossings[0].Longitude != 15.5 {
		t.Errorf("unexpected coordinates %+v", crossings[0])
	}
	if crossings[0].Name != "Storgatan" {
		t.Errorf("unexpected name %q", crossings[0].Name)
	}
	if crossings[0].Tracks != 2 {
		t.Errorf("unexpected tracks %d", crossings[0].Tracks)
	}
}

func TestRenderCrossingsSkipsMalformedGeometry(t *testing.T) {
	crossings := renderCrossings([]trafikverket.RailCrossing{
		crossingRow(1, "Storgatan", ""),
		crossingRow(2, "Kungsgatan", "POINT (15.5 62.1)"),
	})

	if len(crossings) != 1 {
		t.Fatalf("expected malformed row skipped, got %d crossings", len(crossings))
	}
	if crossings[0].ID != 2 {
		t.Errorf("wrong row survived: %+v", crossings[0])
	}
}

func TestRenderCrossingsNameFallback(t *testing.T) {
	crossings := renderCrossings([]trafikverket.RailCrossing{
		crossingRow(7, "", "POINT (15.5 62.1)"),
	})

	if crossings[0].Name != "Crossing 7" {
		t.Errorf("expected fallback name, got %q", crossings[0].Name)
	}
}

func TestSetLoadsOnceAndMemoises(t *testing.T) {
	source := &fakeCrossingSource{
		rows: []trafikverket.RailCrossing{
			crossingRow(1, "Storgatan", "POINT (15.5 62.1)"),
		},
	}
	set := NewSet(source)

	first := set.Load(context.Background())
	second := set.Load(context.Background())

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected crossings on both loads, got %d and %d", len(first), len(second))
	}
	if source.calls != 1 {
		t.Errorf("expected a single source fetch, got %d", source.calls)
	}
}

func TestSetLoadFailureReturnsNilAndRetries(t *testing.T) {
	source := &fakeCrossingSource{err: errors.New("network down")}
	set := NewSet(source)

	if crossings := set.Load(context.Background()); crossings != nil {
		t.Errorf("expected nil on failure, got %v", crossings)
	}

	// A later call tries the source again
	source.err = nil
	source.rows = []trafikverket.RailCrossing{
		crossingRow(1, "Storgatan", "POINT (15.5 62.1)"),
	}

	if crossings := set.Load(context.Background()); len(crossings) != 1 {
		t.Errorf("expected successful retry, got %v", crossings)
	}
}

func TestCachedCrossingsRoundTrip(t *testing.T) {
	original := &cachedCrossings{
		Crossings: []Crossing{
			{ID: 1, Name: "Storgatan", Latitude: 62.1, Longitude: 15.5, Tracks: 2},
		},
	}

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded cachedCrossings
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(decoded.Crossings) != 1 || decoded.Crossings[0] != original.Crossings[0] {
		t.Errorf("round trip mismatch: %+v", decoded.Crossings)
	}
}
