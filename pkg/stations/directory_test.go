package stations

import (
	"context"
	"errors"
	"testing"

	"github.com/tagkartan/tagkartan/pkg/trafikverket"
)

type fakeStationSource struct {
	stations []trafikverket.TrainStation
	err      error
}

func (f fakeStationSource) AllStations(ctx context.Context) ([]trafikverket.TrainStation, error) {
	return f.stations, f.err
}

func TestLookupReturnsLoadedName(t *testing.T) {
	directory := NewDirectory()
	directory.Load(context.Background(), fakeStationSource{
		stations: []trafikverket.TrainStation{
			{LocationSignature: "Cst", AdvertisedLocationName: "Stockholm Central"},
		},
	})

	if name := directory.Lookup("Cst"); name != "Stockholm Central" {
		t.Errorf("expected Stockholm Central, got %q", name)
	}
}

func TestLookupFallsBackToSignature(t *testing.T) {
	directory := NewDirectory()

	if name := directory.Lookup("Xyz"); name != "Xyz" {
		t.Errorf("expected raw signature fallback, got %q", name)
	}
}

func TestLookupEmptySignature(t *testing.T) {
	directory := NewDirectory()

	if name := directory.Lookup(""); name != "-" {
		t.Errorf("expected placeholder for empty signature, got %q", name)
	}
}

func TestLoadFailureLeavesDirectoryUsable(t *testing.T) {
	directory := NewDirectory()
	directory.Load(context.Background(), fakeStationSource{err: errors.New("network down")})

	if name := directory.Lookup("Cst"); name != "Cst" {
		t.Errorf("expected fallback after failed load, got %q", name)
	}
}
