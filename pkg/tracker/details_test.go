package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

func TestFetchDetailsMergesBothQueries(t *testing.T) {
	source := &fakeSource{
		latest: map[string]*trafikverket.TrainAnnouncement{
			"530": {
				TechnicalTrainIdent:      "530-1",
				Operator:                 "SJ",
				LocationSignature:        "Cst",
				AdvertisedTimeAtLocation: timeAt(10, 0),
				TimeAtLocation:           timeAt(10, 3),
			},
		},
		upcoming: map[string][]trafikverket.TrainAnnouncement{
			"530": {
				{LocationSignature: "Upl", ActivityType: "Avgang", AdvertisedTimeAtLocation: timeAt(10, 30)},
			},
		},
	}
	manager, sink, store := testManager(source, DefaultConfig())

	record, nextStop := manager.FetchDetails(context.Background(), "530")

	if record.Location != "Cst" || record.DeltaMinutes != 3 {
		t.Errorf("unexpected merged record: %+v", record)
	}
	if record.Loading {
		t.Error("loading flag should be cleared after the fetch")
	}
	if nextStop.Status != trainstate.NextStopUpcoming || nextStop.Location != "Upl" {
		t.Errorf("unexpected next stop: %+v", nextStop)
	}
	if store.Get("530").Location != "Cst" {
		t.Error("point refresh should land in the store")
	}

	popups := sink.byAction(MarkerActionPopup)
	if len(popups) != 2 {
		t.Fatalf("expected loading + final popup, got %d", len(popups))
	}
	if !strings.Contains(popups[0].PopupHTML, "Loading") {
		t.Error("first popup should be the loading interim")
	}
	if !strings.Contains(popups[1].PopupHTML, "Upl") {
		t.Error("final popup should carry the next stop")
	}
}

func TestFetchDetailsNextStopFailureDegradesOnlyThatSection(t *testing.T) {
	source := &fakeSource{
		latest: map[string]*trafikverket.TrainAnnouncement{
			"530": {
				Operator:                 "SJ",
				LocationSignature:        "Cst",
				AdvertisedTimeAtLocation: timeAt(10, 0),
				TimeAtLocation:           timeAt(10, 0),
			},
		},
		upcomingErr: errors.New("query timed out"),
	}
	manager, _, _ := testManager(source, DefaultConfig())

	record, nextStop := manager.FetchDetails(context.Background(), "530")

	if record.Location != "Cst" {
		t.Error("announcement result should still be merged")
	}
	if nextStop.Status != trainstate.NextStopNoData {
		t.Errorf("expected no-data next stop, got %q", nextStop.Status)
	}
}

func TestFetchDetailsAnnouncementFailureStillDerivesNextStop(t *testing.T) {
	source := &fakeSource{
		latestErr: errors.New("query timed out"),
		upcoming: map[string][]trafikverket.TrainAnnouncement{
			"530": {
				{LocationSignature: "Upl", ActivityType: "Avgang", AdvertisedTimeAtLocation: timeAt(10, 30)},
			},
		},
	}
	manager, _, store := testManager(source, DefaultConfig())

	_, nextStop := manager.FetchDetails(context.Background(), "530")

	if nextStop.Status != trainstate.NextStopUpcoming {
		t.Errorf("next stop should still derive, got %q", nextStop.Status)
	}
	if store.Get("530").Loading {
		t.Error("loading flag should be cleared even when the point query fails")
	}
}

func TestFetchDetailsNoAnnouncementToday(t *testing.T) {
	source := &fakeSource{}
	manager, _, store := testManager(source, DefaultConfig())

	record, nextStop := manager.FetchDetails(context.Background(), "530")

	if record.TrainIdent != "530" {
		t.Errorf("expected default record, got %+v", record)
	}
	if nextStop.Status != trainstate.NextStopTerminal {
		t.Errorf("empty upcoming window means terminal, got %q", nextStop.Status)
	}
	if store.Get("530").Loading {
		t.Error("loading flag should be cleared when no announcement exists")
	}
}
