package tracker

import (
	"context"
	"testing"

	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

func TestFilterExpressionKeepsMatching(t *testing.T) {
	program, err := compileFilterExpression(`Product == "Freight" || DeltaMinutes > 2`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if !runFilterExpression(program, trainstate.Record{Product: "Freight"}) {
		t.Error("freight record should pass")
	}
	if !runFilterExpression(program, trainstate.Record{Product: "Regional", DeltaMinutes: 5}) {
		t.Error("delayed regional should pass")
	}
	if runFilterExpression(program, trainstate.Record{Product: "Regional", DeltaMinutes: 0}) {
		t.Error("on-time regional should be filtered")
	}
}

func TestFilterExpressionCompileError(t *testing.T) {
	if _, err := compileFilterExpression(`Product ==`); err == nil {
		t.Error("expected compile error")
	}

	if _, err := compileFilterExpression(`DeltaMinutes + 1`); err == nil {
		t.Error("expected compile error for non-boolean expression")
	}
}

func TestManagerComposesCategoryAndExpressionFilters(t *testing.T) {
	source := &fakeSource{
		positions: []trafikverket.TrainPosition{
			position("530", "POINT (15.5 62.1)"),
			position("7000", "POINT (14.5 61.1)"),
		},
		announcements: []trafikverket.TrainAnnouncement{
			{
				AdvertisedTrainIdent:     "530",
				ProductInformation:       []trafikverket.ProductInformation{{Description: "Regional"}},
				AdvertisedTimeAtLocation: timeAt(9, 0),
				TimeAtLocation:           timeAt(9, 10),
			},
			{
				AdvertisedTrainIdent:     "7000",
				ProductInformation:       []trafikverket.ProductInformation{{Description: "Regional"}},
				AdvertisedTimeAtLocation: timeAt(9, 0),
				TimeAtLocation:           timeAt(9, 0),
			},
		},
	}

	config := DefaultConfig()
	config.CategoryFilter = "Regional"
	config.FilterExpression = `DeltaMinutes > 2`
	manager, sink, _ := testManager(source, config)

	manager.processMetadata(context.Background())
	manager.processPositions(context.Background())

	upserts := sink.byAction(MarkerActionUpsert)
	if len(upserts) != 1 || upserts[0].TrainIdent != "530" {
		t.Fatalf("only the delayed regional should render, got %+v", upserts)
	}
}

func TestNewManagerRejectsBrokenFilterExpression(t *testing.T) {
	config := DefaultConfig()
	config.FilterExpression = `nonsense ===`

	registry := trainstate.NewRegistry()
	_, err := NewManager(&fakeSource{}, nil, trainstate.NewStore(registry), registry, &recordingSink{}, config)
	if err == nil {
		t.Error("expected configuration error")
	}
}
