package trainstate

import (
	"math"
	"strings"
	"time"
)

const (
	// ProductOther is the default product label for trains the feed gives no
	// product information for.
	ProductOther = "Other"
	// ProductFreight is assigned by the operator-name heuristic.
	ProductFreight = "Freight"
)

// Record is the merged state of one train, keyed by its advertised train
// number. It is an accumulator: fields are replaced as richer data arrives,
// never cleared. Positional fields (Location, DeltaMinutes, HasScheduleInfo)
// are guarded by the EventTime watermark on the bulk ingest path.
type Record struct {
	TrainIdent     string `groups:"basic,detail"`
	TechnicalIdent string `groups:"basic,detail"`

	Operator    string `groups:"basic,detail"`
	Product     string `groups:"basic,detail"`
	Destination string `groups:"basic,detail"`

	Location        string `groups:"basic,detail"`
	DeltaMinutes    int    `groups:"basic,detail"`
	HasScheduleInfo bool   `groups:"basic,detail"`

	EventTime time.Time `groups:"detail"`
	Loading   bool      `groups:"detail"`
}

func emptyRecord(trainIdent string) *Record {
	return &Record{
		TrainIdent: trainIdent,
		Product:    ProductOther,
	}
}

// DeltaMinutes computes the signed schedule adherence in whole minutes.
// Positive is late, negative is early, zero is on time.
func DeltaMinutes(advertised time.Time, actual time.Time) int {
	return int(math.Round(actual.Sub(advertised).Minutes()))
}

// Operators without explicit product information whose name suggests freight
// operation. A best effort heuristic on the operator string, nothing more.
var freightOperatorHints = []string{"cargo", "gods", "rail"}

func looksLikeFreightOperator(operator string, hints []string) bool {
	operatorLower := strings.ToLower(operator)

	for _, hint := range hints {
		if strings.Contains(operatorLower, hint) {
			return true
		}
	}

	return false
}
