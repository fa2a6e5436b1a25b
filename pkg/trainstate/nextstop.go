package trainstate

import (
	"time"

	"github.com/tagkartan/tagkartan/pkg/trafikverket"
)

type NextStopStatus string

const (
	// NextStopLoading - the detail fetch is still in flight.
	NextStopLoading NextStopStatus = "loading"
	// NextStopTerminal - no upcoming announcements, the train has reached its
	// final stop.
	NextStopTerminal NextStopStatus = "terminal"
	// NextStopAtStation - the only upcoming row is the station the train is
	// currently at.
	NextStopAtStation NextStopStatus = "at-station"
	// NextStopUpcoming - a concrete next stop with times.
	NextStopUpcoming NextStopStatus = "upcoming"
	// NextStopNoData - the lookup failed; the popup section degrades.
	NextStopNoData NextStopStatus = "no-data"
)

// NextStop is the derived upcoming stop shown in a train's popup. Which time
// slot is populated follows the announcement's activity type.
type NextStop struct {
	Status NextStopStatus `groups:"detail"`

	Location string `groups:"detail"`
	Track    string `groups:"detail"`

	AdvertisedArrival   *time.Time `groups:"detail"`
	EstimatedArrival    *time.Time `groups:"detail"`
	AdvertisedDeparture *time.Time `groups:"detail"`
	EstimatedDeparture  *time.Time `groups:"detail"`
}

// DeriveNextStop picks the train's next stop out of a small ascending window
// of upcoming announcements. The first row is the candidate unless it is the
// train's current location (the row just arrived at or departed from), in
// which case the second row is used when present. Does not mutate any record;
// currentLocation is the only state it reads.
func DeriveNextStop(upcoming []trafikverket.TrainAnnouncement, currentLocation string) NextStop {
	if len(upcoming) == 0 {
		return NextStop{Status: NextStopTerminal}
	}

	targetSignature := upcoming[0].LocationSignature
	if targetSignature == currentLocation {
		if len(upcoming) < 2 {
			return NextStop{Status: NextStopAtStation}
		}
		targetSignature = upcoming[1].LocationSignature
	}

	nextStop := NextStop{
		Status:   NextStopUpcoming,
		Location: targetSignature,
	}

	for _, announcement := range upcoming {
		if announcement.LocationSignature != targetSignature {
			continue
		}

		if announcement.ActivityType == "Ankomst" {
			nextStop.AdvertisedArrival = announcement.AdvertisedTimeAtLocation
			nextStop.EstimatedArrival = announcement.EstimatedTimeAtLocation
		} else {
			nextStop.AdvertisedDeparture = announcement.AdvertisedTimeAtLocation
			nextStop.EstimatedDeparture = announcement.EstimatedTimeAtLocation
		}
		nextStop.Track = announcement.TrackAtLocation

		break
	}

	return nextStop
}
