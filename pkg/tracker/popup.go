package tracker

import (
	"fmt"
	"time"

	"github.com/tagkartan/tagkartan/pkg/stations"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// BuildPopup renders the popup HTML for one train from whatever is cached.
// nextStop is nil before the first detail fetch, which renders the
// click-for-info prompt.
func BuildPopup(trainIdent string, record trainstate.Record, speed float64, nextStop *trainstate.NextStop, directory *stations.Directory) string {
	technicalIdent := record.TechnicalIdent
	if technicalIdent == "" {
		technicalIdent = trainIdent
	}

	destinationLabel := ""
	if record.Destination != "" {
		destinationLabel = fmt.Sprintf("TO %s", directory.Lookup(record.Destination))
	}

	product := record.Product
	if product == "" {
		product = "-"
	}
	operator := record.Operator
	if operator == "" {
		operator = "-"
	}

	statusClass := "status-unknown"
	statusText := "No report"
	if record.HasScheduleInfo {
		switch {
		case record.DeltaMinutes > 2:
			statusClass = "status-delayed"
			statusText = fmt.Sprintf("+%d min", record.DeltaMinutes)
		case record.DeltaMinutes < 0:
			statusClass = "status-early"
			statusText = fmt.Sprintf("%d min", record.DeltaMinutes)
		default:
			statusClass = "status-ontime"
			statusText = "On time"
		}
	} else if record.Loading {
		statusText = "Loading..."
	}

	return fmt.Sprintf(`<div class="train-popup">
	<div class="popup-header">
		<div class="popup-title-group"><span class="popup-train-id">Train %s</span><span class="popup-dest">%s</span></div>
		<div class="status-badge %s">%s</div>
	</div>
	<div class="popup-body">
		<div class="info-row"><span class="info-label">OTN</span><span class="info-value">%s</span></div>
		<div class="info-row"><span class="info-label">Product</span><span class="info-value">%s</span></div>
		<div class="info-row"><span class="info-label">Operator</span><span class="info-value">%s</span></div>
		<div class="info-row"><span class="info-label">Last seen</span><span class="info-value">%s</span></div>
		<div class="popup-next-stop">
			<div class="info-label">NEXT STOP</div>
			<div class="next-stop-value">%s</div>
		</div>
		<div class="info-row"><span class="info-label">Speed</span><span class="info-value">%.0f km/h</span></div>
		<a href="../train.html?train=%s" class="popup-btn">Show timetable</a>
	</div>
</div>`,
		trainIdent,
		destinationLabel,
		statusClass,
		statusText,
		technicalIdent,
		product,
		operator,
		directory.Lookup(record.Location),
		nextStopHTML(nextStop, directory),
		speed,
		trainIdent,
	)
}

func nextStopHTML(nextStop *trainstate.NextStop, directory *stations.Directory) string {
	if nextStop == nil {
		return `<span class="next-stop-hint">Click for info...</span>`
	}

	switch nextStop.Status {
	case trainstate.NextStopLoading:
		return `<span class="next-stop-hint">Loading...</span>`
	case trainstate.NextStopTerminal:
		return `<span>Final stop</span>`
	case trainstate.NextStopAtStation:
		return `<span>At station</span>`
	case trainstate.NextStopUpcoming:
		// handled below
	default:
		return `<span class="next-stop-hint">No data</span>`
	}

	trackLabel := ""
	if nextStop.Track != "" {
		trackLabel = fmt.Sprintf(" (track %s)", nextStop.Track)
	}

	timeLabel := ""
	timeValue := ""
	if nextStop.AdvertisedArrival != nil {
		timeLabel = "Arr"
		timeValue = timeSlotHTML(nextStop.AdvertisedArrival, nextStop.EstimatedArrival)
	} else if nextStop.AdvertisedDeparture != nil {
		timeLabel = "Dep"
		timeValue = timeSlotHTML(nextStop.AdvertisedDeparture, nextStop.EstimatedDeparture)
	}

	return fmt.Sprintf(`<div class="next-stop-name">%s%s</div><div class="next-stop-time">%s %s</div>`,
		directory.Lookup(nextStop.Location), trackLabel, timeLabel, timeValue)
}

// timeSlotHTML strikes the advertised time through when the estimate
// diverges from it.
func timeSlotHTML(advertised *time.Time, estimated *time.Time) string {
	advertisedClock := formatClock(advertised)

	if estimated != nil && !estimated.Equal(*advertised) {
		return fmt.Sprintf(`<s>%s</s> <strong class="time-estimated">%s</strong>`, advertisedClock, formatClock(estimated))
	}

	return advertisedClock
}
