package tracker

import (
	"time"
)

const (
	StatusUnknown = "unknown"
	StatusDelayed = "delayed"
	StatusOnTime  = "on-time"
)

const (
	MarkerActionUpsert   = "upsert"
	MarkerActionRemove   = "remove"
	MarkerActionPopup    = "popup"
	MarkerActionFocus    = "focus"
	MarkerActionCount    = "count"
	MarkerActionProducts = "products"
)

// Marker is the rendering instruction for one train: where to draw it, what
// icon to use and what its popup currently contains.
type Marker struct {
	TrainIdent string `groups:"basic,detail" json:"train_ident"`

	Latitude  float64 `groups:"basic,detail" json:"latitude"`
	Longitude float64 `groups:"basic,detail" json:"longitude"`
	Bearing   float64 `groups:"basic,detail" json:"bearing"`
	Speed     float64 `groups:"basic,detail" json:"speed"`

	IconLetter  string `groups:"basic,detail" json:"icon_letter"`
	Status      string `groups:"basic,detail" json:"status"`
	Highlighted bool   `groups:"basic,detail" json:"highlighted"`

	PopupHTML string `groups:"detail" json:"popup_html"`
}

// MarkerEvent is published to the rendering layer for every change to the
// marker set. Only the fields relevant to the action are populated.
type MarkerEvent struct {
	Action     string    `json:"action"`
	TrainIdent string    `json:"train_ident,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`

	Marker       *Marker  `json:"marker,omitempty"`
	PopupHTML    string   `json:"popup_html,omitempty"`
	VisibleCount int      `json:"visible_count,omitempty"`
	Products     []string `json:"products,omitempty"`
}

// MarkerSink receives rendering instructions. The queue sink forwards them
// to an external renderer; tests substitute a recording sink.
type MarkerSink interface {
	Publish(event MarkerEvent)
}
