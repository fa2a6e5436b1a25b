package trafikverket

import (
	"time"
)

// TrainStation is a row of the station reference table, mapping a short
// location signature to its advertised display name.
type TrainStation struct {
	LocationSignature      string
	AdvertisedLocationName string
}

// TrainPosition is a single GPS report from the bulk position snapshot.
type TrainPosition struct {
	Train struct {
		AdvertisedTrainNumber string
	}
	Position struct {
		WGS84 string
	}
	Bearing   float64
	Speed     float64
	TimeStamp time.Time
}

type ProductInformation struct {
	Code        string
	Description string
}

type ToLocation struct {
	LocationName string
	Priority     int
	Order        int
}

// TrainAnnouncement is a row of the arrival/departure announcement table.
// Time fields are pointers as the API omits them when not yet known.
type TrainAnnouncement struct {
	AdvertisedTrainIdent string
	TechnicalTrainIdent  string
	Operator             string
	InformationOwner     string
	ProductInformation   []ProductInformation
	ToLocation           []ToLocation
	LocationSignature    string
	ActivityType         string
	TrackAtLocation      string

	TimeAtLocation           *time.Time
	AdvertisedTimeAtLocation *time.Time
	EstimatedTimeAtLocation  *time.Time
}

type RailCrossing struct {
	LevelCrossingID int `json:"LevelCrossingId"`
	RoadName        string
	NumberOfTracks  int
	OperatingMode   string
	Geometry        struct {
		WGS84 string
	}
}

type responseEnvelope struct {
	Response struct {
		Result []resultSet `json:"RESULT"`
	} `json:"RESPONSE"`
}

type resultSet struct {
	TrainStation      []TrainStation
	TrainPosition     []TrainPosition
	TrainAnnouncement []TrainAnnouncement
	RailCrossing      []RailCrossing
}
