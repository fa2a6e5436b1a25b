package trainstate

import (
	"sync"

	"github.com/tagkartan/tagkartan/pkg/trafikverket"
)

// Store is the train record reconciliation engine. Three writers feed it:
// the periodic bulk metadata sweep (IngestBatch), the on-demand single train
// refresh (IngestPoint) and the loading flag toggles around a detail fetch.
// All merges are idempotent field-level writes, so any interleaving of the
// writers commutes.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*Record
	registry *Registry
}

func NewStore(registry *Registry) *Store {
	return &Store{
		records:  map[string]*Record{},
		registry: registry,
	}
}

// IngestBatch merges a sweep of departure announcements into the record set.
// Identity fields (technical ident, operator, destination) only backfill
// empty slots, the product is re-derived every time, and the positional
// fields are only overwritten when the announcement's event time is at least
// the record's stored watermark. Reports whether any previously unseen
// product label was registered.
func (s *Store) IngestBatch(announcements []trafikverket.TrainAnnouncement) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	newProducts := false

	for _, announcement := range announcements {
		trainIdent := announcement.AdvertisedTrainIdent
		if trainIdent == "" {
			continue
		}

		record := s.records[trainIdent]
		if record == nil {
			record = emptyRecord(trainIdent)
			s.records[trainIdent] = record
		}

		if announcement.TechnicalTrainIdent != "" {
			record.TechnicalIdent = announcement.TechnicalTrainIdent
		}

		operator := announcement.Operator
		if operator == "" {
			operator = announcement.InformationOwner
		}
		if record.Operator == "" && operator != "" {
			record.Operator = operator
		}

		product := ""
		if len(announcement.ProductInformation) > 0 {
			product = announcement.ProductInformation[0].Description
		}
		if product == "" && record.Operator != "" && looksLikeFreightOperator(record.Operator, freightOperatorHints) {
			product = ProductFreight
		}
		if product == "" {
			product = ProductOther
		}
		record.Product = product

		if product != ProductOther && s.registry.Register(product) {
			newProducts = true
		}

		if record.Destination == "" && len(announcement.ToLocation) > 0 {
			record.Destination = announcement.ToLocation[0].LocationName
		}

		if announcement.TimeAtLocation == nil {
			continue
		}

		eventTime := *announcement.TimeAtLocation
		if eventTime.Before(record.EventTime) {
			continue
		}

		record.EventTime = eventTime
		record.Location = announcement.LocationSignature
		if announcement.TechnicalTrainIdent != "" {
			record.TechnicalIdent = announcement.TechnicalTrainIdent
		}
		if announcement.AdvertisedTimeAtLocation != nil {
			record.DeltaMinutes = DeltaMinutes(*announcement.AdvertisedTimeAtLocation, eventTime)
			record.HasScheduleInfo = true
		}
	}

	return newProducts
}

// IngestPoint merges the single most recent announcement for one train,
// fetched on demand. The point query is authoritative by construction so
// every field is overwritten unconditionally, ignoring the event time
// watermark. Clears the loading flag.
func (s *Store) IngestPoint(trainIdent string, announcement trafikverket.TrainAnnouncement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[trainIdent]
	if record == nil {
		record = emptyRecord(trainIdent)
		s.records[trainIdent] = record
	}

	if announcement.TechnicalTrainIdent != "" {
		record.TechnicalIdent = announcement.TechnicalTrainIdent
	}

	if announcement.Operator != "" {
		record.Operator = announcement.Operator
	} else if announcement.InformationOwner != "" {
		record.Operator = announcement.InformationOwner
	}

	if len(announcement.ProductInformation) > 0 {
		record.Product = announcement.ProductInformation[0].Description
	} else if record.Product == ProductOther && record.Operator != "" &&
		looksLikeFreightOperator(record.Operator, freightOperatorHints[:2]) {
		// The point path only consults the cargo/gods hints
		record.Product = ProductFreight
	}

	if len(announcement.ToLocation) > 0 {
		record.Destination = announcement.ToLocation[0].LocationName
	}

	if announcement.LocationSignature != "" {
		record.Location = announcement.LocationSignature
	}

	if announcement.TimeAtLocation != nil && announcement.AdvertisedTimeAtLocation != nil {
		record.DeltaMinutes = DeltaMinutes(*announcement.AdvertisedTimeAtLocation, *announcement.TimeAtLocation)
		record.HasScheduleInfo = true

		if announcement.TimeAtLocation.After(record.EventTime) {
			record.EventTime = *announcement.TimeAtLocation
		}
	}

	record.Loading = false
}

// Get returns a copy of the train's record, or an empty default for an
// unseen ident. Callers never receive an absent value.
func (s *Store) Get(trainIdent string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if record := s.records[trainIdent]; record != nil {
		return *record
	}

	return *emptyRecord(trainIdent)
}

// SetLoading flags an in-flight detail fetch for the train.
func (s *Store) SetLoading(trainIdent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[trainIdent]
	if record == nil {
		record = emptyRecord(trainIdent)
		s.records[trainIdent] = record
	}

	record.Loading = true
}

// ClearLoading resets the flag when a detail fetch failed before reaching
// IngestPoint.
func (s *Store) ClearLoading(trainIdent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record := s.records[trainIdent]; record != nil {
		record.Loading = false
	}
}
