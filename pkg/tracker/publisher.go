package tracker

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/redis_client"

	"github.com/adjust/rmq/v5"
)

const MarkerQueueName = "marker-events"

// QueueSink publishes marker instructions to the renderer queue.
type QueueSink struct {
	queue rmq.Queue
}

func NewQueueSink() (*QueueSink, error) {
	queue, err := redis_client.QueueConnection.OpenQueue(MarkerQueueName)
	if err != nil {
		return nil, err
	}

	return &QueueSink{queue: queue}, nil
}

func (s *QueueSink) Publish(event MarkerEvent) {
	eventJSON, _ := json.Marshal(event)

	if err := s.queue.PublishBytes(eventJSON); err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("Failed to publish marker event")
	}
}
