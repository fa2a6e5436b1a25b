package renderer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/redis_client"
	"github.com/tagkartan/tagkartan/pkg/tracker"
)

const numConsumers = 2

// StartConsumers attaches consumers to the marker event queue. This stands
// in for the map rendering layer: each instruction is printed instead of
// drawn.
func StartConsumers() {
	log.Info().Msg("Starting marker event consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(tracker.MarkerQueueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(numConsumers*200, 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < numConsumers; i++ {
		go startMarkerConsumer(queue, i)
	}
}

func startMarkerConsumer(queue rmq.Queue, id int) {
	log.Info().Msgf("Starting marker event consumer %d", id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("marker-events-%d", id), 20, 2*time.Second, NewBatchConsumer(id)); err != nil {
		panic(err)
	}
}

type BatchConsumer struct {
	id int
}

func NewBatchConsumer(id int) *BatchConsumer {
	return &BatchConsumer{id: id}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var event tracker.MarkerEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode marker event")
			continue
		}

		pretty.Println(event)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume marker event")
		}
	}
}
