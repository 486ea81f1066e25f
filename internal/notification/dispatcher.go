package notification

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Envelope kinds carried on the notification topic.
const (
	KindCityEvent      = "city_event"
	KindEventCancelled = "event_cancelled"
	KindNewAttendance  = "new_attendance"
)

// Envelope is the wire format for queued notification work. State
// transitions are durable before an envelope is produced; delivery is
// fire-and-forget.
type Envelope struct {
	Kind         string    `json:"kind"`
	EventID      uint      `json:"event_id"`
	HostID       uint      `json:"host_id,omitempty"`
	City         string    `json:"city,omitempty"`
	Title        string    `json:"title"`
	StartsAt     time.Time `json:"starts_at,omitempty"`
	AttendeeIDs  []uint    `json:"attendee_ids,omitempty"`
	AttendeeName string    `json:"attendee_name,omitempty"`
}

// enqueue hands an envelope to Kafka, or delivers in-process when no
// broker is configured. Either way the caller never blocks on delivery.
func (s *service) enqueue(env Envelope) {
	if s.writer == nil {
		go s.deliver(context.Background(), env)
		return
	}

	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("notification enqueue: marshal failed: %v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(env.Kind),
			Value: payload,
		})
		if err != nil {
			log.Printf("notification enqueue: kafka write failed (%v), delivering in-process", err)
			s.deliver(context.Background(), env)
		}
	}()
}

// StartKafkaConsumer runs the dispatch loop until ctx is cancelled. It
// is a no-op when Kafka is not configured.
func (s *service) StartKafkaConsumer(ctx context.Context) {
	if s.reader == nil {
		return
	}

	go func() {
		defer s.reader.Close()
		log.Println("notification consumer started")
		for {
			msg, err := s.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("notification consumer: read failed: %v", err)
				continue
			}

			var env Envelope
			if err := json.Unmarshal(msg.Value, &env); err != nil {
				log.Printf("notification consumer: bad envelope: %v", err)
				continue
			}
			s.deliver(ctx, env)
		}
	}()
}
