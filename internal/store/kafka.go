package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"screening-datagen/pkg"
)

// EventSessionGenerated is the event type published for each record.
const EventSessionGenerated = "session.generated"

// SessionEvent is the message value published by KafkaSink.
type SessionEvent struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Record    *pkg.SessionRecord `json:"record"`
}

// messageWriter is the part of kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each record as a JSON event keyed by agent id.
type KafkaSink struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaSink{writer: writer, topic: topic, now: time.Now}
}

func (s *KafkaSink) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	event := SessionEvent{
		ID:        uuid.New().String(),
		Type:      EventSessionGenerated,
		Source:    "datagen",
		Timestamp: s.now().UTC(),
		Record:    rec,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return "", wrapError("kafka", "encode", err)
	}
	msg := kafka.Message{
		Key:   []byte(rec.AgentID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
			{Key: "run-id", Value: []byte(rec.RunID)},
			{Key: "template-id", Value: []byte(rec.Profile.TemplateID)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return "", wrapError("kafka", "publish", err)
	}
	return "kafka://" + s.topic + "/" + event.ID, nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
