package realtime

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservation/utils"
)

// KafkaPublisher forwards events to a Kafka topic keyed by restaurant id, so
// one restaurant's events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					utils.ErrorLogger.WithField("messages", len(messages)).Errorf("kafka publish failed: %v", err)
				}
			},
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) {
	msg, err := encodeMessage(evt)
	if err != nil {
		utils.ErrorLogger.Printf("Error encoding event %s: %v", evt.Event, err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":         evt.Event,
			"restaurant_id": evt.RestaurantID,
		}).Errorf("kafka write failed: %v", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeMessage(evt Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(evt.RestaurantID), 10)),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(evt.Event)},
		},
	}, nil
}
