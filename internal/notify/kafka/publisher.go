package kafka

import (
	"context"
	"encoding/json"

	"nexus-points/internal/notify"

	"github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) SettlementCompleted(ctx context.Context, ev notify.SettlementEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.WagerID),
		Value: data,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
