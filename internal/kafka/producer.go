package kafka

import (
	"context"
	"encoding/json"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	TopicTicketIssued  = "campus.ticket.issued"
	TopicEventApproved = "campus.event.approved"
	TopicEventRejected = "campus.event.rejected"
)

// Topics lists everything this service publishes; ensured at startup.
var Topics = []string{TopicTicketIssued, TopicEventApproved, TopicEventRejected}

type Producer struct {
	Writer   *kafka.Writer
	Logger   *logger.Logger
	mockMode bool
}

// NewProducer builds a producer over the given brokers. In mock mode nothing
// is written; publishes are logged only (local dev without a broker).
func NewProducer(brokers []string, log *logger.Logger, mockMode bool) *Producer {
	var writer *kafka.Writer
	if !mockMode {
		writer = &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		}
	}
	return &Producer{Writer: writer, Logger: log, mockMode: mockMode}
}

func (p *Producer) publish(topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if p.mockMode {
		if p.Logger != nil {
			p.Logger.Info("KAFKA", "mock publish to "+topic+": "+string(value))
		}
		return nil
	}

	return p.Writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) PublishTicketIssued(ticket models.Ticket) error {
	// QR bytes are large and private to the purchaser; the notification
	// carries identifiers only.
	ticket.QRCode = nil
	return p.publish(TopicTicketIssued, ticket.EventID, ticket)
}

func (p *Producer) PublishEventApproved(event models.Event) error {
	return p.publish(TopicEventApproved, event.ID, event)
}

func (p *Producer) PublishEventRejected(event models.Event) error {
	return p.publish(TopicEventRejected, event.ID, event)
}

func (p *Producer) Close() error {
	if p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
