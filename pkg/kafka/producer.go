package kafka

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

type Producer struct {
	producer sarama.AsyncProducer
}

func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 500 * time.Millisecond
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
	}
	return newWithProducer(producer), nil
}

func newWithProducer(producer sarama.AsyncProducer) *Producer {
	// Handle errors in separate goroutine
	go func() {
		for err := range producer.Errors() {
			log.Printf("Failed to send Kafka message: %v", err)
		}
	}()

	return &Producer{producer: producer}
}

// Publish queues message on topic. Delivery is asynchronous; failures are
// only logged.
func (p *Producer) Publish(topic string, message map[string]interface{}) {
	bytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to encode Kafka message for %s: %v", topic, err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(bytes),
	}
	if id, ok := message["order_id"]; ok {
		msg.Key = sarama.StringEncoder(fmt.Sprint(id))
	}
	p.producer.Input() <- msg
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// Noop satisfies the publisher contract when no brokers are configured.
type Noop struct{}

func (Noop) Publish(string, map[string]interface{}) {}
