package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

// KafkaConfig параметры подключения к Kafka
type KafkaConfig struct {
	BootstrapServers string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	Topic            string
	Acks             string
}

// KafkaPublisher публикует итоги проверок в топик Kafka
type KafkaPublisher struct {
	producer     *kafka.Producer
	topic        string
	deliveryChan chan kafka.Event

	messagesSent   atomic.Int64
	messagesAcked  atomic.Int64
	messagesFailed atomic.Int64

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	maxRetries  int
	baseBackoff time.Duration
}

// NewKafkaPublisher создаёт продюсера и запускает обработчик подтверждений доставки.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	p, err := kafka.NewProducer(producerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	kp := &KafkaPublisher{
		producer:     p,
		topic:        cfg.Topic,
		deliveryChan: make(chan kafka.Event, 1000),
		ctx:          ctx,
		cancel:       cancel,
		maxRetries:   3,
		baseBackoff:  100 * time.Millisecond,
	}

	kp.wg.Add(1)
	go kp.handleDeliveryReports()

	log.Printf("Kafka publisher initialized - Topic: %s, Servers: %s", cfg.Topic, cfg.BootstrapServers)
	return kp, nil
}

func producerConfig(cfg KafkaConfig) *kafka.ConfigMap {
	cm := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"acks":               cfg.Acks,
		"enable.idempotence": true,
		"request.timeout.ms": 30000,
	}
	if cfg.SecurityProtocol != "" {
		(*cm)["security.protocol"] = cfg.SecurityProtocol
	}
	if cfg.SASLUsername != "" {
		(*cm)["sasl.mechanism"] = cfg.SASLMechanism
		(*cm)["sasl.username"] = cfg.SASLUsername
		(*cm)["sasl.password"] = cfg.SASLPassword
	}
	return cm
}

func (kp *KafkaPublisher) handleDeliveryReports() {
	defer kp.wg.Done()

	for {
		select {
		case <-kp.ctx.Done():
			return
		case e := <-kp.deliveryChan:
			m, ok := e.(*kafka.Message)
			if !ok {
				continue
			}
			if m.TopicPartition.Error != nil {
				kp.messagesFailed.Add(1)
				log.Printf("Inspection event delivery failed: %v", m.TopicPartition.Error)
				continue
			}
			kp.messagesAcked.Add(1)
		}
	}
}

// buildMessage сериализует событие; ключом сообщения служит ID проверки.
func buildMessage(topic string, event *entity.InspectionEvent) (*kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "model", Value: []byte(event.Model)},
			{Key: "defects", Value: []byte(fmt.Sprint(event.DefectSummary.Total()))},
		},
	}, nil
}

// Publish ставит событие в очередь продюсера с повторами при временных ошибках.
func (kp *KafkaPublisher) Publish(ctx context.Context, event *entity.InspectionEvent) error {
	message, err := buildMessage(kp.topic, event)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= kp.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := kp.baseBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := kp.producer.Produce(message, kp.deliveryChan)
		if err == nil {
			kp.messagesSent.Add(1)
			return nil
		}
		lastErr = err

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) && !kafkaErr.IsRetriable() {
			return fmt.Errorf("non-retriable error: %w", err)
		}
	}

	kp.messagesFailed.Add(1)
	return fmt.Errorf("failed after %d retries: %w", kp.maxRetries, lastErr)
}

// Metrics счётчики отправленных, подтверждённых и неудачных сообщений
func (kp *KafkaPublisher) Metrics() map[string]int64 {
	return map[string]int64{
		"messages_sent":   kp.messagesSent.Load(),
		"messages_acked":  kp.messagesAcked.Load(),
		"messages_failed": kp.messagesFailed.Load(),
	}
}

// Close дожидается доставки очереди и закрывает продюсера.
func (kp *KafkaPublisher) Close() {
	if remaining := kp.producer.Flush(10000); remaining > 0 {
		log.Printf("%d inspection events still in queue after flush timeout", remaining)
	}
	kp.cancel()
	kp.wg.Wait()
	kp.producer.Close()

	m := kp.Metrics()
	log.Printf("Kafka publisher closed - Sent: %d | Acked: %d | Failed: %d",
		m["messages_sent"], m["messages_acked"], m["messages_failed"])
}

var _ port.ResultPublisher = (*KafkaPublisher)(nil)
