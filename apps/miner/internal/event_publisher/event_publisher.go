package event_publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
	"miningauto/apps/miner/internal/events"
	"miningauto/apps/miner/internal/model"
)

// EventPublisher publishes session lifecycle events to Kafka. It
// satisfies the session.Sink interface; publish failures are surfaced to
// the caller, which logs and continues.
type EventPublisher struct {
	logger        *zap.Logger
	kafkaProducer *kafka.Producer
	kafkaTopic    string
}

func NewEventPublisher(kafkaBroker, kafkaTopic string, logger *zap.Logger) (*EventPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": kafkaBroker,
		"acks":              "all",
		"retries":           3,
		"retry.backoff.ms":  100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &EventPublisher{
		logger:        logger,
		kafkaProducer: producer,
		kafkaTopic:    kafkaTopic,
	}, nil
}

func (ep *EventPublisher) SessionStarted(_ context.Context, session model.MiningSession) error {
	return ep.publishEvent(events.SessionEvent{
		EventType:     events.TypeSessionStarted,
		SessionID:     session.SessionID,
		WalletAddress: session.WalletAddress,
		Timestamp:     time.Now(),
	})
}

func (ep *EventPublisher) SampleRecorded(_ context.Context, sample model.PortfolioSample) error {
	return ep.publishEvent(events.SessionEvent{
		EventType:     events.TypePortfolioSample,
		SessionID:     sample.SessionID,
		WalletAddress: sample.WalletAddress,
		Iteration:     sample.Iteration,
		ETHBalance:    sample.ETHBalance,
		ETHUSD:        sample.ETHUSD,
		XYOBalance:    sample.XYOBalance,
		XYOUSD:        sample.XYOUSD,
		TotalUSD:      sample.TotalUSD,
		Timestamp:     time.Now(),
	})
}

func (ep *EventPublisher) SessionCompleted(_ context.Context, session model.MiningSession) error {
	event := events.SessionEvent{
		EventType:       events.TypeSessionCompleted,
		SessionID:       session.SessionID,
		WalletAddress:   session.WalletAddress,
		TotalIterations: session.TotalIterations,
		TotalSeconds:    session.TotalSeconds,
		Timestamp:       time.Now(),
	}
	if session.FinalTotalUSD != nil {
		event.TotalUSD = *session.FinalTotalUSD
	}
	return ep.publishEvent(event)
}

func (ep *EventPublisher) publishEvent(event events.SessionEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	deliveryChan := make(chan kafka.Event)
	defer close(deliveryChan)

	err = ep.kafkaProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &ep.kafkaTopic, Partition: kafka.PartitionAny},
		Key:            []byte(event.WalletAddress), // Use wallet address as key for partition consistency
		Value:          msgBytes,
	}, deliveryChan)

	if err != nil {
		return err
	}

	// Wait for delivery confirmation
	e := <-deliveryChan
	switch ev := e.(type) {
	case *kafka.Message:
		if ev.TopicPartition.Error != nil {
			return ev.TopicPartition.Error
		}
		ep.logger.Info("Published session event",
			zap.String("event_type", event.EventType),
			zap.String("session_id", event.SessionID))
		return nil
	default:
		return fmt.Errorf("unexpected kafka event type: %T", e)
	}
}

func (ep *EventPublisher) Close() error {
	if ep.kafkaProducer != nil {
		ep.kafkaProducer.Close()
	}
	return nil
}
