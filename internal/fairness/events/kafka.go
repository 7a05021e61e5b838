package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink produces events as JSON records keyed by session id, so one
// session's events stay ordered within a partition.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// KafkaOption tunes the sink's topic bootstrap.
type KafkaOption func(*kafkaOptions)

type kafkaOptions struct {
	partitions  int32
	replication int16
	logger      *slog.Logger
	extra       []kgo.Opt
}

func WithPartitions(n int32) KafkaOption {
	return func(o *kafkaOptions) {
		if n > 0 {
			o.partitions = n
		}
	}
}

func WithReplication(n int16) KafkaOption {
	return func(o *kafkaOptions) {
		if n > 0 {
			o.replication = n
		}
	}
}

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(o *kafkaOptions) { o.logger = logger }
}

// WithClientOpts passes extra options to the franz-go client.
func WithClientOpts(opts ...kgo.Opt) KafkaOption {
	return func(o *kafkaOptions) { o.extra = append(o.extra, opts...) }
}

// NewKafkaSink connects to brokers and makes sure topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, opts ...KafkaOption) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka sink requires at least one broker")
	}
	o := kafkaOptions{partitions: 3, replication: 1}
	for _, opt := range opts {
		opt(&o)
	}
	kopts := append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}, o.extra...)
	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), topic, o.partitions, o.replication); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaSink{client: client, topic: topic, logger: o.logger}, nil
}

func ensureTopic(ctx context.Context, adm *kadm.Client, topic string, partitions int32, replication int16) error {
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.SessionID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (s *KafkaSink) Close(ctx context.Context) {
	if err := s.client.Flush(ctx); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to flush usage events", "error", err)
	}
	s.client.Close()
}
