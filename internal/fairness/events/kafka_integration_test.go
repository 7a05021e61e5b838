//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"fairdash/pkg/testutil/containers"
)

func TestKafkaSinkProducesJSON(t *testing.T) {
	kc := containers.NewKafkaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sink, err := NewKafkaSink(ctx, []string{kc.Broker}, "fairdash.usage.test", WithPartitions(1))
	require.NoError(t, err)
	defer sink.Close(ctx)

	pub := NewPublisher(sink, WithAsyncBuffer(8))
	require.NoError(t, pub.Emit(ctx, Event{Type: TypeFilterChanged, SessionID: "s-1", Panel: "states", Field: "year", Value: "2020"}))
	pub.Close()

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(kc.Broker),
		kgo.ConsumeTopics("fairdash.usage.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "s-1", string(records[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, TypeFilterChanged, got.Type)
	assert.Equal(t, "2020", got.Value)
	assert.False(t, got.Timestamp.IsZero())
}
