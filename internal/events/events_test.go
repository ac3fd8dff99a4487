package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/cpm"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewProjectAnalyzed(t *testing.T) {
	r, err := cpm.Evaluate([]cpm.Input{
		{Activity: "A", ET: "5"},
		{Activity: "B", ET: "5"},
		{Activity: "C", Predecessor: "A,B", ET: "2"},
	}, cpm.Options{})
	require.NoError(t, err)

	at := time.Date(2025, time.May, 5, 12, 0, 0, 0, time.FixedZone("X", 3600))
	ev := NewProjectAnalyzed("p1", r, at)

	assert.Equal(t, "p1", ev.ProjectID)
	assert.Equal(t, 3, ev.Activities)
	assert.Equal(t, 7, ev.FinishDay)
	assert.Equal(t, 7, ev.MaxDuration)
	assert.Equal(t, [][]string{{"A", "C"}, {"B", "C"}}, ev.CriticalPaths)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
}

func TestNewProjectAnalyzedEmpty(t *testing.T) {
	ev := NewProjectAnalyzed("p1", nil, time.Now())
	assert.Equal(t, 0, ev.Activities)
	assert.NotNil(t, ev.CriticalPaths)
}

func TestKafkaPublisherWritesKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	ev := ProjectAnalyzed{ProjectID: "p1", MaxDuration: 8, CriticalPaths: [][]string{{"A", "B"}}}
	require.NoError(t, p.PublishProjectAnalyzed(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("p1"), msg.Key)
	assert.Equal(t, []kafka.Header{{Key: "type", Value: []byte(TypeProjectAnalyzed)}}, msg.Headers)

	var decoded ProjectAnalyzed
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.CriticalPaths, decoded.CriticalPaths)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{writer: &fakeWriter{err: boom}}

	err := p.PublishProjectAnalyzed(context.Background(), ProjectAnalyzed{ProjectID: "p1"})
	assert.ErrorIs(t, err, boom)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishProjectAnalyzed(context.Background(), ProjectAnalyzed{}))
	assert.NoError(t, p.Close())
}
