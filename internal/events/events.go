// Package events publishes project analysis results to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/meikuraledutech/cpm"
)

// TypeProjectAnalyzed is the event type header value.
const TypeProjectAnalyzed = "project.analyzed"

// ProjectAnalyzed is emitted after a project's schedule is recomputed.
type ProjectAnalyzed struct {
	ProjectID     string              `json:"project_id"`
	Activities    int                 `json:"activities"`
	FinishDay     int                 `json:"finish_day"`
	MaxDuration   int                 `json:"max_duration"`
	CriticalPaths [][]string          `json:"critical_paths"`
	Unresolved    []cpm.UnresolvedRef `json:"unresolved,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// NewProjectAnalyzed summarizes r for projectID.
func NewProjectAnalyzed(projectID string, r *cpm.Result, at time.Time) ProjectAnalyzed {
	ev := ProjectAnalyzed{ProjectID: projectID, OccurredAt: at.UTC(), CriticalPaths: [][]string{}}
	if r == nil {
		return ev
	}
	ev.Activities = len(r.Activities)
	ev.FinishDay = r.Finish
	ev.Unresolved = r.Unresolved
	if r.Analysis != nil {
		ev.MaxDuration = r.Analysis.MaxDuration
		for _, p := range r.Analysis.CriticalPaths {
			ev.CriticalPaths = append(ev.CriticalPaths, p.Activities)
		}
	}
	return ev
}

// Publisher delivers analysis events.
type Publisher interface {
	PublishProjectAnalyzed(ctx context.Context, ev ProjectAnalyzed) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishProjectAnalyzed(context.Context, ProjectAnalyzed) error { return nil }
func (Nop) Close() error                                                  { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by project ID so one project's events stay ordered.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a synchronous writer for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}}
}

// PublishProjectAnalyzed encodes ev as JSON and writes it.
func (p *KafkaPublisher) PublishProjectAnalyzed(ctx context.Context, ev ProjectAnalyzed) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.ProjectID),
		Value: payload,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeProjectAnalyzed)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
