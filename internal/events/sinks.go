// internal/events/sinks.go
package events

import (
	"context"
	"fmt"

	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/errors"
)

// ==========================
// Postgres audit trail
// ==========================

type AuditWriter interface {
	InsertAuditRecord(ctx context.Context, rec database.AuditRecord) error
}

type PostgresSink struct {
	db AuditWriter
}

func NewPostgresSink(db AuditWriter) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Publish(ctx context.Context, event Event) error {
	err := s.db.InsertAuditRecord(ctx, database.AuditRecord{
		EventID:          event.ID,
		EventType:        string(event.Type),
		Activity:         event.Activity,
		Email:            event.Email,
		ParticipantCount: event.ParticipantCount,
		OccurredAt:       event.OccurredAt,
	})
	if err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}

// ==========================
// Redis stream
// ==========================

type StreamWriter interface {
	AppendToStream(ctx context.Context, values map[string]interface{}) (string, error)
}

type RedisSink struct {
	stream StreamWriter
}

func NewRedisSink(stream StreamWriter) *RedisSink {
	return &RedisSink{stream: stream}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	if _, err := s.stream.AppendToStream(ctx, event.Variables()); err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}

// ==========================
// Elasticsearch index
// ==========================

type DocumentIndexer interface {
	IndexDocument(ctx context.Context, id string, body []byte) error
}

type ElasticsearchSink struct {
	indexer DocumentIndexer
}

func NewElasticsearchSink(indexer DocumentIndexer) *ElasticsearchSink {
	return &ElasticsearchSink{indexer: indexer}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Publish(ctx context.Context, event Event) error {
	if err := s.indexer.IndexDocument(ctx, event.ID, event.JSON()); err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}

// ==========================
// SNS topic
// ==========================

type TopicPublisher interface {
	Publish(ctx context.Context, message string, attributes map[string]string) (string, error)
}

type SNSSink struct {
	topic TopicPublisher
}

func NewSNSSink(topic TopicPublisher) *SNSSink {
	return &SNSSink{topic: topic}
}

func (s *SNSSink) Name() string { return "sns" }

func (s *SNSSink) Publish(ctx context.Context, event Event) error {
	_, err := s.topic.Publish(ctx, string(event.JSON()), map[string]string{
		"eventType": string(event.Type),
		"activity":  event.Activity,
	})
	if err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}

// ==========================
// SES confirmation email
// ==========================

type EmailSender interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}

type SESSink struct {
	sender EmailSender
}

func NewSESSink(sender EmailSender) *SESSink {
	return &SESSink{sender: sender}
}

func (s *SESSink) Name() string { return "ses" }

func (s *SESSink) Publish(ctx context.Context, event Event) error {
	subject, body := confirmationEmail(event)
	if _, err := s.sender.SendText(ctx, event.Email, subject, body); err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}

func confirmationEmail(event Event) (subject, body string) {
	switch event.Type {
	case TypeUnregistered:
		subject = fmt.Sprintf("You have left %s", event.Activity)
		body = fmt.Sprintf("Hello,\n\n%s has been removed from %s at Mergington High School.\n", event.Email, event.Activity)
	default:
		subject = fmt.Sprintf("You are signed up for %s", event.Activity)
		body = fmt.Sprintf("Hello,\n\n%s is now signed up for %s at Mergington High School.\n", event.Email, event.Activity)
	}
	return subject, body
}

// ==========================
// Zeebe process
// ==========================

type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error)
}

type ZeebeSink struct {
	starter   ProcessStarter
	processID string
}

func NewZeebeSink(starter ProcessStarter, processID string) *ZeebeSink {
	return &ZeebeSink{starter: starter, processID: processID}
}

func (s *ZeebeSink) Name() string { return "zeebe" }

func (s *ZeebeSink) Publish(ctx context.Context, event Event) error {
	if _, err := s.starter.StartProcess(ctx, s.processID, event.Variables()); err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}

// ==========================
// NATS subject
// ==========================

type MessagePublisher interface {
	Publish(ctx context.Context, name string, data []byte, headers map[string]string) error
}

type NATSSink struct {
	publisher MessagePublisher
}

func NewNATSSink(publisher MessagePublisher) *NATSSink {
	return &NATSSink{publisher: publisher}
}

func (s *NATSSink) Name() string { return "nats" }

// Publish uses the event id as the message id so JetStream streams can
// deduplicate redeliveries.
func (s *NATSSink) Publish(ctx context.Context, event Event) error {
	err := s.publisher.Publish(ctx, string(event.Type), event.JSON(), map[string]string{
		"Nats-Msg-Id": event.ID,
	})
	if err != nil {
		return errors.NewEventPublishFailedError(s.Name(), err)
	}
	return nil
}
