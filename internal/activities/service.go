// internal/activities/service.go
package activities

import (
	"context"
	stderrors "errors"
	"time"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/events"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	OperationList       = "list"
	OperationSignup     = "signup"
	OperationUnregister = "unregister"
)

// Publisher accepts registration events without blocking.
type Publisher interface {
	Publish(event events.Event) bool
}

// Service fronts the registry with validation, telemetry and event emission.
type Service struct {
	registry  *Registry
	publisher Publisher
	obs       *observability.Observability
	logger    logger.Logger

	strictEmail bool
}

// Option adjusts a Service at construction.
type Option func(*Service)

// WithStrictEmail makes signup and unregister reject emails that do not
// parse as an address. The activity lookup still runs first.
func WithStrictEmail(strict bool) Option {
	return func(s *Service) { s.strictEmail = strict }
}

func NewService(registry *Registry, publisher Publisher, obs *observability.Observability, log logger.Logger, opts ...Option) *Service {
	if obs == nil {
		obs = &observability.Observability{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Service{registry: registry, publisher: publisher, obs: obs, logger: log}
	for _, opt := range opts {
		opt(s)
	}
	for name, count := range registry.Counts() {
		metrics.ActivityParticipants.WithLabelValues(name).Set(float64(count))
	}
	return s
}

func (s *Service) List(ctx context.Context) map[string]ActivityDetails {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "activities.list")
	defer span.End()

	out := s.registry.List()
	span.SetAttributes(attribute.Int("activities.count", len(out)))
	s.recordSuccess(ctx, OperationList, start)
	return out
}

func (s *Service) Get(ctx context.Context, name string) (ActivityDetails, error) {
	_, span := s.obs.StartSpan(ctx, "activities.get", attribute.String("activity", name))
	defer span.End()
	return s.registry.Get(name)
}

func (s *Service) Signup(ctx context.Context, activity, email string) (*Result, error) {
	return s.mutate(ctx, OperationSignup, events.TypeSignedUp, activity, email, s.registry.Signup)
}

func (s *Service) Unregister(ctx context.Context, activity, email string) (*Result, error) {
	return s.mutate(ctx, OperationUnregister, events.TypeUnregistered, activity, email, s.registry.Unregister)
}

func (s *Service) mutate(
	ctx context.Context,
	operation string,
	eventType events.Type,
	activity, email string,
	apply func(name, email string) (*Result, error),
) (*Result, error) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "activities."+operation,
		attribute.String("activity", activity),
	)
	defer span.End()

	fail := func(err error) (*Result, error) {
		s.recordFailure(ctx, operation, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := validateEmail(email); err != nil {
		return fail(err)
	}
	if s.strictEmail {
		if _, err := s.registry.Get(activity); err != nil {
			return fail(err)
		}
		if err := validateAddress(email); err != nil {
			return fail(err)
		}
	}

	result, err := apply(activity, email)
	if err != nil {
		return fail(err)
	}

	metrics.ActivityParticipants.WithLabelValues(activity).Set(float64(result.ParticipantCount))
	span.SetAttributes(attribute.Int("activity.participants", result.ParticipantCount))
	s.recordSuccess(ctx, operation, start)

	s.logger.Info(result.Message, map[string]interface{}{
		"operation":        operation,
		"activity":         activity,
		"participantCount": result.ParticipantCount,
	})

	if s.publisher != nil {
		event := events.New(eventType, activity, email, result.ParticipantCount)
		if !s.publisher.Publish(event) {
			s.logger.Warn("registration event not queued", map[string]interface{}{
				"eventId":  event.ID,
				"activity": activity,
			})
		}
	}
	return result, nil
}

func (s *Service) recordSuccess(ctx context.Context, operation string, start time.Time) {
	metrics.RegistryOperationsCompleted.WithLabelValues(operation).Inc()
	s.obs.RecordOperation(ctx, operation, "success")
	s.obs.RecordOperationDuration(ctx, operation, time.Since(start))
}

func (s *Service) recordFailure(ctx context.Context, operation string, err error) {
	code := errors.ErrCodeInternal
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		code = stdErr.Code
	}
	metrics.RegistryOperationsFailed.WithLabelValues(operation, string(code)).Inc()
	s.obs.RecordOperation(ctx, operation, "failure")
}
