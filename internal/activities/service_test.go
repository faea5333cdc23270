package activities

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	accept bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{accept: true}
}

func (p *recordingPublisher) Publish(e events.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.accept
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func newTestService(t *testing.T, pub Publisher) *Service {
	return NewService(NewRegistry(testSeed(), false), pub, nil, logger.NewTestLogger(t))
}

func TestService_SignupEmitsEvent(t *testing.T) {
	pub := newRecordingPublisher()
	svc := newTestService(t, pub)

	result, err := svc.Signup(context.Background(), "Chess Club", "emma@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Signed up emma@mergington.edu for Chess Club", result.Message)

	got := pub.published()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeSignedUp, got[0].Type)
	assert.Equal(t, "Chess Club", got[0].Activity)
	assert.Equal(t, "emma@mergington.edu", got[0].Email)
	assert.Equal(t, 3, got[0].ParticipantCount)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.ActivityParticipants.WithLabelValues("Chess Club")))
}

func TestService_UnregisterEmitsEvent(t *testing.T) {
	pub := newRecordingPublisher()
	svc := newTestService(t, pub)

	_, err := svc.Unregister(context.Background(), "Chess Club", "daniel@mergington.edu")
	require.NoError(t, err)

	got := pub.published()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeUnregistered, got[0].Type)
	assert.Equal(t, 1, got[0].ParticipantCount)
}

func TestService_FailuresEmitNothing(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Service) error
		wantCode errors.ErrorCode
	}{
		{
			name: "unknown activity",
			call: func(s *Service) error {
				_, err := s.Signup(context.Background(), "Knitting", "emma@mergington.edu")
				return err
			},
			wantCode: errors.ErrCodeActivityNotFound,
		},
		{
			name: "duplicate signup",
			call: func(s *Service) error {
				_, err := s.Signup(context.Background(), "Chess Club", "michael@mergington.edu")
				return err
			},
			wantCode: errors.ErrCodeAlreadySignedUp,
		},
		{
			name: "not registered",
			call: func(s *Service) error {
				_, err := s.Unregister(context.Background(), "Chess Club", "emma@mergington.edu")
				return err
			},
			wantCode: errors.ErrCodeNotSignedUp,
		},
		{
			name: "missing email",
			call: func(s *Service) error {
				_, err := s.Signup(context.Background(), "Chess Club", "")
				return err
			},
			wantCode: errors.ErrCodeValidationFailed,
		},
		{
			name: "blank email",
			call: func(s *Service) error {
				_, err := s.Unregister(context.Background(), "Chess Club", "   ")
				return err
			},
			wantCode: errors.ErrCodeValidationFailed,
		},
		{
			name: "unknown activity with bare name",
			call: func(s *Service) error {
				_, err := s.Signup(context.Background(), "Nonexistent Club", "john")
				return err
			},
			wantCode: errors.ErrCodeActivityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := newRecordingPublisher()
			svc := newTestService(t, pub)

			err := tt.call(svc)
			require.Error(t, err)
			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Empty(t, pub.published())
		})
	}
}

func TestService_AcceptsAnyNonBlankEmail(t *testing.T) {
	for _, email := range []string{"o'brien@mergington.edu", "student@localhost", "john"} {
		t.Run(email, func(t *testing.T) {
			svc := newTestService(t, newRecordingPublisher())

			result, err := svc.Signup(context.Background(), "Chess Club", email)
			require.NoError(t, err)
			assert.Equal(t, "Signed up "+email+" for Chess Club", result.Message)

			_, err = svc.Unregister(context.Background(), "Chess Club", email)
			require.NoError(t, err)
		})
	}
}

func TestService_SeededNonAddressParticipantCanUnregister(t *testing.T) {
	seed := testSeed()
	seed.Activities[0].Participants = append(seed.Activities[0].Participants, "bob")
	svc := NewService(NewRegistry(seed, false), nil, nil, logger.NewTestLogger(t))

	result, err := svc.Unregister(context.Background(), "Chess Club", "bob")
	require.NoError(t, err)
	assert.Equal(t, "Unregistered bob from Chess Club", result.Message)
}

func TestService_StrictEmail(t *testing.T) {
	tests := []struct {
		name     string
		activity string
		email    string
		wantCode errors.ErrorCode
	}{
		{name: "unknown activity wins over address shape", activity: "Nonexistent Club", email: "john", wantCode: errors.ErrCodeActivityNotFound},
		{name: "bare name rejected", activity: "Chess Club", email: "john", wantCode: errors.ErrCodeValidationFailed},
		{name: "apostrophe accepted", activity: "Chess Club", email: "o'brien@mergington.edu"},
		{name: "single label domain accepted", activity: "Chess Club", email: "student@localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := newRecordingPublisher()
			svc := NewService(NewRegistry(testSeed(), false), pub, nil, logger.NewTestLogger(t), WithStrictEmail(true))

			_, err := svc.Signup(context.Background(), tt.activity, tt.email)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Len(t, pub.published(), 1)
				return
			}
			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Empty(t, pub.published())
		})
	}
}

func TestService_RejectedEventDoesNotFailOperation(t *testing.T) {
	pub := newRecordingPublisher()
	pub.accept = false
	svc := newTestService(t, pub)

	result, err := svc.Signup(context.Background(), "Math Club", "emma@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ParticipantCount)
}

func TestService_WithoutPublisher(t *testing.T) {
	svc := NewService(NewRegistry(testSeed(), false), nil, nil, nil)

	_, err := svc.Signup(context.Background(), "Math Club", "emma@mergington.edu")
	require.NoError(t, err)

	all := svc.List(context.Background())
	assert.Contains(t, all["Math Club"].Participants, "emma@mergington.edu")

	details, err := svc.Get(context.Background(), "Math Club")
	require.NoError(t, err)
	assert.Len(t, details.Participants, 3)
}
