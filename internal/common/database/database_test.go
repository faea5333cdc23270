package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"mergington-activities/internal/common/config"
	apperrors "mergington-activities/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Postgres
// ==========================

func TestPostgres_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	client := NewPostgresFromDB(db, "activity_registration_events")
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, client.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_EnsureAuditTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "activity_registration_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	client := NewPostgresFromDB(db, "activity_registration_events")
	require.NoError(t, client.EnsureAuditTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertAuditRecord(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr bool
	}{
		{name: "inserted"},
		{name: "driver failure", execErr: errors.New("relation does not exist"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			rec := AuditRecord{
				EventID:          "5f1d7c8e-1b7a-4f51-9e55-2f0c4c1a9b10",
				EventType:        "participant.signed_up",
				Activity:         "Chess Club",
				Email:            "emma@mergington.edu",
				ParticipantCount: 3,
				OccurredAt:       time.Date(2024, 9, 2, 15, 30, 0, 0, time.UTC),
			}

			exp := mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "activity_registration_events"`)).
				WithArgs(rec.EventID, rec.EventType, rec.Activity, rec.Email, rec.ParticipantCount, sqlmock.AnyArg())
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			client := NewPostgresFromDB(db, "activity_registration_events")
			err = client.InsertAuditRecord(context.Background(), rec)
			if tt.wantErr {
				var stdErr *apperrors.StandardError
				require.True(t, errors.As(err, &stdErr))
				assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Redis
// ==========================

func TestRedis_Ping(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	client := NewRedisFromClient(rdb, "activities:registrations", 100)

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("dial tcp: refused"))
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_AppendToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := NewRedisFromClient(rdb, "activities:registrations", 100)
	defer client.Close()

	ctx := context.Background()
	id, err := client.AppendToStream(ctx, map[string]interface{}{
		"type":     "participant.signed_up",
		"activity": "Chess Club",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := rdb.XRange(ctx, client.Stream(), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Chess Club", entries[0].Values["activity"])
}

func TestNewRedis_UsesConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr(), Stream: "s", StreamLen: 10})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "s", client.Stream())
}

// ==========================
// Elasticsearch
// ==========================

type esRecorder struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func newESServer(t *testing.T, status int) (*httptest.Server, *esRecorder) {
	rec := &esRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.Method+" "+r.URL.Path)
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestElasticsearch_IndexDocument(t *testing.T) {
	srv, rec := newESServer(t, http.StatusCreated)

	client, err := NewElasticsearch(config.ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "activity-registrations",
	})
	require.NoError(t, err)

	err = client.IndexDocument(context.Background(), "evt-1", []byte(`{"activity":"Chess Club"}`))
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.requests)
	last := rec.requests[len(rec.requests)-1]
	assert.True(t, strings.HasSuffix(last, "/activity-registrations/_doc/evt-1"), last)
	assert.Contains(t, rec.bodies[len(rec.bodies)-1], "Chess Club")
}

func TestElasticsearch_ErrorStatus(t *testing.T) {
	srv, _ := newESServer(t, http.StatusServiceUnavailable)

	client, err := NewElasticsearch(config.ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "activity-registrations",
	})
	require.NoError(t, err)

	assert.Error(t, client.Ping(context.Background()))
	assert.Error(t, client.IndexDocument(context.Background(), "evt-1", []byte(`{}`)))
}
