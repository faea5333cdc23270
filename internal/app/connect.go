// internal/app/connect.go
package app

import (
	"context"
	"fmt"
	"time"

	"mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/camunda"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/messaging"
)

// Dependencies holds the optional backend clients. A nil field means the
// backend is disabled.
type Dependencies struct {
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	Zeebe         *camunda.Client
	NATS          *messaging.NATSPublisher
	SES           *aws.SESClient
	SNS           *aws.SNSClient
}

// RetryPolicy bounds connection attempts at startup.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 10, InitialDelay: 2 * time.Second}

func retryWithBackoff(ctx context.Context, policy RetryPolicy, log logger.Logger, operationName string, operation func() error) error {
	var err error
	delay := policy.InitialDelay
	attempts := max(policy.MaxAttempts, 1)

	for i := 0; i < attempts; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < attempts-1 {
			log.WithError(err).Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"attempt":     i + 1,
				"maxAttempts": attempts,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
}

// Connect opens every backend enabled in cfg. On failure the clients opened
// so far are closed.
func Connect(ctx context.Context, cfg *config.Config, log logger.Logger, policy RetryPolicy) (deps Dependencies, err error) {
	defer func() {
		if err != nil {
			deps.Close(log)
			deps = Dependencies{}
		}
	}()

	if pgCfg := cfg.Database.Postgres; pgCfg.Enabled {
		err = retryWithBackoff(ctx, policy, log, "PostgreSQL connection", func() error {
			pg, err := database.NewPostgres(pgCfg)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			deps.Postgres = pg
			return nil
		})
		if err != nil {
			return deps, err
		}
		if err = deps.Postgres.EnsureAuditTable(ctx); err != nil {
			return deps, err
		}
		log.Info("PostgreSQL connected successfully", nil)
	}

	if redisCfg := cfg.Database.Redis; redisCfg.Enabled {
		err = retryWithBackoff(ctx, policy, log, "Redis connection", func() error {
			rc, err := database.NewRedis(redisCfg)
			if err != nil {
				return err
			}
			if err := rc.Ping(ctx); err != nil {
				rc.Close()
				return err
			}
			deps.Redis = rc
			return nil
		})
		if err != nil {
			return deps, err
		}
		log.Info("Redis connected successfully", nil)
	}

	if esCfg := cfg.Database.Elasticsearch; esCfg.Enabled {
		err = retryWithBackoff(ctx, policy, log, "Elasticsearch connection", func() error {
			es, err := database.NewElasticsearch(esCfg)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			deps.Elasticsearch = es
			return nil
		})
		if err != nil {
			return deps, err
		}
		log.Info("Elasticsearch connected successfully", nil)
	}

	if cfg.Camunda.Enabled {
		err = retryWithBackoff(ctx, policy, log, "Zeebe client initialization", func() error {
			zc, err := camunda.NewClient(cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
			if err != nil {
				return err
			}
			deps.Zeebe = zc
			return nil
		})
		if err != nil {
			return deps, err
		}
		log.Info("Zeebe client connected successfully", nil)
	}

	if natsCfg := cfg.Messaging.NATS; natsCfg.Enabled {
		err = retryWithBackoff(ctx, policy, log, "NATS connection", func() error {
			nc, err := messaging.NewNATS(natsCfg.URL, natsCfg.SubjectPrefix, cfg.App.Name)
			if err != nil {
				return err
			}
			deps.NATS = nc
			return nil
		})
		if err != nil {
			return deps, err
		}
		log.Info("NATS connected successfully", nil)
	}

	notify := cfg.Notifications
	if notify.Email.Enabled {
		if deps.SES, err = aws.NewSESClient(ctx, notify.AWS.Region, notify.Email.FromEmail); err != nil {
			return deps, err
		}
	}
	if notify.Topic.Enabled {
		if deps.SNS, err = aws.NewSNSClient(ctx, notify.AWS.Region, notify.Topic.TopicARN); err != nil {
			return deps, err
		}
	}

	return deps, nil
}

type namedCloser struct {
	name  string
	close func() error
}

// Close releases every open client, logging failures.
func (d *Dependencies) Close(log logger.Logger) {
	var closers []namedCloser
	if d.Postgres != nil {
		closers = append(closers, namedCloser{"postgres", d.Postgres.Close})
	}
	if d.Redis != nil {
		closers = append(closers, namedCloser{"redis", d.Redis.Close})
	}
	if d.Elasticsearch != nil {
		closers = append(closers, namedCloser{"elasticsearch", d.Elasticsearch.Close})
	}
	if d.Zeebe != nil {
		closers = append(closers, namedCloser{"zeebe", d.Zeebe.Close})
	}
	if d.NATS != nil {
		closers = append(closers, namedCloser{"nats", d.NATS.Close})
	}

	for _, c := range closers {
		if err := c.close(); err != nil && log != nil {
			log.WithError(err).Warn("failed to close backend client", map[string]interface{}{"backend": c.name})
		}
	}
}
