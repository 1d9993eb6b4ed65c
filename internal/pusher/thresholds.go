package pusher

import (
	"context"
	"fmt"

	"cryptopusher/config"
	"cryptopusher/internal/alert"
	"cryptopusher/pkg/firestore"
	"cryptopusher/pkg/google"
	"cryptopusher/pkg/storage/memory"
	"cryptopusher/pkg/storage/sqldb"

	"go.uber.org/zap"
)

// LoadServiceAccount reads the Google service-account key, from Parameter
// Store in prod and from the local file elsewhere.
func LoadServiceAccount(ctx context.Context, cfg *config.Config, params config.ParameterGetter) (*google.ServiceAccount, error) {
	raw, err := cfg.Firebase.ServiceAccountJSON(ctx, cfg.Environment(), params)
	if err != nil {
		return nil, err
	}
	return google.ParseServiceAccount(raw)
}

// OpenThresholdSource builds the configured threshold backend. The returned
// close function releases its connections and is never nil.
func OpenThresholdSource(
	ctx context.Context,
	cfg *config.Config,
	params config.ParameterGetter,
	logger *zap.Logger,
) (alert.ThresholdSource, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Thresholds.Backend {
	case "static":
		return memory.FromConfig(cfg.Thresholds.Static), noop, nil

	case "sql":
		dsn := cfg.Thresholds.SQL.MySQLDSN
		if cfg.Thresholds.SQL.Driver != "mysql" {
			var err error
			dsn, err = cfg.Thresholds.SQL.Postgres.ResolveDSN(ctx, cfg.Environment(), params)
			if err != nil {
				return nil, noop, err
			}
		}
		client, err := sqldb.Initialize(ctx, cfg.Thresholds.SQL, dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("threshold database: %w", err)
		}
		return sqldb.NewThresholdStore(client), client.Close, nil

	case "firestore":
		sa, err := LoadServiceAccount(ctx, cfg, params)
		if err != nil {
			return nil, noop, err
		}
		tokens, err := google.NewTokenSource(sa, cfg.Firebase.Timeout, google.ScopeDatastore, google.ScopeFirebase)
		if err != nil {
			return nil, noop, err
		}
		client := firestore.NewClient(cfg.Firebase.FirestoreBaseURL, sa.ProjectID, tokens, cfg.Firebase.Timeout)
		return firestore.NewThresholdStore(client, cfg.Firebase.Collection, logger.Named("firestore")), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown thresholds backend %q", cfg.Thresholds.Backend)
}
