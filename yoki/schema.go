package yoki

import (
	"sync"
	"time"

	"go.uber.org/zap"

	subgraph "github.com/AstarNetwork/yoki2-subgraph"
	"github.com/AstarNetwork/yoki2-subgraph/config"
	"github.com/AstarNetwork/yoki2-subgraph/metrics"
)

// New registers every entity on a fresh builder.
func New(opts ...subgraph.Option) *subgraph.SchemaBuilder {
	b := subgraph.NewSchema(opts...)
	b.Entity(AdminChanged{})
	b.Entity(ApprovalForAll{})
	b.Entity(ContractURIUpdated{})
	b.Entity(Initialized{})
	b.Entity(Paused{})
	b.Entity(Unpaused{})
	b.Entity(Upgraded{})
	b.Entity(RoleAdminChanged{})
	b.Entity(RoleGranted{})
	b.Entity(RoleRevoked{})
	b.Entity(TransferSingle{})
	b.Entity(TransferBatch{})
	b.Entity(URI{})
	return b
}

var (
	once   sync.Once
	schema *subgraph.Schema
)

// Schema returns the manifest schema. It is built once, trusting the
// generated document, and shared for the life of the process.
func Schema() *subgraph.Schema {
	once.Do(func() {
		schema = New().MustBuild(subgraph.AssumeValid())
	})
	return schema
}

// Check builds the manifest with full schema validation.
func Check(opts ...subgraph.Option) error {
	_, err := New(opts...).Build()
	return err
}

// Options returns the builder options of cfg.
func Options(cfg config.SchemaConfig) []subgraph.Option {
	opts := []subgraph.Option{subgraph.DefaultFirst(cfg.DefaultFirst)}
	if cfg.SubgraphID != "" {
		opts = append(opts, subgraph.SubgraphID(cfg.SubgraphID))
	}
	return opts
}

// Load builds the manifest as configured, recording how long it took.
func Load(cfg config.SchemaConfig, logger *zap.Logger) (*subgraph.Schema, error) {
	builderOpts := Options(cfg)
	var buildOpts []subgraph.Option
	mode := "validated"
	if cfg.AssumeValid {
		buildOpts = append(buildOpts, subgraph.AssumeValid())
		mode = "assume_valid"
	}

	start := time.Now()
	built, err := New(builderOpts...).Build(buildOpts...)
	elapsed := time.Since(start)
	metrics.SchemaBuildDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if err != nil {
		logger.Error("schema build failed", zap.String("mode", mode), zap.Error(err))
		return nil, err
	}

	logger.Info("schema built",
		zap.String("mode", mode),
		zap.Int("entities", len(built.Entities())),
		zap.Int("types", len(built.AST().Types)),
		zap.Duration("elapsed", elapsed),
	)
	return built, nil
}
