// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/metagate/metagate/domain/deploy"
	"github.com/metagate/metagate/domain/metadata"
	"github.com/metagate/metagate/domain/object"
	"github.com/metagate/metagate/ports"
	"github.com/rs/zerolog"
)

// DeployService turns object definitions into staged descriptor bundles and
// pushes them to a target org through the deployment tool.
type DeployService struct {
	stager ports.Stager
	runner ports.ToolRunner
	store  ports.DeploymentStore
	clock  ports.Clock
	idGen  ports.IDGenerator
	logger zerolog.Logger

	// Dynamic configuration (hot-reloadable)
	dynamicCfg atomic.Pointer[DynamicConfig]
}

// DynamicConfig contains hot-reloadable configuration.
type DynamicConfig struct {
	KeepStaged bool // Keep staged files after the attempt settles
}

// DeployDeps contains dependencies for DeployService.
type DeployDeps struct {
	Stager ports.Stager
	Runner ports.ToolRunner
	Store  ports.DeploymentStore
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger zerolog.Logger
}

// DeployConfig contains configuration for DeployService.
type DeployConfig struct {
	KeepStaged bool
}

// NewDeployService creates a new deployment service.
func NewDeployService(deps DeployDeps, cfg DeployConfig) *DeployService {
	s := &DeployService{
		stager: deps.Stager,
		runner: deps.Runner,
		store:  deps.Store,
		clock:  deps.Clock,
		idGen:  deps.IDGen,
		logger: deps.Logger,
	}

	// Set initial dynamic config
	s.UpdateConfig(cfg.KeepStaged)

	return s
}

// UpdateConfig updates the hot-reloadable configuration.
// This is thread-safe and can be called while handling requests.
func (s *DeployService) UpdateConfig(keepStaged bool) {
	s.dynamicCfg.Store(&DynamicConfig{
		KeepStaged: keepStaged,
	})
}

func (s *DeployService) getDynamicConfig() *DynamicConfig {
	return s.dynamicCfg.Load()
}

// Result carries the outcome of a settled deployment attempt.
type Result struct {
	Record deploy.Record
	Output deploy.ToolOutput
}

// DeploymentError reports a deployment tool run that did not succeed. The
// captured output is kept so callers can surface the tool's own diagnostics.
type DeploymentError struct {
	Output deploy.ToolOutput
	Err    error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment failed: %v", e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// StagingError reports a failure to materialize descriptors on disk. When
// this is returned the deployment tool never ran.
type StagingError struct {
	Err error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("stage metadata: %v", e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// Deploy validates a definition, generates its descriptors, stages them on
// disk, and runs the deployment tool against the target org.
func (s *DeployService) Deploy(ctx context.Context, def object.Definition) (Result, error) {
	// 1. Validate the definition (PURE). Nothing touches the filesystem
	// until the definition passes.
	if err := object.Validate(def); err != nil {
		return Result{}, err
	}

	// 2. Generate the descriptor bundle (PURE)
	bundle := metadata.Generate(def)

	// 3. Stage the bundle under a per-deployment directory (I/O)
	id := s.idGen.New()
	dir, err := s.stager.Stage(id, bundle)
	if err != nil {
		s.logger.Error().Err(err).
			Str("deployment_id", id).
			Str("object", def.Name).
			Msg("failed to stage metadata")
		return Result{}, &StagingError{Err: err}
	}

	if !s.getDynamicConfig().KeepStaged {
		defer func() {
			if rmErr := s.stager.Remove(dir); rmErr != nil {
				s.logger.Warn().Err(rmErr).
					Str("dir", dir).
					Msg("failed to remove staged metadata")
			}
		}()
	}

	// 4. Run the deployment tool (I/O). The tool wants the directory that
	// holds the manifest, not the staging root itself.
	start := s.clock.Now()
	out, runErr := s.runner.Deploy(ctx, filepath.Join(dir, metadata.RootDir), def.OrgAlias)
	duration := s.clock.Now().Sub(start)

	// 5. Build and persist the attempt record (PURE + I/O). Store failures
	// are logged, not returned: the attempt itself already settled.
	rec := deploy.NewRecord(id, def.Name, bundle.APIName, def.OrgAlias, len(def.Fields), out, runErr, duration, start)
	if storeErr := s.store.Record(ctx, rec); storeErr != nil {
		s.logger.Error().Err(storeErr).
			Str("deployment_id", id).
			Msg("failed to record deployment")
	}

	if runErr != nil {
		s.logger.Error().Err(runErr).
			Str("deployment_id", id).
			Str("object", def.Name).
			Str("org", def.OrgAlias).
			Int64("duration_ms", rec.DurationMs).
			Msg("deployment failed")
		return Result{Record: rec, Output: out}, &DeploymentError{Output: out, Err: runErr}
	}

	s.logger.Info().
		Str("deployment_id", id).
		Str("object", def.Name).
		Str("api_name", bundle.APIName).
		Str("org", def.OrgAlias).
		Int("fields", len(def.Fields)).
		Int64("duration_ms", rec.DurationMs).
		Msg("deployment succeeded")

	return Result{Record: rec, Output: out}, nil
}

// History returns recent deployment attempts, newest first.
func (s *DeployService) History(ctx context.Context, limit int) ([]deploy.Record, error) {
	return s.store.List(ctx, limit)
}
