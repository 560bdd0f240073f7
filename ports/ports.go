// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/metagate/metagate/domain/deploy"
	"github.com/metagate/metagate/domain/metadata"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Staging Ports
// -----------------------------------------------------------------------------

// Stager materializes generated descriptor bundles on disk. Each call stages
// into a directory unique to the given ID, so concurrent requests never touch
// each other's files.
type Stager interface {
	// Stage writes the bundle under a fresh directory for this ID and
	// returns the directory's absolute path.
	Stage(id string, b metadata.Bundle) (dir string, err error)

	// Remove deletes a staged directory and everything under it.
	Remove(dir string) error
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// ToolRunner invokes the external deployment tool against a staged directory.
type ToolRunner interface {
	// Deploy pushes the descriptors under metadataDir to the org identified
	// by orgAlias. The returned output carries whatever the tool printed,
	// both on success and on failure.
	Deploy(ctx context.Context, metadataDir, orgAlias string) (deploy.ToolOutput, error)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// DeploymentStore persists deployment attempt records.
type DeploymentStore interface {
	// Record stores a settled deployment attempt.
	Record(ctx context.Context, r deploy.Record) error

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]deploy.Record, error)
}
