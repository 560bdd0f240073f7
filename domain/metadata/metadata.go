// Package metadata renders custom object definitions into the descriptor
// documents the deployment tool consumes. All generation is deterministic
// (same definition, byte-identical output) and does no I/O; callers decide
// where the documents land on disk.
package metadata

import (
	"path"

	"github.com/metagate/metagate/domain/object"
)

// Fixed layout and schema facts of the target platform's metadata API.
const (
	// RootDir is the folder inside a staging directory that the deployment
	// tool reads. The manifest sits at its root.
	RootDir = "unpackaged"

	// ObjectsDir holds the object and fields descriptors under RootDir.
	ObjectsDir = "objects"

	// ManifestFile names the deployment manifest.
	ManifestFile = "package.xml"

	// CustomSuffix marks developer-created objects and fields.
	CustomSuffix = "__c"

	// APIVersion is the metadata schema version stamped into the manifest.
	APIVersion = "58.0"
)

// File is a single generated document and its path relative to the staging
// root, using forward slashes.
type File struct {
	Path string
	Body []byte
}

// Bundle holds the generated descriptor documents for one object.
type Bundle struct {
	// APIName is the platform identifier for the object (name + CustomSuffix).
	// It names the descriptor files and the manifest member.
	APIName string

	Files []File
}

// APIName returns the platform identifier for a developer name.
// This is a PURE function.
func APIName(name string) string {
	return name + CustomSuffix
}

// Generate renders the three descriptor documents for a validated definition:
// the object descriptor, the fields descriptor, and the deployment manifest.
// This is a PURE function: the same definition yields byte-identical files.
func Generate(d object.Definition) Bundle {
	apiName := APIName(d.Name)
	return Bundle{
		APIName: apiName,
		Files: []File{
			{
				Path: path.Join(RootDir, ManifestFile),
				Body: renderManifest(apiName),
			},
			{
				Path: path.Join(RootDir, ObjectsDir, apiName+".object-meta.xml"),
				Body: renderObject(d.Name),
			},
			{
				Path: path.Join(RootDir, ObjectsDir, apiName+".fields-meta.xml"),
				Body: renderFields(d.Fields),
			},
		},
	}
}
