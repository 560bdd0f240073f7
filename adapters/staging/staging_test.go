package staging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/metagate/metagate/adapters/staging"
	"github.com/metagate/metagate/domain/metadata"
	"github.com/metagate/metagate/domain/object"
)

func testBundle() metadata.Bundle {
	return metadata.Generate(object.Definition{
		Name:     "Beat_Plan",
		OrgAlias: "dev",
		Fields:   []object.Field{{Name: "Location", Label: "Location", Type: "Text"}},
	})
}

func TestStage(t *testing.T) {
	root := t.TempDir()
	s := staging.New(root)

	dir, err := s.Stage("dep_1", testBundle())
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if got, want := dir, filepath.Join(root, "dep_1"); got != want {
		t.Errorf("Stage() dir = %q, want %q", got, want)
	}

	for _, rel := range []string{
		"unpackaged/package.xml",
		"unpackaged/objects/Beat_Plan__c.object-meta.xml",
		"unpackaged/objects/Beat_Plan__c.fields-meta.xml",
	} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		body, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("staged file %s: %v", rel, err)
		}
		if len(body) == 0 {
			t.Errorf("staged file %s is empty", rel)
		}
	}
}

func TestStageIsolatesRequests(t *testing.T) {
	root := t.TempDir()
	s := staging.New(root)

	first, err := s.Stage("dep_1", testBundle())
	if err != nil {
		t.Fatalf("Stage(dep_1) error = %v", err)
	}
	second, err := s.Stage("dep_2", testBundle())
	if err != nil {
		t.Fatalf("Stage(dep_2) error = %v", err)
	}

	if first == second {
		t.Fatalf("Stage() returned the same dir %q for different ids", first)
	}
	if _, err := os.Stat(filepath.Join(first, "unpackaged", "package.xml")); err != nil {
		t.Errorf("first staging dir lost its manifest: %v", err)
	}
}

func TestStageEmptyID(t *testing.T) {
	s := staging.New(t.TempDir())
	if _, err := s.Stage("", testBundle()); err == nil {
		t.Error("Stage(\"\") error = nil, want error")
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	s := staging.New(root)

	dir, err := s.Stage("dep_1", testBundle())
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := s.Remove(dir); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Stat(%s) after Remove = %v, want not-exist", dir, err)
	}
}

func TestRemoveRefusesOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	s := staging.New(root)

	tests := []struct {
		name string
		dir  string
	}{
		{"sibling directory", outside},
		{"the root itself", root},
		{"parent traversal", filepath.Join(root, "dep_1", "..", "..")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Remove(tt.dir); err == nil {
				t.Errorf("Remove(%q) error = nil, want refusal", tt.dir)
			}
		})
	}

	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("outside dir was removed: %v", err)
	}
}
