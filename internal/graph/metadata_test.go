package graph

import (
	"errors"
	"testing"

	deperrors "github.com/depscope/depscope/internal/errors"
)

// metadataFixture is a pared-down `cargo metadata --format-version 1`
// blob: app depends on serde (normal) and trybuild (dev), serde depends
// on serde_derive (a proc-macro).
const metadataFixture = `{
  "packages": [
    {
      "id": "app 0.1.0 (path+file:///work/app)",
      "name": "app",
      "version": "0.1.0",
      "source": null,
      "manifest_path": "/work/app/Cargo.toml",
      "dependencies": [
        {"name": "serde", "kind": null, "optional": false},
        {"name": "trybuild", "kind": "dev", "optional": false}
      ],
      "targets": [{"kind": ["bin"]}]
    },
    {
      "id": "serde 1.0.200 (registry+https://github.com/rust-lang/crates.io-index)",
      "name": "serde",
      "version": "1.0.200",
      "source": "registry+https://github.com/rust-lang/crates.io-index",
      "manifest_path": "/cargo/serde/Cargo.toml",
      "dependencies": [
        {"name": "serde_derive", "kind": null, "optional": true}
      ],
      "targets": [{"kind": ["lib"]}]
    },
    {
      "id": "serde_derive 1.0.200 (registry+https://github.com/rust-lang/crates.io-index)",
      "name": "serde_derive",
      "version": "1.0.200",
      "source": "registry+https://github.com/rust-lang/crates.io-index",
      "manifest_path": "/cargo/serde_derive/Cargo.toml",
      "dependencies": [],
      "targets": [{"kind": ["proc-macro"]}]
    },
    {
      "id": "trybuild 1.0.90 (registry+https://github.com/rust-lang/crates.io-index)",
      "name": "trybuild",
      "version": "1.0.90",
      "source": "registry+https://github.com/rust-lang/crates.io-index",
      "manifest_path": "/cargo/trybuild/Cargo.toml",
      "dependencies": [],
      "targets": [{"kind": ["lib"]}]
    }
  ],
  "workspace_members": ["app 0.1.0 (path+file:///work/app)"],
  "workspace_root": "/work/app",
  "resolve": {
    "nodes": [
      {
        "id": "app 0.1.0 (path+file:///work/app)",
        "deps": [
          {"name": "serde", "pkg": "serde 1.0.200 (registry+https://github.com/rust-lang/crates.io-index)", "dep_kinds": [{"kind": null}]},
          {"name": "trybuild", "pkg": "trybuild 1.0.90 (registry+https://github.com/rust-lang/crates.io-index)", "dep_kinds": [{"kind": "dev"}]}
        ],
        "features": []
      },
      {
        "id": "serde 1.0.200 (registry+https://github.com/rust-lang/crates.io-index)",
        "deps": [
          {"name": "serde_derive", "pkg": "serde_derive 1.0.200 (registry+https://github.com/rust-lang/crates.io-index)", "dep_kinds": [{"kind": null}]}
        ],
        "features": ["default", "derive"]
      },
      {
        "id": "serde_derive 1.0.200 (registry+https://github.com/rust-lang/crates.io-index)",
        "deps": [],
        "features": []
      },
      {
        "id": "trybuild 1.0.90 (registry+https://github.com/rust-lang/crates.io-index)",
        "deps": [],
        "features": []
      }
    ],
    "root": "app 0.1.0 (path+file:///work/app)"
  }
}`

func TestParseMetadata(t *testing.T) {
	g, err := ParseMetadata([]byte(metadataFixture), "")
	if err != nil {
		t.Fatalf("ParseMetadata failed: %v", err)
	}

	if g.Root().Name != "app" || g.Root().Version != "0.1.0" {
		t.Errorf("unexpected root: %v", g.Root())
	}
	if g.Len() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.Len())
	}

	app, ok := g.Node(g.Root())
	if !ok {
		t.Fatal("root node missing")
	}
	if len(app.Edges) != 2 {
		t.Fatalf("expected 2 edges on app, got %d", len(app.Edges))
	}
	if app.ManifestDir != "/work/app" {
		t.Errorf("workspace member should have manifest dir, got %q", app.ManifestDir)
	}

	var sawDev bool
	for _, edge := range app.Edges {
		if edge.To.Name == "trybuild" {
			sawDev = true
			if edge.Kind != KindDev {
				t.Errorf("trybuild edge should be dev, got %v", edge.Kind)
			}
		}
	}
	if !sawDev {
		t.Error("app should depend on trybuild")
	}

	serde, ok := g.Node(PackageID{
		Name:    "serde",
		Version: "1.0.200",
		Source:  "registry+https://github.com/rust-lang/crates.io-index",
	})
	if !ok {
		t.Fatal("serde node missing")
	}
	if serde.ManifestDir != "" {
		t.Error("registry package should not have a manifest dir")
	}
	if len(serde.Features) != 2 {
		t.Errorf("serde should carry its active features, got %v", serde.Features)
	}
	if len(serde.Edges) != 1 || !serde.Edges[0].Optional {
		t.Error("serde -> serde_derive should be marked optional")
	}

	derive, ok := g.Node(PackageID{
		Name:    "serde_derive",
		Version: "1.0.200",
		Source:  "registry+https://github.com/rust-lang/crates.io-index",
	})
	if !ok {
		t.Fatal("serde_derive node missing")
	}
	if !derive.ProcMacro {
		t.Error("serde_derive should be flagged as a proc-macro")
	}
}

func TestParseMetadataPackageOverride(t *testing.T) {
	g, err := ParseMetadata([]byte(metadataFixture), "serde")
	if err != nil {
		t.Fatalf("ParseMetadata failed: %v", err)
	}
	if g.Root().Name != "serde" {
		t.Errorf("root override should pick serde, got %v", g.Root())
	}
}

func TestParseMetadataUnknownPackage(t *testing.T) {
	_, err := ParseMetadata([]byte(metadataFixture), "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown package")
	}
	if !errors.Is(err, deperrors.ErrNotFound) {
		t.Errorf("error should be ErrNotFound, got %v", err)
	}
}

func TestParseMetadataDanglingDep(t *testing.T) {
	// A resolve dep pointing at a package id absent from packages.
	const fixture = `{
	  "packages": [
	    {"id": "app 0.1.0", "name": "app", "version": "0.1.0", "source": null,
	     "manifest_path": "/work/app/Cargo.toml", "dependencies": [], "targets": []}
	  ],
	  "workspace_members": ["app 0.1.0"],
	  "workspace_root": "/work/app",
	  "resolve": {
	    "nodes": [
	      {"id": "app 0.1.0",
	       "deps": [{"name": "ghost", "pkg": "ghost 0.0.1", "dep_kinds": [{"kind": null}]}],
	       "features": []}
	    ],
	    "root": "app 0.1.0"
	  }
	}`

	_, err := ParseMetadata([]byte(fixture), "")
	if err == nil {
		t.Fatal("expected error for dangling dependency")
	}
	if !errors.Is(err, deperrors.ErrGraphInconsistency) {
		t.Errorf("error should be ErrGraphInconsistency, got %v", err)
	}
}

func TestParseMetadataVirtualWorkspace(t *testing.T) {
	const fixture = `{
	  "packages": [
	    {"id": "a 0.1.0", "name": "a", "version": "0.1.0", "source": null,
	     "manifest_path": "/work/ws/a/Cargo.toml", "dependencies": [], "targets": []},
	    {"id": "b 0.1.0", "name": "b", "version": "0.1.0", "source": null,
	     "manifest_path": "/work/ws/b/Cargo.toml", "dependencies": [], "targets": []}
	  ],
	  "workspace_members": ["a 0.1.0", "b 0.1.0"],
	  "workspace_root": "/work/ws",
	  "resolve": {
	    "nodes": [
	      {"id": "a 0.1.0", "deps": [], "features": []},
	      {"id": "b 0.1.0", "deps": [], "features": []}
	    ],
	    "root": null
	  }
	}`

	g, err := ParseMetadata([]byte(fixture), "")
	if err != nil {
		t.Fatalf("ParseMetadata failed: %v", err)
	}
	if g.Root().Name != "ws" {
		t.Errorf("synthetic root should be named after the workspace dir, got %v", g.Root())
	}
	root, ok := g.Node(g.Root())
	if !ok {
		t.Fatal("synthetic root node missing")
	}
	if len(root.Edges) != 2 {
		t.Errorf("synthetic root should link both members, got %d edges", len(root.Edges))
	}
}

func TestParseMetadataNoResolve(t *testing.T) {
	_, err := ParseMetadata([]byte(`{"packages": [], "resolve": null}`), "")
	if err == nil {
		t.Fatal("expected error when resolve graph is absent")
	}
	if !errors.Is(err, deperrors.ErrLoad) {
		t.Errorf("error should be ErrLoad, got %v", err)
	}
}

func TestParseMetadataInvalidJSON(t *testing.T) {
	_, err := ParseMetadata([]byte(`{not json`), "")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.Is(err, deperrors.ErrLoad) {
		t.Errorf("error should be ErrLoad, got %v", err)
	}
}
