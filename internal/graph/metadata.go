// Package graph defines the raw dependency graph model and loaders.
// This file loads the graph from `cargo metadata` output.
package graph

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"

	"github.com/depscope/depscope/internal/errors"
	"github.com/depscope/depscope/internal/logging"
)

// MetadataLoader loads the dependency graph by running `cargo metadata`
// and decoding its JSON output. Resolution itself is cargo's job; the
// loader only translates the resolved graph into our model.
type MetadataLoader struct {
	// CargoPath is the cargo executable to invoke (default "cargo").
	CargoPath string
	// ManifestPath is an optional path to Cargo.toml.
	ManifestPath string
	// Package optionally selects the root package by name. When empty,
	// the metadata root (or a synthetic workspace root) is used.
	Package string
}

// Load runs cargo metadata and converts the output into a validated Graph.
func (l *MetadataLoader) Load(ctx context.Context) (*Graph, error) {
	cargo := l.CargoPath
	if cargo == "" {
		cargo = "cargo"
	}

	args := []string{"metadata", "--format-version", "1"}
	if l.ManifestPath != "" {
		args = append(args, "--manifest-path", l.ManifestPath)
	}

	logging.Debug("running cargo metadata", "cargo", cargo, "manifest", l.ManifestPath)

	cmd := exec.CommandContext(ctx, cargo, args...)
	cmd.Stderr = logging.Global().Writer(logging.LevelWarn)
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrLoad, "cargo metadata failed").
			WithDetails("cargo", cargo)
	}

	return ParseMetadata(out, l.Package)
}

// cargo metadata JSON shapes (format version 1). Only the fields the
// loader reads are declared.

type metadataDoc struct {
	Packages         []metadataPackage `json:"packages"`
	WorkspaceMembers []string          `json:"workspace_members"`
	WorkspaceRoot    string            `json:"workspace_root"`
	Resolve          *metadataResolve  `json:"resolve"`
}

type metadataPackage struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	Source       *string             `json:"source"`
	ManifestPath string              `json:"manifest_path"`
	Dependencies []metadataDep       `json:"dependencies"`
	Targets      []metadataTarget    `json:"targets"`
	Features     map[string][]string `json:"features"`
}

type metadataDep struct {
	Name     string  `json:"name"`
	Kind     *string `json:"kind"`
	Optional bool    `json:"optional"`
}

type metadataTarget struct {
	Kind []string `json:"kind"`
}

type metadataResolve struct {
	Nodes []metadataNode `json:"nodes"`
	Root  *string        `json:"root"`
}

type metadataNode struct {
	ID       string            `json:"id"`
	Deps     []metadataNodeDep `json:"deps"`
	Features []string          `json:"features"`
}

type metadataNodeDep struct {
	Name     string            `json:"name"`
	Pkg      string            `json:"pkg"`
	DepKinds []metadataDepKind `json:"dep_kinds"`
}

type metadataDepKind struct {
	Kind *string `json:"kind"`
}

// ParseMetadata converts raw `cargo metadata` JSON into a validated
// Graph. rootPackage optionally selects the root by name; otherwise the
// metadata root package is used, falling back to a synthetic workspace
// root whose children are the workspace members.
func ParseMetadata(data []byte, rootPackage string) (*Graph, error) {
	var doc metadataDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrLoad, "failed to decode cargo metadata output")
	}
	if doc.Resolve == nil {
		return nil, errors.WithSuggestion(errors.ErrLoad,
			"cargo metadata output has no resolved dependency graph",
			"re-run cargo metadata without --no-deps")
	}

	packages := make(map[string]*metadataPackage, len(doc.Packages))
	for i := range doc.Packages {
		packages[doc.Packages[i].ID] = &doc.Packages[i]
	}

	members := make(map[string]bool, len(doc.WorkspaceMembers))
	for _, id := range doc.WorkspaceMembers {
		members[id] = true
	}

	idFor := func(idstr string) (PackageID, bool) {
		pkg, ok := packages[idstr]
		if !ok {
			return PackageID{}, false
		}
		source := ""
		if pkg.Source != nil {
			source = *pkg.Source
		}
		return PackageID{Name: pkg.Name, Version: pkg.Version, Source: source}, true
	}

	root, err := pickRoot(&doc, packages, members, rootPackage)
	if err != nil {
		return nil, err
	}

	g := New(root.id)
	if root.synthetic != nil {
		g.Add(root.synthetic)
	}

	for _, rn := range doc.Resolve.Nodes {
		pkg, ok := packages[rn.ID]
		if !ok {
			// Metadata promises every resolve node has a package record;
			// a missing one is the blob contradicting itself.
			return nil, errors.New(errors.ErrGraphInconsistency, "resolve node has no package record").
				WithDetails("id", rn.ID)
		}
		id, _ := idFor(rn.ID)

		node := &Node{
			ID:        id,
			Features:  rn.Features,
			ProcMacro: isProcMacro(pkg),
		}
		if members[rn.ID] {
			node.ManifestDir = filepath.Dir(pkg.ManifestPath)
		}

		optional := optionalDeps(pkg)
		for _, dep := range rn.Deps {
			to, ok := idFor(dep.Pkg)
			if !ok {
				return nil, errors.NewGraphInconsistency(id.String(), dep.Pkg)
			}
			for _, kind := range depKinds(dep) {
				node.Edges = append(node.Edges, Edge{
					To:       to,
					Kind:     kind,
					Optional: optional[to.Name],
				})
			}
		}

		g.Add(node)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// rootChoice is the outcome of root selection: an id, plus a synthetic
// workspace node when no single package is the root.
type rootChoice struct {
	id        PackageID
	synthetic *Node
}

func pickRoot(doc *metadataDoc, packages map[string]*metadataPackage, members map[string]bool, rootPackage string) (rootChoice, error) {
	idOf := func(pkg *metadataPackage) PackageID {
		source := ""
		if pkg.Source != nil {
			source = *pkg.Source
		}
		return PackageID{Name: pkg.Name, Version: pkg.Version, Source: source}
	}

	if rootPackage != "" {
		for _, pkg := range packages {
			if pkg.Name == rootPackage {
				return rootChoice{id: idOf(pkg)}, nil
			}
		}
		return rootChoice{}, errors.New(errors.ErrNotFound, "package not found in workspace").
			WithDetails("package", rootPackage)
	}

	if doc.Resolve.Root != nil {
		if pkg, ok := packages[*doc.Resolve.Root]; ok {
			return rootChoice{id: idOf(pkg)}, nil
		}
	}

	// Virtual workspace: synthesize a root whose dependencies are the
	// workspace members.
	name := filepath.Base(doc.WorkspaceRoot)
	if name == "." || name == "/" || name == "" {
		name = "workspace"
	}
	rootID := PackageID{Name: name, Source: "workspace"}
	synthetic := &Node{ID: rootID}
	for _, idstr := range doc.WorkspaceMembers {
		pkg, ok := packages[idstr]
		if !ok {
			continue
		}
		synthetic.Edges = append(synthetic.Edges, Edge{To: idOf(pkg), Kind: KindNormal})
	}
	return rootChoice{id: rootID, synthetic: synthetic}, nil
}

// depKinds flattens the dep_kinds list into our kinds, deduplicated.
// A null kind in the metadata means a normal dependency. Target-specific
// entries collapse onto the same kind.
func depKinds(dep metadataNodeDep) []DepKind {
	if len(dep.DepKinds) == 0 {
		return []DepKind{KindNormal}
	}
	seen := make(map[DepKind]bool, 3)
	var kinds []DepKind
	for _, dk := range dep.DepKinds {
		kind := KindNormal
		if dk.Kind != nil {
			switch *dk.Kind {
			case "dev":
				kind = KindDev
			case "build":
				kind = KindBuild
			}
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func isProcMacro(pkg *metadataPackage) bool {
	for _, target := range pkg.Targets {
		for _, kind := range target.Kind {
			if kind == "proc-macro" {
				return true
			}
		}
	}
	return false
}

// optionalDeps indexes the package's declared dependencies that are
// optional, by name.
func optionalDeps(pkg *metadataPackage) map[string]bool {
	out := make(map[string]bool)
	for _, dep := range pkg.Dependencies {
		if dep.Optional {
			out[dep.Name] = true
		}
	}
	return out
}
