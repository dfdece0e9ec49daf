// Package graph defines the raw dependency graph model and loaders.
// This file loads the graph directly from a Cargo.lock file, for use
// when cargo itself is not available. Lockfiles carry no dependency
// kinds, so every edge loads as a normal dependency.
package graph

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/internal/errors"
	"github.com/depscope/depscope/internal/logging"
)

// LockfileLoader loads the dependency graph by parsing Cargo.lock.
type LockfileLoader struct {
	// LockfilePath is the path to Cargo.lock.
	LockfilePath string
	// ManifestPath optionally points at the adjacent Cargo.toml, used
	// to identify the root package. When empty, Cargo.toml next to the
	// lockfile is tried.
	ManifestPath string
	// Package optionally selects the root package by name.
	Package string
}

// lockFile mirrors the Cargo.lock format.
type lockFile struct {
	Package []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Dependencies []string `toml:"dependencies"`
}

// manifestFile mirrors the [package] table of Cargo.toml.
type manifestFile struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// Load parses the lockfile and converts it into a validated Graph.
func (l *LockfileLoader) Load() (*Graph, error) {
	data, err := os.ReadFile(l.LockfilePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrLoad, "failed to read lockfile").
			WithDetails("path", l.LockfilePath)
	}

	var lock lockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(err, errors.ErrLoad, "failed to parse lockfile").
			WithDetails("path", l.LockfilePath)
	}
	if len(lock.Package) == 0 {
		return nil, errors.New(errors.ErrLoad, "lockfile contains no packages").
			WithDetails("path", l.LockfilePath)
	}

	logging.Debug("parsed lockfile", "path", l.LockfilePath, "packages", len(lock.Package))

	return l.build(lock)
}

func (l *LockfileLoader) build(lock lockFile) (*Graph, error) {
	// Index packages by name for dependency resolution. Lock
	// dependencies name only the package (plus version when the name
	// is ambiguous).
	byName := make(map[string][]lockPackage)
	for _, pkg := range lock.Package {
		byName[pkg.Name] = append(byName[pkg.Name], pkg)
	}

	root, err := l.pickRoot(lock, byName)
	if err != nil {
		return nil, err
	}

	g := New(root)
	for _, pkg := range lock.Package {
		node := &Node{
			ID: PackageID{Name: pkg.Name, Version: pkg.Version, Source: pkg.Source},
		}
		for _, dep := range pkg.Dependencies {
			to, ok := resolveLockDep(dep, byName)
			if !ok {
				return nil, errors.NewGraphInconsistency(node.ID.String(), dep)
			}
			node.Edges = append(node.Edges, Edge{To: to, Kind: KindNormal})
		}
		g.Add(node)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// pickRoot chooses the root package: the --package selection, the
// package named by the adjacent Cargo.toml, or the only local
// (sourceless) package.
func (l *LockfileLoader) pickRoot(lock lockFile, byName map[string][]lockPackage) (PackageID, error) {
	match := func(name string) (PackageID, bool) {
		if pkgs := byName[name]; len(pkgs) > 0 {
			p := pkgs[0]
			return PackageID{Name: p.Name, Version: p.Version, Source: p.Source}, true
		}
		return PackageID{}, false
	}

	if l.Package != "" {
		if id, ok := match(l.Package); ok {
			return id, nil
		}
		return PackageID{}, errors.New(errors.ErrNotFound, "package not found in lockfile").
			WithDetails("package", l.Package)
	}

	if name := l.manifestPackageName(); name != "" {
		if id, ok := match(name); ok {
			return id, nil
		}
	}

	// Workspace members have no source entry in the lockfile.
	var local []lockPackage
	for _, pkg := range lock.Package {
		if pkg.Source == "" {
			local = append(local, pkg)
		}
	}
	if len(local) == 1 {
		return PackageID{Name: local[0].Name, Version: local[0].Version}, nil
	}

	return PackageID{}, errors.WithSuggestion(errors.ErrLoad,
		"cannot determine the root package from the lockfile",
		"pass --package to select the root explicitly")
}

// manifestPackageName reads the package name from Cargo.toml, if present.
func (l *LockfileLoader) manifestPackageName() string {
	path := l.ManifestPath
	if path == "" {
		path = filepath.Join(filepath.Dir(l.LockfilePath), "Cargo.toml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var manifest manifestFile
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return ""
	}
	return manifest.Package.Name
}

// resolveLockDep resolves a lock dependency entry: "name",
// "name version", or "name version (source)".
func resolveLockDep(dep string, byName map[string][]lockPackage) (PackageID, bool) {
	fields := strings.Fields(dep)
	if len(fields) == 0 {
		return PackageID{}, false
	}
	name := fields[0]
	version := ""
	if len(fields) > 1 {
		version = fields[1]
	}

	candidates := byName[name]
	if len(candidates) == 0 {
		return PackageID{}, false
	}
	if version == "" {
		if len(candidates) == 1 {
			p := candidates[0]
			return PackageID{Name: p.Name, Version: p.Version, Source: p.Source}, true
		}
		// Ambiguous reference without a version pin.
		return PackageID{}, false
	}
	for _, p := range candidates {
		if p.Version == version {
			return PackageID{Name: p.Name, Version: p.Version, Source: p.Source}, true
		}
	}
	return PackageID{}, false
}
