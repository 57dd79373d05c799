// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/versionpool"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrInvalidCatalog is wrapped by TOML decoding errors.
	ErrInvalidCatalog = errors.New("invalid version catalog")
	// ErrUnknownRole is wrapped by lookups of a role the catalog does not map.
	ErrUnknownRole = errors.New("unknown dependency role")
)

// Well-known dependency roles.
const (
	RoleCoreRuntime        = "core-runtime"
	RoleValidationAPI      = "validation-api"
	RoleValidationImpl     = "validation-impl"
	RoleLogging            = "logging"
	RoleTestFramework      = "test-framework"
	RoleAnnotationMetadata = "annotation-metadata"
)

type (
	// Catalog is a loaded, fully resolved versions.toml.
	Catalog struct {
		Pool      *versionpool.Pool
		libraries map[string]Coordinate
		roles     map[string][]string
	}

	// Coordinate is a resolved "group:artifact:version" library reference.
	Coordinate struct {
		Alias    string
		Group    string
		Artifact string
		Version  string
	}

	file struct {
		Pools     map[string]map[string][]int `toml:"pools"`
		Libraries map[string]library          `toml:"libraries"`
		Roles     map[string][]string         `toml:"roles"`
	}

	library struct {
		Module  string    `toml:"module"`
		Version string    `toml:"version"`
		Pool    *selector `toml:"pool"`
	}

	selector struct {
		Family  string `toml:"family"`
		Release string `toml:"release"`
		Major   int    `toml:"major"`
		Patch   int    `toml:"patch"`
	}
)

// String returns "group:artifact:version".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Load reads and resolves the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and resolves catalog data.
func Parse(data []byte, name string) (*Catalog, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w: %w", name, row, col, ErrInvalidCatalog, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", name, ErrInvalidCatalog, err)
	}

	families := make(map[string]map[int][]int, len(f.Pools))
	for family, table := range f.Pools {
		entries := make(map[int][]int, len(table))
		for key, minors := range table {
			major, err := strconv.Atoi(key)
			if err != nil {
				return nil, issue.NewConfigurationError("", "pools."+family+"."+key,
					"pool keys must be integer major versions")
			}
			entries[major] = minors
		}
		families[family] = entries
	}

	c := &Catalog{
		Pool:      versionpool.NewPool(families),
		libraries: make(map[string]Coordinate, len(f.Libraries)),
		roles:     make(map[string][]string, len(f.Roles)),
	}

	for _, alias := range slices.Sorted(maps.Keys(f.Libraries)) {
		coord, err := c.resolveLibrary(alias, f.Libraries[alias])
		if err != nil {
			return nil, err
		}
		c.libraries[alias] = coord
	}

	for role, aliases := range f.Roles {
		if len(aliases) == 0 {
			return nil, issue.NewConfigurationError("", "roles."+role, "role maps to no library")
		}
		for _, alias := range aliases {
			if _, ok := c.libraries[alias]; !ok {
				return nil, issue.NewConfigurationError("", "roles."+role,
					"unknown library alias %q", alias)
			}
		}
		c.roles[role] = slices.Clone(aliases)
	}

	return c, nil
}

func (c *Catalog) resolveLibrary(alias string, lib library) (Coordinate, error) {
	key := "libraries." + alias
	group, artifact, ok := strings.Cut(lib.Module, ":")
	if !ok || group == "" || artifact == "" || strings.Contains(artifact, ":") {
		return Coordinate{}, issue.NewConfigurationError("", key,
			"module %q must have the form group:artifact", lib.Module)
	}

	var version string
	switch {
	case lib.Version != "" && lib.Pool != nil:
		return Coordinate{}, issue.NewConfigurationError("", key, "set either version or pool, not both")
	case lib.Version != "":
		version = lib.Version
	case lib.Pool != nil:
		v, err := c.Pool.Version(versionpool.Selector{
			Family:  lib.Pool.Family,
			Release: lib.Pool.Release,
			Major:   lib.Pool.Major,
			Patch:   lib.Pool.Patch,
		})
		if err != nil {
			var ce *issue.ConfigurationError
			if errors.As(err, &ce) {
				ce.Key = key + ".pool." + ce.Key
			}
			return Coordinate{}, err
		}
		version = v
	default:
		return Coordinate{}, issue.NewConfigurationError("", key, "missing version or pool")
	}

	return Coordinate{Alias: alias, Group: group, Artifact: artifact, Version: version}, nil
}

// Library returns the coordinate for alias.
func (c *Catalog) Library(alias string) (Coordinate, bool) {
	coord, ok := c.libraries[alias]
	return coord, ok
}

// Roles returns the declared role names sorted.
func (c *Catalog) Roles() []string {
	return slices.Sorted(maps.Keys(c.roles))
}

// Resolve returns the coordinates bound to role. An unknown role is a
// configuration error keyed by the role name.
func (c *Catalog) Resolve(role string) ([]Coordinate, error) {
	aliases, ok := c.roles[role]
	if !ok {
		return nil, issue.NewConfigurationError("", role, "%w: no catalog entry for dependency role %q", ErrUnknownRole, role)
	}
	out := make([]Coordinate, 0, len(aliases))
	for _, alias := range aliases {
		out = append(out, c.libraries[alias])
	}
	return out, nil
}

// CoreVersion returns the version of the first core-runtime library, or ""
// when the catalog has no core-runtime role.
func (c *Catalog) CoreVersion() string {
	coords, err := c.Resolve(RoleCoreRuntime)
	if err != nil || len(coords) == 0 {
		return ""
	}
	return coords[0].Version
}
