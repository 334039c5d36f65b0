package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrRootNotFound indicates the instances root does not exist or is not a
// directory. Callers must surface this rather than treat it as an empty
// catalog, so a misconfigured path is distinguishable from an empty one.
var ErrRootNotFound = errors.New("instances root not found")

// ErrPackNotFound indicates no modpack directory matches the requested name
var ErrPackNotFound = errors.New("modpack not found")

// Modpack describes one modpack directory under the instances root
type Modpack struct {
	// Name is the directory name, which keys history and exclusions
	Name string `json:"name"`
	// DisplayName is the manifest name when present, else the directory name
	DisplayName string `json:"displayName"`
	// Path is the absolute path of the modpack directory
	Path string `json:"path"`
	// Version is the manifest version string, if any
	Version string `json:"version,omitempty"`
	// IconPath points at icon.png or pack.png when one exists
	IconPath string `json:"iconPath,omitempty"`
	// HasManifest reports whether a manifest.json was found
	HasManifest bool `json:"hasManifest"`
	// HasMods reports whether the pack contains a mods directory
	HasMods bool `json:"hasMods"`
}

// manifest is the subset of a CurseForge manifest.json we care about
type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// List enumerates the immediate subdirectories of sourceRoot, one modpack
// per directory, ordered by name. The listing is recomputed on every call so
// callers can refresh at any time.
func List(sourceRoot string) ([]Modpack, error) {
	info, err := os.Stat(sourceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, sourceRoot)
		}
		return nil, fmt.Errorf("failed to stat instances root %s: %w", sourceRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, sourceRoot)
	}

	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read instances root %s: %w", sourceRoot, err)
	}

	var packs []Modpack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		packs = append(packs, describe(sourceRoot, entry.Name()))
	}

	sort.Slice(packs, func(i, j int) bool {
		return packs[i].Name < packs[j].Name
	})

	return packs, nil
}

// Find returns the modpack with the given directory name
func Find(sourceRoot, name string) (Modpack, error) {
	packs, err := List(sourceRoot)
	if err != nil {
		return Modpack{}, err
	}
	for _, pack := range packs {
		if pack.Name == name {
			return pack, nil
		}
	}
	return Modpack{}, fmt.Errorf("%w: %q under %s", ErrPackNotFound, name, sourceRoot)
}

func describe(sourceRoot, name string) Modpack {
	packPath := filepath.Join(sourceRoot, name)
	pack := Modpack{
		Name:        name,
		DisplayName: name,
		Path:        packPath,
	}

	if info, err := os.Stat(filepath.Join(packPath, "mods")); err == nil && info.IsDir() {
		pack.HasMods = true
	}

	for _, icon := range []string{"icon.png", "pack.png"} {
		candidate := filepath.Join(packPath, icon)
		if _, err := os.Stat(candidate); err == nil {
			pack.IconPath = candidate
			break
		}
	}

	manifestPath := filepath.Join(packPath, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return pack
	}
	pack.HasManifest = true

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		// Unreadable manifest only loses display metadata
		return pack
	}
	if m.Name != "" {
		pack.DisplayName = m.Name
	}
	pack.Version = m.Version

	return pack
}
