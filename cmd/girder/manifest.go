package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const noGirderTomlMessage = "no girder.toml found\nplease list the input files explicitly, e.g.:\n  girder translate path/to/module.json"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package   packageConfig   `toml:"package"`
	Translate translateConfig `toml:"translate"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type translateConfig struct {
	// Inputs is a list of exported module files or directories, relative
	// to the manifest root.
	Inputs []string `toml:"inputs"`
	// Jobs is the default worker count; command-line --jobs wins.
	Jobs int `toml:"jobs"`
	// Cache disables the verdict cache for the project when set to false.
	Cache *bool `toml:"cache"`
}

func findGirderToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "girder.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findGirderToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return projectConfig{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("translate", "inputs") || len(cfg.Translate.Inputs) == 0 {
		return projectConfig{}, fmt.Errorf("%s: missing [translate].inputs", path)
	}
	return cfg, nil
}

// resolveManifestInputs expands the manifest's input entries into concrete
// files. Directory entries contribute every .json file inside, sorted.
func resolveManifestInputs(manifest *projectManifest) ([]string, error) {
	if manifest == nil {
		return nil, fmt.Errorf("missing project manifest")
	}
	var files []string
	for _, entry := range manifest.Config.Translate.Inputs {
		p := filepath.Join(manifest.Root, filepath.FromSlash(strings.TrimSpace(entry)))
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%s: input path does not exist: %s", manifest.Path, p)
			}
			return nil, fmt.Errorf("%s: failed to stat input: %w", manifest.Path, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read input directory: %w", manifest.Path, err)
		}
		var found []string
		for _, de := range entries {
			if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
				continue
			}
			found = append(found, filepath.Join(p, de.Name()))
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s: input directory has no .json files: %s", manifest.Path, p)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// collectInputs resolves the files a command should operate on: explicit
// args win, otherwise fall back to the nearest girder.toml. The manifest is
// returned alongside so callers can pick up project defaults; it is nil when
// explicit args were given.
func collectInputs(args []string) ([]string, *projectManifest, error) {
	if len(args) > 0 {
		return args, nil, nil
	}
	manifest, ok, err := loadProjectManifest(".")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.New(noGirderTomlMessage)
	}
	files, err := resolveManifestInputs(manifest)
	if err != nil {
		return nil, nil, err
	}
	return files, manifest, nil
}

// manifestDisablesCache reports whether the project opted out of the
// verdict cache.
func manifestDisablesCache(manifest *projectManifest) bool {
	return manifest != nil &&
		manifest.Config.Translate.Cache != nil &&
		!*manifest.Config.Translate.Cache
}
