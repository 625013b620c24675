package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "girder.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindGirderToml_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"demo\"\n\n[translate]\ninputs = [\"mods\"]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, ok, err := findGirderToml(nested)
	if err != nil || !ok {
		t.Fatalf("findGirderToml() = %v, %v", ok, err)
	}
	if filepath.Dir(found) != root {
		t.Errorf("found = %q, want under %q", found, root)
	}
}

func TestFindGirderToml_Absent(t *testing.T) {
	_, ok, err := findGirderToml(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unexpected manifest")
	}
}

func TestLoadProjectConfig_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", "[package]\nname = \"demo\"\n\n[translate]\ninputs = [\"m.json\"]\n", true},
		{"missing package", "[translate]\ninputs = [\"m.json\"]\n", false},
		{"empty name", "[package]\nname = \"\"\n\n[translate]\ninputs = [\"m.json\"]\n", false},
		{"missing inputs", "[package]\nname = \"demo\"\n", false},
		{"empty inputs", "[package]\nname = \"demo\"\n\n[translate]\ninputs = []\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.body)
			_, err := loadProjectConfig(path)
			if tc.ok && err != nil {
				t.Errorf("loadProjectConfig() error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadProjectConfig_Defaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(),
		"[package]\nname = \"demo\"\n\n[translate]\ninputs = [\"m.json\"]\njobs = 4\ncache = false\n")
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Translate.Jobs != 4 {
		t.Errorf("jobs = %d", cfg.Translate.Jobs)
	}
	manifest := &projectManifest{Config: cfg}
	if !manifestDisablesCache(manifest) {
		t.Error("cache = false should disable the cache")
	}
	if manifestDisablesCache(nil) {
		t.Error("nil manifest must not disable the cache")
	}
}

func TestResolveManifestInputs(t *testing.T) {
	root := t.TempDir()
	mods := filepath.Join(root, "mods")
	if err := os.MkdirAll(mods, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(mods, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	single := filepath.Join(root, "extra.json")
	if err := os.WriteFile(single, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := writeManifest(t, root,
		"[package]\nname = \"demo\"\n\n[translate]\ninputs = [\"mods\", \"extra.json\"]\n")
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	manifest := &projectManifest{Path: path, Root: root, Config: cfg}

	files, err := resolveManifestInputs(manifest)
	if err != nil {
		t.Fatalf("resolveManifestInputs() error: %v", err)
	}
	want := []string{
		filepath.Join(mods, "a.json"),
		filepath.Join(mods, "b.json"),
		single,
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}
