package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "notes"), 0o755); err != nil {
		t.Fatalf("create notes dir: %v", err)
	}
	body := "notes_dir: " + filepath.Join(dir, "notes") + "\n" + extra
	path := filepath.Join(dir, "til.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBuildModuleDefaults(t *testing.T) {
	resources, err := BuildModule(Options{ConfigPath: writeConfig(t, "")})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if resources.Module == nil {
		t.Fatal("expected module to be initialised")
	}
	if resources.Logger == nil {
		t.Fatal("expected CLI logger to be configured")
	}
	container := resources.Module.Container()
	if container.NoteService() == nil {
		t.Fatal("expected note service to be configured")
	}
	if container.LoggerProvider() == nil {
		t.Fatal("expected logger provider to be configured")
	}
	if resources.Config.Features.Site {
		t.Fatal("expected site feature to stay off without the flag")
	}
}

func TestBuildModuleEnablesSite(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"notes", "theme"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("create %s dir: %v", sub, err)
		}
	}
	body := "notes_dir: " + filepath.Join(dir, "notes") + "\n" +
		"site:\n" +
		"  output_dir: " + filepath.Join(dir, "public") + "\n" +
		"  theme_dir: " + filepath.Join(dir, "theme") + "\n"
	path := filepath.Join(dir, "til.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resources, err := BuildModule(Options{ConfigPath: path, Site: true})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if !resources.Config.Features.Site {
		t.Fatal("expected site feature to be enabled")
	}
	if resources.Module.Site() == nil {
		t.Fatal("expected site service to be configured")
	}
}

func TestBuildModuleVerboseLowersLevel(t *testing.T) {
	resources, err := BuildModule(Options{ConfigPath: writeConfig(t, ""), Verbose: true})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if got := resources.Config.Logging.Level; got != "debug" {
		t.Fatalf("expected debug level, got %q", got)
	}
}

func TestBuildModuleMissingConfig(t *testing.T) {
	_, err := BuildModule(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config path")
	}
}
