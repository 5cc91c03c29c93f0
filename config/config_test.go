package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"obsmacros/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Credentials.Host != "localhost" || cfg.Credentials.Port != 4455 || cfg.Credentials.Password != "" {
		t.Errorf("unexpected default credentials %+v", cfg.Credentials)
	}
	if cfg.Macros.Len() != 0 {
		t.Errorf("default registry not empty")
	}
	if cfg.API.Enabled {
		t.Error("API should be disabled by default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("error should also match fs.ErrNotExist")
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		t.Error("missing file must not be reported as a parse error")
	}
	if !IsRecoverable(err) {
		t.Error("missing file should be recoverable")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	for _, content := range []string{`{"credentials": `, `null`, `[]`, ``, `{"macros": 5}`} {
		path := writeConfig(t, content)
		_, err := Load(path)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Load(%q) error = %v, want *ParseError", content, err)
			continue
		}
		if errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) reported not found", content)
		}
		if !IsRecoverable(err) {
			t.Errorf("Load(%q) error should be recoverable", content)
		}
	}
}

func TestLoadSkipsUndecodableMacros(t *testing.T) {
	path := writeConfig(t, `{
		"credentials": {"host": "studio", "port": 4444, "password": "pw"},
		"macros": {
			"112": {"type": "SwitchScene", "parameters": {"SceneName": "Live"}},
			"113": {"type": "Explode", "parameters": {}}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Macros.Len() != 1 {
		t.Fatalf("registry has %d entries, want 1", cfg.Macros.Len())
	}
	if cfg.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", cfg.Dropped)
	}
	if a, ok := cfg.Macros.Lookup(models.Bind(models.KeyF1)); !ok || a.Describe() != "Switch to Scene: Live" {
		t.Errorf("Lookup(F1) = %v, %v", a, ok)
	}
	want := models.Credentials{Host: "studio", Port: 4444, Password: "pw"}
	if cfg.Credentials != want {
		t.Errorf("Credentials = %+v, want %+v", cfg.Credentials, want)
	}
}

func TestLoadLegacyListFormat(t *testing.T) {
	// Shape written by the first releases: PascalCase names, separate key
	// code and modifier set, ordinal action types.
	path := writeConfig(t, `{
		"Credentials": {"Host": "10.0.0.5", "Port": 4455, "Password": "secret"},
		"Macros": [
			{"KeyChar": "a", "Key": 65, "Modifiers": 0,
			 "Action": {"Type": 4, "Parameters": {"InputName": "Mic"}}},
			{"KeyChar": "\u0000", "Key": 113, "Modifiers": 2,
			 "Action": {"Type": 1, "Parameters": {"SceneName": "Live", "ItemID": "3", "ItemName": "Cam"}}},
			{"KeyChar": "b", "Key": 66, "Modifiers": 6,
			 "Action": {"Type": "ToggleInput", "Parameters": {"InputName": "Desk"}}},
			{"KeyChar": "c", "Key": 67, "Modifiers": 0,
			 "Action": {"Type": 2, "Parameters": {"SceneName": "Live", "ItemID": "x", "ItemName": "Cam"}}}
		]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Credentials.Host != "10.0.0.5" || cfg.Credentials.Password != "secret" {
		t.Errorf("Credentials = %+v", cfg.Credentials)
	}
	if cfg.Macros.Len() != 3 || cfg.Dropped != 1 {
		t.Fatalf("Len() = %d, Dropped = %d; want 3, 1", cfg.Macros.Len(), cfg.Dropped)
	}

	tests := []struct {
		binding models.KeyBinding
		want    string
	}{
		{models.Bind(models.KeyA), "Mute Mic"},
		{models.Bind(models.KeyF1+1, models.ModShift), "Enable Cam in Live"},
		{models.Bind(models.KeyA+1, models.ModShift, models.ModControl), "Toggle Desk"},
	}
	for _, tt := range tests {
		a, ok := cfg.Macros.Lookup(tt.binding)
		if !ok {
			t.Errorf("%v not bound", tt.binding)
			continue
		}
		if a.Describe() != tt.want {
			t.Errorf("%v -> %q, want %q", tt.binding, a.Describe(), tt.want)
		}
	}
}

func TestLoadPackedListAndNamedModifiers(t *testing.T) {
	path := writeConfig(t, `{
		"macros": [
			{"key": 626, "action": {"type": "TriggerHotkey", "parameters": {"Hotkey": "Rec"}}},
			{"key": "F1", "modifiers": "Shift, Control", "action": {"type": "MuteInput", "parameters": {"InputName": "Mic"}}}
		]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// 626 = 0x272 = F3 (114) with SHIFT (2<<8)
	if a, ok := cfg.Macros.Lookup(models.Bind(models.KeyF1+2, models.ModShift)); !ok || a.Describe() != "Trigger Hotkey: Rec" {
		t.Errorf("Lookup(F3+SHIFT) = %v, %v", a, ok)
	}
	if _, ok := cfg.Macros.Lookup(models.Bind(models.KeyF1, models.ModShift, models.ModControl)); !ok {
		t.Error("F1+CTRL+SHIFT not bound")
	}
	if cfg.Credentials != models.DefaultCredentials() {
		t.Errorf("missing credentials should keep defaults, got %+v", cfg.Credentials)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := New()
	cfg.Credentials = models.Credentials{Host: "studio", Port: 4456, Password: "p"}
	cfg.API = APIConfig{Enabled: true, Listen: "127.0.0.1:9999"}
	cfg.Macros.Insert(models.Bind(models.KeyF1), models.SwitchScene{SceneName: "Live"})
	cfg.Macros.Insert(models.Bind(models.KeyF1+1, models.ModShift), models.NewToggleInputMute("Mic"))
	cfg.Macros.Insert(models.Bind(models.KeyD0+3, models.ModAlt), models.DisableItem{SceneName: "Live", ItemID: 9, ItemName: "Cam"})

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Credentials != cfg.Credentials || loaded.API != cfg.API {
		t.Errorf("loaded %+v / %+v", loaded.Credentials, loaded.API)
	}
	if loaded.MacrosString() != cfg.MacrosString() {
		t.Errorf("macros differ:\n%s\nvs\n%s", loaded.MacrosString(), cfg.MacrosString())
	}

	a, ok := loaded.Macros.Lookup(models.Bind(models.KeyF1))
	if !ok || a.Describe() != "Switch to Scene: Live" {
		t.Errorf("Lookup(F1).Describe() = %v", a)
	}
}

func TestSaveUsesPackedKeyMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New()
	cfg.Macros.Insert(models.Bind(models.KeyF1+1, models.ModShift), models.MuteInput{InputName: "Mic"})
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"625": {`) {
		t.Errorf("expected packed key 625 in:\n%s", data)
	}
	if !strings.Contains(string(data), `"type": "MuteInput"`) {
		t.Errorf("expected tag name in:\n%s", data)
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"old": true}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := New()
	cfg.Macros.Insert(models.Bind(models.KeyA), models.TriggerHotkey{Hotkey: "h"})
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only config.json", names)
	}
}

func TestSaveFailureLeavesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	previous := []byte(`{"credentials": {"host": "keep"}}`)
	if err := os.WriteFile(path, previous, 0600); err != nil {
		t.Fatal(err)
	}

	// Saving into a directory that does not exist fails before touching
	// anything.
	if err := Save(filepath.Join(dir, "missing", "config.json"), New()); err == nil {
		t.Fatal("Save() into a missing directory should fail")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(previous) {
		t.Errorf("previous file changed: %s", data)
	}
}

func TestMacrosString(t *testing.T) {
	cfg := New()
	if got := cfg.MacrosString(); got != "Registered Macros: None" {
		t.Errorf("empty MacrosString() = %q", got)
	}

	cfg.Macros.Insert(models.Bind(models.KeyF1+1, models.ModShift), models.NewToggleInputMute("Mic"))
	cfg.Macros.Insert(models.Bind(models.KeyA), models.SwitchScene{SceneName: "Live"})

	want := "Registered Macros:\nA -> Switch to Scene: Live\nF2+SHIFT -> Toggle Mic"
	if got := cfg.MacrosString(); got != want {
		t.Errorf("MacrosString() = %q, want %q", got, want)
	}
}
