package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"obsmacros/models"
)

const (
	// ConfigPath is the config file, relative to the working directory.
	ConfigPath = "config.json"

	DefaultAPIListen = "127.0.0.1:8080"
)

var ErrNotFound = errors.New("config not found")

// ParseError reports a config file that is not valid JSON or does not have
// the expected top-level shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsRecoverable reports whether a Load error should be handled by starting
// from an empty config and asking for credentials.
func IsRecoverable(err error) bool {
	var pe *ParseError
	return errors.Is(err, ErrNotFound) || errors.As(err, &pe)
}

// APIConfig controls the local HTTP control surface.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
}

// Config is the persisted unit: credentials plus the macro registry.
type Config struct {
	Credentials models.Credentials
	Macros      *models.Registry
	API         APIConfig

	// Dropped counts macros skipped during Load because they could not be
	// decoded.
	Dropped int
}

func New() *Config {
	return &Config{
		Credentials: models.DefaultCredentials(),
		Macros:      models.NewRegistry(),
		API:         APIConfig{Listen: DefaultAPIListen},
	}
}

type fileConfig struct {
	Credentials models.Credentials `json:"credentials"`
	Macros      json.RawMessage    `json:"macros,omitempty"`
	API         APIConfig          `json:"api"`
}

// fileMacro is one entry of the list-shaped macros encoding. Older files
// store the key as a key code plus a separate modifier set (and the typed
// character, which is ignored); newer ones store only the packed key.
type fileMacro struct {
	KeyChar   json.RawMessage         `json:"keyChar,omitempty"`
	Key       json.RawMessage         `json:"key"`
	Modifiers json.RawMessage         `json:"modifiers,omitempty"`
	Action    models.SerializedAction `json:"action"`
}

// Load reads the config at path. A missing file yields ErrNotFound and an
// unparseable one a *ParseError; both are recoverable. Macros that cannot
// be decoded are skipped and counted in Dropped.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New()
	fc := fileConfig{Credentials: cfg.Credentials, API: cfg.API}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Path: path, Err: errors.New("top level is not an object")}
	}
	if err := json.Unmarshal(trimmed, &fc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	cfg.Credentials = fc.Credentials
	cfg.API = fc.API

	if err := decodeMacros(fc.Macros, cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if cfg.Dropped > 0 {
		log.Printf("⚠️ Skipped %d macro(s) that could not be decoded", cfg.Dropped)
	}
	return cfg, nil
}

func decodeMacros(raw json.RawMessage, cfg *Config) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("macros: %w", err)
		}
		for i, entry := range entries {
			b, a, err := decodeListEntry(entry)
			if err != nil {
				log.Printf("Skipping macro #%d: %v", i, err)
				cfg.Dropped++
				continue
			}
			cfg.Macros.Insert(b, a)
		}

	case '{':
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("macros: %w", err)
		}
		for key, entry := range entries {
			b, a, err := decodeMapEntry(key, entry)
			if err != nil {
				log.Printf("Skipping macro %s: %v", key, err)
				cfg.Dropped++
				continue
			}
			cfg.Macros.Insert(b, a)
		}

	default:
		return fmt.Errorf("macros must be a list or an object")
	}
	return nil
}

func decodeListEntry(entry json.RawMessage) (models.KeyBinding, models.Action, error) {
	var fm fileMacro
	if err := json.Unmarshal(entry, &fm); err != nil {
		return models.KeyBinding{}, nil, err
	}

	b, err := decodeKey(fm.Key)
	if err != nil {
		return models.KeyBinding{}, nil, err
	}
	if len(fm.Modifiers) > 0 {
		mods, err := decodeModifiers(fm.Modifiers)
		if err != nil {
			return models.KeyBinding{}, nil, err
		}
		b.Modifiers = mods
	}

	a, err := models.DecodeAction(fm.Action)
	if err != nil {
		return models.KeyBinding{}, nil, err
	}
	return b, a, nil
}

func decodeMapEntry(key string, entry json.RawMessage) (models.KeyBinding, models.Action, error) {
	packed, err := strconv.ParseUint(strings.TrimSpace(key), 10, 32)
	if err != nil {
		return models.KeyBinding{}, nil, fmt.Errorf("invalid key %q", key)
	}

	var s models.SerializedAction
	if err := json.Unmarshal(entry, &s); err != nil {
		return models.KeyBinding{}, nil, err
	}
	a, err := models.DecodeAction(s)
	if err != nil {
		return models.KeyBinding{}, nil, err
	}
	return models.UnpackKeyBinding(uint32(packed)), a, nil
}

// decodeKey accepts a packed integer or a key name.
func decodeKey(raw json.RawMessage) (models.KeyBinding, error) {
	var packed uint32
	if err := json.Unmarshal(raw, &packed); err == nil {
		return models.UnpackKeyBinding(packed), nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return models.KeyBinding{}, fmt.Errorf("invalid key %s", raw)
	}
	if b, err := models.ParseKeyBinding(name); err == nil {
		return b, nil
	}
	if n, err := strconv.ParseUint(name, 10, 32); err == nil {
		return models.UnpackKeyBinding(uint32(n)), nil
	}
	return models.KeyBinding{}, fmt.Errorf("unknown key %q", name)
}

// decodeModifiers accepts the numeric bitset or a comma separated list of
// modifier names such as "Shift, Control".
func decodeModifiers(raw json.RawMessage) (models.Modifiers, error) {
	var n uint8
	if err := json.Unmarshal(raw, &n); err == nil {
		return models.Modifiers(n) & (models.ModAlt | models.ModShift | models.ModControl), nil
	}

	var names string
	if err := json.Unmarshal(raw, &names); err != nil {
		return 0, fmt.Errorf("invalid modifiers %s", raw)
	}

	var mods models.Modifiers
	for _, name := range strings.Split(names, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", "0", "none":
		case "alt":
			mods |= models.ModAlt
		case "shift":
			mods |= models.ModShift
		case "control", "ctrl":
			mods |= models.ModControl
		default:
			return 0, fmt.Errorf("unknown modifier %q", name)
		}
	}
	return mods, nil
}

// Save writes cfg to path. The file is written next to the destination
// and renamed over it, so readers see either the old or the new file.
func Save(path string, cfg *Config) error {
	fc := struct {
		Credentials models.Credentials                 `json:"credentials"`
		Macros      map[string]models.SerializedAction `json:"macros"`
		API         APIConfig                          `json:"api"`
	}{
		Credentials: cfg.Credentials,
		Macros:      make(map[string]models.SerializedAction, cfg.Macros.Len()),
		API:         cfg.API,
	}
	for _, m := range cfg.Macros.ListSorted() {
		fc.Macros[strconv.FormatUint(uint64(m.Binding.Pack()), 10)] = models.EncodeAction(m.Action)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	tmpPath = ""
	return nil
}

// MacrosString renders the registry for display, sorted by binding.
func (c *Config) MacrosString() string {
	if c.Macros.Len() == 0 {
		return "Registered Macros: None"
	}

	lines := []string{"Registered Macros:"}
	for _, m := range c.Macros.ListSorted() {
		lines = append(lines, fmt.Sprintf("%s -> %s", m.Binding, m.Action.Describe()))
	}
	return strings.Join(lines, "\n")
}
