package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the per-directory config file, searched from the working directory upwards. The same name under the home directory is the
// user-wide config.
var FileName = filepath.Join(".autodoc", "config.yaml")

// EnvVars maps YAML keys to the environment variables that override them.
var EnvVars = map[string]string{
	"provider": "AUTODOC_PROVIDER",
	"model":    "AUTODOC_MODEL",
	"base_url": "AUTODOC_BASE_URL",
	"api_key":  "AUTODOC_API_KEY",
}

// LoadOptions controls where Load looks. The zero value uses the real home directory, working directory, and environment.
type LoadOptions struct {
	HomeDir string              // "" means os.UserHomeDir
	WorkDir string              // "" means os.Getwd
	File    string              // explicit config file; unlike discovered files it must exist
	Getenv  func(string) string // nil means os.Getenv

	// Overrides are applied last, keyed by YAML key. Values are parsed as YAML scalars (ex: "2s", "true", "0.5").
	Overrides map[string]string
}

// Load builds the effective configuration. Sources, from lowest to highest priority: built-in defaults, the user config under the home
// directory, the nearest project config, opts.File, environment variables, then opts.Overrides. A later source replaces only the keys it sets.
//
// Missing or unreadable discovered files are ignored, as are empty files. A file that cannot be parsed, or that names an unknown key, is an
// error. The result is validated.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()
	cfg.Providence = map[string]Providence{}
	for key := range fieldIndex {
		cfg.Providence[key] = Providence{SourceType: "default"}
	}

	home := opts.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	var homeFile string
	if home != "" {
		homeFile = filepath.Join(home, FileName)
		if err := applyFile(&cfg, homeFile, false); err != nil {
			return Config{}, err
		}
	}

	wd := opts.WorkDir
	if wd == "" {
		wd, _ = os.Getwd()
	}
	if nearest := NearestFile(FileName, wd); nearest != "" && nearest != homeFile {
		if err := applyFile(&cfg, nearest, false); err != nil {
			return Config{}, err
		}
	}

	if opts.File != "" {
		if err := applyFile(&cfg, ExpandPath(opts.File), true); err != nil {
			return Config{}, err
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range sortedKeys(EnvVars) {
		name := EnvVars[key]
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			continue
		}
		if err := setKey(&cfg, key, v); err != nil {
			return Config{}, fmt.Errorf("env %s: %w", name, err)
		}
		cfg.Providence[key] = Providence{SourceType: "env", SourceIdentifier: name}
	}

	for _, key := range sortedKeys(opts.Overrides) {
		if err := setKey(&cfg, key, opts.Overrides[key]); err != nil {
			return Config{}, fmt.Errorf("flag: %w", err)
		}
		cfg.Providence[key] = Providence{SourceType: "flag"}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile decodes path over cfg and records the keys it set. When required is false, a missing or unreadable file is skipped.
func applyFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	var present map[string]any
	if err := yaml.Unmarshal(data, &present); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	for key := range present {
		cfg.Providence[key] = Providence{SourceType: "yaml_file", SourceIdentifier: path}
	}
	return nil
}

// fieldIndex maps YAML keys to Config field indexes.
var fieldIndex = func() map[string]int {
	m := map[string]int{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		m[name] = i
	}
	return m
}()

// setKey parses raw into the field named by key. Strings are taken verbatim; everything else is parsed as a YAML scalar.
func setKey(cfg *Config, key string, raw string) error {
	idx, ok := fieldIndex[key]
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	f := reflect.ValueOf(cfg).Elem().Field(idx)
	if f.Kind() == reflect.String {
		f.SetString(raw)
		return nil
	}
	node := yaml.Node{Kind: yaml.ScalarNode, Value: strings.TrimSpace(raw)}
	if err := node.Decode(f.Addr().Interface()); err != nil {
		return fmt.Errorf("%s: cannot parse %q: %w", key, raw, err)
	}
	return nil
}

// NearestFile searches upward from start (a directory, or a file whose directory is used) for the first readable, non-empty file at the
// relative path name. It returns "" if there is none. It panics if name is absolute.
func NearestFile(name string, start string) string {
	if filepath.IsAbs(name) {
		panic("name shouldn't be absolute")
	}
	if start == "" {
		return ""
	}
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, name)
		if data, err := os.ReadFile(candidate); err == nil && strings.TrimSpace(string(data)) != "" {
			return candidate
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

// ExpandPath replaces a leading "~" with the user's home directory. Other paths are returned unchanged.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
