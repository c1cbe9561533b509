package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
)

// Section is the table or key prefix grouping indent guide settings.
const Section = "indentGuide"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INDENTGUIDE_"

// setting describes how a key is spelled in each source.
type setting struct {
	key  string
	json string
	env  string
}

var settings = []setting{
	{KeyColor, "color", EnvPrefix + "COLOR"},
	{KeyStyle, "style", EnvPrefix + "STYLE"},
	{KeyPolicy, "policy", EnvPrefix + "POLICY"},
	{KeyDebounce, "debounce", EnvPrefix + "DEBOUNCE"},
	{KeyScript, "script", EnvPrefix + "SCRIPT"},
	{KeyLogLevel, "logLevel", EnvPrefix + "LOG_LEVEL"},
}

// Loader reads settings from a file and the environment.
type Loader struct {
	path      string
	readFile  func(string) ([]byte, error)
	lookup    func(string) (string, bool)
	overrides map[string]any
}

// NewLoader creates a loader for path. An empty path loads only defaults
// and environment overrides.
func NewLoader(path string) *Loader {
	return &Loader{
		path:     path,
		readFile: os.ReadFile,
		lookup:   os.LookupEnv,
	}
}

// Override sets a value that wins over every other source, such as a
// command-line flag. It applies to every later Load.
func (l *Loader) Override(key string, value any) {
	if l.overrides == nil {
		l.overrides = make(map[string]any)
	}
	l.overrides[key] = value
}

// Path returns the settings file path.
func (l *Loader) Path() string {
	return l.path
}

// Load returns validated settings. A missing file is not an error.
func (l *Loader) Load() (Settings, error) {
	s := Defaults()

	fileValues, err := l.loadFile()
	if err != nil {
		return Settings{}, err
	}
	if err := s.apply(fileValues); err != nil {
		return Settings{}, err
	}

	if err := s.apply(l.loadEnv()); err != nil {
		return Settings{}, err
	}
	if err := s.apply(l.overrides); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	if s.Script != "" && !filepath.IsAbs(s.Script) && l.path != "" {
		s.Script = filepath.Join(filepath.Dir(l.path), s.Script)
	}
	return s, nil
}

func (l *Loader) loadFile() (map[string]any, error) {
	if l.path == "" {
		return nil, nil
	}

	data, err := l.readFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", l.path, err)
	}

	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".json":
		return parseJSON(l.path, data)
	default:
		return parseTOML(l.path, data)
	}
}

func (l *Loader) loadEnv() map[string]any {
	values := make(map[string]any)
	for _, s := range settings {
		if val, ok := l.lookup(s.env); ok {
			values[s.key] = val
		}
	}
	return values
}

// parseTOML reads top-level keys, then lets an [indentGuide] table override
// them.
func parseTOML(path string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}

	values := make(map[string]any)
	for _, s := range settings {
		if v, ok := doc[s.key]; ok {
			values[s.key] = v
		}
	}
	if section, ok := doc[Section].(map[string]any); ok {
		for _, s := range settings {
			if v, ok := section[s.key]; ok {
				values[s.key] = v
			}
		}
	}
	return values, nil
}

// parseJSON accepts "indentGuide.color" flat keys and a nested
// "indentGuide" object. Flat keys win.
func parseJSON(path string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: path, Message: "invalid JSON"}
	}

	values := make(map[string]any)
	for _, s := range settings {
		for _, p := range []string{Section + "." + s.json, Section + `\.` + s.json} {
			res := gjson.GetBytes(data, p)
			if !res.Exists() {
				continue
			}
			if res.Type == gjson.Number {
				values[s.key] = res.Int()
			} else {
				values[s.key] = res.String()
			}
		}
	}
	return values, nil
}
