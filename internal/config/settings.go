package config

import (
	"fmt"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/indentguide/internal/host"
	"github.com/dshills/indentguide/internal/logging"
	"github.com/dshills/indentguide/internal/policy"
)

// DefaultDebounce coalesces text changes that arrive faster than typing.
const DefaultDebounce = 50 * time.Millisecond

// Setting keys.
const (
	KeyColor    = "color"
	KeyStyle    = "style"
	KeyPolicy   = "policy"
	KeyDebounce = "debounce"
	KeyScript   = "script"
	KeyLogLevel = "log_level"
)

// Settings are the recognised options.
type Settings struct {
	// Color of the guide outline. Empty selects the host default.
	Color string

	// Style of the guide outline.
	Style string

	// Policy names the update policy.
	Policy string

	// Debounce delays recomputation after text changes.
	Debounce time.Duration

	// Script is an optional Lua file that filters stops.
	Script string

	LogLevel string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Style:    host.OutlineSolid,
		Policy:   policy.NameStructural,
		Debounce: DefaultDebounce,
		LogLevel: "info",
	}
}

// DecorationOptions returns the decoration style options for s.
func (s Settings) DecorationOptions() host.DecorationOptions {
	return host.DecorationOptions{
		OutlineWidth: host.DefaultOutlineWidth,
		OutlineStyle: s.Style,
		OutlineColor: s.Color,
	}
}

// Validate checks every setting and normalises hex colours to #rrggbb.
func (s *Settings) Validate() error {
	color, err := NormalizeColor(s.Color)
	if err != nil {
		return &ValidationError{Key: KeyColor, Value: s.Color, Err: err}
	}
	s.Color = color

	switch s.Style {
	case host.OutlineSolid, host.OutlineDashed, host.OutlineDotted, host.OutlineDouble:
	default:
		return &ValidationError{Key: KeyStyle, Value: s.Style, Err: ErrInvalidStyle}
	}

	if !policy.Known(s.Policy) {
		return &ValidationError{Key: KeyPolicy, Value: s.Policy, Err: ErrInvalidPolicy}
	}

	if s.Debounce < 0 {
		return &ValidationError{Key: KeyDebounce, Value: s.Debounce, Err: ErrInvalidDuration}
	}

	if !logging.ValidLevel(s.LogLevel) {
		return &ValidationError{Key: KeyLogLevel, Value: s.LogLevel, Err: ErrInvalidLogLevel}
	}

	return nil
}

// NormalizeColor validates a colour. Hex colours (#rgb or #rrggbb) are
// returned as lower-case #rrggbb; names are lower-cased and left for the
// host to resolve. The empty string is valid.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", nil
	}

	if strings.HasPrefix(color, "#") {
		c, err := colorful.Hex(color)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, color)
		}
		return c.Hex(), nil
	}

	for _, r := range color {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, color)
		}
	}
	return strings.ToLower(color), nil
}

// apply overlays raw values onto s.
func (s *Settings) apply(raw map[string]any) error {
	for key, val := range raw {
		switch key {
		case KeyColor:
			s.Color = fmt.Sprint(val)
		case KeyStyle:
			s.Style = strings.ToLower(fmt.Sprint(val))
		case KeyPolicy:
			s.Policy = strings.ToLower(fmt.Sprint(val))
		case KeyScript:
			s.Script = fmt.Sprint(val)
		case KeyLogLevel:
			s.LogLevel = strings.ToLower(fmt.Sprint(val))
		case KeyDebounce:
			d, err := parseDuration(val)
			if err != nil {
				return &ValidationError{Key: KeyDebounce, Value: val, Err: err}
			}
			s.Debounce = d
		}
	}
	return nil
}

// parseDuration accepts Go duration strings or integer milliseconds.
func parseDuration(val any) (time.Duration, error) {
	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, v)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidDuration, val, val)
	}
}
