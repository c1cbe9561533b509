package config

import (
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// MarshalSettingsJSON renders s as an editor settings document with flat
// "indentGuide.*" keys.
func MarshalSettingsJSON(s Settings) ([]byte, error) {
	values := map[string]any{
		KeyColor:    s.Color,
		KeyStyle:    s.Style,
		KeyPolicy:   s.Policy,
		KeyDebounce: s.Debounce.String(),
		KeyScript:   s.Script,
		KeyLogLevel: s.LogLevel,
	}

	doc := []byte("{}")
	for _, st := range settings {
		var err error
		doc, err = sjson.SetBytes(doc, Section+`\.`+st.json, values[st.key])
		if err != nil {
			return nil, err
		}
	}
	return pretty.Pretty(doc), nil
}
