// Package config loads indent guide settings.
//
// Settings come from three sources, lowest precedence first:
//
//  1. built-in defaults (Defaults)
//  2. a settings file, TOML or JSON depending on its extension
//  3. INDENTGUIDE_* environment variables
//
// A TOML file may hold the keys at the top level or inside an [indentGuide]
// table:
//
//	[indentGuide]
//	color = "#5c6370"
//	style = "dotted"
//	policy = "structural"
//	debounce = "50ms"
//
// A JSON file uses editor-style flat keys ("indentGuide.color") or a nested
// "indentGuide" object.
//
// The Watcher reloads the file when it changes on disk.
package config
