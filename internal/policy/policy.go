// Package policy decides when indent guides must be recomputed.
//
// Three policies are available. They trade precision for work:
//
//   - always recomputes on every event.
//   - structural ignores cursor movement and recomputes after a text change
//     only when the change can have touched indentation: the selection is
//     non-empty, or the cursor sits inside or at the end of its line's
//     indentation. Edits after the indentation cannot move guides.
//   - fingerprint recomputes only when the (path, version, tab size) of the
//     editor's document differs from the last computation, absorbing
//     duplicate events from several listeners.
//
// Configuration changes always recompute.
package policy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/indentguide/internal/host"
)

// Policy names.
const (
	NameAlways      = "always"
	NameStructural  = "structural"
	NameFingerprint = "fingerprint"
)

// ErrUnknownPolicy is returned by New for unrecognised names.
var ErrUnknownPolicy = errors.New("unknown policy")

// Trigger is the kind of host event being considered.
type Trigger int

const (
	TriggerSelection Trigger = iota
	TriggerActivation
	TriggerTextChange
	TriggerConfiguration

	// TriggerReload is a text change that replaced the whole document, such
	// as a reload from disk. It says nothing about where the cursor edited.
	TriggerReload
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerSelection:
		return "selection"
	case TriggerActivation:
		return "activation"
	case TriggerTextChange:
		return "text-change"
	case TriggerConfiguration:
		return "configuration"
	case TriggerReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Event is a host event reduced to what policies look at.
type Event struct {
	Trigger Trigger

	// Editor is the editor the event applies to; nil when none is active.
	Editor host.Editor
}

// Policy decides whether an event warrants recomputation.
type Policy interface {
	Name() string
	ShouldUpdate(ev Event) bool
}

var constructors = map[string]func() Policy{
	NameAlways:      func() Policy { return Always{} },
	NameStructural:  func() Policy { return Structural{} },
	NameFingerprint: func() Policy { return NewFingerprint() },
}

// New returns the policy called name.
func New(name string) (Policy, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return ctor(), nil
}

// Known reports whether name is a policy name.
func Known(name string) bool {
	_, ok := constructors[name]
	return ok
}

// Names returns the policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Always recomputes on every event that has an editor.
type Always struct{}

// Name implements Policy.
func (Always) Name() string { return NameAlways }

// ShouldUpdate implements Policy.
func (Always) ShouldUpdate(ev Event) bool {
	return ev.Trigger == TriggerConfiguration || ev.Editor != nil
}

// Structural recomputes only for events that can change guide positions.
type Structural struct{}

// Name implements Policy.
func (Structural) Name() string { return NameStructural }

// ShouldUpdate implements Policy.
func (Structural) ShouldUpdate(ev Event) bool {
	switch ev.Trigger {
	case TriggerConfiguration:
		return true
	case TriggerActivation, TriggerReload:
		return ev.Editor != nil
	case TriggerTextChange:
		return ev.Editor != nil && TouchesIndentation(ev.Editor)
	default:
		return false
	}
}

// TouchesIndentation reports whether an edit at the editor's selection can
// change indentation: the selection is non-empty or the cursor column is
// within the indentation of the cursor line.
func TouchesIndentation(e host.Editor) bool {
	sel := e.Selection()
	if !sel.IsEmpty() {
		return true
	}

	doc := e.Document()
	if doc == nil {
		return false
	}
	cursor := sel.Active
	if cursor.Line < 0 || cursor.Line >= doc.LineCount() {
		return true
	}
	return cursor.Character <= doc.LineAt(cursor.Line).IndentWidth()
}
