package event

import (
	"github.com/dshills/indentguide/internal/config"
	"github.com/dshills/indentguide/internal/host"
)

// TopicProvider is implemented by events that know their topic.
type TopicProvider interface {
	EventTopic() Topic
}

// SelectionChanged fires when the primary selection of an editor moves.
type SelectionChanged struct {
	Editor    host.Editor
	Selection host.Selection
}

// EventTopic implements TopicProvider.
func (SelectionChanged) EventTopic() Topic { return TopicSelectionChanged }

// ActiveEditorChanged fires when focus moves to another editor. Editor is
// nil when no editor has focus.
type ActiveEditorChanged struct {
	Editor host.Editor
}

// EventTopic implements TopicProvider.
func (ActiveEditorChanged) EventTopic() Topic { return TopicActiveChanged }

// DocumentChanged fires after the text of a document changed. Reloaded is
// set when the whole text was replaced rather than edited at the cursor.
type DocumentChanged struct {
	Document host.Document
	Reloaded bool
}

// EventTopic implements TopicProvider.
func (DocumentChanged) EventTopic() Topic { return TopicDocumentChanged }

// ConfigChanged fires after settings were reloaded.
type ConfigChanged struct {
	Settings config.Settings
}

// EventTopic implements TopicProvider.
func (ConfigChanged) EventTopic() Topic { return TopicConfigChanged }
