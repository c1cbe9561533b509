package event

import "strings"

// Topic is a dot-separated event name or subscription pattern.
type Topic string

// Topics published by hosts.
const (
	TopicSelectionChanged Topic = "editor.selection.changed"
	TopicActiveChanged    Topic = "editor.active.changed"
	TopicDocumentChanged  Topic = "document.text.changed"
	TopicConfigChanged    Topic = "config.changed"
)

// Segments splits the topic on dots.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), ".")
}

// IsPattern reports whether the topic contains wildcards.
func (t Topic) IsPattern() bool {
	return strings.Contains(string(t), "*")
}

// Valid reports whether the topic is non-empty and has no empty segments.
func (t Topic) Valid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether pattern t matches the concrete topic.
func (t Topic) Matches(topic Topic) bool {
	return matchSegments(t.Segments(), topic.Segments())
}

func matchSegments(pattern, topic []string) bool {
	for i, seg := range pattern {
		switch seg {
		case "**":
			if i == len(pattern)-1 {
				return true
			}
			for j := i; j <= len(topic); j++ {
				if matchSegments(pattern[i+1:], topic[j:]) {
					return true
				}
			}
			return false
		case "*":
			if i >= len(topic) {
				return false
			}
		default:
			if i >= len(topic) || topic[i] != seg {
				return false
			}
		}
	}
	return len(pattern) == len(topic)
}
