package event

import "strings"

// Topic is a hierarchical event type in dot notation, such as
// "tokens.reparsed".
type Topic string

// Wildcards usable in subscription patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"
	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"
)

// Topics emitted by the editing engine.
const (
	TopicDocumentChanged     Topic = "document.changed"
	TopicDocumentLoaded      Topic = "document.loaded"
	TopicTokensReparsed      Topic = "tokens.reparsed"
	TopicTokensDegraded      Topic = "tokens.degraded"
	TopicBackgroundStarted   Topic = "background.started"
	TopicBackgroundMerged    Topic = "background.merged"
	TopicBackgroundCancelled Topic = "background.cancelled"
	TopicBackgroundDiscarded Topic = "background.discarded"
	TopicModesResolved       Topic = "modes.resolved"
	TopicCommandFailed       Topic = "command.failed"
)

// Segments returns the topic split at dots.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), ".")
}

// IsValid reports whether t is non-empty with no empty segments.
func (t Topic) IsValid() bool {
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

// Matches reports whether t matches pattern, which may contain "*" for
// one segment and "**" for any number of segments.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	ti := 0
	for pi := 0; pi < len(pattern); pi++ {
		switch pattern[pi] {
		case WildcardMulti:
			for ; ti <= len(topic); ti++ {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
			}
			return false
		case WildcardSingle:
			if ti >= len(topic) {
				return false
			}
		default:
			if ti >= len(topic) || topic[ti] != pattern[pi] {
				return false
			}
		}
		ti++
	}
	return ti == len(topic)
}
