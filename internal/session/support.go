package session

import "strings"

const (
	defaultSupportGreeting = "Hello! I am the DocuMind Support Assistant. How can I help you today?"
	defaultSupportFallback = "Thanks for reaching out. A support specialist will follow up by email shortly."
)

// SupportScript drives the canned support conversation.
type SupportScript struct {
	Greeting string
	Replies  []SupportReply
	Fallback string
}

// SupportReply is returned when a message contains any of its keywords.
type SupportReply struct {
	Keywords []string
	Reply    string
}

func (s SupportScript) greeting() string {
	if s.Greeting == "" {
		return defaultSupportGreeting
	}
	return s.Greeting
}

// Answer picks the first reply whose keyword occurs in text.
func (s SupportScript) Answer(text string) string {
	lower := strings.ToLower(text)
	for _, reply := range s.Replies {
		for _, keyword := range reply.Keywords {
			if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
				return reply.Reply
			}
		}
	}
	if s.Fallback == "" {
		return defaultSupportFallback
	}
	return s.Fallback
}
