package ai

import "strings"

// ReplyClass is the outcome of inspecting one backend reply.
type ReplyClass int

const (
	ReplyNormal ReplyClass = iota
	ReplyRefusal
	ReplyMalformed
)

// refusalPatterns is the fixed set of boilerplate phrases treated as a
// generic safety refusal. Substring match, case-insensitive. Updating the
// set is a code change; unanticipated phrasings pass through as normal
// replies.
var refusalPatterns = []string{
	"i cannot create content",
	"i can't create content",
	"i cannot assist with that",
	"i can't assist with that",
	"i cannot help with that",
	"i can't help with that",
	"i'm sorry, but i cannot",
	"i am sorry, but i cannot",
	"as an ai, i cannot",
	"as an ai language model",
	"goes against my guidelines",
}

// ClassifyReply decides whether a reply is usable, a known refusal, or not a
// reply at all (empty text counts as malformed, same as a missing content
// field).
func ClassifyReply(reply string) ReplyClass {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return ReplyMalformed
	}
	lowered := strings.ToLower(trimmed)
	for _, pattern := range refusalPatterns {
		if strings.Contains(lowered, pattern) {
			return ReplyRefusal
		}
	}
	return ReplyNormal
}
