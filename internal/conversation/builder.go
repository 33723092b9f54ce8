// Package conversation turns durable message history into the turn sequence
// a specific provider will accept. The durable history always preserves true
// chronological order; providers with stricter structural rules get a
// normalised view, never a mutated store.
package conversation

import (
	"strings"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// Build produces the provider-ready message list from durable history plus a
// new user turn. It is a pure function: history is never mutated.
//
// Normalisation, in order:
//  1. the most recent system turn (if any) is hoisted out of the sequence and
//     merged with systemPrompt as the standalone instruction;
//  2. leading non-user turns are stripped;
//  3. consecutive same-role turns are collapsed (keep-last for user,
//     keep-first for assistant);
//  4. a trailing user turn is dropped, since the new user text is appended
//     as the final turn and two consecutive user turns would violate
//     alternation.
//
// Steps 2-4 run for every provider: strict user-first alternation is the one
// shape all of them accept, so the output alternates regardless of what the
// caller's history looked like.
//
// window bounds the history to its most recent entries before normalisation;
// window <= 0 means unbounded.
func Build(history []schema.Message, userText, systemPrompt string, c schema.Constraints, window int) schema.Messages {
	system, turns := partition(history)

	if systemPrompt != "" {
		if system != "" {
			system = systemPrompt + "\n\n" + system
		} else {
			system = systemPrompt
		}
	}

	if window > 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}

	turns = stripLeadingNonUser(turns)
	turns = collapseConsecutive(turns)
	if len(turns) > 0 && turns[len(turns)-1].Role == "user" {
		turns = turns[:len(turns)-1]
	}

	out := schema.NewMessages()
	newUser := userText
	if system != "" {
		if c.InlineSystem {
			// No standalone system slot: degrade by prepending, never drop.
			if len(turns) > 0 {
				first := turns[0]
				first.Content = system + "\n\n" + first.Text()
				turns = append([]schema.Message{first}, turns[1:]...)
			} else {
				newUser = system + "\n\n" + userText
			}
		} else {
			out.AddSystem(system)
		}
	}
	for _, m := range turns {
		out.Messages = append(out.Messages, m)
	}
	out.AddUser(newUser)
	return out
}

// partition splits history into the hoisted system instruction (most recent
// system turn wins) and the user/assistant turn sequence. Roles other than
// user/assistant/system are provider-specific artifacts and are skipped.
func partition(history []schema.Message) (string, []schema.Message) {
	var system string
	turns := make([]schema.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case "system":
			if s := m.Text(); s != "" {
				system = s
			}
		case "user", "assistant":
			turns = append(turns, m)
		}
	}
	return system, turns
}

func stripLeadingNonUser(turns []schema.Message) []schema.Message {
	for i, m := range turns {
		if m.Role == "user" {
			return turns[i:]
		}
	}
	return nil
}

// collapseConsecutive merges runs of same-role turns into a single turn:
// for user runs the last message wins (the most recent intent), for
// assistant runs the first wins (the reply that was actually acted on).
func collapseConsecutive(turns []schema.Message) []schema.Message {
	if len(turns) == 0 {
		return turns
	}
	out := make([]schema.Message, 0, len(turns))
	i := 0
	for i < len(turns) {
		j := i
		for j+1 < len(turns) && turns[j+1].Role == turns[i].Role {
			j++
		}
		if turns[i].Role == "user" {
			out = append(out, turns[j])
		} else {
			out = append(out, turns[i])
		}
		i = j + 1
	}
	return out
}

// Alternates reports whether msgs (ignoring a leading system turn) strictly
// alternates user/assistant and ends with a user turn. Used by tests and
// debug assertions.
func Alternates(msgs schema.Messages) bool {
	turns := msgs.Messages
	if len(turns) > 0 && turns[0].Role == "system" {
		turns = turns[1:]
	}
	if len(turns) == 0 {
		return false
	}
	want := "user"
	if len(turns)%2 == 0 {
		want = "assistant"
	}
	for _, m := range turns {
		if m.Role != want {
			return false
		}
		if want == "user" {
			want = "assistant"
		} else {
			want = "user"
		}
	}
	return turns[len(turns)-1].Role == "user"
}

// Summary renders a compact role trace like "system,user,assistant,user".
func Summary(msgs schema.Messages) string {
	roles := make([]string, len(msgs.Messages))
	for i, m := range msgs.Messages {
		roles[i] = m.Role
	}
	return strings.Join(roles, ",")
}
