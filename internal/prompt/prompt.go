// Package prompt assembles retrieved chunks into a bounded context and
// builds the messages sent to the generation provider.
package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/hrdesk/internal/llm"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

const separator = "\n\n"

// Assemble joins chunk contents in rank order, separated by a blank line.
// When the result exceeds budget characters, chunks are dropped from the
// lowest-ranked end; the top chunk is always kept and truncated if it alone
// overflows. It returns the context and the chunks that went into it.
// A budget <= 0 disables the limit.
func Assemble(chunks []vectordb.Chunk, budget int) (string, []vectordb.Chunk) {
	if len(chunks) == 0 {
		return "", nil
	}

	kept := chunks
	for len(kept) > 1 && budget > 0 && joinedLen(kept) > budget {
		kept = kept[:len(kept)-1]
	}

	parts := make([]string, len(kept))
	for i, c := range kept {
		parts[i] = c.Content
	}
	text := strings.Join(parts, separator)

	if budget > 0 && utf8.RuneCountInString(text) > budget {
		text = truncate(text, budget)
	}
	return text, kept
}

func joinedLen(chunks []vectordb.Chunk) int {
	n := utf8.RuneCountInString(separator) * (len(chunks) - 1)
	for _, c := range chunks {
		n += utf8.RuneCountInString(c.Content)
	}
	return n
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Messages builds the system and user messages for one grounded question.
// Rendered together they read:
//
//	{system}
//
//	Contexte:
//	{context}
//
//	Question:
//	{question}
func Messages(system, context, question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: "Contexte:\n" + context + "\n\nQuestion:\n" + question},
	}
}

// Render returns the single-string form of messages, as logged at debug level.
func Render(messages []llm.Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, separator)
}
