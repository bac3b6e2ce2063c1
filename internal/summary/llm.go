package summary

import "context"

// Completer sends one system+user exchange to a chat-completion endpoint
// and returns the assistant's text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// UserMessageFunc turns transcript text into the user message. The
// default sends the text as is.
type UserMessageFunc func(text string) (string, error)

// LLMGenerator summarizes by prompting a Completer and parsing its reply.
type LLMGenerator struct {
	completer Completer
	system    string
	user      UserMessageFunc
}

func NewLLMGenerator(c Completer, systemPrompt string) *LLMGenerator {
	return &LLMGenerator{completer: c, system: systemPrompt}
}

// WithUserMessage replaces how the user message is built.
func (g *LLMGenerator) WithUserMessage(fn UserMessageFunc) *LLMGenerator {
	g.user = fn
	return g
}

func (g *LLMGenerator) Summarize(ctx context.Context, text string) (Summary, error) {
	user := text
	if g.user != nil {
		var err error
		if user, err = g.user(text); err != nil {
			return Summary{}, err
		}
	}
	raw, err := g.completer.Complete(ctx, g.system, user)
	if err != nil {
		return Summary{}, err
	}
	return Parse(raw), nil
}
