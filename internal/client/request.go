package client

import (
	"errors"

	"google.golang.org/genai"

	"xiaozhou/internal/chat"
	"xiaozhou/internal/persona"
)

// baseInstruction is the shared identity and safety framing. Every persona
// layers its own voice on top of it.
const baseInstruction = "You are a helpful AI assistant called '小周AI'. " +
	"You are helpful, harmless, and honest. If you use search, summarize the results clearly."

// ErrNoPrompt is returned when the history holds no eligible message to
// send. It is surfaced to the user the same way as a runtime fault, before
// any network call.
var ErrNoPrompt = errors.New("no message to send")

// splitHistory filters the conversation down to what goes upstream and
// separates the final prompt from the prior turns. Errored and empty
// messages are UI artifacts and are dropped; system-role messages are never
// forwarded as conversation turns. The last surviving message becomes the
// prompt and is excluded from the prior context.
func splitHistory(history []chat.Message) (prior []*genai.Content, prompt string, err error) {
	eligible := make([]chat.Message, 0, len(history))
	for _, m := range history {
		if m.Role == chat.RoleSystem || !m.Eligible() {
			continue
		}
		eligible = append(eligible, m)
	}

	if len(eligible) == 0 {
		return nil, "", ErrNoPrompt
	}

	last := eligible[len(eligible)-1]
	prompt = last.Text

	prior = make([]*genai.Content, 0, len(eligible)-1)
	for _, m := range eligible[:len(eligible)-1] {
		var role genai.Role = genai.RoleModel
		if m.Role == chat.RoleUser {
			role = genai.RoleUser
		}
		prior = append(prior, genai.NewContentFromText(m.Text, role))
	}
	return prior, prompt, nil
}

// buildConfig assembles the per-request generation config for a persona.
// The search tool is attached only when the user toggle AND the persona
// capability agree; search is never forced onto a persona that does not
// declare support.
func (p *Pipeline) buildConfig(pc persona.Config, enableSearch bool) *genai.GenerateContentConfig {
	instruction := baseInstruction
	if pc.SystemInstruction != "" {
		instruction += " " + pc.SystemInstruction
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       Ptr(p.temperature),
		MaxOutputTokens:   p.maxOutputTokens,
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}

	if enableSearch && pc.SupportsSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if pc.SupportsThinking && p.thinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  Ptr(p.thinkingBudget),
		}
	}

	return cfg
}

// credential selects the API key for a persona: its own key when present,
// otherwise the configured default. There is no embedded fallback key; an
// empty result fails the turn before any network call.
func (p *Pipeline) credential(pc persona.Config) string {
	if pc.UserAPIKey != "" {
		return pc.UserAPIKey
	}
	return p.defaultKey
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}
