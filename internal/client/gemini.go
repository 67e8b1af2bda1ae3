package client

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"xiaozhou/internal/chat"
	"xiaozhou/internal/config"
	"xiaozhou/internal/logging"
	"xiaozhou/internal/persona"
)

// Pipeline turns a session's history plus a persona into one streamed
// Gemini request. It holds no message state between calls; everything it
// learns is reported through the event channel.
type Pipeline struct {
	defaultKey      string
	temperature     float32
	maxOutputTokens int32
	thinkingBudget  int32
}

// New creates a pipeline from application configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		defaultKey:      cfg.API.GeminiKey,
		temperature:     cfg.Model.Temperature,
		maxOutputTokens: cfg.Model.MaxOutputTokens,
		thinkingBudget:  cfg.Chat.ThinkingBudget,
	}
}

// fragmentSeq is the shape of the genai streaming iterator.
type fragmentSeq = iter.Seq2[*genai.GenerateContentResponse, error]

// StreamReply opens one streamed request and returns its event channel.
// Zero or more chunk/thinking/grounding events are followed by exactly one
// terminal event, then the channel closes. Faults never surface as Go
// errors here; they become the terminal error event. Cancelling ctx stops
// the stream and suppresses all further events.
func (p *Pipeline) StreamReply(ctx context.Context, history []chat.Message, pc persona.Config, enableSearch bool) <-chan Event {
	out := make(chan Event, 16)

	go func() {
		defer close(out)

		prior, prompt, err := splitHistory(history)
		if err != nil {
			fail(ctx, out, err.Error())
			return
		}

		key := p.credential(pc)
		if key == "" {
			fail(ctx, out, "API key required for persona "+pc.ID)
			return
		}

		cli, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  key,
		})
		if err != nil {
			logging.Error("failed to create Gemini client", "error", err)
			fail(ctx, out, err.Error())
			return
		}

		contents := append(prior, genai.NewContentFromText(prompt, genai.RoleUser))
		cfg := p.buildConfig(pc, enableSearch)

		logging.Debug("starting reply stream",
			"persona", pc.ID,
			"model", pc.ModelName,
			"search", enableSearch && pc.SupportsSearch,
			"prior_turns", len(prior))

		consume(ctx, cli.Models.GenerateContentStream(ctx, pc.ModelName, contents, cfg), out)
	}()

	return out
}

// consume drains one fragment sequence into pipeline events. Each fragment
// may carry text, thinking text, and citation metadata in any combination;
// grounding events report the fragment's own citations only.
func consume(ctx context.Context, seq fragmentSeq, out chan<- Event) {
	for resp, err := range seq {
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			logging.Warn("reply stream failed", "error", err)
			emit(ctx, out, Event{Type: EventError, Text: FormatUserError(err.Error())})
			return
		}
		if resp == nil || len(resp.Candidates) == 0 {
			continue
		}

		candidate := resp.Candidates[0]

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Text == "" {
					continue
				}
				ev := Event{Type: EventChunk, Text: part.Text}
				if part.Thought {
					ev.Type = EventThinking
				}
				if !emit(ctx, out, ev) {
					return
				}
			}
		}

		if sources := fragmentSources(candidate); len(sources) > 0 {
			if !emit(ctx, out, Event{Type: EventGrounding, Sources: sources}) {
				return
			}
		}
	}

	if ctx.Err() != nil {
		return
	}
	emit(ctx, out, Event{Type: EventComplete})
}

// fragmentSources extracts the web citations carried by one fragment.
func fragmentSources(candidate *genai.Candidate) []chat.GroundingSource {
	if candidate.GroundingMetadata == nil {
		return nil
	}

	var sources []chat.GroundingSource
	for _, gc := range candidate.GroundingMetadata.GroundingChunks {
		if gc == nil || gc.Web == nil || gc.Web.URI == "" || gc.Web.Title == "" {
			continue
		}
		sources = append(sources, chat.GroundingSource{
			URI:   gc.Web.URI,
			Title: gc.Web.Title,
		})
	}
	return sources
}

// emit sends an event unless the turn has been cancelled.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// fail emits the terminal error event for a raw fault message.
func fail(ctx context.Context, out chan<- Event, raw string) {
	emit(ctx, out, Event{Type: EventError, Text: FormatUserError(raw)})
}
