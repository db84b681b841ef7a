// Package chat drives one conversational turn through the full memory
// cycle: recall relevant memories and documents, infer a reply, then
// record the exchange back into the episodic store.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/usecase/retrieval"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultContextMemories is how many of the most relevant episodic
	// records are injected into each turn's context.
	DefaultContextMemories = 5

	// interactionConfidence is the confidence assigned to records
	// produced by a chat exchange. First-hand interactions are trusted
	// but not absolute.
	interactionConfidence = 0.9
)

// Session manages an interactive conversation. It is not safe for
// concurrent use; each REPL owns one session.
type Session struct {
	memory    *memory.UseCase
	retrieval *retrieval.UseCase
	gateway   adapter.Gateway

	contextMemories int
	transcript      []string
}

// NewInput contains parameters for creating a chat session
type NewInput struct {
	Memory    *memory.UseCase
	Retrieval *retrieval.UseCase
	Gateway   adapter.Gateway

	// ContextMemories overrides DefaultContextMemories when positive
	ContextMemories int
}

func New(input NewInput) (*Session, error) {
	if input.Memory == nil || input.Retrieval == nil || input.Gateway == nil {
		return nil, goerr.New("chat session requires memory, retrieval and gateway")
	}

	n := input.ContextMemories
	if n <= 0 {
		n = DefaultContextMemories
	}

	return &Session{
		memory:          input.Memory,
		retrieval:       input.Retrieval,
		gateway:         input.Gateway,
		contextMemories: n,
	}, nil
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text         string
	UsedMemories []model.MemoryID
	Documents    []*model.RetrievedDocument

	// Hint is set when retrieval was degraded for this turn
	Hint string
}

// Send runs one turn: assemble context, infer, then write the exchange
// back as an interaction record and mark the injected memories as used.
func (s *Session) Send(ctx context.Context, message string) (*Reply, error) {
	logger := logging.From(ctx)
	reply := &Reply{}

	blocks, err := s.buildContext(ctx, message, reply)
	if err != nil {
		return nil, err
	}

	text, err := s.gateway.Infer(ctx, message, blocks)
	if err != nil {
		logger.Error("inference failed", "error", err)
		return nil, goerr.Wrap(adapter.ErrGatewayUnavailable,
			"could not reach the inference backend; check network access and credentials, then retry")
	}
	reply.Text = text

	s.transcript = append(s.transcript,
		"User: "+message,
		"Assistant: "+text)

	// The exchange itself becomes an episodic record. Memory failures
	// here lose durability, so they fail the turn.
	exchange := fmt.Sprintf("User said: %q. I replied: %q.", message, text)
	if _, err := s.memory.Append(ctx, exchange, model.SourceInteraction,
		interactionConfidence, nil); err != nil {
		return nil, goerr.Wrap(err, "failed to record exchange")
	}

	if len(reply.UsedMemories) > 0 {
		if _, err := s.memory.IncrementAccess(ctx, reply.UsedMemories); err != nil {
			logger.Warn("failed to mark memories as used", "error", err)
		}
	}

	return reply, nil
}

// buildContext gathers the self-model, the most relevant memories, the
// retrieved documents and the running transcript into context blocks.
// Retrieval degradation is tolerated; memory load is not.
func (s *Session) buildContext(ctx context.Context, message string, reply *Reply) ([]string, error) {
	var blocks []string

	self, _, err := s.memory.SelfModel(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load self-model")
	}
	blocks = append(blocks, formatSelfModel(self))

	decayed, err := s.memory.LoadWithDecay(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load memories")
	}
	ranked := memory.SortByRelevance(decayed)
	if len(ranked) > s.contextMemories {
		ranked = ranked[:s.contextMemories]
	}
	if len(ranked) > 0 {
		blocks = append(blocks, formatMemories(ranked))
		for _, rec := range ranked {
			reply.UsedMemories = append(reply.UsedMemories, rec.ID)
		}
	}

	result, err := s.retrieval.Retrieve(ctx, message, retrieval.RetrieveOptions{})
	if err != nil {
		return nil, goerr.Wrap(err, "document retrieval failed")
	}
	if result.Status == retrieval.StatusDegraded {
		reply.Hint = result.Hint
	}
	if len(result.Documents) > 0 {
		reply.Documents = result.Documents
		blocks = append(blocks, formatDocuments(result.Documents))
	}

	if len(s.transcript) > 0 {
		blocks = append(blocks, "Conversation so far:\n"+strings.Join(s.transcript, "\n"))
	}

	return blocks, nil
}

func formatSelfModel(self *model.SelfModel) string {
	var b strings.Builder
	b.WriteString("Identity: " + self.Identity)
	if len(self.ActiveDrives) > 0 {
		b.WriteString("\nActive drives: " + strings.Join(self.ActiveDrives, "; "))
	}
	if len(self.Constraints) > 0 {
		b.WriteString("\nConstraints: " + strings.Join(self.Constraints, "; "))
	}
	return b.String()
}

func formatMemories(records []*model.DecayedRecord) string {
	var b strings.Builder
	b.WriteString("Relevant memories:")
	for _, rec := range records {
		fmt.Fprintf(&b, "\n- [%s, weight %.2f] %s", rec.Source, rec.RelevanceWeight, rec.Content)
	}
	return b.String()
}

func formatDocuments(docs []*model.RetrievedDocument) string {
	var b strings.Builder
	b.WriteString("Related documents:")
	for _, doc := range docs {
		fmt.Fprintf(&b, "\n- %s (similarity %.2f)", doc.Filename, doc.Similarity)
	}
	return b.String()
}
