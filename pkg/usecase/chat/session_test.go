package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/engram/pkg/usecase/chat"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/usecase/retrieval"
	"github.com/m-mizutani/gt"
)

type mockGateway struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
	inferFunc func(ctx context.Context, prompt string, contextBlocks []string) (string, error)
}

func (m *mockGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return []float32{1, 0}, nil
}

func (m *mockGateway) Infer(ctx context.Context, prompt string, contextBlocks []string) (string, error) {
	if m.inferFunc != nil {
		return m.inferFunc(ctx, prompt, contextBlocks)
	}
	return "ok", nil
}

func newSession(t *testing.T, gateway adapter.Gateway) (*chat.Session, *memory.UseCase, repository.Repository) {
	t.Helper()
	repo := repository.New(t.TempDir())
	mem := memory.New(repo)
	ret := retrieval.New(repo, gateway)

	session := gt.R1(chat.New(chat.NewInput{
		Memory:    mem,
		Retrieval: ret,
		Gateway:   gateway,
	})).NoError(t)
	return session, mem, repo
}

func TestSendRecordsExchange(t *testing.T) {
	gateway := &mockGateway{
		inferFunc: func(ctx context.Context, prompt string, blocks []string) (string, error) {
			return "the capital is Lisbon", nil
		},
	}
	session, mem, _ := newSession(t, gateway)
	ctx := context.Background()

	reply, err := session.Send(ctx, "what is the capital of Portugal?")
	gt.NoError(t, err)
	gt.S(t, reply.Text).Contains("Lisbon")

	decayed := gt.R1(mem.LoadWithDecay(ctx)).NoError(t)
	gt.A(t, decayed).Length(1)
	gt.V(t, decayed[0].Source).Equal(model.SourceInteraction)
	gt.S(t, decayed[0].Content).Contains("Lisbon")
}

func TestSendInjectsRelevantMemoriesAndCountsUse(t *testing.T) {
	var seenBlocks []string
	gateway := &mockGateway{
		inferFunc: func(ctx context.Context, prompt string, blocks []string) (string, error) {
			seenBlocks = blocks
			return "noted", nil
		},
	}
	session, mem, _ := newSession(t, gateway)
	ctx := context.Background()

	rec := gt.R1(mem.Append(ctx, "the user prefers terse answers",
		model.SourceObservation, 0.8, nil)).NoError(t)

	reply, err := session.Send(ctx, "hello")
	gt.NoError(t, err)
	gt.A(t, reply.UsedMemories).Length(1)
	gt.V(t, reply.UsedMemories[0]).Equal(rec.ID)

	joined := strings.Join(seenBlocks, "\n")
	gt.S(t, joined).Contains("prefers terse answers")

	// Injection counts as use.
	decayed := gt.R1(mem.LoadWithDecay(ctx)).NoError(t)
	for _, d := range decayed {
		if d.ID == rec.ID {
			gt.V(t, d.AccessCount).Equal(1)
		}
	}
}

func TestSendLimitsContextMemories(t *testing.T) {
	gateway := &mockGateway{}
	repo := repository.New(t.TempDir())
	mem := memory.New(repo)
	session := gt.R1(chat.New(chat.NewInput{
		Memory:          mem,
		Retrieval:       retrieval.New(repo, gateway),
		Gateway:         gateway,
		ContextMemories: 2,
	})).NoError(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		gt.R1(mem.Append(ctx, "fact", model.SourceObservation, 0.5, nil)).NoError(t)
	}

	reply := gt.R1(session.Send(ctx, "hi")).NoError(t)
	gt.A(t, reply.UsedMemories).Length(2)
}

func TestSendToleratesDegradedRetrieval(t *testing.T) {
	gateway := &mockGateway{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("offline")
		},
	}
	session, _, _ := newSession(t, gateway)

	reply, err := session.Send(context.Background(), "hello")
	gt.NoError(t, err)
	gt.V(t, reply.Text).Equal("ok")
	gt.S(t, reply.Hint).Contains("embedding gateway unavailable")
}

func TestSendInferenceFailureHasRemedy(t *testing.T) {
	gateway := &mockGateway{
		inferFunc: func(ctx context.Context, prompt string, blocks []string) (string, error) {
			return "", errors.New("rpc error: unavailable")
		},
	}
	session, mem, _ := newSession(t, gateway)
	ctx := context.Background()

	_, err := session.Send(ctx, "hello")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, adapter.ErrGatewayUnavailable)).True()
	gt.S(t, err.Error()).Contains("check network access")

	// A failed turn must not leave a partial exchange behind.
	decayed := gt.R1(mem.LoadWithDecay(ctx)).NoError(t)
	gt.A(t, decayed).Length(0)
}

func TestSendCarriesTranscript(t *testing.T) {
	var lastBlocks []string
	gateway := &mockGateway{
		inferFunc: func(ctx context.Context, prompt string, blocks []string) (string, error) {
			lastBlocks = blocks
			return "reply to " + prompt, nil
		},
	}
	session, _, _ := newSession(t, gateway)
	ctx := context.Background()

	gt.R1(session.Send(ctx, "first question")).NoError(t)
	gt.R1(session.Send(ctx, "second question")).NoError(t)

	joined := strings.Join(lastBlocks, "\n")
	gt.S(t, joined).Contains("Conversation so far:")
	gt.S(t, joined).Contains("first question")
	gt.S(t, joined).Contains("reply to first question")
}
