package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Summary holds display counters for the memory stores.
type Summary struct {
	EpisodicCount     int     `json:"episodic_count"`
	SemanticCount     int     `json:"semantic_count"`
	DocumentCount     int     `json:"document_count"`
	ForgottenCount    int     `json:"forgotten_count"`
	AverageDecay      float64 `json:"average_decay"`
	AverageConfidence float64 `json:"average_confidence"`
	SelfModelVersion  string  `json:"self_model_version"`
}

// Summary computes store counts and average decay/confidence for
// display.
func (u *UseCase) Summary(ctx context.Context) (*Summary, error) {
	annotated, err := u.LoadWithDecay(ctx)
	if err != nil {
		return nil, err
	}

	facts, err := u.repo.ListFacts(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load semantic store")
	}

	forgotten, err := u.repo.ListForgotten(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load forgetting log")
	}

	docs, err := u.repo.ListDocuments(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load document store")
	}

	current, _, err := u.repo.GetSelfModel(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load self-model")
	}

	s := &Summary{
		EpisodicCount:    len(annotated),
		SemanticCount:    len(facts),
		DocumentCount:    len(docs),
		ForgottenCount:   len(forgotten),
		SelfModelVersion: current.Version,
	}

	if len(annotated) > 0 {
		var decaySum, confSum float64
		for _, rec := range annotated {
			decaySum += rec.Decay
			confSum += rec.Confidence
		}
		s.AverageDecay = decaySum / float64(len(annotated))
		s.AverageConfidence = confSum / float64(len(annotated))
	}

	return s, nil
}
