package game

import (
	"context"
	"math/rand"

	"answerparty/internal/storage"
)

// ImportQuestions bulk-creates questions from raw texts, skipping blanks.
func (o *Orchestrator) ImportQuestions(ctx context.Context, texts []string) (int, error) {
	kept := texts[:0:0]
	for _, t := range texts {
		if t != "" {
			kept = append(kept, t)
		}
	}
	n, err := o.store.ImportQuestions(ctx, kept)
	if err != nil {
		return 0, storeErr(err, "import questions")
	}
	o.logger.Info("questions imported", "count", n)
	return n, nil
}

// RandomQuestion returns a random question from the bank, or a stand-in when
// the bank is empty so clients always have something to show.
func (o *Orchestrator) RandomQuestion(ctx context.Context) (storage.Question, error) {
	questions, err := o.store.ListQuestions(ctx)
	if err != nil {
		return storage.Question{}, storeErr(err, "questions")
	}
	if len(questions) == 0 {
		return storage.Question{Text: "Default question for testing"}, nil
	}
	return questions[rand.Intn(len(questions))], nil
}
