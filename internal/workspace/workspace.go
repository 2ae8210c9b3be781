// Package workspace owns the current question set. All changes go through a
// single mutex that is held only while the list itself is read or
// rewritten, never while waiting on the model.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/rubrix/internal/question"
)

// Generator produces new questions. *quizgen.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, req question.GenerationRequest) ([]question.Question, error)
	Regenerate(ctx context.Context, current question.Question, set []question.Question, instructions string) (question.Question, error)
}

// Persister stores the question set after every committed change.
type Persister interface {
	SaveQuestionSet(ctx context.Context, qs []question.Question) error
}

// Workspace is the mutable question set.
type Workspace struct {
	mu        sync.Mutex
	questions []question.Question

	gen     Generator
	persist Persister
	log     *zap.Logger
}

// New creates an empty Workspace. persist and log may be nil.
func New(gen Generator, persist Persister, log *zap.Logger) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workspace{gen: gen, persist: persist, log: log}
}

// Load replaces the set without persisting it. Used to restore a saved set.
func (w *Workspace) Load(qs []question.Question) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.questions = question.CloneAll(qs)
}

// List returns a copy of the current set.
func (w *Workspace) List() []question.Question {
	w.mu.Lock()
	defer w.mu.Unlock()
	return question.CloneAll(w.questions)
}

// Len returns the number of questions in the set.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.questions)
}

// Get returns a copy of the question at index.
func (w *Workspace) Get(index int) (question.Question, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIndex(index); err != nil {
		return question.Question{}, err
	}
	return w.questions[index].Clone(), nil
}

// Generate asks the generator for new questions and then appends them
// (renumbered to follow the highest existing id) or replaces the set. It
// returns the whole set. On any failure the set is unchanged.
func (w *Workspace) Generate(ctx context.Context, req question.GenerationRequest) ([]question.Question, error) {
	fresh, err := w.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := fresh
	if req.Append {
		question.Renumber(fresh, lastNumber(w.questions))
		next = append(question.CloneAll(w.questions), fresh...)
	}
	if err := w.commit(ctx, next); err != nil {
		return nil, err
	}

	w.log.Info("question set updated",
		zap.Bool("append", req.Append),
		zap.Int("added", len(fresh)),
		zap.Int("total", len(w.questions)))
	return question.CloneAll(w.questions), nil
}

// Regenerate replaces the question at index with a freshly generated one.
// If the question at index changed while the model was working, ErrStale
// is returned and nothing is replaced.
func (w *Workspace) Regenerate(ctx context.Context, index int, instructions string) (question.Question, error) {
	w.mu.Lock()
	if err := w.checkIndex(index); err != nil {
		w.mu.Unlock()
		return question.Question{}, err
	}
	set := question.CloneAll(w.questions)
	w.mu.Unlock()

	current := set[index]
	replacement, err := w.gen.Regenerate(ctx, current, set, instructions)
	if err != nil {
		return question.Question{}, err
	}
	if err := ctx.Err(); err != nil {
		return question.Question{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if index >= len(w.questions) || w.questions[index].ID != current.ID {
		return question.Question{}, fmt.Errorf("%w: question %s", ErrStale, current.ID)
	}
	next := question.CloneAll(w.questions)
	next[index] = replacement
	if err := w.commit(ctx, next); err != nil {
		return question.Question{}, err
	}

	w.log.Info("question regenerated", zap.Int("index", index), zap.String("id", current.ID))
	return replacement.Clone(), nil
}

// Update overwrites the question at index.
func (w *Workspace) Update(ctx context.Context, index int, q question.Question) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkIndex(index); err != nil {
		return err
	}
	next := question.CloneAll(w.questions)
	next[index] = q.Clone()
	return w.commit(ctx, next)
}

// Add appends a placeholder question with one correct and three wrong
// answers and returns it. Its id follows the highest id in the set.
func (w *Workspace) Add(ctx context.Context) (question.Question, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	q := Placeholder(lastNumber(w.questions) + 1)
	next := append(question.CloneAll(w.questions), q)
	if err := w.commit(ctx, next); err != nil {
		return question.Question{}, err
	}
	return q.Clone(), nil
}

// Delete removes the question at index. Remaining ids are not renumbered.
func (w *Workspace) Delete(ctx context.Context, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkIndex(index); err != nil {
		return err
	}
	next := make([]question.Question, 0, len(w.questions)-1)
	next = append(next, question.CloneAll(w.questions[:index])...)
	next = append(next, question.CloneAll(w.questions[index+1:])...)
	return w.commit(ctx, next)
}

// Set replaces the whole set.
func (w *Workspace) Set(ctx context.Context, qs []question.Question) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commit(ctx, question.CloneAll(qs))
}

// Placeholder returns the question inserted by Add, numbered n.
func Placeholder(n int) question.Question {
	return question.Question{
		ID:   question.ID(n),
		Text: "New question",
		Answers: []question.Answer{
			{Text: "Correct answer", IsCorrect: true},
			{Text: "Wrong answer"},
			{Text: "Wrong answer"},
			{Text: "Wrong answer"},
		},
	}
}

// commit persists next and then installs it. The caller holds mu.
func (w *Workspace) commit(ctx context.Context, next []question.Question) error {
	if w.persist != nil {
		if err := w.persist.SaveQuestionSet(ctx, next); err != nil {
			return fmt.Errorf("save question set: %w", err)
		}
	}
	w.questions = next
	return nil
}

// lastNumber returns the highest sequential id number in qs, and never
// less than len(qs), so new ids cannot collide after a Delete.
func lastNumber(qs []question.Question) int {
	last := len(qs)
	for _, q := range qs {
		if n, ok := question.Number(q.ID); ok && n > last {
			last = n
		}
	}
	return last
}

func (w *Workspace) checkIndex(index int) error {
	if index < 0 || index >= len(w.questions) {
		return &InvalidIndexError{Index: index, Len: len(w.questions)}
	}
	return nil
}
