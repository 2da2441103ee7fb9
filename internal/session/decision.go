package session

import (
	"context"
	"errors"
)

//go:generate go tool stringer -type=Decision -trimprefix=Decision -output=decision_string.go

// Decision is the answer to a Prompt.
type Decision int

const (
	_ Decision = iota // zero value is an invalid Decision

	DecisionAccept         // record the pairing and advance both cursors
	DecisionSkipReference  // give up on the reference entry
	DecisionSkipObfuscated // try the next obfuscated entry against the same reference
)

// ErrAborted is returned by a Decider when the operator ends the run.
var ErrAborted = errors.New("session aborted")

// ErrScriptExhausted is returned by Scripted once every decision was used.
var ErrScriptExhausted = errors.New("no scripted decision left")

// Decider answers prompts. Decide blocks until a decision is available.
type Decider interface {
	Decide(ctx context.Context, prompt Prompt) (Decision, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, prompt Prompt) (Decision, error)

// Decide calls f.
func (f DeciderFunc) Decide(ctx context.Context, prompt Prompt) (Decision, error) {
	return f(ctx, prompt)
}

// Scripted replays a fixed list of decisions.
type Scripted struct {
	decisions []Decision
	next      int
	prompts   []Prompt
}

// NewScripted creates a Decider answering with decisions, in order.
func NewScripted(decisions ...Decision) *Scripted {
	return &Scripted{decisions: decisions}
}

// Decide returns the next scripted decision.
func (s *Scripted) Decide(_ context.Context, prompt Prompt) (Decision, error) {
	s.prompts = append(s.prompts, prompt)

	if s.next >= len(s.decisions) {
		return 0, ErrScriptExhausted
	}

	d := s.decisions[s.next]
	s.next++

	return d, nil
}

// Prompts returns every prompt seen so far.
func (s *Scripted) Prompts() []Prompt {
	return s.prompts
}
