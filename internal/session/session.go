package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"proto-matcher/internal/match"
	"proto-matcher/internal/signature"
)

var (
	// ErrNoPendingDecision is returned by Advance when nothing waits for a decision.
	ErrNoPendingDecision = errors.New("no pending decision")
	// ErrFinished is returned by Advance once the session is done.
	ErrFinished = errors.New("session finished")
	// ErrInvalidDecision is returned by Advance for an unknown Decision value.
	ErrInvalidDecision = errors.New("invalid decision")
	// ErrNotStarted is returned by Advance before Start was called.
	ErrNotStarted = errors.New("session not started")
)

// Config holds everything a Session reads. It is never modified.
type Config struct {
	Reference  *signature.Registry
	Obfuscated *signature.Registry

	// Declaration orders of the top-level types on each side.
	ReferenceOrder  []string
	ObfuscatedOrder []string

	// Exact maps reference names to their cross-set exact-unique obfuscated match.
	// Its obfuscated names are never offered to another reference.
	Exact map[string]string

	// Threshold and Limit bound the alternatives attached to a prompt.
	Threshold float64
	Limit     int

	// Seed holds matches of a previous run. Seeded reference names are accepted
	// again as they come up and their obfuscated names are never offered.
	Seed map[string]string

	Logger logrus.FieldLogger
}

// Prompt is a pairing that needs a decision.
type Prompt struct {
	Reference       string
	ReferenceIndex  int
	Obfuscated      string
	ObfuscatedIndex int

	ReferenceSignature  *signature.Signature
	ObfuscatedSignature *signature.Signature

	Comparison match.Comparison
	// Alternatives ranks the obfuscated candidates for the reference entry.
	Alternatives match.CandidateList
}

// State is a snapshot of a Session.
type State struct {
	ReferenceCursor  int
	ObfuscatedCursor int
	// Pending is set while the session waits for a decision.
	Pending *Prompt
	Done    bool
	Result  Result
}

// Session walks the reference and obfuscated orders side by side.
// A Session is not safe for concurrent use.
type Session struct {
	cfg     Config
	log     logrus.FieldLogger
	claimed map[string]bool

	ref, obs int
	pending  *Prompt
	started  bool
	done     bool
	result   Result
}

// New creates a Session with a fresh run ID.
func New(cfg Config) *Session {
	runID := uuid.New().String()

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// Seeded and exact-unique obfuscated names are taken before the walk starts.
	claimed := make(map[string]bool, len(cfg.Seed)+len(cfg.Exact))
	for _, obs := range cfg.Seed {
		claimed[obs] = true
	}

	for _, obs := range cfg.Exact {
		claimed[obs] = true
	}

	return &Session{
		cfg:     cfg,
		log:     logger.WithField("run_id", runID),
		claimed: claimed,
		result:  Result{RunID: runID},
	}
}

// RunID identifies this session in logs and results.
func (s *Session) RunID() string {
	return s.result.RunID
}

// Start moves to the first pairing that needs a decision, or to the end.
// Calling Start again returns the current state.
func (s *Session) Start() State {
	if !s.started {
		s.started = true
		s.log.WithFields(logrus.Fields{
			"reference":  len(s.cfg.ReferenceOrder),
			"obfuscated": len(s.cfg.ObfuscatedOrder),
			"seeded":     len(s.cfg.Seed),
		}).Info("Sequential matching started")
		s.step()
	}

	return s.State()
}

// Advance applies d to the pending pairing and moves to the next one.
func (s *Session) Advance(d Decision) (State, error) {
	switch {
	case !s.started:
		return s.State(), ErrNotStarted
	case s.done:
		return s.State(), ErrFinished
	case s.pending == nil:
		return s.State(), ErrNoPendingDecision
	}

	p := s.pending

	switch d {
	case DecisionAccept:
		s.accept(p.Reference, p.Obfuscated, SourceAccepted)
		s.ref++
		s.obs++
	case DecisionSkipReference:
		s.skipReference(p.Reference, "skipped by decision")
	case DecisionSkipObfuscated:
		s.log.WithField("obfuscated", p.Obfuscated).Debug("Obfuscated entry skipped")
		s.obs++
	default:
		return s.State(), fmt.Errorf("%w: %d", ErrInvalidDecision, d)
	}

	s.pending = nil
	s.step()

	return s.State(), nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	var pending *Prompt
	if s.pending != nil {
		p := *s.pending
		pending = &p
	}

	return State{
		ReferenceCursor:  s.ref,
		ObfuscatedCursor: s.obs,
		Pending:          pending,
		Done:             s.done,
		Result:           s.result.clone(),
	}
}

// Result returns the matches recorded so far.
func (s *Session) Result() Result {
	return s.result.clone()
}

// step advances through certain pairings until a decision is needed or a list runs out.
func (s *Session) step() {
	refOrder, obsOrder := s.cfg.ReferenceOrder, s.cfg.ObfuscatedOrder

	for {
		if s.obs >= len(obsOrder) || s.ref >= len(refOrder) {
			s.finish()
			return
		}

		ref := refOrder[s.ref]

		refSig, ok := s.cfg.Reference.Lookup(ref)
		if !ok {
			s.skipReference(ref, "no signature")
			continue
		}

		if obs, ok := s.cfg.Seed[ref]; ok {
			s.accept(ref, obs, SourceResumed)
			s.ref++

			continue
		}

		if obs, ok := s.cfg.Exact[ref]; ok {
			s.accept(ref, obs, SourceExact)
			s.ref++

			continue
		}

		obs := obsOrder[s.obs]

		obsSig, ok := s.cfg.Obfuscated.Lookup(obs)
		if !ok || s.claimed[obs] {
			s.obs++
			continue
		}

		cmp := match.Compare(refSig, obsSig)
		if cmp.Verdict == match.VerdictIdentical {
			s.accept(ref, obs, SourceIdentical)
			s.ref++
			s.obs++

			continue
		}

		s.pending = &Prompt{
			Reference:           ref,
			ReferenceIndex:      s.ref,
			Obfuscated:          obs,
			ObfuscatedIndex:     s.obs,
			ReferenceSignature:  refSig,
			ObfuscatedSignature: obsSig,
			Comparison:          cmp,
			Alternatives: match.SelectMatches(
				refSig, s.cfg.Obfuscated, obsOrder, s.cfg.Threshold, s.cfg.Limit,
			),
		}

		return
	}
}

func (s *Session) accept(ref, obs string, source Source) {
	s.result.Matches = append(s.result.Matches, Match{Reference: ref, Obfuscated: obs, Source: source})

	s.log.WithFields(logrus.Fields{
		"reference":  ref,
		"obfuscated": obs,
		"source":     source,
	}).Debug("Match recorded")
}

func (s *Session) skipReference(ref, reason string) {
	s.result.SkippedReferences = append(s.result.SkippedReferences, ref)
	s.ref++

	s.log.WithFields(logrus.Fields{"reference": ref, "reason": reason}).Debug("Reference entry skipped")
}

func (s *Session) finish() {
	s.done = true

	s.log.WithFields(logrus.Fields{
		"matches": len(s.result.Matches),
		"skipped": len(s.result.SkippedReferences),
	}).Info("Sequential matching finished")
}

// Run drives s with decider until it is done. On a decider error or
// cancellation the partial result is returned along with the error.
func Run(ctx context.Context, s *Session, decider Decider) (Result, error) {
	state := s.Start()

	for !state.Done {
		if err := ctx.Err(); err != nil {
			return s.Result(), err
		}

		prompt := *state.Pending

		d, err := decider.Decide(ctx, prompt)
		if err != nil {
			s.log.WithError(err).Warn("Sequential matching interrupted")
			return s.Result(), fmt.Errorf("decision for %s against %s: %w", prompt.Reference, prompt.Obfuscated, err)
		}

		state, err = s.Advance(d)
		if err != nil {
			return s.Result(), err
		}
	}

	return state.Result, nil
}
