package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"proto-matcher/internal/analyze"
	"proto-matcher/internal/common"
	"proto-matcher/internal/config"
	"proto-matcher/internal/mapping"
	"proto-matcher/internal/match"
	"proto-matcher/internal/session"
	"proto-matcher/internal/signature"
)

// Artifact base names. The extension follows the configured output format.
const (
	ExactMatchesArtifact     = "exact_matches"
	PerfectMappablesArtifact = "perfect_mappables"
	SequentialArtifact       = "seq_matches"
)

const (
	searchCacheSize = 256
	maxSuggestions  = 5
)

// ErrNotFound is returned when a name is declared on neither side.
var ErrNotFound = errors.New("type not found")

// NotFoundError carries the closest known names for a missing one.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such type as %s", e.Name)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SearchResult describes a type and its best counterparts on the other side.
// Results are cached and must not be modified.
type SearchResult struct {
	Name      string
	Side      Side
	Signature *signature.Signature

	// Exact is set when the type has a cross-set exact-unique match.
	Exact *match.Pair
	// Candidates holds the displayed ranked matches, Total how many passed the threshold.
	Candidates match.CandidateList
	Total      int
}

// Workspace owns both schemas and their cross matches.
type Workspace struct {
	cfg config.Config
	log logrus.FieldLogger

	ref, obs *Schema
	cross    match.CrossMatches
	byObs    map[string]match.Pair

	cache *lru.Cache[string, *SearchResult]
}

// Load reads both schemas as configured.
func Load(cfg config.Config, log logrus.FieldLogger) (*Workspace, error) {
	refGraph, refOrder, err := loadSchema(SideReference, cfg.RefDescriptorFile, cfg.RefProtoList, cfg.PackageName)
	if err != nil {
		return nil, err
	}

	obsGraph, obsOrder, err := loadSchema(SideObfuscated, cfg.ObsDescriptorFile, cfg.ObsProtoList, cfg.PackageName)
	if err != nil {
		return nil, err
	}

	return New(cfg, refGraph, refOrder, obsGraph, obsOrder, log)
}

// New signs two already loaded graphs. A nil order falls back to declaration order.
func New(
	cfg config.Config,
	refGraph *analyze.DescriptorGraph,
	refOrder []string,
	obsGraph *analyze.DescriptorGraph,
	obsOrder []string,
	log logrus.FieldLogger,
) (*Workspace, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	opts := cfg.SignatureOptions()

	ref, err := buildSchema(SideReference, refGraph, refOrder, opts, log)
	if err != nil {
		return nil, err
	}

	obs, err := buildSchema(SideObfuscated, obsGraph, obsOrder, opts, log)
	if err != nil {
		return nil, err
	}

	cache, err := lru.New[string, *SearchResult](searchCacheSize)
	if err != nil {
		return nil, err
	}

	cross := match.CrossMatch(ref.Uniques, obs.Uniques)

	byObs := make(map[string]match.Pair, len(cross.Exact))
	for _, p := range cross.Exact {
		byObs[p.Obfuscated] = p
	}

	log.WithFields(logrus.Fields{
		"reference":  ref.Registry.Len(),
		"obfuscated": obs.Registry.Len(),
		"exact":      len(cross.Exact),
		"perfect":    len(cross.Perfect),
	}).Info("Signatures loaded")

	return &Workspace{
		cfg:   cfg,
		log:   log,
		ref:   ref,
		obs:   obs,
		cross: cross,
		byObs: byObs,
		cache: cache,
	}, nil
}

// Config returns the configuration the workspace was built with.
func (w *Workspace) Config() config.Config {
	return w.cfg
}

// Schema returns one side.
func (w *Workspace) Schema(side Side) *Schema {
	if side == SideObfuscated {
		return w.obs
	}

	return w.ref
}

// CrossMatches returns the exact and perfectly mappable pairs.
func (w *Workspace) CrossMatches() match.CrossMatches {
	return w.cross
}

// Search looks name up on the reference side, then on the obfuscated side,
// and ranks the other side against it.
func (w *Workspace) Search(name string) (*SearchResult, error) {
	name = common.TrimProtoSuffix(strings.TrimSpace(name))

	if cached, ok := w.cache.Get(name); ok {
		return cached, nil
	}

	var (
		own   *Schema
		sig   *signature.Signature
		found bool
	)

	for _, schema := range []*Schema{w.ref, w.obs} {
		if sig, found = schema.Registry.Lookup(name); found {
			own = schema
			break
		}
	}

	if !found {
		return nil, &NotFoundError{Name: name, Suggestions: w.suggest(name)}
	}

	result := &SearchResult{Name: name, Side: own.Side, Signature: sig}

	if pair, ok := w.exactFor(own.Side, name); ok {
		result.Exact = &pair
	} else {
		other := w.Schema(own.Side.Other())
		ranked := match.RankCandidates(sig, other.Registry, other.Order, w.cfg.Threshold)

		result.Total = len(ranked)
		result.Candidates = ranked
		if w.cfg.MaxDisplayMatches > 0 {
			result.Candidates = ranked.Top(w.cfg.MaxDisplayMatches)
		}
	}

	w.cache.Add(name, result)

	return result, nil
}

func (w *Workspace) exactFor(side Side, name string) (match.Pair, bool) {
	if side == SideObfuscated {
		p, ok := w.byObs[name]
		return p, ok
	}

	return w.cross.Lookup(name)
}

func (w *Workspace) suggest(name string) []string {
	names := append(w.ref.Registry.TopLevelNames(), w.obs.Registry.TopLevelNames()...)
	return match.SuggestNames(name, names, maxSuggestions)
}

// UniqueEntry is a type owning a signature no other type on its side has.
type UniqueEntry struct {
	Name      string
	Signature *signature.Signature
}

// Uniques lists the exact-unique types of one side, in declaration order.
func (w *Workspace) Uniques(side Side) []UniqueEntry {
	u := w.Schema(side).Uniques

	names := u.Names()
	out := make([]UniqueEntry, len(names))

	for i, name := range names {
		sig, _ := u.Signature(name)
		out[i] = UniqueEntry{Name: name, Signature: sig}
	}

	return out
}

// WriteExactMatches persists the exact pairs and returns the file path.
func (w *Workspace) WriteExactMatches() (string, error) {
	return w.writeArtifact(ExactMatchesArtifact, mapping.FromMap(w.cross.ExactMap()))
}

// WritePerfectMappables persists the perfectly mappable pairs and returns the file path.
func (w *Workspace) WritePerfectMappables() (string, error) {
	return w.writeArtifact(PerfectMappablesArtifact, mapping.FromMap(w.cross.PerfectMap()))
}

// ArtifactPath returns where the named artifact lives, e.g. "output/seq_matches.yaml".
func (w *Workspace) ArtifactPath(artifact string) string {
	return filepath.Join(w.cfg.OutputDir, artifact+"."+w.cfg.ArtifactFormat().String())
}

func (w *Workspace) writeArtifact(artifact string, m *mapping.Mapping) (string, error) {
	path := w.ArtifactPath(artifact)
	if err := mapping.WriteFile(m, path); err != nil {
		return "", err
	}

	w.log.WithFields(logrus.Fields{"path": path, "entries": m.Len()}).Info("Mapping written")

	return path, nil
}

// NewSession prepares a sequential matching session. With resume set, the
// matches of the previous run are loaded from the output directory when present.
func (w *Workspace) NewSession(resume bool) (*session.Session, error) {
	cfg := session.Config{
		Reference:       w.ref.Registry,
		Obfuscated:      w.obs.Registry,
		ReferenceOrder:  w.ref.Order,
		ObfuscatedOrder: w.obs.Order,
		Exact:           w.cross.ExactMap(),
		Threshold:       w.cfg.Threshold,
		Limit:           w.cfg.MaxDisplayMatches,
		Logger:          w.log,
	}

	if resume {
		path := w.ArtifactPath(SequentialArtifact)

		seed, err := mapping.LoadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			w.log.WithField("path", path).Warn("Nothing to resume, starting over")
		case err != nil:
			return nil, err
		default:
			cfg.Seed = seed.Map()
		}
	}

	return session.New(cfg), nil
}

// SequentialMatch runs a session to the end and persists its result. A run
// cut short by the decider is persisted too, and its error returned.
func (w *Workspace) SequentialMatch(ctx context.Context, decider session.Decider, resume bool) (session.Result, string, error) {
	s, err := w.NewSession(resume)
	if err != nil {
		return session.Result{}, "", err
	}

	result, runErr := session.Run(ctx, s, decider)

	m := mapping.New()
	for _, mt := range result.Matches {
		m.Set(mt.Reference, mt.Obfuscated)
	}

	path, err := w.writeArtifact(SequentialArtifact, m)
	if err != nil {
		return result, "", errors.Join(runErr, err)
	}

	return result, path, runErr
}
