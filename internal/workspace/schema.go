package workspace

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"proto-matcher/internal/analyze"
	"proto-matcher/internal/diagnostic"
	"proto-matcher/internal/match"
	"proto-matcher/internal/signature"
)

// ErrUnknownSide is returned when parsing an unrecognized side name.
var ErrUnknownSide = errors.New("unknown side")

// Side selects the reference or the obfuscated schema.
type Side int

const (
	SideReference Side = iota
	SideObfuscated
)

// String returns a human-readable side name.
func (s Side) String() string {
	if s == SideObfuscated {
		return "obfuscated"
	}

	return "reference"
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideObfuscated {
		return SideReference
	}

	return SideObfuscated
}

// ParseSide accepts "ref", "obs" and the full side names. Empty means reference.
func ParseSide(s string) (Side, error) {
	switch s {
	case "", "ref", "reference":
		return SideReference, nil
	case "obs", "obfuscated":
		return SideObfuscated, nil
	default:
		return 0, fmt.Errorf("%w: %q (want ref or obs)", ErrUnknownSide, s)
	}
}

// Schema is one signed descriptor set with its declaration order.
type Schema struct {
	Side        Side
	Graph       *analyze.DescriptorGraph
	Registry    *signature.Registry
	Order       []string
	Uniques     *match.Uniques
	Diagnostics diagnostic.Diagnostics
}

// loadSchema reads a descriptor set and its optional type list from disk.
func loadSchema(side Side, descriptorPath, listPath, packageName string) (*analyze.DescriptorGraph, []string, error) {
	graph, err := analyze.LoadGraph(descriptorPath, packageName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s descriptors: %w", side, err)
	}

	if listPath == "" {
		return graph, nil, nil
	}

	order, err := analyze.LoadTypeList(listPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s type list: %w", side, err)
	}

	return graph, order, nil
}

// buildSchema signs graph and analyzes its uniques. A nil order falls back to
// the declaration order of the descriptor set.
func buildSchema(
	side Side,
	graph *analyze.DescriptorGraph,
	order []string,
	opts signature.Options,
	log logrus.FieldLogger,
) (*Schema, error) {
	reg, diags, err := signature.Build(graph, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s schema: %w", side, err)
	}

	if order == nil {
		order = graph.TopLevel()
	}

	checkOrder(&diags, reg, order)

	schema := &Schema{
		Side:        side,
		Graph:       graph,
		Registry:    reg,
		Order:       order,
		Uniques:     match.AnalyzeUniques(reg),
		Diagnostics: diags,
	}

	logDiagnostics(log.WithField("side", side.String()), diags)

	return schema, nil
}

// checkOrder reports listed names without a signature and top-level names missing from the list.
func checkOrder(diags *diagnostic.Diagnostics, reg *signature.Registry, order []string) {
	listed := make(map[string]bool, len(order))

	for _, name := range order {
		listed[name] = true

		if !reg.Has(name) {
			diags.AddWarning(diagnostic.CodeMissingListType,
				"listed type has no signature and will be skipped", name, "")
		}
	}

	for _, name := range reg.TopLevelNames() {
		if !listed[name] {
			diags.AddInfo(diagnostic.CodeUnlistedType,
				"type is not in the declaration list and gets no position bonus", name, "")
		}
	}
}

func logDiagnostics(log logrus.FieldLogger, diags diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		log.WithFields(logrus.Fields{
			"code":  d.Code,
			"type":  d.TypeName,
			"field": d.FieldPath,
		}).Debug(d.Message)
	}

	for _, c := range diags.CountByCode() {
		log.WithField("code", c.Code).Infof("%d diagnostics", c.Count)
	}
}
