// Package selectors recomputes dependent dashboard selectors when an upstream one changes
package selectors

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/ethpandaops/aerosense/pkg/plots"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/heimdalr/dag"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownSelector is returned when dispatching a selector that is not in the graph
	ErrUnknownSelector = errors.New("unknown selector")
	// ErrUnknownTab is returned for a navigation tab without configured controls
	ErrUnknownTab = errors.New("unknown tab")
)

// NodeSource lists the nodes of an installation
type NodeSource interface {
	Nodes(ctx context.Context, installation string) ([]string, error)
}

// Rule recomputes one derived selector from its upstream selectors
type Rule func(ctx context.Context, state *State) error

type edge struct {
	from, to Selector
}

var edges = []edge{ //nolint:gochecknoglobals // static selector wiring
	{Installation, Node},
	{TimeRange, CustomRange},
	{YAxis, GraphTitle},
	{NavTab, Controls},
}

// Graph is the selector dependency graph
type Graph struct {
	log   logrus.FieldLogger
	dag   *dag.DAG
	rules map[Selector]Rule
}

// NewGraph builds the selector graph with its edge rules
func NewGraph(log logrus.FieldLogger, nodes NodeSource, tabs map[string][]string) (*Graph, error) {
	g := &Graph{
		log: log.WithField("component", "selectors"),
		dag: dag.NewDAG(),
	}

	g.rules = map[Selector]Rule{
		Node:        NodeRule(nodes),
		CustomRange: CustomRangeRule,
		GraphTitle:  GraphTitleRule,
		Controls:    ControlsRule(tabs),
	}

	for _, id := range []Selector{Installation, Node, YAxis, GraphTitle, TimeRange, CustomRange, NavTab, Controls} {
		if err := g.dag.AddVertexByID(string(id), string(id)); err != nil {
			return nil, fmt.Errorf("failed to add selector %s: %w", id, err)
		}
	}

	for _, e := range edges {
		if err := g.dag.AddEdge(string(e.from), string(e.to)); err != nil {
			return nil, fmt.Errorf("invalid selector edge %s → %s: %w", e.from, e.to, err)
		}
	}

	return g, nil
}

// Dependents returns every selector recomputed when changed changes, in dependency order
func (g *Graph) Dependents(changed Selector) ([]Selector, error) {
	if _, err := g.dag.GetVertex(string(changed)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSelector, changed)
	}

	descendants, err := g.dag.GetDescendants(string(changed))
	if err != nil {
		return nil, fmt.Errorf("failed to get dependents of %s: %w", changed, err)
	}

	// Kahn's algorithm restricted to the descendant set
	pending := make(map[string]int, len(descendants))

	for id := range descendants {
		parents, err := g.dag.GetParents(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get parents of %s: %w", id, err)
		}

		pending[id] = 0

		for parent := range parents {
			if _, ok := descendants[parent]; ok {
				pending[id]++
			}
		}
	}

	order := make([]Selector, 0, len(descendants))

	for len(pending) > 0 {
		ready := make([]string, 0)

		for id, count := range pending {
			if count == 0 {
				ready = append(ready, id)
			}
		}

		sort.Strings(ready)

		for _, id := range ready {
			delete(pending, id)
			order = append(order, Selector(id))

			children, err := g.dag.GetChildren(id)
			if err != nil {
				return nil, fmt.Errorf("failed to get children of %s: %w", id, err)
			}

			for child := range children {
				if _, ok := pending[child]; ok {
					pending[child]--
				}
			}
		}
	}

	return order, nil
}

// Dispatch applies a change of one selector and recomputes its dependents
func (g *Graph) Dispatch(ctx context.Context, state State, changed Selector) (State, error) {
	dependents, err := g.Dependents(changed)
	if err != nil {
		observability.RecordSelectorDispatch(string(changed), "error")
		return state, err
	}

	for _, id := range dependents {
		rule, ok := g.rules[id]
		if !ok {
			continue
		}

		if err := rule(ctx, &state); err != nil {
			observability.RecordSelectorDispatch(string(changed), "error")
			return state, fmt.Errorf("%s: %w", id, err)
		}
	}

	observability.RecordSelectorDispatch(string(changed), "success")

	g.log.WithFields(logrus.Fields{
		"selector":   changed,
		"dependents": dependents,
	}).Debug("Dispatched selector change")

	return state, nil
}

// NodeRule refetches the nodes of the selected installation and selects the first
func NodeRule(nodes NodeSource) Rule {
	return func(ctx context.Context, state *State) error {
		state.NodeOptions = []string{}
		state.Node = nil

		if state.Installation == "" {
			return nil
		}

		options, err := nodes.Nodes(ctx, state.Installation)
		if err != nil {
			return err
		}

		if len(options) == 0 {
			return nil
		}

		state.NodeOptions = options
		first := options[0]
		state.Node = &first

		return nil
	}
}

// CustomRangeRule enables the date picker only for the custom range and clears its dates
func CustomRangeRule(_ context.Context, state *State) error {
	state.CustomRange = CustomRangeState{
		Enabled: state.TimeRange == timerange.Custom,
	}

	return nil
}

// GraphTitleRule titles the graph after the y-axis
func GraphTitleRule(_ context.Context, state *State) error {
	state.GraphTitle = plots.Label(state.YAxis)

	return nil
}

// ControlsRule shows the controls configured for the selected tab
func ControlsRule(tabs map[string][]string) Rule {
	return func(_ context.Context, state *State) error {
		controls, ok := tabs[state.NavTab]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTab, state.NavTab)
		}

		state.Controls = append([]string{}, controls...)

		return nil
	}
}
