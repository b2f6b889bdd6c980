package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ha1tch/nodegraph/pkg/cliopts"
	"github.com/ha1tch/nodegraph/pkg/config"
	"github.com/ha1tch/nodegraph/pkg/graph"
)

// inputs are the flags shared by every drawing command.
type inputs struct {
	opts   *cliopts.Opts
	nodes  *[]string
	edges  *[]string
	config *string
	width  *int
	height *int
}

func declareInputs(o *cliopts.Opts) (*inputs, error) {
	in := &inputs{opts: o}
	in.nodes = o.StringArray("NODEGRAPH_NODES", "node", "n", "node as LABEL=X,Y (repeatable)")
	in.edges = o.StringArray("NODEGRAPH_EDGES", "edge", "e", "edge as FROM:TO (repeatable)")
	in.config = o.String("NODEGRAPH_CONFIG", "config", "c", config.Path(), "style file")

	var err error
	if in.width, err = o.Int("NODEGRAPH_WIDTH", "width", "W", 0, "canvas width (default from style)"); err != nil {
		return nil, err
	}
	if in.height, err = o.Int("NODEGRAPH_HEIGHT", "height", "H", 0, "canvas height (default from style)"); err != nil {
		return nil, err
	}
	return in, nil
}

// style loads the style file and applies size overrides.
func (in *inputs) style() (config.File, graph.Options, error) {
	cfg, err := config.Load(*in.config)
	if err != nil {
		return cfg, graph.Options{}, err
	}
	if *in.width > 0 {
		cfg.Canvas.Width = *in.width
	}
	if *in.height > 0 {
		cfg.Canvas.Height = *in.height
	}
	if err := cfg.Validate(); err != nil {
		return cfg, graph.Options{}, err
	}
	opts, err := cfg.Options()
	return cfg, opts, err
}

// diagram builds the diagram named by the node and edge flags.
func (in *inputs) diagram() (*graph.Diagram, error) {
	d := graph.New()
	for _, arg := range *in.nodes {
		label, x, y, err := parseNode(arg)
		if err != nil {
			return nil, err
		}
		if _, err := d.AddNode(x, y, label); err != nil {
			return nil, fmt.Errorf("node %q: %w", arg, err)
		}
	}
	for _, arg := range *in.edges {
		from, to, err := parseEdge(arg)
		if err != nil {
			return nil, err
		}
		if _, err := d.AddEdge(from, to); err != nil {
			return nil, fmt.Errorf("edge %q: %w", arg, err)
		}
	}
	return d, nil
}

// parseNode parses LABEL=X,Y.
func parseNode(arg string) (string, float64, float64, error) {
	label, pos, ok := strings.Cut(arg, "=")
	if !ok || label == "" {
		return "", 0, 0, fmt.Errorf("node %q: expected LABEL=X,Y", arg)
	}
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return "", 0, 0, fmt.Errorf("node %q: expected LABEL=X,Y", arg)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("node %q: bad x: %w", arg, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("node %q: bad y: %w", arg, err)
	}
	return label, x, y, nil
}

// parseEdge parses FROM:TO.
func parseEdge(arg string) (string, string, error) {
	from, to, ok := strings.Cut(arg, ":")
	if !ok || from == "" || to == "" {
		return "", "", fmt.Errorf("edge %q: expected FROM:TO", arg)
	}
	return from, to, nil
}
