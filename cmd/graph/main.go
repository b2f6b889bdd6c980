// Command graph draws node diagrams from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/nodegraph/pkg/cliopts"
	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/log"
	"github.com/ha1tch/nodegraph/pkg/render"
	"github.com/ha1tch/nodegraph/pkg/schematic"
	"github.com/ha1tch/nodegraph/pkg/surface"
)

const usage = `graph - node diagram toolkit

Usage:
  graph <command> [options]

Commands:
  render     Draw a diagram to PNG or SVG
  schematic  Print the computed geometry of every edge
  ops        Print the drawing operations of a diagram

Examples:
  graph render -n A=100,100 -n B=300,100 -e A:B -e B:A -o ab.png
  graph render -n A=200,200 -e A:A -o loop.svg
  graph schematic -n A=0,0 -n B=100,0 -e A:B

Use "graph <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	ctx := log.Stderr(context.Background())
	defer log.Sync(ctx)

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "render":
		err = cmdRender(ctx, args, os.Stdout)
	case "schematic":
		err = cmdSchematic(args, os.Stdout)
	case "ops":
		err = cmdOps(ctx, args, os.Stdout)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parse declares the shared inputs plus extra flags and parses args. It
// returns errHelp when -h was given.
func parse(name string, args []string, extra func(*cliopts.Opts)) (*inputs, error) {
	o := cliopts.New(name, args)
	in, err := declareInputs(o)
	if err != nil {
		return nil, err
	}
	if extra != nil {
		extra(o)
	}
	help := o.Flags.BoolP("help", "h", false, "show help")
	if err := o.Parse(); err != nil {
		return nil, err
	}
	if *help {
		fmt.Printf("Usage: graph %s [options]\n\n%s", name, o.Help())
		return nil, errHelp
	}
	return in, nil
}

var errHelp = errors.New("help requested")

func cmdRender(ctx context.Context, args []string, stdout io.Writer) error {
	var output *string
	in, err := parse("render", args, func(o *cliopts.Opts) {
		output = o.String("NODEGRAPH_OUTPUT", "output", "o", "diagram.png", "output file (.png or .svg)")
	})
	if err == errHelp {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, opts, err := in.style()
	if err != nil {
		return err
	}
	d, err := in.diagram()
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(*output))
	if ext != ".png" && ext != ".svg" {
		return fmt.Errorf("unknown output format: %q", ext)
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()

	var st render.Stats
	switch ext {
	case ".png":
		r, rerr := surface.NewRaster(surface.RasterOptions{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height})
		if rerr != nil {
			return rerr
		}
		st = render.Draw(ctx, r, d.Nodes(), d.Edges(), opts)
		err = r.EncodePNG(f)
	case ".svg":
		s := surface.NewSVG(surface.SVGOptions{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height})
		st = render.Draw(ctx, s, d.Nodes(), d.Edges(), opts)
		_, err = s.WriteTo(f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}

	fmt.Fprintf(stdout, "Written: %s (%d nodes, %d edges", *output, st.Nodes, st.Edges)
	if st.Skipped > 0 {
		fmt.Fprintf(stdout, ", %d skipped", st.Skipped)
	}
	fmt.Fprintln(stdout, ")")
	return nil
}

func cmdSchematic(args []string, stdout io.Writer) error {
	in, err := parse("schematic", args, nil)
	if err == errHelp {
		return nil
	}
	if err != nil {
		return err
	}
	_, opts, err := in.style()
	if err != nil {
		return err
	}
	d, err := in.diagram()
	if err != nil {
		return err
	}

	b := schematic.NewBuilder(d.Nodes(), d.Edges(), opts)
	for _, e := range d.Edges() {
		sch, err := b.Build(e)
		if err != nil {
			fmt.Fprintf(stdout, "%s -> %s  error: %v\n", e.From, e.To, err)
			continue
		}
		fmt.Fprintf(stdout, "%s -> %s  %s\n", e.From, e.To, describe(sch))
	}
	return nil
}

func describe(sch schematic.Schematic) string {
	switch s := sch.(type) {
	case *schematic.Straight:
		desc := fmt.Sprintf("straight start=%s end=%s", point(s.Start), point(s.End))
		if s.Bidirectional {
			desc += " bidirectional"
		}
		return desc
	case *schematic.SelfLoop:
		return fmt.Sprintf("loop center=%s angle=%.1f°", point(s.Center), s.Angle*180/math.Pi)
	}
	return fmt.Sprintf("%T", sch)
}

func point(p geom.Point) string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

func cmdOps(ctx context.Context, args []string, stdout io.Writer) error {
	in, err := parse("ops", args, nil)
	if err == errHelp {
		return nil
	}
	if err != nil {
		return err
	}
	_, opts, err := in.style()
	if err != nil {
		return err
	}
	d, err := in.diagram()
	if err != nil {
		return err
	}

	rec := surface.NewRecorder()
	render.Draw(ctx, rec, d.Nodes(), d.Edges(), opts)
	_, err = rec.WriteTo(stdout)
	return err
}
