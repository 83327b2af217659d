// Command registrytool inspects and maintains the community layout
// registry.
//
// Usage:
//
//	registrytool -registry layout_registry.json -list
//	registrytool -registry layout_registry.json -best 2.17
//	registrytool -registry layout_registry.json -vote <id>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"matchrecap/internal/registry"
)

func main() {
	registryPath := flag.String("registry", "", "Path to the layout registry JSON file (default: platform config dir)")
	list := flag.Bool("list", false, "List every persisted layout")
	best := flag.Float64("best", 0, "Print the best layout for the given aspect ratio")
	tolerance := flag.Float64("tolerance", 0.05, "Aspect-ratio tolerance used with -best")
	vote := flag.String("vote", "", "Vote for the layout with the given id")
	flag.Parse()

	path := *registryPath
	if path == "" {
		var err error
		path, err = registry.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "registrytool: %v\n", err)
			os.Exit(1)
		}
	}

	reg, err := registry.Load(path, *tolerance, 0.01)
	if err != nil {
		fmt.Fprintf(os.Stderr, "registrytool: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *vote != "":
		spec, err := reg.Vote(*vote)
		if err != nil {
			fmt.Fprintf(os.Stderr, "registrytool: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("voted: %s now at %d votes\n", spec.ID, spec.VoteCount)

	case *best != 0:
		spec, ok := reg.BestSpec(*best, *tolerance)
		if !ok {
			fmt.Printf("no layout within ±%.2f of aspect ratio %.2f\n", *tolerance, *best)
			os.Exit(1)
		}
		printSpecs([]*registry.LayoutSpec{spec})

	case *list:
		printSpecs(reg.List())

	default:
		flag.Usage()
		os.Exit(1)
	}
}

func printSpecs(specs []*registry.LayoutSpec) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Aspect Ratio", "Screen", "Votes", "Updated"})
	for _, s := range specs {
		tw.AppendRow(table.Row{
			s.ID, fmt.Sprintf("%.4f", s.AspectRatio),
			fmt.Sprintf("%dx%d", s.ScreenWidth, s.ScreenHeight),
			s.VoteCount, s.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
