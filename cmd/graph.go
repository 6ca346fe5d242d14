package cmd

import (
	"fmt"
	"strconv"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "View and edit a deck's jumps as a graph",
	Long: `Graph commands work on the node/edge view of a deck. Nodes are cards and edges
are explicit jumps between them. Choices without a jump advance to the next card
and draw no edge; jumps outside the deck are listed as hidden.`,
}

var graphShowCmd = &cobra.Command{
	Use:   "show [deck]",
	Short: "Print a deck's graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}

		g := graph.Project(d)
		if dot, _ := cmd.Flags().GetBool("dot"); dot {
			fmt.Print(toDot(d, g))
			return nil
		}

		fmt.Println(colorize.CyanString("Nodes:"))
		for _, n := range g.Nodes {
			start := ""
			if n.Start {
				start = colorize.GreenString(" [START]")
			}
			fmt.Printf("  %3s  %s%s\n", n.ID(), truncate(n.Prompt, 60), start)
		}

		fmt.Println(colorize.CyanString("\nEdges:"))
		if len(g.Edges) == 0 {
			fmt.Println("  (none, every choice advances sequentially)")
		}
		for _, e := range g.Edges {
			fmt.Printf("  %3d --%-5s--> %d\n", e.Source, e.Side, e.Target)
		}

		if len(g.Hidden) > 0 {
			fmt.Println(colorize.YellowString("\nHidden jumps (outside the deck):"))
			for _, h := range g.Hidden {
				fmt.Printf("  %3d --%-5s--> %d\n", h.Source, h.Side, h.Target)
			}
		}
		return nil
	},
}

var graphConnectCmd = &cobra.Command{
	Use:   "connect [deck] [source] [left|right] [target]",
	Short: "Draw an edge from a choice to a card",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, path, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}
		source, side, err := parseEndpoint(d, args[1], args[2])
		if err != nil {
			return err
		}
		target, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid target %q", args[3])
		}

		out := graph.Connect(d, source, side, target)
		if err := deck.SaveFile(path, out); err != nil {
			return err
		}

		if _, ok := graph.Project(out).EdgeFrom(source, side); !ok {
			colorize.Yellow("Connected %d %s to %d, which is outside the deck and stays hidden.", source, side, target)
			return nil
		}
		fmt.Printf("Connected %d --%s--> %d\n", source, side, target)
		return nil
	},
}

var graphDisconnectCmd = &cobra.Command{
	Use:   "disconnect [deck] [source] [left|right]",
	Short: "Remove the edge leaving a choice",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, path, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}
		source, side, err := parseEndpoint(d, args[1], args[2])
		if err != nil {
			return err
		}

		out := graph.Disconnect(d, source, side)
		if err := deck.SaveFile(path, out); err != nil {
			return err
		}
		fmt.Printf("Disconnected %d %s; it now advances to the next card\n", source, side)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphShowCmd)
	graphCmd.AddCommand(graphConnectCmd)
	graphCmd.AddCommand(graphDisconnectCmd)

	graphShowCmd.Flags().Bool("dot", false, "Print the graph in Graphviz DOT format")
}

func parseEndpoint(d *deck.Deck, indexArg, sideArg string) (int, card.Side, error) {
	index, err := parseIndex(d, indexArg)
	if err != nil {
		return 0, card.Left, err
	}
	side, err := card.ParseSide(sideArg)
	if err != nil {
		return 0, card.Left, err
	}
	return index, side, nil
}

// toDot renders the projection for Graphviz. Hidden jumps point at a sink node.
func toDot(d *deck.Deck, g graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph deck {\n  rankdir=LR;\n  node [shape=box];\n")
	for _, n := range g.Nodes {
		style := ""
		if n.Start {
			style = ", style=bold"
		}
		fmt.Fprintf(&sb, "  n%s [label=%s%s];\n", n.ID(), dotQuote(fmt.Sprintf("%s: %s", n.ID(), truncate(n.Prompt, 40))), style)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "  n%d -> n%d [label=%s];\n", e.Source, e.Target, dotQuote(e.Side.String()))
	}
	for _, h := range g.Hidden {
		sink := "win"
		if h.Target < 0 {
			sink = "void"
		}
		fmt.Fprintf(&sb, "  %s [shape=doublecircle];\n  n%d -> %s [label=%s, style=dashed];\n",
			sink, h.Source, sink, dotQuote(fmt.Sprintf("%s (%d)", h.Side, h.Target)))
	}
	fmt.Fprintf(&sb, "  label=%s;\n}\n", dotQuote(d.Name))
	return sb.String()
}

// dotQuote wraps s in a DOT string literal. Only quotes and backslashes are escaped.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
