// Command bdiplan compiles an LTLf-derived automaton and a PDDL domain into
// an AgentSpeak plan library.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/RockYYY888/bdi-planlib/bdiplan/dfa"
	"github.com/RockYYY888/bdi-planlib/bdiplan/grounding"
	"github.com/RockYYY888/bdi-planlib/bdiplan/ltlf"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pipeline"
	"github.com/RockYYY888/bdi-planlib/bdiplan/store"
	"github.com/RockYYY888/bdi-planlib/bdiplan/trace"
)

func main() {
	var (
		domainPath    string
		dfaPath       string
		groundingPath string
		outputPath    string
		maxStates     int
		maxObjects    int
		mintermBudget int
		refiner       string
		verbose       bool
		showStats     bool
		cacheDir      string
		noPartial     bool
		ltlfFormula   string
	)

	flag.StringVar(&domainPath, "domain", "", "PDDL domain file")
	flag.StringVar(&dfaPath, "dfa", "", "automaton in DOT format")
	flag.StringVar(&groundingPath, "grounding", "", "grounding map JSON")
	flag.StringVar(&outputPath, "o", "", "output plan library file (default: stdout)")
	flag.IntVar(&maxStates, "max-states", 200000, "visited-state budget per goal search")
	flag.IntVar(&maxObjects, "max-objects", 0, "object cap for the feasibility prune (0 = off)")
	flag.IntVar(&mintermBudget, "minterm-budget", dfa.DefaultMintermBudget, "per-label partition budget")
	flag.StringVar(&refiner, "refiner", pipeline.RefinerBDD, "label refiner: bdd or enum")
	flag.BoolVar(&verbose, "verbose", false, "print pipeline events")
	flag.BoolVar(&showStats, "stats", false, "print statistics tables")
	flag.StringVar(&cacheDir, "cache-dir", "", "reuse compiled libraries from this directory")
	flag.BoolVar(&noPartial, "no-partial", false, "fail instead of emitting a truncated library")
	flag.StringVar(&ltlfFormula, "ltlf", "", "optional LTLf formula to cross-check against the grounding map")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -domain d.pddl -dfa dfa.dot -grounding map.json [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Compiles a finite-trace automaton and a PDDL domain into an AgentSpeak plan library.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if domainPath == "" || dfaPath == "" || groundingPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	domainText, err := os.ReadFile(domainPath)
	exitOn(err)
	dfaText, err := os.ReadFile(dfaPath)
	exitOn(err)
	groundingText, err := os.ReadFile(groundingPath)
	exitOn(err)

	// A digest hit in the library store skips the whole pipeline.
	var libStore *store.LibraryStore
	digest := store.Digest(string(domainText), string(dfaText), string(groundingText),
		maxStates, maxObjects, mintermBudget, refiner)
	if cacheDir != "" {
		libStore, err = store.Open(cacheDir)
		exitOn(err)
		defer libStore.Close()
		if library, found, err := libStore.Get(digest); err != nil {
			exitOn(err)
		} else if found {
			if verbose {
				color.Green("library store hit %s", digest[:12])
			}
			writeLibrary(outputPath, library)
			return
		}
	}

	domain, err := pddl.ParseDomain(string(domainText))
	exitOn(err)
	for _, w := range domain.Warnings {
		color.Yellow("warning: %s", w)
	}

	gmap, err := grounding.Load(groundingText)
	exitOn(err)
	for _, problem := range gmap.Validate() {
		color.Yellow("grounding map: %s", problem)
	}

	automaton, err := dfa.ParseDOT(string(dfaText))
	exitOn(err)

	// The formula never reaches the planner; checking it here catches a
	// grounding map generated for a different specification.
	if ltlfFormula != "" {
		formula, err := ltlf.Parse(ltlfFormula)
		exitOn(err)
		if missing := ltlf.CheckAlphabet(formula, gmap.SortedSymbols()); len(missing) > 0 {
			color.Yellow("formula atoms missing from the grounding map: %v", missing)
		}
	}

	var handler trace.Handler
	if verbose {
		handler = trace.NewOutputFormatter(os.Stderr).Handler()
	}

	gen := pipeline.NewGenerator(domain, gmap, pipeline.Options{
		MaxStates:     maxStates,
		MaxObjects:    maxObjects,
		MintermBudget: mintermBudget,
		Refiner:       refiner,
		Handler:       handler,
	})
	result, err := gen.Generate(automaton)
	exitOn(err)

	if result.Stats.Truncated && noPartial {
		color.Red("search budget exhausted and partial output is disabled")
		os.Exit(2)
	}

	writeLibrary(outputPath, result.Library)

	if libStore != nil {
		exitOn(libStore.Put(digest, result.Library))
	}

	if showStats {
		printStats(result.Stats)
	}
}

func writeLibrary(path, library string) {
	if path == "" {
		fmt.Print(library)
		return
	}
	exitOn(os.WriteFile(path, []byte(library), 0o644))
}

func printStats(stats pipeline.Statistics) {
	table := tablewriter.NewTable(os.Stderr,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"DFA states", fmt.Sprint(stats.DFAStates)},
		{"DFA transitions", fmt.Sprint(stats.DFATransitions)},
		{"Partitions", fmt.Sprint(stats.Partitions)},
		{"Labels kept verbatim", fmt.Sprint(stats.KeptLabels)},
		{"Goals", fmt.Sprint(stats.Goals)},
		{"Searches", fmt.Sprint(stats.Searches)},
		{"States explored", fmt.Sprint(stats.TotalStates)},
		{"Graph transitions", fmt.Sprint(stats.TotalTransitions)},
		{"Single-atom cache", fmt.Sprintf("%d hits / %d misses", stats.SingleTier.Hits, stats.SingleTier.Misses)},
		{"Full-goal cache", fmt.Sprintf("%d hits / %d misses", stats.FullTier.Hits, stats.FullTier.Misses)},
		{"Truncated", fmt.Sprint(stats.Truncated)},
	}
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	if len(stats.Discards) > 0 {
		discards := tablewriter.NewTable(os.Stderr,
			tablewriter.WithRenderer(renderer.NewMarkdown()),
			tablewriter.WithHeaderAutoFormat(tw.Off),
		)
		discards.Header([]string{"Discard reason", "Count"})
		reasons := make([]string, 0, len(stats.Discards))
		for reason := range stats.Discards {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			discards.Append([]string{reason, fmt.Sprint(stats.Discards[reason])})
		}
		discards.Render()
	}
}

func exitOn(err error) {
	if err != nil {
		color.Red("bdiplan: %v", err)
		os.Exit(1)
	}
}
