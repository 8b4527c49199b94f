// Package main - terminal-sim
// Command-line runner for the Terminales Gemelas engine: batch or
// step-by-step simulation without the HTTP server.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/profile"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/export"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/scenario"
)

func main() {
	var (
		initialA = flag.Int64("initial-a", 50000, "initial Terminal A volume (TEUs)")
		initialB = flag.Int64("initial-b", 20000, "initial Terminal B volume (TEUs)")
		rounds   = flag.Int("rounds", 10, "number of rounds (months)")
		stratA   = flag.String("strategy-a", "TitForTat-Cooperate", "Terminal A strategy")
		stratB   = flag.String("strategy-b", "TitForTat-Cooperate", "Terminal B strategy")

		capA = flag.Int64("cap-a", 0, "Terminal A max capacity (0 = unbounded)")
		capB = flag.Int64("cap-b", 0, "Terminal B max capacity (0 = unbounded)")

		resolveCongestion = flag.Bool("resolve-congestion", false, "resolve export congestion (drops the -300/round penalty on A)")
		dropCoastal       = flag.Bool("drop-coastal", false, "drop the coastal contract (drops the -200/round penalty on A)")
		applyNoise        = flag.Bool("noise", false, "apply regulatory noise (+/-500 per terminal per round)")
		bertrand          = flag.Bool("bertrand", false, "Bertrand price decay (raw gains halved)")
		berthPooling      = flag.Bool("berth-pooling", false, "berth pooling bonus (+10% on mutual cooperation)")
		stackelberg       = flag.Bool("stackelberg", false, "Terminal A commits first; B reacts as follower")

		scenarioName = flag.String("scenario", "", "named scenario or YAML file overriding the modifier flags")
		seed         = flag.Uint64("seed", 0, "RNG seed for replicable runs (0 = crypto source)")
		step         = flag.Bool("step", false, "interactive step mode (Enter = next round)")
		csvOut       = flag.String("csv", "", "write the round history to this CSV file")
		profileMode  = flag.Bool("profile", false, "write a CPU profile to the working directory")
	)
	flag.Parse()

	if *profileMode {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	cfg, err := buildConfig(*initialA, *initialB, *rounds, *stratA, *stratB, *capA, *capB, engine.Modifiers{
		ResolveCongestion: *resolveCongestion,
		DropCoastal:       *dropCoastal,
		ApplyNoise:        *applyNoise,
		BertrandMode:      *bertrand,
		BerthPooling:      *berthPooling,
		StackelbergLeader: *stackelberg,
	}, *scenarioName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	var rng engine.RandomSource
	if *seed != 0 {
		rng = engine.NewSeededRNG(*seed)
	}

	run, err := engine.NewRun(cfg, rng)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	var history []engine.RoundRecord
	if *step {
		history, err = runInteractive(run)
	} else {
		history, err = run.RunToEnd()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	printHistory(history)
	printSummary(run.Summary())

	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := export.WriteHistoryCSV(f, history); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println("History written to", *csvOut)
	}
}

func buildConfig(initialA, initialB int64, rounds int, nameA, nameB string, capA, capB int64, mods engine.Modifiers, scenarioName string) (engine.Config, error) {
	stratA, err := terminal.ParseStrategy(nameA)
	if err != nil {
		return engine.Config{}, err
	}
	stratB, err := terminal.ParseStrategy(nameB)
	if err != nil {
		return engine.Config{}, err
	}

	cfg := engine.Config{
		InitialVolumeA: initialA,
		InitialVolumeB: initialB,
		Rounds:         rounds,
		StrategyA:      stratA,
		StrategyB:      stratB,
		MaxCapacityA:   capA,
		MaxCapacityB:   capB,
		Modifiers:      mods,
	}

	if scenarioName != "" {
		s, err := resolveScenario(scenarioName)
		if err != nil {
			return engine.Config{}, err
		}
		cfg = s.Apply(cfg)
	}
	return cfg, nil
}

func resolveScenario(name string) (scenario.Scenario, error) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return scenario.LoadFile(name)
	}
	lib := scenario.NewLibrary("")
	s, ok := lib.Get(name)
	if !ok {
		return scenario.Scenario{}, errors.New("unknown scenario: " + name)
	}
	return s, nil
}

// runInteractive advances one round per Enter press. Typing
// "set <strategyA> <strategyB>" changes strategies mid-run; "quit" stops.
func runInteractive(run *engine.Run) ([]engine.RoundRecord, error) {
	fmt.Println("Interactive mode. Enter = next round | set <A> <B> = change strategies | quit = stop.")
	scanner := bufio.NewScanner(os.Stdin)

	for !run.IsComplete() {
		fmt.Printf("[round %d/%d] > ", run.CurrentRound()+1, run.Config().Rounds)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "quit":
			return run.History(), nil
		case strings.HasPrefix(line, "set "):
			fields := strings.Fields(line)
			if len(fields) != 3 {
				fmt.Println("usage: set <strategyA> <strategyB>")
				continue
			}
			stratA, err := terminal.ParseStrategy(fields[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			stratB, err := terminal.ParseStrategy(fields[2])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := run.SetStrategies(stratA, stratB); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("Strategies now %s vs %s (from next round).\n", stratA, stratB)
		case line == "":
			record, err := run.Advance()
			if err != nil {
				return nil, err
			}
			fmt.Printf("round %d: %s/%s net=(%d, %d) volumes=(%d, %d)\n",
				record.Round, record.MoveA, record.MoveB,
				record.NetGainA, record.NetGainB,
				record.VolumeAAfter, record.VolumeBAfter)
		default:
			fmt.Println("unrecognized command:", line)
		}
	}
	return run.History(), nil
}

func printHistory(history []engine.RoundRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUND\tMOVE A\tMOVE B\tNET A\tNET B\tSPILL\tVOL A\tVOL B")
	for _, rec := range history {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			rec.Round, rec.MoveA, rec.MoveB,
			rec.NetGainA, rec.NetGainB, rec.SpilloverToB,
			rec.VolumeAAfter, rec.VolumeBAfter)
	}
	w.Flush()
}

func printSummary(s engine.Summary) {
	fmt.Printf("\nFinal Volumes: Terminal A: %d TEUs, Terminal B: %d TEUs\n", s.FinalVolumeA, s.FinalVolumeB)
	fmt.Printf("Joint gain over initial volumes: %d TEUs (%s vs %s, %d rounds)\n",
		s.TotalGain, s.StrategyA, s.StrategyB, s.RoundsPlayed)
}
