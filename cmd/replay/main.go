package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/focus-companion/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output per-step results as JSON")
	seed := flag.Uint64("seed", 0, "override the fixture seed (0 keeps it)")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--seed N] [--json]")
		os.Exit(2)
	}
	os.Exit(runFixture(*fixturePath, *seed, *jsonOut))
}

// #endregion main

// #region fixture-mode

type stepRow struct {
	Step         string   `json:"step"`
	At           string   `json:"at"`
	Intervene    bool     `json:"intervene"`
	Intervention string   `json:"intervention,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Rewards      []string `json:"rewards,omitempty"`
	Commands     []string `json:"commands,omitempty"`
	Mood         string   `json:"mood"`
	Energy       float64  `json:"energy"`
}

func runFixture(path string, seed uint64, jsonOut bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if seed != 0 {
		f.Seed = seed
	}

	results, sum, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	rows := make([]stepRow, len(results))
	for i, r := range results {
		row := stepRow{
			Step:         r.StepID,
			At:           r.At.Format("15:04:05"),
			Intervene:    r.Intervene,
			Intervention: r.Intervention,
			Reason:       r.Reason,
			Commands:     r.Commands,
			Mood:         string(r.Mood.Mood),
			Energy:       r.Mood.Energy,
		}
		for _, ev := range r.Rewards {
			label := ev.Reason
			if ev.AchievementRef != "" {
				label = ev.AchievementRef
			}
			row.Rewards = append(row.Rewards, fmt.Sprintf("%s(%d)", label, ev.Amount))
		}
		rows[i] = row
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			return 2
		}
	} else {
		fmt.Printf("Fixture: %s\n", f.Description)
		fmt.Printf("%-12s %-8s %-9s %-20s %-12s %s\n", "STEP", "AT", "INTERVENE", "TYPE", "MOOD", "REWARDS")
		fmt.Println(strings.Repeat("-", 80))
		for _, r := range rows {
			fmt.Printf("%-12s %-8s %-9v %-20s %-12s %s\n",
				r.Step, r.At, r.Intervene, r.Intervention, r.Mood, strings.Join(r.Rewards, ","))
		}
		fmt.Println()
		fmt.Printf("Steps: %d | Interventions: %d | Rewards: %d | Coins: %d | Final mood: %s (energy %.0f)\n",
			sum.Steps, sum.Interventions, sum.Rewards, sum.Coins, sum.FinalMood.Mood, sum.FinalMood.Energy)
	}

	mismatches := replay.Check(results, f.Expected)
	if len(mismatches) == 0 {
		fmt.Fprintf(os.Stderr, "PASS: %d expectations met\n", len(f.Expected))
		return 0
	}
	for _, m := range mismatches {
		fmt.Fprintf(os.Stderr, "FAIL %s\n", m)
	}
	return 1
}

// #endregion fixture-mode
