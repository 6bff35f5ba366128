package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/focus-companion/internal/journal"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to companion.db")
	last := flag.Int("last", 20, "show N most recent rewards")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/companion.db [--last N] [--json]")
		os.Exit(2)
	}

	store, err := journal.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(store, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region report

type report struct {
	Counts        journal.Counts             `json:"counts"`
	Coins         int                        `json:"coins"`
	Interventions []journal.InterventionStat `json:"interventions"`
	Rewards       []journal.RewardRow        `json:"rewards"`
}

func run(store *journal.Store, last int, jsonOut bool) error {
	var r report
	var err error
	if r.Counts, err = store.Counts(); err != nil {
		return err
	}
	if r.Coins, err = store.CoinTotal(); err != nil {
		return err
	}
	if r.Interventions, err = store.InterventionStats(); err != nil {
		return err
	}
	if r.Rewards, err = store.RecentRewards(last); err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Printf("Decisions: %s | Interventions: %s | Rewards: %s | Responses: %s | Coins: %s\n\n",
		humanize.Comma(int64(r.Counts.Decisions)), humanize.Comma(int64(r.Counts.Interventions)),
		humanize.Comma(int64(r.Counts.Rewards)), humanize.Comma(int64(r.Counts.Responses)),
		humanize.Comma(int64(r.Coins)))

	if len(r.Interventions) > 0 {
		fmt.Printf("%-22s %9s %8s %9s %8s %10s\n", "INTERVENTION", "DELIVERED", "ENGAGED", "DISMISSED", "IGNORED", "MULTIPLIER")
		fmt.Println(strings.Repeat("-", 72))
		for _, st := range r.Interventions {
			fmt.Printf("%-22s %9d %8d %9d %8d %10.2f\n",
				st.TypeID, st.Delivered, st.Engaged, st.Dismissed, st.Ignored, st.LastMultiplier)
		}
		fmt.Println()
	}

	if len(r.Rewards) == 0 {
		fmt.Fprintln(os.Stderr, "no rewards found")
		return nil
	}
	fmt.Printf("%-12s %-20s %6s %-8s %s\n", "KIND", "REASON", "AMOUNT", "PRIORITY", "WHEN")
	fmt.Println(strings.Repeat("-", 72))
	for _, rw := range r.Rewards {
		label := rw.Reason
		if rw.AchievementRef != "" {
			label = rw.AchievementRef
		}
		fmt.Printf("%-12s %-20s %6d %-8s %s\n", rw.Kind, label, rw.Amount, rw.Priority, humanize.Time(rw.CreatedAt))
	}
	return nil
}

// #endregion report
