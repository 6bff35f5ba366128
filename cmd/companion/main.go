package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielpatrickdp/focus-companion/internal/config"
	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/engine"
	"github.com/danielpatrickdp/focus-companion/internal/journal"
	"github.com/danielpatrickdp/focus-companion/internal/render"
	"github.com/danielpatrickdp/focus-companion/internal/replay"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	out := &stdoutSink{enc: json.NewEncoder(os.Stdout)}
	sinks := engine.Sinks{Rewards: out, Interventions: out}

	if cfg.DBPath != "" {
		store, err := journal.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer store.Close()
		w := journal.NewAsyncWriter(store, 0)
		defer w.Close()
		sinks.Journal = w
	}

	if cfg.RendererAddr != "" {
		client, err := render.NewClient(cfg.RendererAddr)
		if err != nil {
			log.Fatalf("failed to connect to renderer at %s: %v", cfg.RendererAddr, err)
		}
		defer client.Close()
		sink := render.NewAsyncSink(client, 0, time.Second)
		defer sink.Close()
		sinks.Renderer = sink
	}

	c := engine.New(cfg.Engine, time.Now(), reward.NewRand(cfg.Seed), sinks)

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if interactive {
		fmt.Fprintln(os.Stderr, "Focus companion ready.")
		fmt.Fprintf(os.Stderr, "  Journal: %s | Renderer: %s | %d Hz | enabled=%v\n",
			orNone(cfg.DBPath), orNone(cfg.RendererAddr), cfg.TickHz, cfg.Engine.Enabled)
		fmt.Fprintln(os.Stderr, `Send JSON lines, e.g. {"id":"1","event":"classification","state":"flow","confidence":0.9,"duration_s":60}`)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go readInputs(ctx, c, stop)
	run(ctx, c, cfg.TickHz)

	p := c.Progress()
	s := c.Summary()
	log.Printf("[ENGINE] shutdown: focus=%s distracted=%s longest_flow=%s blocks=%d recoveries=%d bonuses=%d",
		s.TotalFocus, s.TotalDistracted, s.LongestFlow, p.FocusBlocks, p.Recoveries, p.BonusesEarned)
}
// #endregion main

// #region loop
func run(ctx context.Context, c *engine.Companion, hz int) {
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			begin := time.Now()
			c.Tick(now, delta, delta)
			if cost := time.Since(begin); cost > delta {
				log.Printf("[ENGINE] tick took %s, longer than the %s frame", cost, delta)
			}
		}
	}
}

// readInputs decodes one event per stdin line and posts it. EOF ends the process.
func readInputs(ctx context.Context, c *engine.Companion, stop context.CancelFunc) {
	defer stop()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var step replay.FixtureStep
		if err := json.Unmarshal(line, &step); err != nil {
			log.Printf("[ENGINE] bad input line: %v", err)
			continue
		}
		switch step.Event {
		case "enable", "disable":
			c.SetEnabled(step.Event == "enable")
			continue
		}
		ev, err := step.ToEvent()
		if err != nil {
			log.Printf("[ENGINE] bad input %s: %v", step.ID, err)
			continue
		}
		c.Post(ev)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[ENGINE] stdin: %v", err)
	}
}
// #endregion loop

// #region sinks
// stdoutSink writes rewards and intervention requests as JSON lines for the
// message-composition collaborator.
type stdoutSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

type outputLine struct {
	Type         string                        `json:"type"`
	Reward       *reward.Event                 `json:"reward,omitempty"`
	Intervention *decision.InterventionRequest `json:"intervention,omitempty"`
}

func (s *stdoutSink) Reward(ev reward.Event) {
	s.write(outputLine{Type: "reward", Reward: &ev})
}

func (s *stdoutSink) Intervene(req decision.InterventionRequest) {
	s.write(outputLine{Type: "intervention", Intervention: &req})
}

func (s *stdoutSink) write(l outputLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(l); err != nil {
		log.Printf("[ENGINE] stdout: %v", err)
	}
}
// #endregion sinks

// #region helpers
func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
// #endregion helpers
