package animation

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

type playing struct {
	cmd     Command
	elapsed time.Duration
	base    bool
}

type blending struct {
	from, to string
	elapsed  time.Duration
}

// Orchestrator owns the animation queue and decides, once per tick, what the
// renderer should be playing. Not safe for concurrent use; the engine drives
// it from a single goroutine.
type Orchestrator struct {
	cfg    Config
	queue  *Queue
	rng    RandSource
	base   Command
	shown  Command // base descriptor as last started
	active *playing
	blend  *blending

	dropped []Command

	quality  Quality
	frames   []time.Duration
	frameIdx int
	frameSum time.Duration

	idleFor time.Duration
}

// New creates an orchestrator resting on the safe default base state.
// A nil rng disables idle variations.
func New(cfg Config, rng RandSource) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		queue:   NewQueue(cfg.Capacity),
		rng:     rng,
		quality: QualityHigh,
	}
	o.base = o.resolve(safeDefault())
	return o
}

// #region inputs

// Enqueue validates and queues cmds in order. Returns whatever the bounded
// queue evicted to make room.
func (o *Orchestrator) Enqueue(cmds ...Command) []Command {
	var evicted []Command
	for _, c := range cmds {
		o.idleFor = 0
		if e, ok := o.queue.Push(o.resolve(c)); ok {
			log.Printf("[ANIM] queue full, evicted %s (%s)", e.Name, e.Priority)
			evicted = append(evicted, e)
			o.dropped = append(o.dropped, e)
		}
	}
	return evicted
}

// SetBase replaces the fallback played when nothing is queued. The switch
// happens on the next tick that has the base on screen.
func (o *Orchestrator) SetBase(cmd Command) {
	cmd.Type = TypeBaseState
	if cmd.ID == "" && cmd.Name == o.base.Name {
		cmd.ID = o.base.ID
	}
	o.base = o.resolve(cmd)
}

// Interaction records user activity, postponing idle variations.
func (o *Orchestrator) Interaction() { o.idleFor = 0 }

// Quality returns the current detail level.
func (o *Orchestrator) Quality() Quality { return o.quality }

// QueueLen returns the number of waiting commands.
func (o *Orchestrator) QueueLen() int { return o.queue.Len() }

// #endregion inputs

// #region tick

// Tick advances playback by delta and folds frameTime into the quality
// estimate. A non-positive frameTime is ignored.
func (o *Orchestrator) Tick(delta, frameTime time.Duration) Frame {
	if delta < 0 {
		delta = 0
	}
	var f Frame
	o.sampleFrame(frameTime)

	for _, c := range o.queue.age(delta, o.cfg.MaxQueueWait) {
		log.Printf("[ANIM] dropped stale %s after waiting %s", c.Name, o.cfg.MaxQueueWait)
		o.dropped = append(o.dropped, c)
	}

	if o.blend != nil {
		o.blend.elapsed += delta
		if o.blend.elapsed >= o.cfg.BlendDuration {
			o.blend = nil
		}
	}

	prev := ""
	if o.active != nil {
		prev = o.active.cmd.Name
		o.active.elapsed += delta
		if o.finished(o.active) {
			f.Retired = append(f.Retired, o.active.cmd)
			o.active = nil
		}
	}

	o.maybeIdle(delta)
	o.schedule(prev, &f)

	f.Active = o.active.cmd.clone()
	f.Elapsed = o.active.elapsed
	f.Quality = o.quality
	f.QueueLen = o.queue.Len()
	f.Dropped = o.dropped
	o.dropped = nil
	if o.blend != nil {
		p := 1.0
		if o.cfg.BlendDuration > 0 {
			p = float64(o.blend.elapsed) / float64(o.cfg.BlendDuration)
		}
		f.Blend = &Blend{From: o.blend.from, To: o.blend.to, Progress: min(max(p, 0), 1)}
	}
	return f
}

// finished reports whether p should retire this tick. The base never
// finishes on its own. Non-interruptible and looping commands are capped by
// the hard timeout.
func (o *Orchestrator) finished(p *playing) bool {
	if p.base {
		return false
	}
	if (!p.cmd.Interruptible || p.cmd.Loop) && o.cfg.HardTimeout > 0 && p.elapsed >= o.cfg.HardTimeout {
		if p.cmd.Loop || p.cmd.Duration > o.cfg.HardTimeout {
			log.Printf("[ANIM] %s hit hard timeout after %s", p.cmd.Name, p.elapsed)
		}
		return true
	}
	return !p.cmd.Loop && p.elapsed >= p.cmd.Duration
}

func (o *Orchestrator) schedule(prev string, f *Frame) {
	next, queued := o.queue.Peek()
	switch {
	case o.active == nil:
		if queued {
			o.queue.Pop()
			o.start(next, prev, false, f)
		} else {
			o.start(o.base, prev, true, f)
		}
	case o.active.base:
		if queued {
			o.queue.Pop()
			o.start(next, prev, false, f)
		} else if o.active.cmd.Name != o.base.Name || restyled(o.shown, o.base) {
			o.start(o.base, prev, true, f)
		}
	case queued && next.Priority > o.active.cmd.Priority && o.active.cmd.Interruptible:
		log.Printf("[ANIM] %s preempts %s", next.Name, o.active.cmd.Name)
		f.Retired = append(f.Retired, o.active.cmd)
		o.queue.Pop()
		o.start(next, prev, false, f)
	}
}

func (o *Orchestrator) start(cmd Command, from string, fallback bool, f *Frame) {
	isBase := fallback || cmd.Type == TypeBaseState
	if isBase {
		if !fallback {
			o.base = cmd
		}
		o.shown = cmd
	}
	played := o.applyQuality(cmd)
	o.active = &playing{cmd: played, base: isBase}
	if from != "" && from != played.Name && o.cfg.BlendDuration > 0 {
		o.blend = &blending{from: from, to: played.Name}
	} else {
		o.blend = nil
	}
	f.Started = append(f.Started, played)
	if !fallback {
		log.Printf("[ANIM] start %s type=%s priority=%s", played.Name, played.Type, played.Priority)
	}
}

// Minimum descriptor drift that restarts an unchanged base loop.
const (
	glowStep     = 0.1
	particleStep = 5
)

// restyled reports whether b looks different enough from a to redispatch.
func restyled(a, b Command) bool {
	if a.Sound != b.Sound || (a.Glow == nil) != (b.Glow == nil) || (a.Particles == nil) != (b.Particles == nil) {
		return true
	}
	if a.Glow != nil && (a.Glow.Color != b.Glow.Color || math.Abs(a.Glow.Intensity-b.Glow.Intensity) >= glowStep) {
		return true
	}
	if a.Particles != nil {
		diff := a.Particles.Count - b.Particles.Count
		if a.Particles.Kind != b.Particles.Kind || diff >= particleStep || diff <= -particleStep {
			return true
		}
	}
	return false
}

// #endregion tick

// #region quality

// sampleFrame keeps a rolling window of frame times and steps quality one
// level when the window mean leaves the dead band. The window restarts after
// every step so a single slow burst cannot cascade.
func (o *Orchestrator) sampleFrame(ft time.Duration) {
	window := o.cfg.QualityWindow
	if ft <= 0 || window <= 0 || o.cfg.TargetFrameTime <= 0 {
		return
	}
	if len(o.frames) < window {
		o.frames = append(o.frames, ft)
	} else {
		o.frameSum -= o.frames[o.frameIdx]
		o.frames[o.frameIdx] = ft
		o.frameIdx = (o.frameIdx + 1) % window
	}
	o.frameSum += ft
	if len(o.frames) < window {
		return
	}

	avg := float64(o.frameSum) / float64(len(o.frames))
	target := float64(o.cfg.TargetFrameTime)
	prev := o.quality
	switch {
	case avg > target*o.cfg.DegradeFactor && o.quality > QualityLow:
		o.quality--
	case avg < target*o.cfg.RecoverFactor && o.quality < QualityHigh:
		o.quality++
	default:
		return
	}
	log.Printf("[ANIM] quality %s → %s (avg frame %s)", prev, o.quality, time.Duration(avg))
	o.frames = o.frames[:0]
	o.frameIdx = 0
	o.frameSum = 0
}

func (o *Orchestrator) applyQuality(c Command) Command {
	c = c.clone()
	switch o.quality {
	case QualityLow:
		c.Glow = nil
		c.Particles = nil
	case QualityMedium:
		if c.Particles != nil {
			c.Particles.Count /= 2
		}
	}
	return c
}

// #endregion quality

// #region idle

func (o *Orchestrator) maybeIdle(delta time.Duration) {
	if o.queue.Len() > 0 || o.active == nil || !o.active.base {
		o.idleFor = 0
		return
	}
	o.idleFor += delta
	threshold := time.Duration(float64(o.cfg.BaseDuration) * o.cfg.IdleFactor)
	if threshold <= 0 || o.idleFor <= threshold {
		return
	}
	o.idleFor = 0
	if o.rng == nil || o.rng.Float64() >= o.cfg.IdleChance {
		return
	}
	name := idleVariations[o.rng.IntN(len(idleVariations))]
	if e, ok := o.queue.Push(o.resolve(Command{Type: TypeIdleVariation, Name: name, Priority: PriorityLow, Interruptible: true})); ok {
		o.dropped = append(o.dropped, e)
	}
}

// #endregion idle

// #region validation

func safeDefault() Command {
	return Command{Type: TypeBaseState, Name: SafeDefault, Loop: true, Priority: PriorityLow, Interruptible: true}
}

// resolve fills defaults from the catalog and swaps unknown names for the
// safe default.
func (o *Orchestrator) resolve(cmd Command) Command {
	asset, ok := Lookup(cmd.Name)
	if !ok {
		log.Printf("[ANIM] unknown animation %q, substituting %s", cmd.Name, SafeDefault)
		id := cmd.ID
		cmd = safeDefault()
		cmd.ID = id
		asset = catalog[SafeDefault]
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if cmd.Type == "" {
		cmd.Type = asset.Type
	}
	if cmd.Duration <= 0 {
		cmd.Duration = asset.Duration
	}
	if asset.Loop {
		cmd.Loop = true
	}
	if cmd.Type == TypeBaseState {
		cmd.Loop = true
		cmd.Interruptible = true
	}
	if !cmd.Priority.valid() {
		cmd.Priority = PriorityLow
	}
	return cmd.clone()
}

// #endregion validation
