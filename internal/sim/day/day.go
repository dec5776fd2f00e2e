package day

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"hearthday.ai/internal/protocol"
	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/tuning"
)

type Config struct {
	ID   string
	Seed int64
	Tune tuning.Tuning
}

type JoinRequest struct {
	Name          string
	ObsEveryTicks int
	Out           chan []byte
	Resp          chan JoinResponse
}

type JoinResponse struct {
	Welcome  protocol.WelcomeMsg
	Catalogs []protocol.CatalogMsg
}

type ActionEnvelope struct {
	HostID string
	Act    protocol.ActMsg
}

// Core is the single-threaded day-cycle simulation: clock, phase director,
// content selector, encounter session, scorer, and mood sampler. All state
// must be accessed only from the core loop goroutine.
type Core struct {
	cfg  Config
	cats *catalogs.Catalogs

	tick atomic.Uint64

	clock     Clock
	phase     string
	phaseTick uint64

	registry *TagRegistry
	selector *Selector
	enc      *Encounter
	mood     MoodSample

	score  ScoreParams
	grades []gradeBreakpoint

	clutter []string

	clients     map[string]*clientState
	nextHostNum atomic.Uint64

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	events     []protocol.EventBatchItem
	nextCursor uint64

	// Optional collaborators (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger
}

type clientState struct {
	ID            string
	Name          string
	Out           chan []byte
	cursor        uint64
	obsEveryTicks int
}

const maxBufferedEvents = 1024

func New(cfg Config, cats *catalogs.Catalogs) (*Core, error) {
	if err := cfg.Tune.Validate(); err != nil {
		return nil, err
	}
	if cats == nil {
		return nil, fmt.Errorf("day: nil catalogs")
	}

	c := &Core{
		cfg:      cfg,
		cats:     cats,
		clock:    NewClock(cfg.Tune.DayTicks, cfg.Tune.MorningTime),
		phase:    protocol.PhaseMorning,
		registry: NewTagRegistry(cats),
		selector: NewSelector(cats, cfg.Tune.Pool, cfg.Seed),
		clients:  map[string]*clientState{},
		inbox:    make(chan ActionEnvelope, 256),
		join:     make(chan JoinRequest, 8),
		leave:    make(chan string, 8),
		stop:     make(chan struct{}),
	}

	c.score = ScoreParams{
		PerObjectCap:   cfg.Tune.Scoring.PerObjectCap,
		ComfortPenalty: cfg.Tune.Scoring.ComfortPenalty,
		ScentPenalty:   cfg.Tune.Scoring.ScentPenalty,
	}
	if id, ok := cats.Tags.ID(cfg.Tune.Scoring.MessTag); ok {
		c.score.MessTagID = id
		c.score.HasMessTag = true
	}
	for _, g := range cfg.Tune.Grades {
		c.grades = append(c.grades, gradeBreakpoint{Min: g.Min, Grade: g.Grade})
	}

	// Bootstrap day 1 pool without events; later refreshes ride on NEW_DAY.
	c.selector.Refresh(c.clock.Day)
	c.mood = SampleMood(&cats.Mood, c.moodT())

	return c, nil
}

func (c *Core) SetTickLogger(l TickLogger)   { c.tickLogger = l }
func (c *Core) SetAuditLogger(l AuditLogger) { c.auditLogger = l }

func (c *Core) Inbox() chan<- ActionEnvelope { return c.inbox }
func (c *Core) Join() chan<- JoinRequest     { return c.join }
func (c *Core) Leave() chan<- string         { return c.leave }

func (c *Core) TickRateHz() int { return c.cfg.Tune.TickRateHz }

// Run drives the core at the tuned tick rate until ctx is done or Stop is
// called. All mutation happens inside step on this goroutine.
func (c *Core) Run(ctx context.Context) {
	interval := time.Second / time.Duration(c.cfg.Tune.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			joins, leaves, actions := c.drain()
			c.step(joins, leaves, actions)
		}
	}
}

func (c *Core) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *Core) drain() (joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	for {
		select {
		case j := <-c.join:
			joins = append(joins, j)
		case id := <-c.leave:
			leaves = append(leaves, id)
		case a := <-c.inbox:
			actions = append(actions, a)
		default:
			return joins, leaves, actions
		}
	}
}

// step advances one tick. Within a tick, transitions triggered by this tick's
// events are fully resolved before the tick ends.
func (c *Core) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	nowTick := c.tick.Load()

	for _, j := range joins {
		c.handleJoin(j)
	}
	for _, id := range leaves {
		delete(c.clients, id)
	}

	c.clock.Advance()
	c.systemMood()

	var recorded []RecordedAction
	for _, env := range actions {
		c.applyAct(env, nowTick)
		recorded = append(recorded, RecordedAction{HostID: env.HostID, Act: env.Act})
	}

	c.systemEncounter(nowTick)
	c.broadcastObs(nowTick)

	if c.tickLogger != nil {
		_ = c.tickLogger.WriteTick(TickLogEntry{
			Tick:    nowTick,
			Actions: recorded,
			Digest:  c.stateDigest(nowTick),
		})
	}

	c.tick.Add(1)
}

// StepOnce advances exactly one tick with the same ordering semantics as Run.
// It is primarily intended for deterministic replays and tests.
func (c *Core) StepOnce(joins []JoinRequest, leaves []string, actions []ActionEnvelope) (tick uint64, digest string) {
	tick = c.tick.Load()
	c.step(joins, leaves, actions)
	return tick, c.stateDigest(tick)
}

func (c *Core) handleJoin(j JoinRequest) {
	id := fmt.Sprintf("H%d", c.nextHostNum.Add(1))
	every := j.ObsEveryTicks
	if every <= 0 {
		every = c.cfg.Tune.ObsEveryTicks
	}
	if every <= 0 {
		every = 1
	}
	cl := &clientState{
		ID:            id,
		Name:          j.Name,
		Out:           j.Out,
		cursor:        c.nextCursor,
		obsEveryTicks: every,
	}
	c.clients[id] = cl

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		HostID:          id,
		SessionParams: protocol.SessionParams{
			TickRateHz:  c.cfg.Tune.TickRateHz,
			DayTicks:    c.cfg.Tune.DayTicks,
			MorningTime: c.cfg.Tune.MorningTime,
			Seed:        c.cfg.Seed,
		},
		Catalogs: protocol.CatalogDigests{
			Content:           protocol.DigestRef{Digest: c.cats.Content.Digest, Count: len(c.cats.Content.Order)},
			Objects:           protocol.DigestRef{Digest: c.cats.Objects.Digest, Count: len(c.cats.Objects.Order)},
			Checkpoints:       protocol.DigestRef{Digest: c.cats.Checkpoints.Digest, Count: len(c.cats.Checkpoints.Order)},
			MoodProfileDigest: c.cats.Mood.Digest,
			TagsDigest:        c.cats.Tags.Digest(),
		},
	}

	catalogMsg := func(name, digest string, data interface{}) protocol.CatalogMsg {
		return protocol.CatalogMsg{
			Type:            protocol.TypeCatalog,
			ProtocolVersion: protocol.Version,
			Name:            name,
			Digest:          digest,
			Part:            1,
			TotalParts:      1,
			Data:            data,
		}
	}
	cats := []protocol.CatalogMsg{
		catalogMsg("content", c.cats.Content.Digest, contentForWire(c.cats)),
		catalogMsg("objects", c.cats.Objects.Digest, objectsForWire(c.cats)),
		catalogMsg("checkpoints", c.cats.Checkpoints.Digest, checkpointsForWire(c.cats)),
		catalogMsg("mood_profile", c.cats.Mood.Digest, c.cats.Mood.Points),
	}

	if j.Resp != nil {
		j.Resp <- JoinResponse{Welcome: welcome, Catalogs: cats}
	}
}

func contentForWire(cats *catalogs.Catalogs) []*catalogs.ContentEntry {
	out := make([]*catalogs.ContentEntry, 0, len(cats.Content.Order))
	for _, id := range cats.Content.Order {
		out = append(out, cats.Content.ByID[id])
	}
	return out
}

func objectsForWire(cats *catalogs.Catalogs) []*catalogs.ObjectDef {
	out := make([]*catalogs.ObjectDef, 0, len(cats.Objects.Order))
	for _, id := range cats.Objects.Order {
		out = append(out, cats.Objects.ByID[id])
	}
	return out
}

func checkpointsForWire(cats *catalogs.Catalogs) []*catalogs.CheckpointDef {
	out := make([]*catalogs.CheckpointDef, 0, len(cats.Checkpoints.Order))
	for _, id := range cats.Checkpoints.Order {
		out = append(out, cats.Checkpoints.ByID[id])
	}
	return out
}

func (c *Core) pushEvent(e protocol.Event) {
	c.events = append(c.events, protocol.EventBatchItem{Cursor: c.nextCursor, Event: e})
	c.nextCursor++
	if len(c.events) > maxBufferedEvents {
		c.events = c.events[len(c.events)-maxBufferedEvents:]
	}
}

// eventsSince returns buffered events at or past cursor, oldest first.
func (c *Core) eventsSince(cursor uint64, limit int) []protocol.EventBatchItem {
	out := []protocol.EventBatchItem{}
	for _, it := range c.events {
		if it.Cursor < cursor {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one stale frame, then retry once.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
