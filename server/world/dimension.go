package world

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// genDrainLimit bounds how many ready generation results Dimension.Tick
// applies per tick, the same role MaxLoads plays for viewer ticket adds:
// enough to keep up under normal load without letting one tick's POST
// stage block on an unbounded backlog.
const genDrainLimit = 64

// Dimension is one independently-ticked voxel world: the region index,
// ticket manager, generation scheduler, entity membership index and edit
// dispatcher this core defines, wired together by a fixed-rate PRE/UPDATE/
// POST tick loop. It plays the role the reference
// implementation's World struct plays, narrowed to residency, generation,
// tracking and edits — everything else (block behaviour, entity AI,
// persistence) is an external collaborator.
type Dimension struct {
	conf Config
	log  *slog.Logger

	regions    *RegionIndex
	tickets    *TicketManager
	gen        *GenerationScheduler
	entities   *EntityIndex
	dispatcher *EditDispatcher

	trackers map[EntityID]*ViewerTracker

	pendingEdits []BlockSetRequest

	tps atomicFloatBits

	closing chan struct{}
	running sync.WaitGroup
}

// newDimension constructs a Dimension from an already-defaulted Config.
func newDimension(conf Config) *Dimension {
	return &Dimension{
		conf:       conf,
		log:        conf.Log,
		regions:    NewRegionIndex(),
		tickets:    NewTicketManager(),
		gen:        NewGenerationScheduler(conf.Log, conf.Generator, conf.GeneratorWorkers, conf.GeneratorQueueSize),
		entities:   NewEntityIndex(),
		dispatcher: NewEditDispatcher(),
		trackers:   make(map[EntityID]*ViewerTracker),
		closing:    make(chan struct{}),
	}
}

// Run starts the dimension's fixed-rate tick loop on its own goroutine. Close
// stops it.
func (d *Dimension) Run() {
	d.running.Add(1)
	go ticker{interval: d.conf.TickRate}.loop(d)
}

// Close stops the tick loop and the generation worker pool, blocking until
// both have shut down.
func (d *Dimension) Close() {
	close(d.closing)
	d.running.Wait()
	d.gen.Close()
}

// TPS returns the most recently measured ticks-per-second, averaged over the
// last tpsSampleSize ticks. Zero until the first sample window completes.
func (d *Dimension) TPS() float64 {
	return d.tps.load()
}

// AddViewer registers a new viewer at pos in dim, returning the
// ViewerTracker that will drive its tracking view from here on. The viewer
// is also tracked for entity-region membership (C9).
func (d *Dimension) AddViewer(id EntityID, viewer Viewer, pos mgl64.Vec3, dim int) *ViewerTracker {
	d.entities.Track(id, pos, dim)
	t := NewViewerTracker(viewer, d.conf.ViewDistance, d.conf.VerticalViewDistance)
	t.reposition = d.conf.Window
	d.trackers[id] = t
	return t
}

// RemoveViewer tears down id's tracker (releasing every ticket it holds) and
// stops tracking its entity membership.
func (d *Dimension) RemoveViewer(id EntityID) {
	if t, ok := d.trackers[id]; ok {
		t.Disconnect(d.tickets)
		delete(d.trackers, id)
	}
	d.entities.Untrack(id)
}

// Move records id's new position and dimension, applied by the POST stage's
// membership reconciliation (C9).
func (d *Dimension) Move(id EntityID, pos mgl64.Vec3, dim int) {
	d.entities.Move(id, pos, dim)
}

// QueueEdit enqueues a block change to be applied and broadcast during this
// dimension's next UPDATE stage (C8).
func (d *Dimension) QueueEdit(req BlockSetRequest) {
	d.pendingEdits = append(d.pendingEdits, req)
}

// Tick runs one PRE/UPDATE/POST cycle. Callers outside the tick loop
// (tests, in particular) may call this directly.
func (d *Dimension) Tick() {
	d.pre()
	d.update()
	d.post()
}

// pre spawns a Region, in RegionLoading status, for every ticket demand
// position not already resident, then immediately submits it for generation
// (C3 spawn rule, §4.3; C4 submission, §4.4).
func (d *Dimension) pre() {
	for _, pos := range d.tickets.Demand() {
		if d.regions.Contains(pos) {
			continue
		}
		r := NewRegion(pos)
		d.regions.Insert(r)
		d.gen.Submit(r, d.conf.Seed, nil)
	}
}

// update runs every viewer tracker's per-tick algorithm against the current
// ticket/region state, then applies and broadcasts queued edits (C7, C8). A
// region only becomes visible to loadingDrain once POST has applied its
// generation result on a prior tick — see post.
func (d *Dimension) update() {
	for id, t := range d.trackers {
		pos, dim, ok := d.entities.position(id)
		if !ok {
			continue
		}
		_ = dim
		t.Tick(d.tickets, d.regions, regionOf(pos))
	}

	d.dispatcher.Apply(d.regions, d.pendingEdits)
	d.pendingEdits = d.pendingEdits[:0]

	if len(d.trackers) > 0 {
		list := make([]*ViewerTracker, 0, len(d.trackers))
		for _, t := range d.trackers {
			list = append(list, t)
		}
		d.dispatcher.Broadcast(d.regions, list)
	}
}

// post drains ready generation results (transitioning their regions to
// Loaded so the earliest a viewer's loadingDrain can see and send one is
// UPDATE of the following tick), expires timed tickets, advances every
// region whose bucket is empty one step through Unloading -> Unloaded,
// removes regions that reached Unloaded, and reconciles entity-region
// membership (C3 despawn rule, C9).
func (d *Dimension) post() {
	d.gen.Drain(d.regions, genDrainLimit)

	d.tickets.TickTimeouts()

	d.regions.Each(func(r *Region) {
		if d.tickets.Contains(r.Pos) {
			if r.Status == RegionUnloading {
				r.Status = RegionLoaded
			}
			return
		}
		if r.Status == RegionUnloading {
			r.Status = RegionUnloaded
		} else {
			r.Status = RegionUnloading
		}
	})

	var dead []RegionPos
	d.regions.Each(func(r *Region) {
		if r.Status == RegionUnloaded {
			dead = append(dead, r.Pos)
		}
	})
	for _, pos := range dead {
		d.regions.Remove(pos)
	}

	d.entities.Reconcile(d.regions)
}
