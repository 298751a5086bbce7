package motion

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/gamepad"
	"github.com/soar/MotionControllerView/internal/scene"
)

// Registry keeps one Controller per (id, hand) and feeds it frames.
type Registry struct {
	mapping Mapping
	scene   *scene.Scene
	loader  ModelLoader
	log     *zap.Logger

	mu          sync.RWMutex
	controllers map[string]*Controller
	added       *Observable[*Controller]
	wg          sync.WaitGroup
}

func NewRegistry(m Mapping, sc *scene.Scene, loader ModelLoader, log *zap.Logger) *Registry {
	return &Registry{
		mapping:     m,
		scene:       sc,
		loader:      loader,
		log:         log,
		controllers: make(map[string]*Controller),
		added:       NewObservable[*Controller](),
	}
}

// OnControllerAdded is notified with every newly created controller, before
// its model starts loading.
func (r *Registry) OnControllerAdded() *Observable[*Controller] {
	return r.added
}

// Get returns the controller for (id, hand), creating it on first use.
func (r *Registry) Get(id string, hand gamepad.Hand) (c *Controller, created bool) {
	key := gamepad.ControllerKey(id, hand)

	r.mu.RLock()
	c, ok := r.controllers[key]
	r.mu.RUnlock()
	if ok {
		return c, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[key]; ok {
		return c, false
	}
	c = NewController(id, hand, r.mapping, r.scene, r.loader, r.log)
	r.controllers[key] = c
	return c, true
}

// Lookup returns the controller with the given key, or nil.
func (r *Registry) Lookup(key string) *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controllers[key]
}

// Controllers returns all controllers sorted by key.
func (r *Registry) Controllers() []*Controller {
	r.mu.RLock()
	out := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Snapshots returns the pose of every controller.
func (r *Registry) Snapshots() []Snapshot {
	cs := r.Controllers()
	out := make([]Snapshot, len(cs))
	for i, c := range cs {
		out[i] = c.Snapshot()
	}
	return out
}

// Run consumes frames until the channel closes or ctx is done. A controller
// seen for the first time starts loading its model in the background.
func (r *Registry) Run(ctx context.Context, frames <-chan gamepad.Frame) {
	defer r.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			r.handle(ctx, f)
		}
	}
}

func (r *Registry) handle(ctx context.Context, f gamepad.Frame) {
	if !f.Connected {
		return
	}
	c, created := r.Get(f.ID, f.Hand)
	if created {
		r.added.Notify(c)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if _, err := c.InitMesh(ctx); err != nil {
				r.log.Error("controller model unavailable", zap.String("controller", c.Key()), zap.Error(err))
			}
		}()
	}
	c.Update(f)
}

// Close removes every controller model from the scene.
func (r *Registry) Close() {
	for _, c := range r.Controllers() {
		c.Dispose()
	}
}
