package motion

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/soar/MotionControllerView/internal/gamepad"
	"github.com/soar/MotionControllerView/internal/scene"
)

// RotateOffset flips imported models around X so they face the engine's forward axis.
var RotateOffset = [3]float64{math.Pi, 0, 0}

// ModelLoader acquires the root node of a controller model.
type ModelLoader interface {
	Load(ctx context.Context, id string, hand gamepad.Hand) (*scene.Node, error)
}

// Controller binds one physical controller (id, hand) to its model and
// republishes its button changes on semantic channels.
//
// Until a model is bound, Update only tracks button state. Once bound, the
// model is never replaced.
type Controller struct {
	id      string
	hand    gamepad.Hand
	key     string
	mapping Mapping
	scene   *scene.Scene
	loader  ModelLoader
	log     *zap.Logger

	model    atomic.Pointer[Model]
	flight   singleflight.Group
	channels map[Channel]*Observable[ButtonEvent]
	loaded   *Observable[*Model]

	prev []gamepad.Button
}

func NewController(id string, hand gamepad.Hand, m Mapping, sc *scene.Scene, loader ModelLoader, log *zap.Logger) *Controller {
	key := gamepad.ControllerKey(id, hand)
	c := &Controller{
		id:       id,
		hand:     hand,
		key:      key,
		mapping:  m,
		scene:    sc,
		loader:   loader,
		log:      log.Named("motion").With(zap.String("controller", key)),
		channels: make(map[Channel]*Observable[ButtonEvent], len(Channels)),
		loaded:   NewObservable[*Model](),
	}
	for _, ch := range Channels {
		c.channels[ch] = NewObservable[ButtonEvent]()
	}
	return c
}

func (c *Controller) ID() string { return c.id }
func (c *Controller) Hand() gamepad.Hand { return c.hand }

// Key is the scene name of the controller's parent node.
func (c *Controller) Key() string { return c.key }

// Model returns the bound model, or nil before binding.
func (c *Controller) Model() *Model { return c.model.Load() }

// Channel returns the observable for ch, or nil for an unknown channel.
func (c *Controller) Channel(ch Channel) *Observable[ButtonEvent] { return c.channels[ch] }

func (c *Controller) OnTrigger() *Observable[ButtonEvent] { return c.channels[TriggerStateChanged] }
func (c *Controller) OnMenu() *Observable[ButtonEvent] { return c.channels[SecondaryButtonStateChanged] }
func (c *Controller) OnGrip() *Observable[ButtonEvent] { return c.channels[MainButtonStateChanged] }
func (c *Controller) OnThumbstick() *Observable[ButtonEvent] {
	return c.channels[PadStateChanged]
}
func (c *Controller) OnTrackpad() *Observable[ButtonEvent] { return c.channels[TrackpadChanged] }

// OnSecondaryTrigger is exposed for subscribers, but no control of the
// Windows Mixed Reality mapping feeds it.
func (c *Controller) OnSecondaryTrigger() *Observable[ButtonEvent] {
	return c.channels[SecondaryTriggerStateChanged]
}

// OnModelLoaded is notified once, when the model gets bound.
func (c *Controller) OnModelLoaded() *Observable[*Model] { return c.loaded }

// InitMesh binds the controller to its model and returns the model's parent
// node. A node already in the scene under Key is reused; otherwise the model
// is loaded and attached to the scene. Concurrent calls share one load.
func (c *Controller) InitMesh(ctx context.Context) (*scene.Node, error) {
	if m := c.model.Load(); m != nil {
		return m.Root, nil
	}
	v, err, _ := c.flight.Do(c.key, func() (any, error) {
		if m := c.model.Load(); m != nil {
			return m.Root, nil
		}
		if parent := c.scene.NodeByName(c.key); parent != nil {
			return c.bind(parent)
		}

		root, err := c.loader.Load(ctx, c.id, c.hand)
		if err != nil {
			return nil, err
		}
		parent := scene.NewNode(c.key)
		parent.Pickable = false
		root.SetParent(parent)
		root.AddRotation(RotateOffset[0], RotateOffset[1], RotateOffset[2])
		if err := c.scene.Add(parent); err != nil {
			return nil, fmt.Errorf("motion: attach %q: %w", c.key, err)
		}
		return c.bind(parent)
	})
	if err != nil {
		return nil, err
	}
	return v.(*scene.Node), nil
}

func (c *Controller) bind(parent *scene.Node) (*scene.Node, error) {
	var model *Model
	c.scene.View(func() {
		model = Resolve(parent, c.mapping)
	})

	for i, ctl := range c.mapping.Buttons {
		if _, ok := model.Buttons[ctl]; !ok {
			c.log.Debug("control has no complete landmarks", zap.String("control", string(ctl)), zap.Int("index", i))
		}
	}
	c.log.Info("controller model bound",
		zap.Int("buttons", len(model.Buttons)),
		zap.Int("axes", len(model.Axes)))

	c.model.Store(model)
	c.loaded.Notify(model)
	return parent, nil
}

// Dispose removes the model from the scene.
func (c *Controller) Dispose() {
	if m := c.model.Load(); m != nil {
		c.scene.Remove(m.Root)
	}
}

// Update applies one input frame. Changed buttons are posed and then
// notified, in index order; axes are posed on every frame.
func (c *Controller) Update(f gamepad.Frame) {
	changes := gamepad.ButtonChanges(c.prev, f.Buttons)
	c.prev = slices.Clone(f.Buttons)

	model := c.model.Load()
	if model == nil {
		return
	}

	for _, ch := range changes {
		c.handleButtonChange(model, ch.Index, f.Buttons[ch.Index])
	}

	c.scene.Update(func() {
		for axis := range c.mapping.AxisNodes {
			if axis >= len(f.Axes) {
				break
			}
			model.ApplyAxis(axis, f.Axes[axis])
		}
	})
}

func (c *Controller) handleButtonChange(model *Model, index int, b gamepad.Button) {
	ctl, ok := c.mapping.ControlAt(index)
	if !ok {
		c.log.Warn("unmapped button", zap.Int("index", index))
		return
	}

	c.scene.Update(func() {
		model.ApplyButton(ctl, b.Value)
	})

	ch, ok := c.mapping.Channels[ctl]
	if !ok {
		return
	}
	obs := c.channels[ch]
	if obs == nil {
		return
	}
	obs.Notify(ButtonEvent{
		Control: ctl,
		Channel: ch,
		Index:   index,
		Value:   b.Value,
		Pressed: b.Pressed,
		Touched: b.Touched,
	})
}
