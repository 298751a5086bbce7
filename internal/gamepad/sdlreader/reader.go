// Package sdlreader polls joysticks through SDL3 and turns them into gamepad frames.
// Importing it loads the native SDL3 library.
package sdlreader

import (
	"context"
	"runtime"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/gamepad"
)

const pollDelayNS = 16_000_000 // ~60Hz

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       string
	hand     gamepad.Hand
	sdlID    sdl.JoystickID
}

// sdlDevice adapts an open SDL joystick to gamepad.RawReader.
type sdlDevice struct{ js *sdl.Joystick }

func (d sdlDevice) Axis(index int32) int16 { return sdl.GetJoystickAxis(d.js, index) }
func (d sdlDevice) Button(index int32) bool { return sdl.GetJoystickButton(d.js, index) }
func (d sdlDevice) NumButtons() int32 { return sdl.GetNumJoystickButtons(d.js) }
func (d sdlDevice) NumAxes() int32 { return sdl.GetNumJoystickAxes(d.js) }

// Options tune how raw input is turned into frames.
type Options struct {
	Deadzone float64
	// Hand overrides name-based hand detection when set.
	Hand gamepad.Hand
}

// Reader polls every connected joystick and emits one gamepad.Frame per
// joystick per poll. Axes are sent every poll, not only on change.
type Reader struct {
	log       *zap.Logger
	opts      Options
	joysticks map[sdl.JoystickID]*joystickInfo
	frames    chan gamepad.Frame
}

func NewReader(log *zap.Logger, opts Options) *Reader {
	return &Reader{
		log:       log.Named("gamepad"),
		opts:      opts,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		frames:    make(chan gamepad.Frame, 64),
	}
}

// Frames returns the channel on which frames are sent. It is closed when Run returns.
func (r *Reader) Frames() <-chan gamepad.Frame {
	return r.frames
}

// Run initializes SDL and runs the event+polling loop on the current thread
// until ctx is cancelled.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.frames)

	if !sdl.Init(sdl.InitJoystick) {
		return &InitError{Reason: sdl.GetError()}
	}
	defer sdl.Quit()

	r.log.Info("SDL3 joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		default:
		}

		r.processEvents()
		r.pollAll()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		case sdl.EventJoystickButtonDown:
			be := event.JButton()
			r.log.Debug("button down", zap.Uint8("index", be.Button), zap.Uint32("joystick", uint32(be.Which)))
		case sdl.EventJoystickButtonUp:
			be := event.JButton()
			r.log.Debug("button up", zap.Uint8("index", be.Button), zap.Uint32("joystick", uint32(be.Which)))
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.log.Warn("failed to open joystick", zap.Uint32("joystick", uint32(instanceID)), zap.String("error", sdl.GetError()))
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	hand := r.opts.Hand
	if hand == "" {
		hand = gamepad.DetectHand(name)
	}

	info := &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       gamepad.ControllerID(name, vendorID, productID),
		hand:     hand,
		sdlID:    jsID,
	}
	r.joysticks[jsID] = info

	r.log.Info("joystick connected",
		zap.String("name", name),
		zap.String("id", info.id),
		zap.String("hand", string(hand)),
		zap.String("mapping", mapping.Name),
		zap.Int32("axes", sdl.GetNumJoystickAxes(js)),
		zap.Int32("buttons", sdl.GetNumJoystickButtons(js)))
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	r.log.Info("joystick disconnected", zap.String("name", info.name))
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	r.emit(gamepad.Frame{
		JoystickID: uint32(info.sdlID),
		ID:         info.id,
		Name:       info.name,
		Hand:       info.hand,
	})
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

func (r *Reader) pollAll() {
	for _, info := range r.joysticks {
		if !sdl.JoystickConnected(info.joystick) {
			continue
		}
		buttons, axes := info.mapping.Sample(sdlDevice{info.joystick}, r.opts.Deadzone)
		r.emit(gamepad.Frame{
			JoystickID: uint32(info.sdlID),
			ID:         info.id,
			Name:       info.name,
			Hand:       info.hand,
			Connected:  true,
			Buttons:    buttons,
			Axes:       axes,
		})
	}
}

func (r *Reader) emit(f gamepad.Frame) {
	select {
	case r.frames <- f:
	default:
		// Drop if channel is full to avoid blocking the SDL thread
	}
}
