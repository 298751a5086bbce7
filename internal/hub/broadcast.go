package hub

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/motion"
)

const (
	fullSyncInterval = 5 * time.Second
	poseInterval     = 33 * time.Millisecond
	deltaCountSync   = 100
)

// Source is what the broadcaster reads controllers from.
type Source interface {
	OnControllerAdded() *motion.Observable[*motion.Controller]
	Controllers() []*motion.Controller
	Snapshots() []motion.Snapshot
}

type controllerEvent struct {
	controller string
	event      motion.ButtonEvent
}

// Broadcaster subscribes to every controller's channels and pushes events and
// poses to the hub.
type Broadcaster struct {
	hub    *Hub
	source Source
	events chan controllerEvent
	seq    int64
	log    *zap.Logger
}

func NewBroadcaster(h *Hub, source Source, log *zap.Logger) *Broadcaster {
	b := &Broadcaster{
		hub:    h,
		source: source,
		events: make(chan controllerEvent, 256),
		log:    log.Named("broadcast"),
	}
	source.OnControllerAdded().Add(b.watch)
	for _, c := range source.Controllers() {
		b.watch(c)
	}
	return b
}

// watch runs on the frame goroutine, so it only queues.
func (b *Broadcaster) watch(c *motion.Controller) {
	key := c.Key()
	for _, ch := range motion.Channels {
		c.Channel(ch).Add(func(ev motion.ButtonEvent) {
			select {
			case b.events <- controllerEvent{controller: key, event: ev}:
			default:
				// Drop rather than stall the frame loop
			}
		})
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(done <-chan struct{}) {
	fullTicker := time.NewTicker(fullSyncInterval)
	defer fullTicker.Stop()
	poseTicker := time.NewTicker(poseInterval)
	defer poseTicker.Stop()

	var deltaCount int64

	for {
		select {
		case <-done:
			return

		case ev := <-b.events:
			b.seq++
			deltaCount++
			b.send(NewEventMessage(b.seq, ev.controller, ev.event), ev.controller)
			if deltaCount >= deltaCountSync {
				b.sendFull()
				deltaCount = 0
			}

		case <-poseTicker.C:
			if b.hub.Len() == 0 {
				continue
			}
			for _, s := range b.source.Snapshots() {
				if !s.Bound {
					continue
				}
				b.seq++
				b.send(NewPoseMessage(b.seq, s), s.Key)
			}

		case <-fullTicker.C:
			b.sendFull()
		}
	}
}

// SendInitialState sends every controller's pose to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	data, err := json.Marshal(NewFullMessage(0, b.source.Snapshots()))
	if err != nil {
		b.log.Error("marshal initial state", zap.Error(err))
		return
	}
	c.trySend(data)
}

func (b *Broadcaster) sendFull() {
	b.seq++
	b.send(NewFullMessage(b.seq, b.source.Snapshots()), "")
}

func (b *Broadcaster) send(msg *WSMessage, controller string) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("marshal message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	b.hub.BroadcastTo(data, controller)
}
