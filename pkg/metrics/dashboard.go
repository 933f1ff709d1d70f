package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fairgate/scheduler/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Every origin is accepted. Admin dashboard connections are same-origin
	// in deployment; pkg/middleware only sets CORS response headers and
	// rejects no origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dashboardEvent is the envelope streamed to every websocket subscriber,
// tagging each published value with its kind so a single connection can
// multiplex gate, reservation, and usage events.
type dashboardEvent struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Dashboard streams broadcaster events over a websocket connection for a
// live admin view, following the subscriber-channel-to-HTTP-stream shape
// the teacher's OpenAIRecorder used for its own streaming endpoint, but
// over a websocket rather than chunked HTTP.
type Dashboard struct {
	log          logging.Logger
	gateEvents   *Broadcaster[GateEvent]
	reservations *Broadcaster[any]
	usage        *Broadcaster[any]
}

// GateEvent is published whenever a model's gate occupancy changes.
type GateEvent struct {
	ModelID string
	InUse   int
	Limit   int
	At      time.Time
}

// NewDashboard constructs a Dashboard. reservations and usage accept `any`
// because the dashboard only needs to re-marshal and forward them, not
// interpret their shape.
func NewDashboard(log logging.Logger, gateEvents *Broadcaster[GateEvent], reservations, usage *Broadcaster[any]) *Dashboard {
	return &Dashboard{log: log, gateEvents: gateEvents, reservations: reservations, usage: usage}
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects or writes fail.
func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.WithError(err).Warn("dashboard websocket upgrade failed")
		return
	}
	defer conn.Close()

	subID := r.RemoteAddr + "-" + time.Now().String()
	gateCh := d.gateEvents.Subscribe(subID)
	resCh := d.reservations.Subscribe(subID)
	usageCh := d.usage.Subscribe(subID)
	defer d.gateEvents.Unsubscribe(subID)
	defer d.reservations.Unsubscribe(subID)
	defer d.usage.Unsubscribe(subID)

	for {
		var evt dashboardEvent
		select {
		case g, ok := <-gateCh:
			if !ok {
				return
			}
			raw, _ := json.Marshal(g)
			evt = dashboardEvent{Kind: "gate", Data: raw}
		case rv, ok := <-resCh:
			if !ok {
				return
			}
			raw, _ := json.Marshal(rv)
			evt = dashboardEvent{Kind: "reservation", Data: raw}
		case u, ok := <-usageCh:
			if !ok {
				return
			}
			raw, _ := json.Marshal(u)
			evt = dashboardEvent{Kind: "usage", Data: raw}
		}

		if err := conn.WriteJSON(evt); err != nil {
			return
		}
	}
}
