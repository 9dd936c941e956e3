package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Change is a slider edit sent by a remote client.
type Change struct {
	Index int     `json:"index"`
	Value float32 `json:"value"`
}

// ItemView is the wire form of an Item.
type ItemView struct {
	Index int     `json:"index"`
	Type  string  `json:"type"`
	Name  string  `json:"name,omitempty"`
	Min   float32 `json:"min"`
	Max   float32 `json:"max"`
	Step  float32 `json:"step"`
	Value float32 `json:"value"`
}

const (
	maxMessageSize = 4 << 10
	writeWait      = 200 * time.Millisecond
	clientBacklog  = 4
)

// client owns one connection. Only its writer goroutine writes to conn;
// out is closed by whoever removes the client from Remote.clients.
type client struct {
	conn *websocket.Conn
	out  chan []byte
}

func (c *client) writeLoop() {
	for b := range c.out {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write panel snapshot")
			c.conn.Close()
		}
	}
}

// Remote serves the panel over HTTP: an HTML page at /, a WebSocket at /ws
// and /health. Edits arrive on connection goroutines and are queued; Update
// applies them on the render thread, so items have a single writer.
// Snapshots are queued per client and never written from the render thread.
type Remote struct {
	addr string

	items []*Item // render thread only

	mu        sync.Mutex
	pending   []Change
	snapshot  []ItemView
	clients   map[*client]struct{}
	startTime time.Time

	meter    fpsMeter
	lastPush time.Time

	srv *http.Server
}

func NewRemote(addr string) *Remote {
	return &Remote{
		addr:      addr,
		clients:   map[*client]struct{}{},
		startTime: time.Now(),
	}
}

func (r *Remote) Add(item *Item) {
	r.items = append(r.items, item)
	r.mu.Lock()
	r.snapshot = r.views()
	r.mu.Unlock()
}

// Update applies queued edits, refreshes the FPS readout and pushes a new
// snapshot to clients when anything changed or a second has passed.
func (r *Remote) Update(delta float32) {
	fps := r.meter.add(delta)

	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, c := range pending {
		if c.Index < 0 || c.Index >= len(r.items) {
			log.Warn().Int("index", c.Index).Msg("panel change out of range")
			continue
		}
		r.items[c.Index].Set(c.Value)
	}
	for _, it := range r.items {
		if it.Type == ItemFPS {
			it.Value = fps
		}
	}

	now := time.Now()
	if len(pending) == 0 && now.Sub(r.lastPush) < time.Second {
		return
	}
	r.lastPush = now

	views := r.views()
	r.mu.Lock()
	r.snapshot = views
	r.mu.Unlock()
	r.broadcast(views)
}

func (r *Remote) views() []ItemView {
	out := make([]ItemView, len(r.items))
	for i, it := range r.items {
		out[i] = ItemView{
			Index: i,
			Type:  it.Type.String(),
			Name:  it.Name,
			Min:   it.Min,
			Max:   it.Max,
			Step:  it.Step,
			Value: it.Value,
		}
	}
	return out
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

func (r *Remote) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", r.handleIndex)
	mux.HandleFunc("/ws", r.handleWS)
	mux.HandleFunc("/health", r.handleHealth)
	return mux
}

// Start serves Handler on the configured address until ctx is done.
func (r *Remote) Start(ctx context.Context) {
	r.srv = &http.Server{
		Addr:         r.addr,
		Handler:      r.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", r.addr).Msg("panel server starting")
		if err := r.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("panel server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		r.Close()
	}()
}

func (r *Remote) Close() {
	if r.srv != nil {
		_ = r.srv.Close()
	}
	r.mu.Lock()
	for c := range r.clients {
		close(c.out)
		c.conn.Close()
	}
	clear(r.clients)
	r.mu.Unlock()
}

func (r *Remote) handleIndex(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (r *Remote) handleHealth(w http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	resp := map[string]any{
		"items":    len(r.snapshot),
		"clients":  len(r.clients),
		"uptime_s": time.Since(r.startTime).Seconds(),
	}
	r.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (r *Remote) handleWS(w http.ResponseWriter, req *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := up.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	conn.SetReadLimit(maxMessageSize)

	c := &client{conn: conn, out: make(chan []byte, clientBacklog)}
	r.mu.Lock()
	c.out <- encodeViews(r.snapshot)
	r.clients[c] = struct{}{}
	r.mu.Unlock()
	go c.writeLoop()

	go func() {
		defer func() {
			r.mu.Lock()
			if _, ok := r.clients[c]; ok {
				delete(r.clients, c)
				close(c.out)
			}
			r.mu.Unlock()
			conn.Close()
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ch Change
			if err := json.Unmarshal(data, &ch); err != nil {
				log.Debug().Err(err).Msg("bad panel message")
				continue
			}
			r.mu.Lock()
			r.pending = append(r.pending, ch)
			r.mu.Unlock()
		}
	}()
}

func encodeViews(views []ItemView) []byte {
	if views == nil {
		views = []ItemView{}
	}
	b, _ := json.Marshal(views)
	return b
}

// broadcast queues views for every client without blocking. A client whose
// backlog is full skips this snapshot; a later one supersedes it.
func (r *Remote) broadcast(views []ItemView) {
	b := encodeViews(views)
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		select {
		case c.out <- b:
		default:
		}
	}
}

const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Fluid Glow Panel</title>
<style>
body { background: #060606; color: #ccc; font: 12px monospace; margin: 20px; }
.row { display: flex; align-items: center; gap: 10px; height: 22px; }
.row label { width: 80px; }
.row input { width: 200px; }
hr { border: 0; border-top: 1px solid #333; margin: 8px 0; }
</style>
</head>
<body>
<div id="panel"></div>
<script>
const panel = document.getElementById('panel');
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
let built = 0;
ws.onmessage = e => {
  const items = JSON.parse(e.data);
  // items are added after the scene loads; rebuild when the list changes
  if (items.length !== built) { panel.replaceChildren(); build(items); built = items.length; }
  items.forEach(it => {
    const out = document.getElementById('v' + it.index);
    if (out) out.textContent = it.type === 'fps' ? Math.round(it.value) : it.value;
    const input = document.getElementById('i' + it.index);
    if (input && document.activeElement !== input) input.value = it.value;
  });
};
function build(items) {
  items.forEach(it => {
    if (it.type === 'divider') { panel.appendChild(document.createElement('hr')); return; }
    const row = document.createElement('div');
    row.className = 'row';
    row.innerHTML = '<label>' + it.name + '</label>';
    if (it.type === 'slider') {
      const input = document.createElement('input');
      Object.assign(input, { id: 'i' + it.index, type: 'range', min: it.min, max: it.max, step: it.step, value: it.value });
      input.oninput = () => ws.send(JSON.stringify({ index: it.index, value: parseFloat(input.value) }));
      row.appendChild(input);
    }
    const out = document.createElement('span');
    out.id = 'v' + it.index;
    row.appendChild(out);
    panel.appendChild(row);
  });
}
</script>
</body>
</html>
`
