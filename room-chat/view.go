package main

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/room-chat/chatview"
)

// NewHandler builds the chat HTTP router (UI + websocket). Every websocket
// mounts its own chat view through dial, starting from defaults.
func NewHandler(name string, dial chatview.Dialer, sessions *sessionSet, defaults chatview.Session) http.Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) { serveIndex(w, r, name) })
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("[room-chat] upgrade websocket")
			return
		}
		sessions.serve(newBridge(conn, r.RemoteAddr, defaults), dial)
	})
	return r
}

func serveIndex(w http.ResponseWriter, r *http.Request, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTmpl.Execute(w, struct{ Name string }{Name: name})
}

var indexTmpl = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Real-Time Chat | {{.Name}}</title>
  <style>
    :root{
      --bg: #f6f7f9;
      --panel: #ffffff;
      --border: #dfe3e8;
      --fg: #1f2933;
      --muted: #6b7280;
      --accent: #1976d2;
      --bot: #f4f4f4;
      --user: #cfe8fc;
    }
    *{ box-sizing: border-box }
    body { margin:0; padding:24px; background:var(--bg); color:var(--fg); font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial }
    .wrap { max-width: 500px; margin: 40px auto 0 }
    h1 { margin:0 0 16px 0; font-weight:500; font-size:24px }
    .field { display:block; width:100%; margin-bottom:16px; padding:12px; border:1px solid var(--border); border-radius:4px; font-size:15px; background:var(--panel); color:var(--fg) }
    .actions { display:flex; gap:16px }
    button { padding:8px 16px; border-radius:4px; font-size:14px; text-transform:uppercase; cursor:pointer; border:1px solid var(--accent) }
    button.primary { background:var(--accent); color:#fff }
    button.outlined { background:transparent; color:var(--accent) }
    button.full { width:100% }
    button:disabled { opacity:.5; cursor:default }
    .status { color:var(--muted); font-size:12px; margin:8px 0 0 }
    .panel { height:300px; overflow:auto; margin:16px 0; padding:8px; background:var(--panel); border-radius:4px; box-shadow:0 1px 3px rgba(0,0,0,.15) }
    .item { display:flex; flex-direction:column; max-width:80%; margin:4px 0 }
    .item.left { align-items:flex-start; margin-right:auto }
    .item.right { align-items:flex-end; margin-left:auto }
    .label { font-size:12px; font-weight:700; margin:0 8px }
    .bubble { display:flex; flex-direction:row; align-items:center; gap:8px; margin:4px 8px; padding:8px; border-radius:8px; word-break:break-word; white-space:pre-wrap }
    .left .bubble { background:var(--bot) }
    .right .bubble { background:var(--user) }
    .avatar { width:32px; height:32px; border-radius:50%; object-fit:cover }
    .bot { font-size:20px; line-height:1 }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Real-Time Chat</h1>
    <input id="nickname" class="field" type="text" placeholder="Nickname" autocomplete="off" />
    <input id="room" class="field" type="text" placeholder="Room ID" autocomplete="off" />
    <div class="actions">
      <button id="create" class="primary" disabled>Create Room</button>
      <button id="join" class="outlined" disabled>Join Room</button>
    </div>
    <p id="status" class="status">connecting…</p>
    <div id="panel" class="panel"></div>
    <input id="draft" class="field" type="text" placeholder="Type a message..." autocomplete="off" />
    <button id="send" class="primary full" disabled>Send</button>
  </div>
  <script>
    const $ = (id) => document.getElementById(id);
    const nickname = $('nickname'), room = $('room'), draft = $('draft');
    const panel = $('panel'), statusEl = $('status');
    const proto = location.protocol === 'https:' ? 'wss' : 'ws';
    const basePath = location.pathname.endsWith('/') ? location.pathname : (location.pathname + '/');
    const ws = new WebSocket(proto + '://' + location.host + basePath + 'ws');
    const rendered = new Set();
    let alerted = false;

    function post(type, value){
      if (ws.readyState !== 1) return;
      ws.send(JSON.stringify({ type: type, value: value || '' }));
    }
    function sync(el, value){
      // never overwrite what the user is typing, except a cleared draft
      if (document.activeElement === el && value !== '') return;
      if (el.value !== value) el.value = value;
    }
    function setEnabled(on){
      ['create', 'join', 'send'].forEach((id) => { $(id).disabled = !on; });
    }
    function renderSession(s){
      sync(nickname, s.nickname || '');
      sync(room, s.roomId || '');
      sync(draft, s.draft || '');
      statusEl.textContent = s.closed ? 'disconnected' : (s.connected ? 'connected' : 'connecting…');
    }
    function renderEntry(index, e){
      if (rendered.has(index)) return;
      rendered.add(index);
      const item = document.createElement('div');
      item.className = 'item ' + e.align;
      const label = document.createElement('span');
      label.className = 'label';
      label.textContent = e.label;
      const bubble = document.createElement('div');
      bubble.className = 'bubble';
      if (e.bot) {
        const icon = document.createElement('span');
        icon.className = 'bot';
        icon.textContent = '🤖';
        bubble.appendChild(icon);
      } else if (e.avatar) {
        const img = document.createElement('img');
        img.className = 'avatar';
        img.src = e.avatar;
        img.alt = '';
        bubble.appendChild(img);
      }
      const body = document.createElement('span');
      body.textContent = e.body;
      bubble.appendChild(body);
      item.appendChild(label);
      item.appendChild(bubble);
      panel.appendChild(item);
      panel.scrollTop = panel.scrollHeight;
    }
    function showAlert(kind, text){
      if (kind === 'connection-closed') {
        if (alerted) return;
        alerted = true;
      }
      alert(text);
    }

    ws.onmessage = (ev) => {
      let msg;
      try { msg = JSON.parse(ev.data); } catch(_) { return; }
      if (msg.type === 'mounted') setEnabled(true);
      else if (msg.type === 'session' && msg.session) renderSession(msg.session);
      else if (msg.type === 'message' && msg.entry) renderEntry(msg.index || 0, msg.entry);
      else if (msg.type === 'alert') showAlert(msg.alert, msg.body || '');
    };
    ws.onclose = () => { statusEl.textContent = 'disconnected'; setEnabled(false); };

    nickname.addEventListener('input', () => post('nickname', nickname.value));
    room.addEventListener('input', () => post('room', room.value));
    draft.addEventListener('input', () => post('draft', draft.value));
    $('create').addEventListener('click', () => post('create'));
    $('join').addEventListener('click', () => post('join'));
    function send(){
      if (!draft.value) return;
      post('send', draft.value);
    }
    $('send').addEventListener('click', send);
    draft.addEventListener('keydown', (e) => {
      if (e.isComposing || e.keyCode === 229) return;
      if (e.key === 'Enter') { e.preventDefault(); send(); }
    });
  </script>
</body>
</html>`))
