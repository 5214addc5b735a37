package webui

import (
	"html/template"
	"log"
	"net/http"
)

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// ServeIndex renders the chat page and makes sure the caller has a
// session cookie before any API or websocket traffic starts.
func (u *WebUI) ServeIndex(w http.ResponseWriter, r *http.Request) {
	u.sessionFor(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		log.Printf("webui: render index: %v", err)
	}
}

// indexTemplate is the single-page chat UI.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>docGPT</title>
  <style>
    :root {
      --bg: #ffffff;
      --bg-sidebar: #f1f3f5;
      --text: #212529;
      --text-muted: #868e96;
      --border: #dee2e6;
      --accent: #228be6;
      --bubble-user: #e7f5ff;
      --bubble-assistant: #f8f9fa;
    }
    * { box-sizing: border-box; }
    body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; color: var(--text); display: flex; height: 100vh; }
    .sidebar { width: 300px; background: var(--bg-sidebar); border-right: 1px solid var(--border); padding: 16px; overflow-y: auto; }
    .sidebar h2 { font-size: 15px; margin: 16px 0 8px; }
    .sidebar input[type="password"] { width: 100%; padding: 8px; border: 1px solid var(--border); border-radius: 6px; }
    .sidebar .hint { font-size: 12px; color: var(--text-muted); margin: 6px 0 0; }
    .sidebar button { margin-top: 8px; padding: 8px 12px; border: none; border-radius: 6px; background: var(--accent); color: #fff; cursor: pointer; }
    .sidebar hr { border: none; border-top: 1px solid var(--border); margin: 16px 0; }
    #file-list { list-style: none; padding: 0; margin: 8px 0; font-size: 13px; }
    #file-list li { padding: 3px 0; }
    #upload-status { font-size: 12px; color: var(--text-muted); white-space: pre-line; }
    .main { flex: 1; display: flex; flex-direction: column; }
    .main h1 { margin: 0; padding: 16px 24px; border-bottom: 1px solid var(--border); font-size: 20px; }
    #messages { flex: 1; overflow-y: auto; padding: 16px 24px; }
    .msg { max-width: 75%; margin-bottom: 12px; padding: 10px 14px; border-radius: 10px; white-space: pre-wrap; }
    .msg.user { background: var(--bubble-user); margin-left: auto; }
    .msg.assistant { background: var(--bubble-assistant); border: 1px solid var(--border); }
    .msg.error { background: #fff5f5; border: 1px solid #ffc9c9; color: #c92a2a; }
    form.ask { display: flex; gap: 8px; padding: 16px 24px; border-top: 1px solid var(--border); }
    form.ask input { flex: 1; padding: 10px; border: 1px solid var(--border); border-radius: 8px; }
    form.ask button { padding: 10px 18px; border: none; border-radius: 8px; background: var(--accent); color: #fff; cursor: pointer; }
  </style>
</head>
<body>
  <nav class="sidebar">
    <h2>OpenAI API Key</h2>
    <input type="password" id="api-key" placeholder="sk-...">
    <p class="hint">We do not store your OpenAI key. It powers this chat session only.</p>
    <button id="save-key">Save key</button>
    <hr>
    <h2>Knowledge Base</h2>
    <ul id="file-list"><li>No files added yet</li></ul>
    <hr>
    <h2>Upload documents</h2>
    <input type="file" id="file-input" multiple accept=".pdf,.txt,.docx">
    <button id="upload">Add to knowledge base</button>
    <p id="upload-status"></p>
  </nav>
  <main class="main">
    <h1>&#128196; docGPT</h1>
    <div id="messages"></div>
    <form class="ask" id="ask-form">
      <input type="text" id="query" placeholder="Ask me anything!" autocomplete="off">
      <button type="submit">Send</button>
    </form>
  </main>
  <script>
    const messagesEl = document.getElementById('messages');
    let ws = null;
    let streamingEl = null;

    function addMessage(role, text, html) {
      const div = document.createElement('div');
      div.className = 'msg ' + role;
      if (html) { div.innerHTML = html; } else { div.textContent = text; }
      messagesEl.appendChild(div);
      messagesEl.scrollTop = messagesEl.scrollHeight;
      return div;
    }

    async function refreshFiles() {
      const resp = await fetch('/api/files');
      const data = await resp.json();
      const list = document.getElementById('file-list');
      list.innerHTML = '';
      if (!data.files || data.files.length === 0) {
        list.innerHTML = '<li>No files added yet</li>';
        return;
      }
      for (const name of data.files) {
        const li = document.createElement('li');
        li.textContent = '• ' + name;
        list.appendChild(li);
      }
    }

    async function loadTranscript() {
      const resp = await fetch('/api/session/transcript');
      const data = await resp.json();
      messagesEl.innerHTML = '';
      for (const m of data.messages) addMessage(m.role, m.content, m.html);
    }

    function connect() {
      const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      ws = new WebSocket(proto + location.host + '/ws/chat');
      ws.onmessage = (ev) => {
        const msg = JSON.parse(ev.data);
        if (msg.type === 'delta') {
          if (!streamingEl) streamingEl = addMessage('assistant', '');
          streamingEl.textContent = msg.content;
          messagesEl.scrollTop = messagesEl.scrollHeight;
        } else if (msg.type === 'done') {
          if (!streamingEl) streamingEl = addMessage('assistant', '');
          streamingEl.textContent = msg.content;
          streamingEl = null;
        } else if (msg.type === 'error') {
          if (streamingEl) { streamingEl.remove(); streamingEl = null; }
          addMessage('error', msg.content);
        }
      };
      ws.onclose = () => { ws = null; };
    }

    document.getElementById('save-key').addEventListener('click', async () => {
      const key = document.getElementById('api-key').value.trim();
      const resp = await fetch('/api/session/key', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ api_key: key })
      });
      if (!resp.ok) {
        const data = await resp.json();
        addMessage('error', data.error || 'could not save key');
      }
    });

    document.getElementById('upload').addEventListener('click', async () => {
      const input = document.getElementById('file-input');
      if (input.files.length === 0) return;
      const form = new FormData();
      for (const f of input.files) form.append('files', f);
      document.getElementById('upload-status').textContent = 'Adding to knowledge base...';
      const resp = await fetch('/api/upload', { method: 'POST', body: form });
      const data = await resp.json();
      const lines = (data.results || []).map(r => r.file_name + ': ' + r.status + (r.error ? ' (' + r.error + ')' : ''));
      if (data.error && (!data.results || !data.results.length)) lines.push(data.error);
      document.getElementById('upload-status').textContent = lines.join('\n');
      await refreshFiles();
      await loadTranscript();
    });

    document.getElementById('ask-form').addEventListener('submit', (ev) => {
      ev.preventDefault();
      const input = document.getElementById('query');
      const query = input.value.trim();
      if (!query) return;
      input.value = '';
      addMessage('user', query);
      streamingEl = addMessage('assistant', 'Thinking...');
      if (!ws || ws.readyState !== WebSocket.OPEN) {
        connect();
        ws.onopen = () => ws.send(JSON.stringify({ type: 'ask', content: query }));
      } else {
        ws.send(JSON.stringify({ type: 'ask', content: query }));
      }
    });

    loadTranscript();
    refreshFiles();
    connect();
  </script>
</body>
</html>`
