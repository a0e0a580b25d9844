package site

// pageTemplate renders the single-page guide. It expects a pageData value
// and the "section" and "nav" templates defined below.
const pageTemplate = `<!DOCTYPE html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.BasePath}}style.css">
</head>
<body
  data-offset="{{.Offset}}"
  data-root-margin="{{.RootMargin}}"
  data-copy-window="{{.CopyWindowMS}}"
  data-chat-endpoint="{{.ChatEndpoint}}"
  data-search-endpoint="{{.SearchEndpoint}}"
  data-search-index="{{.BasePath}}search-index.json"
  data-error-text="{{.ErrorText}}">
  <nav class="sidebar" id="sidebar">
    <div class="sidebar-header">
      <div class="brand">
        <span class="brand-mark" aria-hidden="true">&lt;/&gt;</span>
        <h1 class="project-title">{{.Brand}}</h1>
      </div>
      <input type="text" id="search-input" placeholder="Search the guide..." autocomplete="off">
      <ul class="search-results" id="search-results"></ul>
    </div>
    <div class="sidebar-tree" id="sidebar-tree">
      {{template "nav" .Nav}}
    </div>
    <div class="sidebar-footer">{{.Version}} &bull; ChromiumOS Overlay</div>
  </nav>
  <div class="sidebar-overlay" id="sidebar-overlay"></div>
  <main class="content">
    <div class="top-bar">
      <button class="menu-toggle" id="menu-toggle" aria-label="Toggle sidebar">
        <svg width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <line x1="3" y1="6" x2="21" y2="6"/><line x1="3" y1="12" x2="21" y2="12"/><line x1="3" y1="18" x2="21" y2="18"/>
        </svg>
      </button>
      <span class="top-title">{{.Title}}</span>
      <button class="theme-toggle" id="theme-toggle" aria-label="Toggle theme">
        <svg class="sun-icon" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <circle cx="12" cy="12" r="5"/><line x1="12" y1="1" x2="12" y2="3"/><line x1="12" y1="21" x2="12" y2="23"/><line x1="1" y1="12" x2="3" y2="12"/><line x1="21" y1="12" x2="23" y2="12"/>
        </svg>
        <svg class="moon-icon" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <path d="M21 12.79A9 9 0 1 1 11.21 3 7 7 0 0 0 21 12.79z"/>
        </svg>
      </button>
    </div>
    <article class="page-content">
      {{range .Sections}}{{template "section" .}}{{end}}
      <footer class="page-footer"><p>{{.Footer}}</p></footer>
    </article>
  </main>
  {{if .ChatEndpoint}}
  <div class="chat" id="chat">
    <div class="chat-window" id="chat-window" hidden>
      <div class="chat-header">
        <span class="chat-title">Build Assistant</span>
        <button class="chat-close" id="chat-close" aria-label="Close assistant">&times;</button>
      </div>
      <div class="chat-messages" id="chat-messages">
        {{if .Greeting}}<div class="chat-msg model">{{.Greeting}}</div>{{end}}
      </div>
      <form class="chat-input" id="chat-form" autocomplete="off">
        <input type="text" id="chat-input" placeholder="Ask about the build...">
        <button type="submit" id="chat-send" aria-label="Send" disabled>&#10148;</button>
      </form>
    </div>
    <button class="chat-toggle" id="chat-toggle" aria-label="Toggle AI Assistant">?</button>
  </div>
  {{end}}
  <script src="{{.BasePath}}script.js"></script>
</body>
</html>
{{define "nav"}}<ul class="nav-list">
{{range .}}<li class="nav-item depth-{{.Depth}}"><a href="#{{.ID}}" data-anchor="{{.ID}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a>{{if .Children}}
{{template "nav" .Children}}{{end}}</li>
{{end}}</ul>{{end}}
{{define "section"}}<section id="{{.ID}}" class="guide-section depth-{{.Depth}}">
{{if eq .Depth 1}}<h2><span class="hash">#</span> {{.Title}}</h2>{{else}}<h3>{{.Title}}</h3>{{end}}
<div class="section-body">{{.Body}}</div>
{{range .Code}}<div class="code-sample">
<div class="code-header"><span class="code-label">{{.Label}}</span><button class="copy-btn" type="button">Copy</button></div>
<textarea class="code-raw" hidden readonly>{{.Code}}</textarea>
{{.Highlighted}}
</div>
{{end}}{{range .Children}}{{template "section" .}}{{end}}</section>
{{end}}`

// cssContent is the stylesheet for the guide page.
const cssContent = `/* ============ Theme ============ */
:root {
  --bg: #ffffff;
  --bg-secondary: #f8fafc;
  --bg-sidebar: #f1f5f9;
  --text: #0f172a;
  --text-secondary: #334155;
  --text-muted: #64748b;
  --border: #e2e8f0;
  --accent: #0891b2;
  --accent-light: rgba(6, 182, 212, 0.1);
  --code-bg: #f1f5f9;
  --error-bg: #fee2e2;
  --error-text: #991b1b;
  --sidebar-width: 288px;
  --content-max-width: 960px;
  --shadow-lg: 0 10px 30px rgba(0,0,0,0.15);
}

[data-theme="dark"] {
  --bg: #020617;
  --bg-secondary: #0f172a;
  --bg-sidebar: #0f172a;
  --text: #f1f5f9;
  --text-secondary: #cbd5e1;
  --text-muted: #64748b;
  --border: #1e293b;
  --accent: #06b6d4;
  --accent-light: rgba(6, 182, 212, 0.1);
  --code-bg: #0f172a;
  --error-bg: rgba(127, 29, 29, 0.5);
  --error-text: #fecaca;
  --shadow-lg: 0 10px 30px rgba(0,0,0,0.6);
}

/* ============ Base ============ */
*, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
html { font-size: 16px; }
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
  color: var(--text);
  background: var(--bg);
  line-height: 1.7;
  display: flex;
  min-height: 100vh;
}
a { color: var(--accent); text-decoration: none; }
code { font-family: "JetBrains Mono", "Fira Code", Menlo, monospace; font-size: 0.9em; }

/* ============ Sidebar ============ */
.sidebar {
  position: sticky;
  top: 0;
  width: var(--sidebar-width);
  height: 100vh;
  flex-shrink: 0;
  display: flex;
  flex-direction: column;
  background: var(--bg-sidebar);
  border-right: 1px solid var(--border);
  overflow-y: auto;
  z-index: 50;
}
.sidebar-header { padding: 24px 24px 8px; position: relative; }
.brand { display: flex; align-items: center; gap: 12px; margin-bottom: 20px; }
.brand-mark {
  width: 32px; height: 32px; border-radius: 6px;
  background: var(--accent); color: #fff;
  display: flex; align-items: center; justify-content: center;
  font-size: 12px; font-weight: 700;
  box-shadow: 0 0 15px rgba(6,182,212,0.5);
}
.project-title { font-size: 1.1rem; font-weight: 700; letter-spacing: -0.01em; }
#search-input {
  width: 100%; padding: 8px 12px; border-radius: 6px;
  border: 1px solid var(--border); background: var(--bg); color: var(--text);
}
.search-results { list-style: none; margin-top: 6px; }
.search-results li a { display: block; padding: 6px 8px; font-size: 0.85rem; border-radius: 4px; color: var(--text-secondary); }
.search-results li a:hover { background: var(--accent-light); }
.search-results .snippet { display: block; color: var(--text-muted); font-size: 0.75rem; }
.sidebar-tree { padding: 8px 16px; flex: 1; }
.nav-list { list-style: none; }
.nav-list .nav-list { margin-left: 16px; padding-left: 8px; border-left: 1px solid var(--border); }
.nav-item a {
  display: block; padding: 8px 12px; border-radius: 6px;
  font-size: 0.875rem; font-weight: 500; color: var(--text-muted);
  border-left: 2px solid transparent;
  transition: color 0.15s, background 0.15s;
}
.nav-item a:hover { color: var(--text); background: var(--accent-light); }
.nav-item a.active { color: var(--accent); background: var(--accent-light); border-left-color: var(--accent); }
.nav-item.depth-2 a, .nav-item.depth-3 a { padding: 6px 12px; font-size: 0.75rem; }
.nav-item.depth-2 a.active { background: transparent; border-left-color: transparent; font-weight: 600; }
.sidebar-footer { padding: 16px 24px; font-size: 0.75rem; color: var(--text-muted); border-top: 1px solid var(--border); }
.sidebar-overlay { display: none; }

/* ============ Content ============ */
.content { flex: 1; min-width: 0; }
.top-bar {
  display: flex; align-items: center; justify-content: space-between;
  padding: 12px 24px; border-bottom: 1px solid var(--border);
}
.top-title { font-weight: 700; }
.menu-toggle { display: none; background: none; border: none; color: var(--text); cursor: pointer; }
.theme-toggle { background: none; border: none; color: var(--text-muted); cursor: pointer; }
[data-theme="dark"] .sun-icon, [data-theme="light"] .moon-icon { display: none; }
.page-content { max-width: var(--content-max-width); margin: 0 auto; padding: 48px 64px; }
.guide-section { scroll-margin-top: 96px; margin-bottom: 64px; }
.guide-section .guide-section { margin: 32px 0 0; padding-left: 24px; border-left: 2px solid var(--border); }
.guide-section h2 {
  font-size: 1.875rem; font-weight: 700; margin-bottom: 16px;
  padding-bottom: 16px; border-bottom: 1px solid var(--border);
}
.guide-section h2 .hash { color: var(--accent); }
.guide-section h3 { font-size: 1.25rem; font-weight: 700; margin-bottom: 12px; }
.section-body { color: var(--text-secondary); font-size: 1.05rem; }
.section-body p, .section-body ul, .section-body ol { margin-bottom: 12px; }
.section-body ul, .section-body ol { padding-left: 24px; }
.section-body code { background: var(--code-bg); padding: 2px 6px; border-radius: 4px; }
.page-footer { margin-top: 80px; padding-top: 40px; border-top: 1px solid var(--border); text-align: center; color: var(--text-muted); font-size: 0.875rem; }

/* ============ Code samples ============ */
.code-sample { margin: 24px 0; border: 1px solid var(--border); border-radius: 8px; overflow: hidden; background: var(--code-bg); box-shadow: var(--shadow-lg); }
.code-header {
  display: flex; align-items: center; justify-content: space-between;
  padding: 8px 16px; border-bottom: 1px solid var(--border); background: var(--bg-secondary);
}
.code-label { font-family: monospace; font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: var(--accent); }
.copy-btn { background: none; border: none; color: var(--text-muted); font-size: 0.75rem; cursor: pointer; }
.copy-btn:hover, .copy-btn.copied { color: var(--text); }
.code-sample pre { margin: 0; padding: 16px; overflow-x: auto; white-space: pre-wrap; font-size: 0.875rem; background: transparent !important; }

/* ============ Chat widget ============ */
.chat { position: fixed; right: 24px; bottom: 24px; z-index: 60; display: flex; flex-direction: column; align-items: flex-end; }
.chat-window {
  width: 384px; max-width: calc(100vw - 48px); height: 70vh; max-height: 600px; margin-bottom: 16px;
  display: flex; flex-direction: column;
  background: var(--bg-secondary); border: 1px solid var(--border); border-radius: 16px;
  box-shadow: var(--shadow-lg); overflow: hidden;
}
.chat-window[hidden] { display: none; }
.chat-header {
  display: flex; justify-content: space-between; align-items: center; padding: 16px;
  background: linear-gradient(to right, #0891b2, #155e75); color: #fff;
}
.chat-title { font-weight: 600; }
.chat-close { background: none; border: none; color: rgba(255,255,255,0.8); font-size: 1.4rem; cursor: pointer; }
.chat-messages { flex: 1; overflow-y: auto; padding: 16px; display: flex; flex-direction: column; gap: 12px; }
.chat-msg { max-width: 85%; padding: 8px 16px; border-radius: 16px; font-size: 0.875rem; white-space: pre-wrap; }
.chat-msg.user { align-self: flex-end; background: #0891b2; color: #fff; border-top-right-radius: 0; }
.chat-msg.model { align-self: flex-start; background: var(--bg); border: 1px solid var(--border); border-top-left-radius: 0; }
.chat-msg.error { background: var(--error-bg); color: var(--error-text); border-color: #991b1b; }
.chat-msg.pending::after { content: "..."; animation: pulse 1s infinite; }
@keyframes pulse { 50% { opacity: 0.3; } }
.chat-input { display: flex; gap: 8px; padding: 16px; border-top: 1px solid var(--border); }
.chat-input input {
  flex: 1; padding: 10px 14px; border-radius: 12px; border: 1px solid var(--border);
  background: var(--bg); color: var(--text); font-size: 0.875rem;
}
.chat-input input:disabled, .chat-input button:disabled { opacity: 0.5; }
.chat-input button { padding: 0 12px; border: none; border-radius: 8px; background: #0891b2; color: #fff; cursor: pointer; }
.chat-toggle {
  width: 56px; height: 56px; border-radius: 50%; border: none; cursor: pointer;
  background: #06b6d4; color: #fff; font-size: 1.4rem; font-weight: 700;
  box-shadow: 0 0 20px rgba(6,182,212,0.4); transition: transform 0.15s;
}
.chat-toggle:hover { transform: scale(1.1); }

/* ============ Mobile ============ */
@media (max-width: 1024px) {
  .sidebar { position: fixed; left: 0; transform: translateX(-100%); transition: transform 0.3s; }
  .sidebar.open { transform: translateX(0); }
  .sidebar-overlay.open { display: block; position: fixed; inset: 0; background: rgba(0,0,0,0.5); z-index: 40; }
  .menu-toggle { display: block; }
  .page-content { padding: 32px 24px; }
}
`

// jsContent drives the page: scroll tracking, nav clicks, copy buttons,
// search and the assistant widget.
const jsContent = `(function() {
  'use strict';

  var body = document.body;
  var OFFSET = parseInt(body.dataset.offset || '80', 10);
  var ROOT_MARGIN = body.dataset.rootMargin || '-20% 0px -60% 0px';
  var COPY_WINDOW = parseInt(body.dataset.copyWindow || '2000', 10);
  var ERROR_TEXT = body.dataset.errorText;

  // ============ Theme ============
  var themeToggle = document.getElementById('theme-toggle');
  var savedTheme = localStorage.getItem('cyanguide-theme');
  if (savedTheme) document.documentElement.setAttribute('data-theme', savedTheme);
  themeToggle.addEventListener('click', function() {
    var next = document.documentElement.getAttribute('data-theme') === 'dark' ? 'light' : 'dark';
    document.documentElement.setAttribute('data-theme', next);
    localStorage.setItem('cyanguide-theme', next);
  });

  // ============ Mobile sidebar ============
  var sidebar = document.getElementById('sidebar');
  var overlay = document.getElementById('sidebar-overlay');
  function closeSidebar() { sidebar.classList.remove('open'); overlay.classList.remove('open'); }
  document.getElementById('menu-toggle').addEventListener('click', function() {
    sidebar.classList.add('open');
    overlay.classList.add('open');
  });
  overlay.addEventListener('click', closeSidebar);

  // ============ Active section ============
  var navLinks = {};
  document.querySelectorAll('#sidebar-tree a[data-anchor]').forEach(function(a) {
    navLinks[a.dataset.anchor] = a;
  });
  var active = null;
  function setActive(id) {
    if (id === active || !navLinks[id]) return;
    if (active && navLinks[active]) navLinks[active].classList.remove('active');
    navLinks[id].classList.add('active');
    active = id;
  }
  var first = document.querySelector('.guide-section');
  if (first) setActive(first.id);

  function navigate(id) {
    var el = document.getElementById(id);
    if (!el) return;
    setActive(id);
    var y = Math.max(0, el.getBoundingClientRect().top + window.pageYOffset - OFFSET);
    window.scrollTo({ top: y, behavior: 'smooth' });
    history.replaceState(null, '', '#' + id);
  }

  Object.keys(navLinks).forEach(function(id) {
    navLinks[id].addEventListener('click', function(e) {
      e.preventDefault();
      navigate(id);
      closeSidebar();
    });
  });

  var observer = new IntersectionObserver(function(entries) {
    entries.forEach(function(entry) {
      if (entry.isIntersecting) setActive(entry.target.id);
    });
  }, { rootMargin: ROOT_MARGIN });
  document.querySelectorAll('.guide-section').forEach(function(el) { observer.observe(el); });
  window.addEventListener('pagehide', function() { observer.disconnect(); });

  if (location.hash.length > 1) navigate(decodeURIComponent(location.hash.slice(1)));

  // ============ Copy buttons ============
  document.querySelectorAll('.code-sample').forEach(function(sample) {
    var btn = sample.querySelector('.copy-btn');
    var raw = sample.querySelector('.code-raw');
    var timer = null;
    btn.addEventListener('click', function() {
      navigator.clipboard.writeText(raw.value).then(function() {
        btn.textContent = 'Copied!';
        btn.classList.add('copied');
        clearTimeout(timer);
        timer = setTimeout(function() {
          btn.textContent = 'Copy';
          btn.classList.remove('copied');
        }, COPY_WINDOW);
      });
    });
  });

  // ============ Search ============
  var searchInput = document.getElementById('search-input');
  var searchResults = document.getElementById('search-results');
  var localIndex = null;
  var searchTimer = null;

  function showResults(results) {
    searchResults.innerHTML = '';
    results.forEach(function(r) {
      var li = document.createElement('li');
      var a = document.createElement('a');
      a.href = '#' + r.id;
      a.textContent = r.title;
      if (r.snippet) {
        var s = document.createElement('span');
        s.className = 'snippet';
        s.textContent = r.snippet;
        a.appendChild(s);
      }
      a.addEventListener('click', function(e) {
        e.preventDefault();
        navigate(r.id);
        searchInput.value = '';
        searchResults.innerHTML = '';
        closeSidebar();
      });
      li.appendChild(a);
      searchResults.appendChild(li);
    });
  }

  function searchLocal(q) {
    var run = function() {
      var terms = q.toLowerCase().split(/\s+/).filter(Boolean);
      showResults(localIndex.filter(function(e) {
        var hay = (e.title + ' ' + e.content).toLowerCase();
        return terms.every(function(t) { return hay.indexOf(t) >= 0; });
      }).slice(0, 8).map(function(e) { return { id: e.id, title: e.title, snippet: e.summary }; }));
    };
    if (localIndex) return run();
    fetch(body.dataset.searchIndex).then(function(r) { return r.json(); }).then(function(entries) {
      localIndex = entries;
      run();
    }).catch(function() { localIndex = []; });
  }

  searchInput.addEventListener('input', function() {
    var q = searchInput.value.trim();
    clearTimeout(searchTimer);
    if (!q) { searchResults.innerHTML = ''; return; }
    searchTimer = setTimeout(function() {
      var endpoint = body.dataset.searchEndpoint;
      if (!endpoint) return searchLocal(q);
      fetch(endpoint + '?limit=8&q=' + encodeURIComponent(q))
        .then(function(r) { return r.json(); })
        .then(function(data) { showResults(data.results || []); })
        .catch(function() { searchLocal(q); });
    }, 150);
  });

  // ============ Assistant ============
  var chatEndpoint = body.dataset.chatEndpoint;
  if (!chatEndpoint) return;

  var win = document.getElementById('chat-window');
  var list = document.getElementById('chat-messages');
  var form = document.getElementById('chat-form');
  var input = document.getElementById('chat-input');
  var send = document.getElementById('chat-send');
  var state = 'idle';

  var sessionId = sessionStorage.getItem('cyanguide-session');
  if (!sessionId) {
    sessionId = (window.crypto && crypto.randomUUID) ? crypto.randomUUID() : String(Date.now()) + Math.random().toString(16).slice(2);
    sessionStorage.setItem('cyanguide-session', sessionId);
  }

  function scrollToNewest() { list.scrollTop = list.scrollHeight; }

  function setOpen(open) {
    win.hidden = !open;
    if (open) { scrollToNewest(); input.focus(); }
  }
  document.getElementById('chat-toggle').addEventListener('click', function() { setOpen(win.hidden); });
  document.getElementById('chat-close').addEventListener('click', function() { setOpen(false); });

  function setState(s) {
    state = s;
    input.disabled = s !== 'idle';
    send.disabled = s !== 'idle' || !input.value.trim();
  }
  input.addEventListener('input', function() { setState(state); });

  function append(role, text) {
    var div = document.createElement('div');
    div.className = 'chat-msg ' + role;
    div.textContent = text;
    list.appendChild(div);
    scrollToNewest();
    return div;
  }

  function fail(msg) {
    msg.textContent = ERROR_TEXT;
    msg.classList.remove('pending');
    msg.classList.add('error');
    scrollToNewest();
  }

  // Reads a text/event-stream body and calls onEvent(name, data) per event.
  function readEvents(res, onEvent) {
    var reader = res.body.getReader();
    var decoder = new TextDecoder();
    var buf = '';
    function pump() {
      return reader.read().then(function(r) {
        if (r.done) return;
        buf += decoder.decode(r.value, { stream: true });
        var idx;
        while ((idx = buf.indexOf('\n\n')) >= 0) {
          var block = buf.slice(0, idx);
          buf = buf.slice(idx + 2);
          var name = 'message', data = '';
          block.split('\n').forEach(function(line) {
            if (line.indexOf('event:') === 0) name = line.slice(6).trim();
            else if (line.indexOf('data:') === 0) data += line.slice(5).trim();
          });
          onEvent(name, data ? JSON.parse(data) : {});
        }
        return pump();
      });
    }
    return pump();
  }

  form.addEventListener('submit', function(e) {
    e.preventDefault();
    var text = input.value;
    if (!text.trim() || state !== 'idle') return;

    append('user', text);
    input.value = '';
    var msg = append('model pending', '');
    setState('loading');

    var acc = '';
    var failed = false;
    var sawDone = false;
    fetch(chatEndpoint, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ session_id: sessionId, message: text })
    }).then(function(res) {
      if (!res.ok || !res.body) throw new Error('HTTP ' + res.status);
      return readEvents(res, function(name, data) {
        if (name === 'fragment') {
          if (state === 'loading') { setState('streaming'); msg.classList.remove('pending'); }
          acc += data.content;
          msg.textContent = acc;
          scrollToNewest();
        } else if (name === 'done') {
          sawDone = true;
        } else if (name === 'error') {
          failed = true;
          fail(msg);
          if (data.partial && acc) msg.textContent = acc + '\n\n' + ERROR_TEXT;
        }
      });
    }).then(function() {
      // A body that closes without done was cut short.
      if (!failed && !sawDone) throw new Error('stream ended early');
    }).catch(function() {
      failed = true;
      fail(msg);
    }).then(function() {
      if (!failed) msg.classList.remove('pending');
      setState('idle');
    });
  });
})();
`
