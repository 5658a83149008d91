package ui

const themeInitScript = `(function(){
  var root=document.documentElement;
  var media=window.matchMedia('(prefers-color-scheme: dark)');
  function apply(){
    root.setAttribute('data-color-mode', media.matches?'dark':'light');
  }
  apply();
  media.addEventListener('change', apply);
})();`

const stylesheet = `
:root{--fg:#1f2328;--muted:#59636e;--bg:#ffffff;--panel:#f6f8fa;--border:#d1d9e0;--accent:#0969da;--ok:#1a7f37;--warn:#9a6700;--bad:#d1242f}
[data-color-mode=dark]{--fg:#e6edf3;--muted:#9198a1;--bg:#0d1117;--panel:#151b23;--border:#3d444d;--accent:#4493f8;--ok:#3fb950;--warn:#d29922;--bad:#f85149}
body{margin:0;font:14px/1.5 -apple-system,"Segoe UI",Helvetica,Arial,sans-serif;color:var(--fg);background:var(--bg)}
.app-shell{display:flex;min-height:100vh}
.app-sidebar{width:220px;padding:16px;border-right:1px solid var(--border);background:var(--panel)}
.app-nav a{display:block;padding:6px 8px;border-radius:6px;color:var(--fg);text-decoration:none}
.app-nav a.active{background:var(--bg);font-weight:600}
.app-main{flex:1;padding:16px 24px}
.topbar{display:flex;justify-content:space-between;align-items:baseline}
.card{border:1px solid var(--border);border-radius:6px;padding:12px;margin-bottom:12px}
.muted{color:var(--muted);font-size:12px}
table{border-collapse:collapse;width:100%}
th,td{text-align:left;padding:6px 8px;border-bottom:1px solid var(--border);vertical-align:top}
th{font-weight:600;background:var(--panel)}
code{font-family:ui-monospace,SFMono-Regular,Menlo,monospace;font-size:12px}
.label{display:inline-block;padding:0 7px;border:1px solid currentColor;border-radius:2em;font-size:12px}
.label-ok{color:var(--ok)}.label-warn{color:var(--warn)}.label-bad{color:var(--bad)}
form.inline{display:flex;gap:8px;align-items:end;flex-wrap:wrap}
input,select,button{font:inherit;padding:4px 8px;border:1px solid var(--border);border-radius:6px;background:var(--bg);color:var(--fg)}
a{color:var(--accent)}
`
