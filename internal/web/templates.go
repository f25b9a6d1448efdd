package web

const tmplShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Info.Name}} · deltalens</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; margin: 0; background: #0d1117; color: #c9d1d9; }
header { padding: 12px 20px; background: #161b22; border-bottom: 1px solid #30363d; }
header h1 { font-size: 18px; margin: 0 0 4px; }
header .meta { color: #8b949e; font-size: 13px; }
#filters { padding: 10px 20px; display: flex; gap: 12px; align-items: end; flex-wrap: wrap; border-bottom: 1px solid #30363d; }
#filters label { display: flex; flex-direction: column; font-size: 12px; color: #8b949e; }
#filters input, #filters select { background: #0d1117; color: #c9d1d9; border: 1px solid #30363d; padding: 4px 6px; }
#error { display: none; margin: 10px 20px; padding: 8px 12px; background: #3d1214; border: 1px solid #ef5350; color: #ffb4b4; }
#description { padding: 10px 20px 0; color: #8b949e; }
#contents { padding: 0 20px 40px; }
table { border-collapse: collapse; margin: 8px 0; font-size: 13px; }
th, td { border: 1px solid #30363d; padding: 3px 8px; text-align: left; }
th { background: #161b22; }
a { color: #58a6ff; }
.panel { border: 1px solid #30363d; margin: 10px 0; padding: 6px 12px; }
.swatch { display: inline-block; width: 14px; height: 14px; border-radius: 3px; vertical-align: middle; }
svg .glyph { fill: none; stroke-width: 2; opacity: .7; }
svg .glyph.focused { stroke-width: 5; opacity: 1; }
.hidden { display: none !important; }
</style>
</head>
<body>
<header>
  <h1>{{.Info.Name}}</h1>
  <div class="meta">
    {{if .Info.ParentName}}Parent: {{.Info.ParentName}} · {{end}}
    Version {{.Info.LatestVersion}} · {{.Info.CountRecords}} records · {{.Changes}} changes loaded · refreshed {{.LoadedAt}}
  </div>
</header>
<form id="filters">
  <label>Report
    <select id="mode_select">
      {{range .Modes}}<option value="{{.Name}}">{{.Description}}</option>{{end}}
    </select>
  </label>
  <label class="version-wrap">Version <input id="f_ver" size="6"></label>
  <label class="users-wrap">User <input id="f_users" size="18"></label>
  <label class="range-wrap">Start ({{.Zone}}) <input id="f_utcstart" type="datetime-local"></label>
  <label class="range-wrap">End ({{.Zone}}) <input id="f_utcend" type="datetime-local"></label>
  <button id="f_apply" type="submit">Apply</button>
</form>
<div id="error"></div>
<div id="description"></div>
<div id="contents"></div>
<script>
const modes = {{.Modes}};
const $ = (id) => document.getElementById(id);

function showError(msg) { const e = $("error"); e.textContent = msg; e.style.display = "block"; }
function clearError() { $("error").style.display = "none"; }

function updateFilters() {
  const d = modes.find((m) => m.name === $("mode_select").value) || {};
  document.querySelectorAll(".version-wrap").forEach((el) => el.classList.toggle("hidden", !d.uses_version));
  document.querySelectorAll(".users-wrap").forEach((el) => el.classList.toggle("hidden", !d.uses_users));
  document.querySelectorAll(".range-wrap").forEach((el) => el.classList.toggle("hidden", !d.uses_time_range));
}

function applyControls(c) {
  $("mode_select").value = c.mode;
  $("f_ver").value = c.ver || "";
  $("f_users").value = c.user || "";
  $("f_utcstart").value = c.utc_start || "";
  $("f_utcend").value = c.utc_end || "";
  updateFilters();
}

async function show() {
  const hash = window.location.hash;
  if (!hash || hash.length < 2) {
    window.location.hash = "show=daily";
    return;
  }
  let v;
  try {
    const r = await fetch("/api/view?hash=" + encodeURIComponent(hash));
    v = await r.json();
  } catch (err) {
    showError(String(err));
    return;
  }
  if (v.error) {
    showError(v.error);
    return;
  }
  clearError();
  $("description").textContent = v.description;
  applyControls(v.controls);
  $("contents").innerHTML = v.html;
}

$("filters").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  clearError();
  const q = new URLSearchParams({
    mode: $("mode_select").value,
    ver: $("f_ver").value,
    user: $("f_users").value,
    utcstart: $("f_utcstart").value,
    utcend: $("f_utcend").value,
  });
  const r = await fetch("/api/filter?" + q);
  const v = await r.json();
  if (v.error) { showError(v.error); return; }
  window.location.hash = v.hash;
});

$("contents").addEventListener("click", (ev) => {
  const sw = ev.target.closest("[data-glyph]");
  if (!sw) return;
  ev.preventDefault();
  document.querySelectorAll("svg .glyph").forEach((p) => p.classList.remove("focused"));
  const g = document.getElementById("glyph-" + sw.dataset.glyph);
  if (g) g.classList.add("focused");
});

$("mode_select").addEventListener("change", updateFilters);
window.addEventListener("hashchange", show);
show();
</script>
</body>
</html>`

const tmplReport = `{{define "report"}}
{{- with .Map}}
<svg class="map" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
  <rect width="{{.Width}}" height="{{.Height}}" fill="#161b22"/>
  {{- range .Paths}}
  <a href="{{.Href}}">
    <title>{{.User}}</title>
    {{- if .Single}}
    <circle id="glyph-{{.ID}}" class="glyph{{if .Focused}} focused{{end}}" cx="{{.X}}" cy="{{.Y}}" r="4" stroke="{{.Color}}"/>
    {{- else}}
    <polyline id="glyph-{{.ID}}" class="glyph{{if .Focused}} focused{{end}}" points="{{.Points}}" stroke="{{.Color}}"/>
    {{- end}}
  </a>
  {{- end}}
</svg>
{{- end}}
{{template "blocks" .}}
{{end}}

{{define "blocks"}}
{{- range .Blocks}}
{{- if eq .Kind "heading"}}<h2>{{.Text}}</h2>
{{- else if eq .Kind "text"}}<p>{{.Text}}</p>
{{- else if eq .Kind "pre"}}<pre>{{.Text}}</pre>
{{- else if eq .Kind "button"}}<p><a class="button" href="{{.Link.Href}}">{{.Link.Text}}</a></p>
{{- else if eq .Kind "panel"}}<div class="panel"><h3>{{.Text}}</h3>{{template "blocks" (sub $ .Body)}}</div>
{{- else if eq .Kind "table"}}
{{- if .Download}}<p><a href="/api/csv?hash={{$.Hash}}&table={{.Table}}" download="{{.Download}}">Download {{.Download}}</a></p>{{end}}
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td>
{{- if .IsColor}}<a href="#" data-glyph="{{.Glyph}}"><span class="swatch" style="background: {{.Color}}"></span></a>
{{- else if .Href}}<a href="{{.Href}}">{{.Text}}</a>
{{- else}}{{.Text}}{{end -}}
</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
{{- end}}
{{end}}`
