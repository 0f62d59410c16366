package browse

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizer turns presenter fragments into trusted template HTML.
type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() *sanitizer {
	return &sanitizer{policy: bluemonday.UGCPolicy()}
}

// HTML sanitises s and marks the result safe for templates.
func (s *sanitizer) HTML(fragment string) template.HTML {
	return template.HTML(s.policy.Sanitize(fragment))
}

func (s *sanitizer) funcs() template.FuncMap {
	return template.FuncMap{"safe": s.HTML}
}

func parseTemplates(s *sanitizer) (*template.Template, error) {
	return template.New("browse").Funcs(s.funcs()).Parse(pageTemplates)
}

// pageTemplates holds every page of the browse UI.
const pageTemplates = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} | Browse compatibility data</title>
  <style>` + cssContent + `</style>
</head>
<body>
  <nav class="navbar">
    <a class="brand" href="{{.Root}}/">Browse</a>
    {{range .Nav}}<a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}
  </nav>
  <main class="container">
{{end}}

{{define "footer"}}
  </main>
</body>
</html>{{end}}

{{define "index"}}{{template "header" .}}
    <h1>Browse compatibility data</h1>
    <table class="table">
      <thead><tr><th>Resource</th><th>Count</th></tr></thead>
      <tbody>
      {{range .Entries}}
        <tr>
          <td><a href="{{.Href}}">{{.Label}}</a></td>
          <td>{{if .Err}}<em>unavailable</em>{{else}}{{.CountText}}{{end}}</td>
        </tr>
      {{end}}
      </tbody>
    </table>
{{template "footer" .}}{{end}}

{{define "list"}}{{template "header" .}}
    <h1>{{.Title}}</h1>
    <table class="table" id="records">
      <thead><tr><th>ID</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
      <tbody>
      {{range .Rows}}
        <tr><td><a href="{{.Href}}">{{.ID}}</a></td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
      {{end}}
      </tbody>
    </table>
    <p class="status" id="status">Showing {{.State.Loaded}}{{with .State.Pagination}} of {{.Count}}{{end}}.</p>
    {{if .State.CanLoadMore}}
    <a class="load-more" id="load-more" href="?page={{.NextPage}}" data-ws="{{.LiveURL}}" data-page="{{.State.CurrentPage}}">Load more</a>
    <script>` + liveScript + `</script>
    {{end}}
{{template "footer" .}}{{end}}

{{define "detail"}}{{template "header" .}}
    <p class="crumb"><a href="{{.ListHref}}">{{.Label}}</a> / {{.ID}}</p>
    <h1>{{.Title}}</h1>
    <dl class="fields">
      {{range .Fields}}<dt>{{.Label}}</dt><dd>{{safe .HTML}}</dd>{{end}}
    </dl>
    {{range .Panels}}
    <section class="panel">
      <h2>{{.Title}}</h2>
      {{if .Note}}<p class="note">{{.Note}}</p>{{end}}
      {{if .Items}}
      <ul>{{range .Items}}<li><a href="{{.Href}}">{{.Text}}</a></li>{{end}}</ul>
      {{else}}<p><em>none</em></p>{{end}}
    </section>
    {{end}}
{{template "footer" .}}{{end}}

{{define "error"}}{{template "header" .}}
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
{{template "footer" .}}{{end}}
`

const cssContent = `
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; color: #1f2328; }
.navbar { display: flex; gap: 1rem; padding: 0.75rem 1.5rem; background: #24292f; }
.navbar a { color: #e6edf3; text-decoration: none; }
.navbar a.active, .navbar a.brand { font-weight: 600; }
.container { max-width: 1100px; margin: 0 auto; padding: 1.5rem; }
.table { border-collapse: collapse; width: 100%; }
.table th, .table td { border-bottom: 1px solid #d0d7de; padding: 0.4rem 0.6rem; text-align: left; vertical-align: top; }
.fields dt { font-weight: 600; margin-top: 0.6rem; }
.fields dd { margin-left: 1rem; }
.panel { border-top: 1px solid #d0d7de; margin-top: 1.5rem; }
.load-more { display: inline-block; padding: 0.4rem 1rem; border: 1px solid #d0d7de; border-radius: 6px; }
.crumb, .status, .note { color: #656d76; }
ul { margin: 0; padding-left: 1.2rem; }
`

// liveScript upgrades the "Load more" link to a WebSocket session; without
// JavaScript the link falls back to ?page=N.
const liveScript = `
(function() {
  var link = document.getElementById('load-more');
  if (!link || !window.WebSocket) return;
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + link.dataset.ws + '?page=' + link.dataset.page);
  var body = document.querySelector('#records tbody');
  var status = document.getElementById('status');
  var ready = false;
  ws.onopen = function() { ready = true; };
  link.addEventListener('click', function(e) {
    if (!ready) return;
    e.preventDefault();
    link.textContent = 'Loading...';
    ws.send(JSON.stringify({type: 'load_more'}));
  });
  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === 'records') {
      (msg.rows || []).forEach(function(row) {
        var tr = document.createElement('tr');
        var id = document.createElement('td');
        var a = document.createElement('a');
        a.href = row.href;
        a.textContent = row.id;
        id.appendChild(a);
        tr.appendChild(id);
        row.cells.forEach(function(cell) {
          var td = document.createElement('td');
          td.innerHTML = cell;
          tr.appendChild(td);
        });
        body.appendChild(tr);
      });
    }
    if (msg.state) {
      var total = msg.state.pagination ? ' of ' + msg.state.pagination.count : '';
      status.textContent = 'Showing ' + msg.state.loaded + total + '.';
      link.href = '?page=' + (msg.state.current_page + 1);
      link.textContent = 'Load more';
    }
    if (msg.type === 'done') { link.remove(); ws.close(); }
    if (msg.type === 'error') { link.textContent = 'Load more (retry)'; }
  };
})();
`
