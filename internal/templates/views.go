package templates

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/csg33k/churn-advisor/internal/domain"
)

// The views are html/template definitions exposed as templ.Components so
// handlers render everything through one helper. html/template escapes every
// interpolated field and response value.
var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"valueOf":    valueOf,
	"selectedOr": selectedOr,
	"percent":    domain.FormatPercent,
	"stamp":      stamp,
	"millis":     millis,
}).Parse(`
{{define "result"}}<p><b>Prediction:</b> {{if .Churn}}<span style="color:red; font-weight:bold;">Churn</span>{{else}}<span style="color:green; font-weight:bold;">No Churn</span>{{end}}</p>
<p><b>Churn Probability:</b> {{.Probability}}</p>
<p><b>Suggested Discount:</b> {{.Discount}}</p>
{{end}}

{{define "failure"}}<p style="color:red;">❌ Something went wrong: {{.}}</p>
{{end}}

{{define "submissions"}}{{if .}}<table class="history">
<thead><tr><th>Time</th><th>Outcome</th><th>Prediction</th><th>Probability</th><th>Discount</th><th>Latency</th></tr></thead>
<tbody>{{range .}}
<tr class="outcome-{{.Outcome}}"><td>{{stamp .CreatedAt}}</td><td>{{.Outcome}}</td>{{if .Label}}<td>{{.Label}}</td><td>{{percent .Probability}}</td><td>{{percent .SuggestedDiscount}}</td>{{else}}<td colspan="3">{{.Error}}</td>{{end}}<td>{{millis .Latency}}</td></tr>{{end}}
</tbody>
</table>{{else}}<p class="history-empty">No submissions yet.</p>{{end}}
{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Customer Churn Prediction</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<link rel="preconnect" href="https://fonts.googleapis.com">
<link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
<link href="https://fonts.googleapis.com/css2?family=IBM+Plex+Mono:wght@400;600&family=IBM+Plex+Sans:wght@400;500&display=swap" rel="stylesheet">
<style>
  :root {
    --ink: #0d1117;
    --paper: #f5f0e8;
    --ledger: #e8e0cc;
    --accent: #c0392b;
    --muted: #6b5e4e;
    --rule: #b8a898;
  }
  * { box-sizing: border-box; }
  body { background: var(--paper); color: var(--ink); font-family: 'IBM Plex Sans', sans-serif; margin: 0; }
  .wrap { max-width: 900px; margin: 0 auto; padding: 32px 24px; }
  .card { background: rgba(255,255,255,0.7); border: 1px solid var(--ledger); border-left: 4px solid var(--ink); padding: 24px; }
  .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px 16px; }
  .field-label {
    font-family: 'IBM Plex Mono', monospace; font-size: 0.6rem; font-weight: 600;
    letter-spacing: 0.1em; text-transform: uppercase; color: var(--muted);
    display: block; margin-bottom: 2px;
  }
  input, select {
    background: white; border: 1px solid var(--rule); border-bottom: 2px solid var(--ink);
    padding: 6px 8px; font-family: 'IBM Plex Mono', monospace; font-size: 0.85rem; width: 100%;
  }
  .btn {
    font-family: 'IBM Plex Mono', monospace; font-weight: 600; font-size: 0.8rem; letter-spacing: 0.08em;
    padding: 8px 18px; border: 2px solid var(--ink); cursor: pointer; text-transform: uppercase;
  }
  .btn-primary { background: var(--ink); color: white; }
  .btn-primary:hover { background: var(--accent); border-color: var(--accent); }
  .btn-plain { background: white; color: var(--ink); }
  #result { margin-top: 24px; min-height: 3em; }
  .history { width: 100%; border-collapse: collapse; font-family: 'IBM Plex Mono', monospace; font-size: 0.75rem; }
  .history th, .history td { text-align: left; padding: 4px 8px; border-bottom: 1px solid var(--ledger); }
  .history-empty { font-family: 'IBM Plex Mono', monospace; font-size: 0.75rem; color: var(--muted); }
  .htmx-indicator { opacity: 0; transition: opacity 0.2s; }
  .htmx-request .htmx-indicator, .htmx-request.htmx-indicator { opacity: 1; }
</style>
</head>
<body>
<div class="wrap">
  <h1 style="font-family:'IBM Plex Mono',monospace;font-size:1.5rem;margin:0 0 24px;">Customer Churn Prediction</h1>
  <div class="card">
    <form id="churnForm" action="/submit" method="post">
      <div class="grid">
      {{range .Fields}}
        <div>
          <label class="field-label" for="f-{{.Name}}">{{.Label}}</label>
          {{if eq .Type "select"}}
          <select id="f-{{.Name}}" name="{{.Name}}">
            {{$f := .}}{{range .Options}}<option value="{{.}}"{{if selectedOr $.Values $f .}} selected{{end}}>{{.}}</option>{{end}}
          </select>
          {{else}}
          <input id="f-{{.Name}}" type="number" min="0" step="{{.Step}}" name="{{.Name}}" value="{{valueOf $.Values .Name}}" required>
          {{end}}
        </div>
      {{end}}
      </div>
      <div style="margin-top:20px;display:flex;gap:12px;align-items:center;">
        <button type="submit" class="btn btn-primary"
                hx-post="/submit" hx-target="#result" hx-swap="innerHTML" hx-indicator="#spinner"
                hx-headers='{"X-Result-Container": "{{.Container}}"}'>Predict</button>
        <button type="submit" class="btn btn-plain" formaction="/report" formmethod="post">Download Report</button>
        <span id="spinner" class="htmx-indicator" style="font-family:'IBM Plex Mono',monospace;font-size:0.75rem;">predicting…</span>
      </div>
    </form>
    <div id="result">{{if .Result}}{{template "result" .Result}}{{else if .Error}}{{template "failure" .Error}}{{end}}</div>
  </div>
  {{if .History}}
  <h2 class="field-label" style="margin-top:32px;">Recent submissions</h2>
  <div id="history" hx-get="/submissions" hx-trigger="load, churn:submitted from:body" hx-swap="innerHTML"></div>
  {{end}}
</div>
</body>
</html>
{{end}}
`))

// ResultView is the display form of a prediction.
type ResultView struct {
	Churn       bool
	Probability string
	Discount    string
}

func NewResultView(p *domain.Prediction) *ResultView {
	return &ResultView{
		Churn:       p.IsChurn(),
		Probability: domain.FormatPercent(p.Probability),
		Discount:    domain.FormatPercent(p.SuggestedDiscount),
	}
}

// PageView is the data of the full page. Result and Error are set only when
// the page answers a submission made without htmx. Container identifies the
// page's result container to the server. History adds the panel that loads
// recent submissions.
type PageView struct {
	Container string
	Fields    []Field
	Values    domain.FormPayload
	Result    *ResultView
	Error     string
	History   bool
}

// Index renders the full page with the churn form and the result container.
func Index(v PageView) templ.Component {
	if v.Fields == nil {
		v.Fields = ChurnFields
	}
	return templ.FromGoHTML(views.Lookup("page"), v)
}

// Result renders the fragment swapped into the result container on success.
func Result(p *domain.Prediction) templ.Component {
	return templ.FromGoHTML(views.Lookup("result"), NewResultView(p))
}

// Failure renders the fragment swapped into the result container on error.
func Failure(message string) templ.Component {
	return templ.FromGoHTML(views.Lookup("failure"), message)
}

// Submissions renders the history panel from journal entries, in the order given.
func Submissions(entries []domain.JournalEntry) templ.Component {
	return templ.FromGoHTML(views.Lookup("submissions"), entries)
}
