package templates_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/churn-advisor/internal/domain"
	"github.com/csg33k/churn-advisor/internal/templates"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestResultChurn(t *testing.T) {
	out := renderString(t, templates.Result(&domain.Prediction{Prediction: 1, Probability: 87.5, SuggestedDiscount: 10}))

	assert.Contains(t, out, `<b>Prediction:</b> <span style="color:red; font-weight:bold;">Churn</span>`)
	assert.Contains(t, out, "<b>Churn Probability:</b> 87.5%")
	assert.Contains(t, out, "<b>Suggested Discount:</b> 10%")
	assert.NotContains(t, out, "No Churn")
}

func TestResultNoChurn(t *testing.T) {
	out := renderString(t, templates.Result(&domain.Prediction{Prediction: 0, Probability: 12, SuggestedDiscount: 0}))

	assert.Contains(t, out, `<span style="color:green; font-weight:bold;">No Churn</span>`)
	assert.Contains(t, out, "<b>Churn Probability:</b> 12%")
	assert.Contains(t, out, "<b>Suggested Discount:</b> 0%")
}

func TestFailureEscapesMessage(t *testing.T) {
	out := renderString(t, templates.Failure(`Server error: <script>alert(1)</script>`))

	assert.Contains(t, out, `<p style="color:red;">❌ Something went wrong: Server error: &lt;script&gt;`)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "Prediction:")
}

func TestIndexRendersFormAndEmptyContainer(t *testing.T) {
	out := renderString(t, templates.Index(templates.PageView{}))

	assert.Contains(t, out, `<form id="churnForm"`)
	assert.Contains(t, out, `hx-post="/submit"`)
	assert.Contains(t, out, `hx-target="#result"`)
	assert.Contains(t, out, `<div id="result"></div>`)
	assert.NotContains(t, out, `id="history"`)
	for _, f := range templates.ChurnFields {
		assert.Contains(t, out, `name="`+f.Name+`"`)
	}
}

func TestIndexKeepsSubmittedValues(t *testing.T) {
	out := renderString(t, templates.Index(templates.PageView{
		Values: domain.FormPayload{"tenure": "24", "Contract": "Two year"},
		Result: templates.NewResultView(&domain.Prediction{Prediction: 0, Probability: 8, SuggestedDiscount: 0}),
	}))

	assert.Contains(t, out, `value="24"`)
	assert.Contains(t, out, `<option value="Two year" selected>`)
	assert.NotContains(t, out, `<option value="Month-to-month" selected>`)
	assert.Contains(t, out, "No Churn")
}

func TestIndexHistoryPanel(t *testing.T) {
	out := renderString(t, templates.Index(templates.PageView{History: true}))

	assert.Contains(t, out, `<div id="history" hx-get="/submissions" hx-trigger="load, churn:submitted from:body"`)
}

func TestSubmissions(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	out := renderString(t, templates.Submissions([]domain.JournalEntry{
		{Outcome: domain.OutcomeSuccess, Label: "Churn", Probability: 87.5, SuggestedDiscount: 25, Latency: 120 * time.Millisecond, CreatedAt: at},
		{Outcome: domain.OutcomeRequestError, Error: "Server error: <Bad Gateway>", Latency: 3 * time.Millisecond, CreatedAt: at},
	}))

	assert.Contains(t, out, `<tr class="outcome-success">`)
	assert.Contains(t, out, "<td>Churn</td><td>87.5%</td><td>25%</td><td>120 ms</td>")
	assert.Contains(t, out, `<td colspan="3">Server error: &lt;Bad Gateway&gt;</td><td>3 ms</td>`)
}

func TestSubmissionsEmpty(t *testing.T) {
	out := renderString(t, templates.Submissions(nil))

	assert.Contains(t, out, "No submissions yet.")
	assert.NotContains(t, out, "<table")
}
