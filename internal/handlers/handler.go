package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/csg33k/churn-advisor/internal/adapters/memory"
	"github.com/csg33k/churn-advisor/internal/adapters/pdf"
	"github.com/csg33k/churn-advisor/internal/domain"
	"github.com/csg33k/churn-advisor/internal/metrics"
	"github.com/csg33k/churn-advisor/internal/ports"
	"github.com/csg33k/churn-advisor/internal/templates"
)

// ContainerHeader carries the id of the page's result container on htmx
// submissions.
const ContainerHeader = "X-Result-Container"

// SubmittedEvent is raised on the page (HX-Trigger) after every rendered
// submission so the history panel reloads.
const SubmittedEvent = "churn:submitted"

const defaultHistoryLimit = 20

// ErrDetached is returned by Detach when in-flight submissions did not finish
// before the context expired.
var ErrDetached = errors.New("handler detached with submissions in flight")

type healthChecker interface {
	Health(ctx context.Context) error
}

// Handler serves the churn form and its submissions. It is attached on
// creation; after Detach, submissions are refused.
type Handler struct {
	predictor    ports.Predictor
	seq          ports.SequenceStore
	journal      ports.SubmissionJournal
	log          *slog.Logger
	discardStale bool
	now          func() time.Time

	mu       sync.Mutex
	attached bool
	inflight sync.WaitGroup
}

type Option func(*Handler)

func WithSequenceStore(s ports.SequenceStore) Option {
	return func(h *Handler) { h.seq = s }
}

// WithJournal records every completed submission.
func WithJournal(j ports.SubmissionJournal) Option {
	return func(h *Handler) { h.journal = j }
}

// WithDiscardStale controls whether a response is dropped when a newer
// submission targeted the same result container. Defaults to true.
func WithDiscardStale(discard bool) Option {
	return func(h *Handler) { h.discardStale = discard }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

func New(predictor ports.Predictor, opts ...Option) *Handler {
	h := &Handler{
		predictor:    predictor,
		seq:          memory.NewSequenceStore(),
		log:          slog.Default(),
		discardStale: true,
		now:          time.Now,
		attached:     true,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /submit", h.submit)
	mux.HandleFunc("POST /report", h.report)
	mux.HandleFunc("GET /submissions", h.submissions)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Attach (re)enables submissions.
func (h *Handler) Attach() {
	h.mu.Lock()
	h.attached = true
	h.mu.Unlock()
}

// Detach stops accepting submissions and waits for those in flight.
func (h *Handler) Detach(ctx context.Context) error {
	h.mu.Lock()
	h.attached = false
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDetached, ctx.Err())
	}
}

// acquire registers one in-flight submission if the handler is attached.
func (h *Handler) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.attached {
		return false
	}
	h.inflight.Add(1)
	return true
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	render(w, r, templates.Index(templates.PageView{
		Container: uuid.NewString(),
		History:   h.journal != nil,
	}))
}

// submit handles POST /submit: form fields -> prediction backend -> result
// or error fragment for the result container.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if !h.acquire() {
		http.Error(w, "submissions are closed", http.StatusServiceUnavailable)
		return
	}
	defer h.inflight.Done()
	metrics.SubmissionsInFlight.Inc()
	defer metrics.SubmissionsInFlight.Dec()

	ctx := r.Context()
	if err := parsePostedForm(r); err != nil {
		h.log.Error("submission rejected", "err", err)
		metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeInternal)).Inc()
		h.respond(w, r, nil, nil, err)
		return
	}
	payload := domain.PayloadFromForm(r.PostForm)
	container := containerID(r)

	// A submission without a container has nothing to race with.
	var seq uint64
	if container != "" {
		var err error
		seq, err = h.seq.Begin(ctx, container)
		if err != nil {
			// Without a sequence the response is always rendered.
			h.log.Warn("sequence unavailable", "container", container, "err", err)
		}
	}

	start := h.now()
	pred, err := h.predict(ctx, payload)
	latency := h.now().Sub(start)
	metrics.PredictDuration.Observe(latency.Seconds())

	outcome := domain.OutcomeOf(err)
	if seq > 0 && h.discardStale && !h.isLatest(ctx, container, seq) {
		h.log.Info("discarding stale response", "container", container, "seq", seq, "result", outcome)
		metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeStale)).Inc()
		h.record(ctx, container, seq, domain.OutcomeStale, pred, latency, err)
		// htmx leaves the target untouched on 204.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(string(outcome)).Inc()
	h.record(ctx, container, seq, outcome, pred, latency, err)

	if err != nil {
		attrs := []any{"outcome", outcome, "container", container, "seq", seq, "err", err}
		var reqErr *domain.RequestError
		if errors.As(err, &reqErr) && reqErr.Detail != "" {
			attrs = append(attrs, "detail", reqErr.Detail)
		}
		h.log.Error("prediction failed", attrs...)
		h.respond(w, r, payload, nil, err)
		return
	}

	if want := domain.SuggestedDiscount(pred.Probability); want != pred.SuggestedDiscount {
		metrics.DiscountMismatch.Inc()
		h.log.Warn("suggested discount outside probability tier",
			"probability", pred.Probability, "discount", pred.SuggestedDiscount, "tier", want)
	}
	h.respond(w, r, payload, pred, nil)
}

// submissions handles GET /submissions: the journal's recent outcomes as a
// fragment for the history panel.
func (h *Handler) submissions(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		http.Error(w, "submission journal is disabled", http.StatusNotFound)
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error("journal read failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, templates.Submissions(entries))
}

// report handles POST /report: the same prediction rendered as a PDF.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	if err := parsePostedForm(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload := domain.PayloadFromForm(r.PostForm)

	pred, err := h.predict(r.Context(), payload)
	if err != nil {
		h.log.Error("report prediction failed", "outcome", domain.OutcomeOf(err), "err", err)
		http.Error(w, "❌ Something went wrong: "+err.Error(), http.StatusBadGateway)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := pdf.GenerateReport(payload, pred, now, &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	filename := fmt.Sprintf("churn_report_%s.pdf", now.Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if hc, ok := h.predictor.(healthChecker); ok {
		if err := hc.Health(r.Context()); err != nil {
			http.Error(w, "predictor: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// predict calls the backend. A panic anywhere below is turned into an error
// so it ends up in the result container like every other failure.
func (h *Handler) predict(ctx context.Context, payload domain.FormPayload) (pred *domain.Prediction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pred, err = nil, fmt.Errorf("internal error: %v", rec)
		}
	}()
	return h.predictor.Predict(ctx, payload)
}

func (h *Handler) isLatest(ctx context.Context, container string, seq uint64) bool {
	latest, err := h.seq.IsLatest(ctx, container, seq)
	if err != nil {
		h.log.Warn("sequence check failed", "container", container, "seq", seq, "err", err)
		return true
	}
	return latest
}

func (h *Handler) record(ctx context.Context, container string, seq uint64, outcome domain.Outcome, pred *domain.Prediction, latency time.Duration, err error) {
	if h.journal == nil {
		return
	}
	e := &domain.JournalEntry{
		Container: container,
		Seq:       seq,
		Outcome:   outcome,
		Latency:   latency,
		CreatedAt: h.now(),
	}
	if pred != nil {
		e.Label = pred.Label()
		e.Probability = pred.Probability
		e.SuggestedDiscount = pred.SuggestedDiscount
	}
	if err != nil {
		e.Error = err.Error()
	}
	if err := h.journal.Record(context.WithoutCancel(ctx), e); err != nil {
		h.log.Warn("journal write failed", "err", err)
	}
}

// respond writes exactly one of the result or the failure. htmx requests get
// the fragment for the result container; plain form posts get the whole page
// with the fragment already in place.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, payload domain.FormPayload, pred *domain.Prediction, err error) {
	if r.Header.Get("HX-Request") == "true" {
		if h.journal != nil {
			w.Header().Set("HX-Trigger", SubmittedEvent)
		}
		if err != nil {
			render(w, r, templates.Failure(err.Error()))
			return
		}
		render(w, r, templates.Result(pred))
		return
	}
	view := templates.PageView{Container: uuid.NewString(), Values: payload, History: h.journal != nil}
	if err != nil {
		view.Error = err.Error()
	} else {
		view.Result = templates.NewResultView(pred)
	}
	render(w, r, templates.Index(view))
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

// parsePostedForm fills r.PostForm from a urlencoded or multipart body.
func parsePostedForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return fmt.Errorf("read form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("read form: %w", err)
	}
	return nil
}

// containerID returns the result container named by the page, or "" for
// submissions that did not come from an htmx page.
func containerID(r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get(ContainerHeader)); err == nil {
		return id.String()
	}
	return ""
}
