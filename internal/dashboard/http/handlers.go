package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shelf-inventory/shelf/internal/dashboard"
	"github.com/shelf-inventory/shelf/internal/dashboard/export"
	"github.com/shelf-inventory/shelf/internal/dashboard/svg"
	"github.com/shelf-inventory/shelf/internal/platform/httpx"
	"github.com/shelf-inventory/shelf/internal/provider"
	"github.com/shelf-inventory/shelf/internal/query"
	"github.com/shelf-inventory/shelf/internal/shared"
	"github.com/shelf-inventory/shelf/internal/view"
)

const defaultRequestTimeout = 10 * time.Second

// RangeOption is one entry of the time range toggle.
type RangeOption struct {
	Value  dashboard.TimeRange
	Title  string
	Active bool
}

// PageData is the template model of the dashboard page.
type PageData struct {
	View         dashboard.View
	State        query.ViewState
	Ranges       []RangeOption
	EmptyMessage string
	ErrorMessage string
	Refreshing   bool
	SalesSVG     template.HTML
	InventorySVG template.HTML
	StockSVG     template.HTML
	BrandSVG     template.HTML
}

// APIResponse is the JSON form of the dashboard.
type APIResponse struct {
	State   query.ViewState `json:"state"`
	View    dashboard.View  `json:"view"`
	Notices []string        `json:"notices"`
}

// Handler serves the dashboard page, its JSON twin and the CSV export.
type Handler struct {
	logger    *slog.Logger
	fetcher   *provider.Fetcher
	templates *view.Engine
	csrf      *shared.CSRFManager
	timeout   time.Duration
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, fetcher *provider.Fetcher, templates *view.Engine, csrf *shared.CSRFManager, timeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	h := &Handler{
		logger:    logger,
		fetcher:   fetcher,
		templates: templates,
		csrf:      csrf,
		timeout:   timeout,
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// ReleaseScope forgets the query states of an ended session.
func (h *Handler) ReleaseScope(scope string) {
	h.fetcher.Store().Drop(scope)
}

type loaded struct {
	view   dashboard.View
	state  query.ViewState
	states map[query.Key]query.State
	scope  string
}

func callerFor(r *http.Request) provider.Caller {
	caller := provider.Caller{}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		caller.Scope = sess.ID
	}
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		caller.UserID = id.UserID
		caller.Token = id.Token
	}
	return caller
}

// load resolves every dashboard query and transforms the result for the
// selected range.
func (h *Handler) load(ctx context.Context, r *http.Request, tr dashboard.TimeRange, fresh bool) (loaded, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	caller := callerFor(r)
	var (
		states map[query.Key]query.State
		err    error
	)
	if fresh {
		states, err = h.fetcher.Refresh(ctx, caller, provider.DashboardKeys...)
	} else {
		states, err = h.fetcher.Ensure(ctx, caller, provider.DashboardKeys...)
	}
	v := dashboard.Build(provider.Snapshot(states), tr)
	return loaded{
		view:   v,
		state:  query.Combine(v.Empty(), viewStates(states, tr)...),
		states: states,
		scope:  caller.Scope,
	}, err
}

// viewStates lists the queries the selected range depends on. Sales datasets
// of other ranges never hold the view back.
func viewStates(states map[query.Key]query.State, tr dashboard.TimeRange) []query.State {
	keys := []query.Key{
		provider.SalesKey(tr), provider.Products, provider.Categories,
		provider.Brands, provider.Sellers, provider.Purchases,
	}
	out := make([]query.State, 0, len(keys))
	for _, key := range keys {
		out = append(out, states[key])
	}
	return out
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tr := dashboard.ParseTimeRange(r.URL.Query().Get("range"))
	data, err := h.load(r.Context(), r, tr, false)
	if errors.Is(err, provider.ErrUnauthorized) {
		h.expireSession(w, r)
		return
	}

	page, err := h.buildPage(tr, data)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}

	// Notices are consumed even when the error panel already carries them.
	sess := shared.SessionFromContext(r.Context())
	for _, notice := range h.fetcher.Store().TakeNotices(data.scope) {
		if sess != nil && notice != page.ErrorMessage {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: notice})
		}
	}

	td := view.NewTemplateData(r, h.csrf, "Dashboard", page)
	if err := h.templates.Render(w, "pages/dashboard.html", td); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	tr := dashboard.ParseTimeRange(r.PostFormValue("range"))
	if _, err := h.load(r.Context(), r, tr, true); errors.Is(err, provider.ErrUnauthorized) {
		h.expireSession(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard?range="+string(tr), http.StatusSeeOther)
}

func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	tr := dashboard.ParseTimeRange(r.URL.Query().Get("range"))
	fresh := r.URL.Query().Get("fresh") == "1"
	data, err := h.load(r.Context(), r, tr, fresh)
	if errors.Is(err, provider.ErrUnauthorized) {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	notices := h.fetcher.Store().TakeNotices(data.scope)
	if notices == nil {
		notices = []string{}
	}
	status := http.StatusOK
	if data.state == query.ViewError {
		status = http.StatusBadGateway
	}
	httpx.JSON(w, status, APIResponse{State: data.state, View: data.view, Notices: notices})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	tr := dashboard.ParseTimeRange(r.URL.Query().Get("range"))
	data, err := h.load(r.Context(), r, tr, false)
	if errors.Is(err, provider.ErrUnauthorized) {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if data.state == query.ViewError {
		httpx.RespondError(w, fmt.Errorf("%w: dashboard data unavailable", httpx.ErrUpstream))
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteDashboardCSV(buf, data.view); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s-%s.csv", tr, h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) buildPage(tr dashboard.TimeRange, data loaded) (PageData, error) {
	v := data.view
	page := PageData{
		View:  v,
		State: data.state,
	}
	for _, option := range dashboard.TimeRanges {
		page.Ranges = append(page.Ranges, RangeOption{Value: option, Title: option.Title(), Active: option == tr})
	}
	for _, st := range data.states {
		if st.Fetching {
			page.Refreshing = true
		}
	}

	switch data.state {
	case query.ViewError:
		page.ErrorMessage = errorMessage(data.states, tr)
		return page, nil
	case query.ViewLoading:
		return page, nil
	case query.ViewEmpty:
		page.EmptyMessage = dashboard.EmptySalesMessage
	default:
		revenue := v.Sales.Revenue
		quantity := make([]float64, len(v.Sales.Quantity))
		for i, q := range v.Sales.Quantity {
			quantity[i] = float64(q)
		}
		sales, err := svg.Area(svg.DefaultWidth, svg.DefaultHeight, v.Sales.Labels, []svg.Series{
			{Name: "Revenue", Values: revenue, Color: dashboard.PaletteColor(0)},
			{Name: "Quantity", Values: quantity, Color: dashboard.PaletteColor(1)},
		}, svg.AreaOpts{
			Title:       "Sales Overview",
			Description: tr.Title() + " revenue and quantity sold",
			ShowDots:    true,
			FillOpacity: 0.15,
		})
		if err != nil {
			return PageData{}, err
		}
		page.SalesSVG = sales
	}

	page.InventorySVG = svg.Donut(svg.DefaultSize, segments(v.InventorySlices), svg.DonutOpts{
		Title:       "Inventory Status",
		Description: "Stock share per category",
	})
	page.BrandSVG = svg.Donut(svg.DefaultSize, segments(v.BrandSlices), svg.DonutOpts{
		Title:       "Product Brands",
		Description: "Products per brand",
	})
	if len(v.Inventory) > 0 {
		labels := make([]string, len(v.Inventory))
		stock := make([]float64, len(v.Inventory))
		capacity := make([]float64, len(v.Inventory))
		for i, status := range v.Inventory {
			labels[i] = status.CategoryName
			stock[i] = float64(status.StockCount)
			capacity[i] = float64(status.TotalCapacity)
		}
		bars, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels, []svg.Series{
			{Name: "Stock", Values: stock, Color: dashboard.PaletteColor(3)},
			{Name: "Capacity", Values: capacity, Color: "#cbd5e1"},
		}, svg.BarOpts{Title: "Stock Levels", Description: "Stock against capacity per category"})
		if err != nil {
			return PageData{}, err
		}
		page.StockSVG = bars
	}
	return page, nil
}

func segments(slices []dashboard.Slice) []svg.Segment {
	out := make([]svg.Segment, 0, len(slices))
	for _, s := range slices {
		out = append(out, svg.Segment{Label: s.Label, Value: s.Value, Color: s.Color})
	}
	return out
}

func errorMessage(states map[query.Key]query.State, tr dashboard.TimeRange) string {
	for _, st := range viewStates(states, tr) {
		if st.Status == query.Failure && !st.HasData {
			if msg := provider.NoticeFor(st.Err); msg != "" {
				return msg
			}
		}
	}
	return query.DefaultNotice
}

func (h *Handler) expireSession(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.fetcher.Store().Drop(sess.ID)
		sess.Expire()
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
}

// HandleDashboardForTest exposes the dashboard handler for tests.
func (h *Handler) HandleDashboardForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDashboard(w, r)
}

// HandleRefreshForTest exposes the refresh handler for tests.
func (h *Handler) HandleRefreshForTest(w http.ResponseWriter, r *http.Request) { h.handleRefresh(w, r) }

// HandleAPIForTest exposes the JSON handler for tests.
func (h *Handler) HandleAPIForTest(w http.ResponseWriter, r *http.Request) { h.handleAPI(w, r) }

// HandleCSVForTest exposes the CSV handler for tests.
func (h *Handler) HandleCSVForTest(w http.ResponseWriter, r *http.Request) { h.handleCSV(w, r) }
