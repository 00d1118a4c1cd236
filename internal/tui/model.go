package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/history"
	"inkwell-cli/internal/inventory"
	"inkwell-cli/internal/review"
	"inkwell-cli/internal/store"
	"inkwell-cli/internal/views"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type diffMsg struct {
	res   review.DiffResult
	err   error
	prime bool
}

type syncMsg struct {
	kind history.Kind
	res  review.SyncResult
	err  error
}

type reloadMsg struct {
	sess *inventory.Session
	err  error
}

type appModel struct {
	ctx     context.Context
	opts    Options
	dirty   *store.Dirty
	notices *noticeBox
	sess    *inventory.Session
	flow    *review.Workflow

	tab      tab
	table    table.Model
	penSort  views.SortState
	inkSort  views.SortState
	brand    string
	page     int
	pageSize int
	pages    int

	reviewing bool
	diff      review.DiffResult
	viewport  viewport.Model

	busy      string
	status    string
	statusErr bool

	width  int
	height int
}

func newAppModel(ctx context.Context, opts Options) (appModel, error) {
	if opts.Gateway == nil || opts.Publisher == nil {
		return appModel{}, errors.New("tui: gateway and publisher are required")
	}
	if opts.Journal == nil {
		opts.Journal = history.Nop
	}
	m := appModel{
		ctx:      ctx,
		opts:     opts,
		dirty:    store.NewDirty(),
		notices:  &noticeBox{},
		pageSize: views.DefaultPageSize,
		table:    table.New(table.WithFocused(true)),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.flow = review.NewWorkflow(opts.Publisher, m.dirty)
	m.sess = m.newSession()
	if err := m.sess.Open(ctx); err != nil {
		m.status, m.statusErr = "Failed to load data", true
	}
	m.refresh()
	return m, nil
}

// newSession builds a session that shares the model's dirty flag.
func (m *appModel) newSession() *inventory.Session {
	return inventory.New(m.opts.Gateway,
		inventory.WithStore(store.New(store.WithDirty(m.dirty))),
		inventory.WithNotifier(m.notices),
		inventory.WithJournal(m.opts.Journal),
	)
}

func (m appModel) Init() tea.Cmd {
	return m.fetchDiff(true)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case diffMsg:
		m.busy = ""
		if msg.err != nil {
			m.status, m.statusErr = "Diff failed: "+msg.err.Error(), true
			return m, nil
		}
		m.diff = msg.res
		if msg.res.HasChanges {
			m.dirty.Mark()
		}
		if !msg.prime {
			m.reviewing = true
			m.viewport.SetContent(renderDiff(msg.res))
			m.viewport.GotoTop()
		}
		return m, nil

	case syncMsg:
		m.busy = ""
		m.record(msg)
		if msg.err != nil {
			m.status, m.statusErr = syncFailure(msg.err), true
			return m, nil
		}
		m.status, m.statusErr = msg.res.Message, false
		m.reviewing = false
		if msg.kind == history.KindPull {
			return m, m.reload()
		}
		return m, nil

	case reloadMsg:
		if msg.err != nil {
			m.status, m.statusErr = "Failed to load data", true
			return m, nil
		}
		m.sess = msg.sess
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.reviewing {
			return m.updateReview(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k := msg.String(); k {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "right", "l":
		m.switchTab(1)
		return m, nil
	case "shift+tab", "left", "h":
		m.switchTab(-1)
		return m, nil
	case "r":
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Loading diff"
		return m, m.fetchDiff(false)
	case "p":
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Pulling"
		return m, m.runSync(history.KindPull, m.flow.Pull)
	case "b":
		if m.tab == tabRefills {
			m.brand = nextBrand(views.PenBrands(m.sess.Snapshot()), m.brand)
			m.page = 0
			m.refresh()
		}
		return m, nil
	case "[", "]":
		if m.tab == tabRefills {
			if k == "[" {
				m.page--
			} else {
				m.page++
			}
			m.refresh()
		}
		return m, nil
	case "n":
		if m.tab == tabRefills {
			m.pageSize = views.NextPageSize(m.pageSize)
			m.page = 0
			m.refresh()
		}
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.toggleSort(int(k[0] - '1'))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m appModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.reviewing = false
		return m, nil
	case "enter":
		if m.busy != "" || !m.diff.HasChanges {
			return m, nil
		}
		m.busy = "Publishing"
		return m, m.runSync(history.KindPublish, m.flow.Publish)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *appModel) switchTab(delta int) {
	m.tab = tabs[(int(m.tab)+delta+len(tabs))%len(tabs)]
	m.refresh()
	m.table.GotoTop()
}

func (m *appModel) toggleSort(col int) {
	switch m.tab {
	case tabPens:
		if col < len(views.PenSortKeys) {
			m.penSort = m.penSort.Toggle(views.PenSortKeys[col])
		}
	case tabInks:
		if col < len(views.InkSortKeys) {
			m.inkSort = m.inkSort.Toggle(views.InkSortKeys[col])
		}
	default:
		return
	}
	m.refresh()
}

// refresh rebuilds the active tab's table from the session.
func (m *appModel) refresh() {
	c := m.sess.Snapshot()
	var g grid
	switch m.tab {
	case tabPens:
		g = penGrid(c, m.penSort)
	case tabInks:
		g = inkGrid(c, m.inkSort)
	case tabRefills:
		p := views.PageRefills(m.sess.Store.RefillViews(), views.RefillFilter{PenBrand: m.brand}, views.Page{Index: m.page, Size: m.pageSize})
		m.page, m.pages = p.Page, p.Pages
		g = refillGrid(p)
	case tabInked:
		g = inkedGrid(c)
	}
	// Rows must go first: the table renders existing rows against new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(g.columns())
	m.table.SetRows(g.rows)
	m.resize()
}

func (m *appModel) resize() {
	// header, blank, status, help
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
	m.viewport.Width = m.width
	m.viewport.Height = h
}

func (m appModel) fetchDiff(prime bool) tea.Cmd {
	ctx, flow := m.ctx, m.flow
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		res, err := flow.Review(ctx)
		return diffMsg{res: res, err: err, prime: prime}
	}
}

func (m appModel) runSync(kind history.Kind, fn func(context.Context) (review.SyncResult, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		res, err := fn(ctx)
		return syncMsg{kind: kind, res: res, err: err}
	}
}

func (m appModel) reload() tea.Cmd {
	sess := m.newSession()
	ctx := m.ctx
	return func() tea.Msg {
		err := sess.Open(ctx)
		return reloadMsg{sess: sess, err: err}
	}
}

func (m appModel) record(msg syncMsg) {
	ev := history.Event{Kind: msg.kind, OK: msg.err == nil, Detail: msg.res.Message}
	var pe *review.PublishError
	if errors.As(msg.err, &pe) {
		ev.Detail = pe.Details()
	}
	_ = m.opts.Journal.Record(m.ctx, ev)
}

func syncFailure(err error) string {
	var pe *review.PublishError
	if errors.As(err, &pe) {
		d := pe.Details()
		if i := strings.IndexByte(d, '\n'); i >= 0 {
			d = d[:i]
		}
		return pe.Message + ": " + d
	}
	return err.Error()
}

// nextBrand cycles "" (all) -> brands[0] -> ... -> "".
func nextBrand(brands []string, cur string) string {
	if cur == "" {
		if len(brands) == 0 {
			return ""
		}
		return brands[0]
	}
	for i, b := range brands {
		if b == cur && i+1 < len(brands) {
			return brands[i+1]
		}
	}
	return ""
}

func renderDiff(d review.DiffResult) string {
	lines := review.Lines(d.Diff)
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = diffLineStyle(ln.Kind).Render(ln.Text)
	}
	return strings.Join(out, "\n")
}

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	if m.reviewing {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(m.helpView()))
	return b.String()
}

func (m appModel) headerView() string {
	if m.reviewing {
		added, removed := review.Stats(review.Lines(m.diff.Diff))
		return styleTabActive().Render("Review") + " " + styleMuted().Render(fmt.Sprintf("+%d -%d", added, removed))
	}
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		if t == m.tab {
			parts[i] = styleTabActive().Render(t.String())
		} else {
			parts[i] = styleTabInactive().Render(t.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m appModel) statusView() string {
	var parts []string
	if m.flow.Actionable() {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorDirty).Bold(true).Render("● unpublished changes"))
	} else {
		parts = append(parts, styleMuted().Render("○ published"))
	}
	switch m.tab {
	case tabPens:
		parts = append(parts, styleMuted().Render("sort: "+m.penSort.String()))
	case tabInks:
		parts = append(parts, styleMuted().Render("sort: "+m.inkSort.String()))
	case tabRefills:
		brand := m.brand
		if brand == "" {
			brand = "all"
		}
		parts = append(parts, styleMuted().Render(fmt.Sprintf("brand: %s  page %d/%d  %d per page", brand, m.page+1, m.pages, m.pageSize)))
	}
	if m.busy != "" {
		parts = append(parts, m.busy+"…")
	} else if msg, isErr := m.message(); msg != "" {
		st := lipgloss.NewStyle()
		if isErr {
			st = st.Foreground(colorError)
		}
		parts = append(parts, st.Render(msg))
	}
	return strings.Join(parts, "  ")
}

// message prefers the model's own status over the last save notice.
func (m appModel) message() (string, bool) {
	if m.status != "" {
		return m.status, m.statusErr
	}
	n, seq := m.notices.latest()
	if seq == 0 {
		return "", false
	}
	return n.Message, n.Kind == gateway.NoticeError
}

func (m appModel) helpView() string {
	if m.reviewing {
		if m.diff.HasChanges {
			return "enter publish · ↑/↓ scroll · esc back"
		}
		return "esc back"
	}
	help := "tab switch · 1-9 sort · r review · p pull · q quit"
	if m.tab == tabRefills {
		help = "b brand · [/] page · n per page · " + help
	}
	return help
}
