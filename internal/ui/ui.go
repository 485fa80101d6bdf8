package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/importer"
	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/nclalperen/game-tracker-mvp/internal/suggest"
	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	SuggestView
	MappingView
	ConfirmView
	ImportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.ImportEngine
	weights      suggest.Weights
	width        int
	height       int
	libraryList  list.Model
	suggestList  list.Model
	source       string
	table        *formatter.Table
	mapping      importer.FieldMap
	cursor       int
	plan         *tasks.Plan
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.ImportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that opens on the library.
func NewModel(ctx context.Context, engine *tasks.ImportEngine, weights suggest.Weights) *Model {
	return &Model{
		ctx:         ctx,
		view:        LibraryView,
		engine:      engine,
		weights:     weights,
		libraryList: newList(nil, "Library"),
		suggestList: newList(nil, "Suggestions"),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// WithImport opens the model on the import wizard for table, read from source.
// A nil mapping is guessed from the table headers.
func (m *Model) WithImport(source string, table *formatter.Table, mapping importer.FieldMap) *Model {
	if mapping == nil {
		mapping = importer.GuessFieldMap(table.Headers)
	}
	m.source = source
	m.table = table
	m.mapping = mapping
	m.cursor = 0
	m.view = MappingView
	return m
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return l
}

// Init loads the library.
func (m *Model) Init() tea.Cmd {
	return m.loadLibrary()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.libraryList.SetSize(msg.Width-4, msg.Height-8)
		m.suggestList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case SuggestView:
			return m.handleSuggestKeys(msg)
		case MappingView:
			return m.handleMappingKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ImportView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLibraryLoaded:
		data := msg.data.(libraryLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.setRows(data.rows)
		return m, nil

	case MsgPlanReady:
		data := msg.data.(planReady)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.plan = data.plan
		m.view = ConfirmView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgImportComplete:
		data := msg.data.(importComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.done = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}

	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case SuggestView:
		return m.renderSuggestions()
	case MappingView:
		return m.renderMapping()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m.handleErrorKeys(msg)
	}
	if m.libraryList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.libraryList, cmd = m.libraryList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.suggest):
		m.view = SuggestView
		return m, nil
	}

	var cmd tea.Cmd
	m.libraryList, cmd = m.libraryList.Update(msg)
	return m, cmd
}

func (m *Model) handleSuggestKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.suggestList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.suggestList, cmd = m.suggestList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = LibraryView
		return m, nil
	}

	var cmd tea.Cmd
	m.suggestList, cmd = m.suggestList.Update(msg)
	return m, cmd
}

func (m *Model) handleMappingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m.handleErrorKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = LibraryView
		return m, nil
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(importer.Fields)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.left):
		m.cycleColumn(-1)
	case key.Matches(msg, m.keys.right):
		m.cycleColumn(1)
	case key.Matches(msg, m.keys.enter):
		return m, m.planImport()
	}
	return m, nil
}

// cycleColumn moves the selected field to the previous or next header.
// The cycle includes an unmapped position before the first header.
func (m *Model) cycleColumn(delta int) {
	field := importer.Fields[m.cursor]
	options := append([]string{""}, m.table.Headers...)

	current := 0
	if c, ok := m.mapping.Column(field); ok {
		for i, o := range options {
			if o == c {
				current = i
				break
			}
		}
	}
	next := (current + delta + len(options)) % len(options)
	m.mapping.Set(field, options[next])
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = MappingView
		m.plan = nil
		return m, nil
	case key.Matches(msg, m.keys.yes):
		if m.plan == nil || m.plan.Result.Nothing {
			return m, nil
		}
		m.view = ImportView
		return m, m.startImport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = LibraryView
		m.plan = nil
		m.result = nil
		m.err = nil
		return m, m.loadLibrary()
	}
	return m, nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LibraryView:
		m.libraryList, cmd = m.libraryList.Update(msg)
	case SuggestView:
		m.suggestList, cmd = m.suggestList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setRows(rows []library.Row) {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowItem{row: r}
	}
	m.libraryList.SetItems(items)
	m.libraryList.Title = fmt.Sprintf("Library • %s", library.Summary(rows))

	suggestions := suggest.Compute(rows, m.weights)
	sItems := make([]list.Item, len(suggestions))
	for i, s := range suggestions {
		sItems[i] = suggestionItem{s: s}
	}
	m.suggestList.SetItems(sItems)
}

func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.engine.Store().Snapshot(m.ctx)
		if err != nil {
			return libraryLoadedMsg(nil, err)
		}
		return libraryLoadedMsg(library.Join(snap), nil)
	}
}

func (m *Model) planImport() tea.Cmd {
	table, mapping := m.table, m.mapping
	return func() tea.Msg {
		if err := mapping.Validate(table.Headers); err != nil {
			return planReadyMsg(nil, err)
		}
		plan, err := m.engine.Plan(m.ctx, nil, table, mapping)
		return planReadyMsg(plan, err)
	}
}

func (m *Model) startImport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.done = done

	plan := m.plan
	go func() {
		result, err := m.engine.Apply(m.ctx, progress, plan)
		close(progress)
		done <- importCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return importCompleteMsg(m.result, m.err)
		}
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) renderLibrary() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.suggest, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.libraryList.View(), helpView)
}

func (m *Model) renderSuggestions() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.suggestList.View(), helpView)
}

func (m *Model) renderMapping() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Import %s", m.source)))
	fmt.Fprintf(&b, "\n%d rows", len(m.table.Records))
	if m.table.Malformed > 0 {
		b.WriteString(styles.warn.Render(fmt.Sprintf(" (%d malformed)", m.table.Malformed)))
	}
	b.WriteString("\n\n")

	var sample formatter.Record
	if len(m.table.Records) > 0 {
		sample = m.table.Records[0]
	}

	for i, f := range importer.Fields {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		column, ok := m.mapping.Column(f)
		if !ok {
			column = styles.help.Render("(unmapped)")
		}
		line := fmt.Sprintf("%s%-9s → %s", cursor, f, column)
		if ok && sample.Len() > 0 {
			line += styles.help.Render(fmt.Sprintf("   e.g. %q", m.mapping.Value(sample, f)))
		}
		if i == m.cursor {
			line = styles.ok.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if _, ok := m.mapping.Column(importer.FieldTitle); !ok {
		b.WriteString("\n" + styles.warn.Render("⚠ No title column: every row will be skipped"))
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.left, m.keys.right, m.keys.enter, m.keys.back}
	return b.String() + "\n\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderConfirm() string {
	if m.plan == nil {
		return ""
	}
	r, batch := m.plan.Result, m.plan.Batch

	if r.Nothing {
		title := styles.warn.Render("Nothing to import")
		info := fmt.Sprintf("\n%d rows read, %d skipped without a title.", r.Rows, r.Rejected)
		return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.help.ShortHelpView([]key.Binding{m.keys.back}))
	}

	title := styles.title.Render(fmt.Sprintf("Import %d games from %s?", len(batch.Items), m.source))
	info := fmt.Sprintf(
		"\nNew games: %d\nExisting games: %d\nNew members: %d\nNew accounts: %d\nSkipped rows: %d\nStatuses: %s\n",
		len(batch.Identities), r.Reused, len(batch.Members), len(batch.Accounts), r.Rejected, statusCounts(batch.Items),
	)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderImport() string {
	title := styles.title.Render("Importing")

	var phase string
	switch m.progress.Phase {
	case tasks.CommitBatch:
		phase = fmt.Sprintf("Committing (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}
	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		msg := fmt.Sprintf("Import failed: %v", m.err)
		var commitErr *tasks.CommitError
		if errors.As(m.err, &commitErr) {
			msg += fmt.Sprintf("\n\nNothing was written (%d records rolled back).", len(commitErr.IDs))
		}
		return styles.err.Render(msg) + "\n\n" + helpView
	}

	if m.result == nil || m.result.Summary == nil {
		return styles.warn.Render("Nothing imported") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Import Complete!")
	info := fmt.Sprintf("\n%s\nSkipped rows: %d", m.result.Summary, m.result.Rejected)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
