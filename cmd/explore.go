package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var exploreCmd = &cobra.Command{
	Use:     "explore",
	Aliases: []string{"ui"},
	Short:   "Browse the catalog interactively",
	Long: `Browse the catalog in a full-screen view grouped by upload day.

Keyboard Shortcuts:
  Navigation:
    ↑/k         Move up
    ↓/j         Move down
    g / G       Jump to top / bottom

  Filters:
    /           Search by name (live)
    tab         Next type filter
    shift+tab   Previous type filter
    esc         Clear search

  Actions:
    n           Edit note
    c           Copy preview (or name) to clipboard
    d           Delete file

  General:
    ?           Toggle help
    q           Quit`,
	RunE: runExplore,
}

func runExplore(cmd *cobra.Command, args []string) error {
	m := newExploreModel(getContext(), browseService, catalogService)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running explorer: %w", err)
	}
	return nil
}

// Explorer view modes
type exploreMode int

const (
	exploreModeList exploreMode = iota
	exploreModeSearch
	exploreModeNote
	exploreModeConfirmDelete
)

type exploreKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Search   key.Binding
	NextType key.Binding
	PrevType key.Binding
	Note     key.Binding
	Copy     key.Binding
	Delete   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding
	Confirm  key.Binding
	Accept   key.Binding
}

func (k exploreKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Search, k.NextType, k.Note, k.Delete, k.Help, k.Quit}
}

func (k exploreKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Search, k.NextType, k.PrevType, k.Escape},
		{k.Note, k.Copy, k.Delete, k.Help, k.Quit},
	}
}

var exploreKeys = exploreKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	NextType: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next type"),
	),
	PrevType: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous type"),
	),
	Note: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "edit note"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear/cancel"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "accept"),
	),
}

// exploreModel is the bubbletea model behind `dx explore`
type exploreModel struct {
	ctx     context.Context
	browse  *services.BrowseService
	catalog *services.CatalogService

	view     *services.BrowseResponse
	items    []domain.FileRecord // records of view.Buckets, flattened
	typeName string              // active type filter, empty for all

	cursor      int
	offset      int
	mode        exploreMode
	searchInput textinput.Model
	noteInput   textinput.Model
	help        help.Model
	keys        exploreKeyMap
	width       int
	height      int
	message     string
	err         error

	// copyFn is swapped in tests
	copyFn func(string) error
}

func newExploreModel(ctx context.Context, browse *services.BrowseService, catalog *services.CatalogService) exploreModel {
	si := textinput.New()
	si.Placeholder = "Search files..."
	si.CharLimit = 100
	si.Width = 40

	ni := textinput.New()
	ni.Placeholder = "Note..."
	ni.CharLimit = 500
	ni.Width = 60

	m := exploreModel{
		ctx:         ctx,
		browse:      browse,
		catalog:     catalog,
		mode:        exploreModeList,
		searchInput: si,
		noteInput:   ni,
		help:        help.New(),
		keys:        exploreKeys,
		height:      24,
		copyFn:      clipboard.WriteAll,
	}
	m.refresh()
	return m
}

// refresh re-derives the view from the catalog and the current filters
func (m *exploreModel) refresh() {
	req := services.BrowseRequest{
		Search: m.searchInput.Value(),
		Type:   m.currentType(),
	}
	resp, err := m.browse.Execute(m.ctx, req)
	if err != nil {
		m.err = err
		return
	}
	m.view = resp

	// The active type disappears when its last record is deleted
	if !slices.Contains(resp.Types, req.Type) {
		m.typeName = ""
		resp, _ = m.browse.Execute(m.ctx, services.BrowseRequest{Search: req.Search})
		m.view = resp
	}

	m.items = make([]domain.FileRecord, 0, resp.Matched)
	for _, b := range m.view.Buckets {
		m.items = append(m.items, b.Records...)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	m.clampOffset()
}

func (m exploreModel) currentType() string {
	if m.typeName == "" {
		return domain.TypeAll
	}
	return m.typeName
}

// cycleType moves the type filter by step through the available types
func (m *exploreModel) cycleType(step int) {
	if m.view == nil || len(m.view.Types) == 0 {
		return
	}
	n := len(m.view.Types)
	i := max(slices.Index(m.view.Types, m.currentType()), 0)
	m.typeName = m.view.Types[(i+step+n)%n]
	m.cursor = 0
	m.refresh()
}

func (m exploreModel) selected() *domain.FileRecord {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	rec := m.items[m.cursor]
	return &rec
}

// listHeight is the number of record lines that fit on screen
func (m exploreModel) listHeight() int {
	return max(m.height-10, 3)
}

func (m *exploreModel) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case exploreModeSearch:
			return m.updateSearch(msg)
		case exploreModeNote:
			return m.updateNote(msg)
		case exploreModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m exploreModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.items)-1, 0)

	case key.Matches(msg, m.keys.Search):
		m.mode = exploreModeSearch
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextType):
		m.cycleType(1)

	case key.Matches(msg, m.keys.PrevType):
		m.cycleType(-1)

	case key.Matches(msg, m.keys.Escape):
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.refresh()
		}

	case key.Matches(msg, m.keys.Note):
		if rec := m.selected(); rec != nil {
			m.mode = exploreModeNote
			m.noteInput.SetValue(rec.Note)
			m.noteInput.CursorEnd()
			cmd := m.noteInput.Focus()
			return m, cmd
		}

	case key.Matches(msg, m.keys.Copy):
		if rec := m.selected(); rec != nil {
			text := rec.Name
			if rec.HasPreview() {
				text = rec.PreviewData
			}
			if err := m.copyFn(text); err != nil {
				m.message = "Copy failed: " + err.Error()
			} else {
				m.message = "Copied " + rec.Name
			}
		}

	case key.Matches(msg, m.keys.Delete):
		if m.selected() != nil {
			m.mode = exploreModeConfirmDelete
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.clampOffset()
	return m, nil
}

func (m exploreModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.mode = exploreModeList
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		m.searchInput.Blur()
		m.mode = exploreModeList
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.cursor = 0
	m.offset = 0
	m.refresh()
	return m, cmd
}

func (m exploreModel) updateNote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.noteInput.Blur()
		m.mode = exploreModeList
		return m, nil
	case tea.KeyEnter:
		m.noteInput.Blur()
		m.mode = exploreModeList
		if rec := m.selected(); rec != nil {
			note := strings.TrimSpace(m.noteInput.Value())
			m.message = m.apply(func() error {
				_, err := m.catalog.Update(m.ctx, rec.ID, services.UpdateRequest{Note: &note})
				return err
			}, "Note saved")
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

func (m exploreModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = exploreModeList
	if !key.Matches(msg, m.keys.Confirm) {
		m.message = "Delete cancelled"
		return m, nil
	}

	if rec := m.selected(); rec != nil {
		m.message = m.apply(func() error {
			return m.catalog.Delete(m.ctx, rec.ID)
		}, "Deleted "+rec.Name)
		m.refresh()
	}
	return m, nil
}

// apply runs a catalog mutation and returns the status line for it
func (m exploreModel) apply(fn func() error, success string) string {
	err := fn()
	switch {
	case err == nil:
		return success
	case errors.Is(err, domain.ErrNotPersisted):
		return success + " (not saved: storage write failed)"
	default:
		return "Error: " + err.Error()
	}
}

func (m exploreModel) View() string {
	if m.err != nil {
		return ui.FormatError(m.err.Error()) + "\n"
	}

	var s strings.Builder

	// Header
	s.WriteString(ui.StyleTitle.Render("DX Explorer"))
	if identity, err := m.catalog.Identity(); err == nil {
		s.WriteString(ui.StyleMuted.Render("  " + identity.DisplayName()))
	}
	s.WriteString("\n\n")

	// Filters
	s.WriteString(m.renderTypeTabs())
	s.WriteString("\n")
	if m.mode == exploreModeSearch || m.searchInput.Value() != "" {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	}
	s.WriteString("\n")

	// Records
	s.WriteString(m.renderRecords())

	// Footer
	s.WriteString("\n")
	switch m.mode {
	case exploreModeNote:
		s.WriteString(ui.StyleInfo.Render("Note: "))
		s.WriteString(m.noteInput.View())
		s.WriteString("\n")
	case exploreModeConfirmDelete:
		if rec := m.selected(); rec != nil {
			s.WriteString(ui.StyleError.Render(fmt.Sprintf("Delete %s? (y/n)", rec.Name)))
			s.WriteString("\n")
		}
	default:
		if m.message != "" {
			s.WriteString(ui.StyleInfo.Render(m.message))
			s.WriteString("\n")
		}
	}

	if m.view != nil {
		s.WriteString(ui.StyleMuted.Render(fmt.Sprintf("%d of %d files", m.view.Matched, m.view.Total)))
		s.WriteString("\n")
	}
	s.WriteString(m.help.View(m.keys))
	return s.String()
}

func (m exploreModel) renderTypeTabs() string {
	if m.view == nil {
		return ""
	}
	return ui.RenderTypeTabs(m.view.Types, m.currentType())
}

func (m exploreModel) renderRecords() string {
	if m.view == nil || m.view.Total == 0 {
		return ui.StyleMuted.Render("  No files yet. Upload some with 'dx upload'.") + "\n"
	}
	if len(m.items) == 0 {
		return ui.StyleMuted.Render("  No files match the current filters.") + "\n"
	}

	var s strings.Builder
	nameWidth := max(m.width-40, 20)
	end := m.offset + m.listHeight()

	idx := 0
	for _, bucket := range m.view.Buckets {
		bucketEnd := idx + len(bucket.Records)
		if bucketEnd > m.offset && idx < end {
			s.WriteString(ui.FormatBucketHeader(bucket.Label, len(bucket.Records)))
			s.WriteString("\n")
		}
		for _, rec := range bucket.Records {
			if idx >= m.offset && idx < end {
				s.WriteString(m.renderRow(rec, idx == m.cursor, nameWidth))
				s.WriteString("\n")
			}
			idx++
		}
	}
	return s.String()
}

func (m exploreModel) renderRow(rec domain.FileRecord, selected bool, nameWidth int) string {
	cursor := "  "
	style := ui.StyleTableRow
	if selected {
		cursor = ui.StyleAccent.Render("→ ")
		style = ui.StyleSelected
	}

	name := lipgloss.NewStyle().Width(nameWidth).Render(ui.Truncate(rec.Name, nameWidth))
	meta := fmt.Sprintf("%10s  %s", domain.FormatBytes(rec.SizeBytes, 1), rec.GetDisplayDate("15:04", nil))
	line := fmt.Sprintf("%s%s %s %s", cursor, ui.FileIcon(rec.Name, rec.MimeType), style.Render(name), ui.StyleMuted.Render(meta))
	if rec.Note != "" {
		line += ui.StyleSubtle.Render("  " + ui.Truncate(rec.Note, 30))
	}
	return line
}
