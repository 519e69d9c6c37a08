package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"prreview/internal/clipboard"
	"prreview/internal/comments"
	"prreview/internal/config"
	"prreview/internal/diffview"
	"prreview/internal/source"
	"prreview/internal/viewer"
)

const alertDuration = 3 * time.Second

var errNoContextSource = errors.New("context expansion is not available")

// actionMsg carries the result of an intent back into the engine.
type actionMsg struct {
	action viewer.Action
}

type clipboardResultMsg struct {
	count int
	err   error
}

type alertTickMsg struct{}

// Deps are the collaborators the model drives.
type Deps struct {
	Diff     source.DiffSource
	Context  source.ContextSource
	Review   source.ReviewSink
	CopyText func(string) error
	Config   config.Config
	Logger   zerolog.Logger
}

// Model is the Bubble Tea front end over a viewer.State.
type Model struct {
	ctx   context.Context
	keys  KeyMap
	state *viewer.State
	deps  Deps
	log   zerolog.Logger
	hl    *diffview.Highlighter

	treeWidth int
	width     int
	height    int
	ready     bool
	helpOpen  bool
	viewport  viewer.SetViewport

	commentInput textinput.Model
	reviewInput  textinput.Model

	alertMsg   string
	alertUntil time.Time
	lastNotice string
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.CopyText == nil {
		deps.CopyText = clipboard.CopyText
	}
	cfg := deps.Config

	return Model{
		ctx:  ctx,
		keys: defaultKeyMap(),
		state: viewer.New(viewer.Options{
			ExpandLimit:     cfg.ExpandContext,
			DefaultEvent:    cfg.Event(),
			ApprovalMessage: cfg.ApprovalMessage,
			HideFileTree:    !cfg.FileTreeVisible(),
		}),
		deps:         deps,
		log:          deps.Logger.With().Str("component", "app").Logger(),
		hl:           diffview.NewHighlighter(cfg.SyntaxTheme),
		treeWidth:    cfg.TreeWidth,
		commentInput: newInput("Type comment", 4096),
		reviewInput:  newInput("Review summary (optional)", 8192),
	}
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	in.Cursor.SetMode(cursor.CursorStatic)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return in
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.apply(viewer.Reload{}), alertTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.syncViewport()
		return m, nil

	case actionMsg:
		cmd := m.apply(msg.action)
		m.syncInputs()
		m.syncViewport()
		return m, cmd

	case clipboardResultMsg:
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("copy failed: %v", msg.err))
			return m, nil
		}
		m.setAlert(fmt.Sprintf("Copied %d pending comment(s) to clipboard.", msg.count))
		return m, nil

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
			m.syncViewport()
		}
		return m, alertTickCmd()

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.syncInputs()
		m.syncViewport()
		return m, cmd
	}

	return m, nil
}

// apply runs a on the engine, surfaces its notice and turns its intents
// into commands.
func (m *Model) apply(a viewer.Action) tea.Cmd {
	intents := m.state.Apply(a)

	if err := m.state.Refusal(); err != nil {
		m.setAlert(err.Error())
	} else if n := m.state.Notice(); n != "" && n != m.lastNotice {
		m.setAlert(n)
	}
	m.lastNotice = m.state.Notice()

	cmds := make([]tea.Cmd, 0, len(intents))
	for _, in := range intents {
		cmds = append(cmds, m.intentCmd(in))
	}
	return tea.Batch(cmds...)
}

func (m *Model) intentCmd(in viewer.Intent) tea.Cmd {
	ctx := m.ctx
	log := m.log

	switch in := in.(type) {
	case viewer.LoadIntent:
		src := m.deps.Diff
		log.Debug().Msg("loading diff")
		return func() tea.Msg {
			d, err := src.LoadDiff(ctx)
			if err != nil {
				log.Error().Err(err).Msg("load diff")
				return actionMsg{viewer.LoadFailed{Err: err}}
			}
			return actionMsg{viewer.Loaded{Diff: d}}
		}

	case viewer.ExpandIntent:
		src := m.deps.Context
		log.Debug().Str("path", in.Path).Int("start", in.Range.Start).Int("end", in.Range.End).Msg("expanding context")
		return func() tea.Msg {
			if src == nil {
				return actionMsg{viewer.ExpansionFetched{Path: in.Path, GapStart: in.GapStart, Err: errNoContextSource}}
			}
			lines, err := src.FetchContext(ctx, in.Path, in.Range, in.OldOffset)
			if err != nil {
				log.Warn().Err(err).Str("path", in.Path).Msg("expand context")
			}
			return actionMsg{viewer.ExpansionFetched{Path: in.Path, GapStart: in.GapStart, Lines: lines, Err: err}}
		}

	case viewer.ReviewIntent:
		sink := m.deps.Review
		review := source.Review{
			Repo:     in.Repo,
			Number:   in.Number,
			CommitID: in.CommitID,
			Event:    in.Event,
			Body:     in.Body,
			Comments: in.Comments,
		}
		if d := m.state.Diff(); d != nil {
			review.Title = d.Title
		}
		log.Info().Str("event", string(in.Event)).Int("comments", len(in.Comments)).Msg("submitting review")
		return func() tea.Msg {
			return actionMsg{viewer.ReviewSubmitted{Err: sink.SubmitReview(ctx, review)}}
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.state.Mode() {
	case viewer.ModeCommentEditing:
		return m.handleCommentInput(msg)
	case viewer.ModeReviewPopup:
		return m.handleReviewInput(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Help):
		m.helpOpen = !m.helpOpen
		return nil
	case key.Matches(msg, k.Copy):
		return m.copyReviewCmd()
	case key.Matches(msg, k.Comment):
		cmd := m.apply(viewer.StartComment{})
		if m.state.Mode() != viewer.ModeCommentEditing {
			return cmd
		}
		m.commentInput.SetValue("")
		return tea.Batch(cmd, m.commentInput.Focus())
	case key.Matches(msg, k.Review):
		cmd := m.apply(viewer.ShowReviewPopup{})
		m.reviewInput.SetValue(m.state.ReviewBody())
		m.reviewInput.CursorEnd()
		return tea.Batch(cmd, m.reviewInput.Focus())
	}

	if a, ok := m.navAction(msg); ok {
		return m.apply(a)
	}
	return nil
}

func (m *Model) navAction(msg tea.KeyMsg) (viewer.Action, bool) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		return viewer.MoveUp{}, true
	case key.Matches(msg, k.Down):
		return viewer.MoveDown{}, true
	case key.Matches(msg, k.PageUp):
		return viewer.PageUp{}, true
	case key.Matches(msg, k.PageDown):
		return viewer.PageDown{}, true
	case key.Matches(msg, k.Top):
		return viewer.CursorFirst{}, true
	case key.Matches(msg, k.Bottom):
		return viewer.CursorLast{}, true
	case key.Matches(msg, k.ToggleFocus):
		return viewer.ToggleFocus{}, true
	case key.Matches(msg, k.FocusTree):
		return viewer.FocusTree{}, true
	case key.Matches(msg, k.FocusContent):
		return viewer.FocusContent{}, true
	case key.Matches(msg, k.Open):
		return viewer.Confirm{}, true
	case key.Matches(msg, k.ToggleNode):
		return viewer.ToggleNode{}, true
	case key.Matches(msg, k.ExpandAll):
		return viewer.ExpandAll{}, true
	case key.Matches(msg, k.CollapseAll):
		return viewer.CollapseAll{}, true
	case key.Matches(msg, k.ToggleTree):
		return viewer.ToggleFileTree{}, true
	case key.Matches(msg, k.Visual):
		if m.state.Mode() == viewer.ModeVisual {
			return viewer.ExitVisual{}, true
		}
		return viewer.EnterVisual{}, true
	case key.Matches(msg, k.Cancel):
		return viewer.ExitVisual{}, true
	case key.Matches(msg, k.Expand):
		return viewer.ExpandContext{}, true
	case key.Matches(msg, k.DeleteComment):
		return viewer.DeleteComment{}, true
	case key.Matches(msg, k.Reload):
		return viewer.Reload{}, true
	}
	return nil, false
}

func (m *Model) handleCommentInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.apply(viewer.CancelComment{})
	case tea.KeyEnter:
		return m.apply(viewer.CommitComment{})
	}

	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	m.state.Apply(viewer.SetDraftBody{Body: m.commentInput.Value()})
	return cmd
}

func (m *Model) handleReviewInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.apply(viewer.HideReviewPopup{})
	case tea.KeyEnter:
		return m.apply(viewer.SubmitReview{})
	case tea.KeyTab:
		return m.apply(viewer.ReviewOptionNext{})
	case tea.KeyShiftTab:
		return m.apply(viewer.ReviewOptionPrev{})
	}

	var cmd tea.Cmd
	m.reviewInput, cmd = m.reviewInput.Update(msg)
	m.state.Apply(viewer.SetReviewBody{Body: m.reviewInput.Value()})
	return cmd
}

// syncInputs releases an input once the engine has left its mode.
func (m *Model) syncInputs() {
	mode := m.state.Mode()
	if mode != viewer.ModeCommentEditing && m.commentInput.Focused() {
		m.commentInput.Blur()
		m.commentInput.SetValue("")
	}
	if mode != viewer.ModeReviewPopup && m.reviewInput.Focused() {
		m.reviewInput.Blur()
	}
}

func (m *Model) copyReviewCmd() tea.Cmd {
	pending := m.state.PendingComments()
	if len(pending) == 0 {
		m.setAlert("No pending comments to copy.")
		return nil
	}
	title := ""
	if d := m.state.Diff(); d != nil {
		title = d.Title
	}
	text := comments.ExportMarkdown(title, m.state.ReviewEvent(), m.state.ReviewBody(), pending)
	write := m.deps.CopyText
	return func() tea.Msg {
		return clipboardResultMsg{count: len(pending), err: write(text)}
	}
}

type frame struct {
	leftW, rightW int
	bodyH         int
	listH         int
	footer        string
	dock          string
}

func (m Model) frame() frame {
	f := frame{footer: m.renderFooter(), dock: m.renderDock()}
	dockH := 0
	if f.dock != "" {
		dockH = lipgloss.Height(f.dock)
	}
	// lipgloss Height applies to content height; borders add 2 more rows.
	f.bodyH = max(1, m.height-lipgloss.Height(f.footer)-dockH-2)
	f.listH = max(1, f.bodyH-2)
	f.leftW, f.rightW = paneWidths(m.width, m.treeWidth, !m.state.ShowTree())
	return f
}

// syncViewport tells the engine how many rows the panes can show.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	f := m.frame()
	vp := viewer.SetViewport{Width: f.rightW, Height: f.listH}
	if vp == m.viewport {
		return
	}
	m.viewport = vp
	m.state.Apply(vp)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	f := m.frame()
	content := m.renderContentPane(f.rightW, f.bodyH, f.listH)
	if m.state.ShowTree() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderTreePane(f.leftW, f.bodyH, f.listH), content)
	}

	body := content
	if f.dock != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, f.dock)
	}
	if m.state.Mode() == viewer.ModeReviewPopup {
		body = overlayCentered(body, m.renderReviewPopup(), m.width, lipgloss.Height(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, f.footer)
}

func (m Model) helpText() string {
	render := func(bindings []key.Binding) string {
		parts := make([]string, 0, len(bindings))
		for _, b := range bindings {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
		return strings.Join(parts, " | ")
	}
	if !m.helpOpen {
		return render(m.keys.short())
	}
	groups := m.keys.full()
	lines := make([]string, 0, len(groups)+1)
	for _, g := range groups {
		lines = append(lines, render(g))
	}
	lines = append(lines, "Comment: enter save | esc cancel    Review: tab verdict | enter submit | esc close")
	return strings.Join(lines, "\n")
}

func (m Model) statusLine() string {
	parts := []string{m.state.Mode().String()}
	if d := m.state.Diff(); d != nil {
		label := d.Title
		if d.Number > 0 {
			label = fmt.Sprintf("%s#%d %s", d.Repo, d.Number, d.Title)
		}
		parts = append(parts, label, fmt.Sprintf("+%d -%d", d.Additions, d.Deletions))
	}
	if n := m.state.PendingCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", n))
	}
	if m.state.Loading() {
		parts = append(parts, "loading…")
	}
	if m.state.Submitting() {
		parts = append(parts, "submitting…")
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderFooter() string {
	status := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).
		Render(truncateLinesToWidth(m.statusLine(), m.width))
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).
		Render(truncateLinesToWidth(m.helpText(), m.width))
	return status + "\n" + help
}

func (m Model) renderDock() string {
	if m.state.Mode() == viewer.ModeCommentEditing {
		return m.renderCommentDock()
	}
	if m.alertMsg != "" {
		return m.renderAlertDock()
	}
	return ""
}

func (m Model) renderTreePane(width, height, listH int) string {
	borderColor := lipgloss.Color("245")
	focused := m.state.Focus() == viewer.PaneTree
	if focused {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor)

	files := 0
	if d := m.state.Diff(); d != nil {
		files = len(d.Files)
	}
	bodyLines := []string{fmt.Sprintf("Files (%d)", files), ""}

	entries := m.state.Entries()
	tp := m.state.Tree()
	counts := m.state.CommentCounts()
	if len(entries) == 0 {
		bodyLines = append(bodyLines, "No changed files")
	}
	end := min(len(entries), tp.Scroll+listH)
	for i := tp.Scroll; i < end; i++ {
		e := entries[i]
		prefix := "  "
		if i == tp.Cursor {
			prefix = "> "
		}
		var line string
		if e.IsDir {
			line = fmt.Sprintf("%s%s%s %s/", prefix, e.Indent(), e.Icon(), e.Name)
		} else {
			mark := " "
			if counts[e.Path] > 0 {
				mark = "◉"
			}
			line = fmt.Sprintf("%s%s%s %s %s", prefix, e.Indent(), mark, e.Status.Symbol(), e.Name)
		}
		line += fmt.Sprintf("  +%d -%d", e.Additions, e.Deletions)

		style := lipgloss.NewStyle().Width(width).MaxWidth(width)
		switch {
		case i == tp.Cursor && focused:
			style = style.Foreground(lipgloss.Color("39")).Bold(true)
		case e.IsDir:
			style = style.Foreground(lipgloss.Color("244"))
		case e.Path == m.state.ActivePath():
			style = style.Bold(true)
		}
		bodyLines = append(bodyLines, style.Render(ansi.Truncate(line, width, "…")))
	}
	return paneStyle.Render(strings.Join(bodyLines, "\n"))
}

func (m Model) renderContentPane(width, height, listH int) string {
	borderColor := lipgloss.Color("245")
	focused := m.state.Focus() == viewer.PaneContent
	if focused {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor)

	file, ok := m.state.ActiveFile()
	title := "Diff"
	if ok {
		title = fmt.Sprintf("%s  +%d -%d", file.DisplayName(), file.Additions, file.Deletions)
	}
	if m.state.Mode() == viewer.ModeVisual {
		title += " [VISUAL]"
	}
	header := lipgloss.NewStyle().Bold(true).Width(width).MaxWidth(width).Render(ansi.Truncate(title, width, "…"))

	var body string
	rows := m.state.Rows()
	switch {
	case m.state.LoadErr() != nil:
		body = fmt.Sprintf("Failed to load:\n%v", m.state.LoadErr())
	case m.state.Diff() == nil:
		body = "Loading pull request…"
	case !ok:
		body = "No changed files."
	case len(rows) == 0 && file.Binary:
		body = "Binary file not shown."
	case len(rows) == 0:
		body = "No textual changes."
	default:
		c := m.state.Content()
		opts := diffview.RenderOptions{
			Path:        file.Path,
			Width:       width,
			Cursor:      c.Cursor,
			Focused:     focused,
			HasComment:  m.state.HasComment,
			Highlighter: m.hl,
		}
		if lo, hi, sel := m.state.Selection(); sel {
			opts.Selecting, opts.SelStart, opts.SelEnd = true, lo, hi
		}
		body = strings.Join(diffview.RenderRows(m.state.Hunks(), rows, c.Scroll, c.Scroll+listH, opts), "\n")
	}
	return paneStyle.Render(header + "\n\n" + body)
}

func (m Model) renderCommentDock() string {
	title := "Add Comment"
	if d, ok := m.state.Draft(); ok {
		c := d.Comment()
		title = fmt.Sprintf("Comment on %s %s (%s)", c.Path, c.LineLabel(), c.Side)
	}

	contentW := max(10, m.width-2)
	input := m.commentInput
	input.Width = max(1, contentW-9)
	inputBox := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(input.View())
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Enter save | Esc cancel | Backspace delete")

	bodyLines := []string{inputBox, "", hint}
	if err := m.state.Refusal(); err != nil {
		bodyLines = append(bodyLines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("Error: "+err.Error()))
	}
	return m.renderDockPanel(title, lipgloss.Color("39"), lipgloss.Color("39"), strings.Join(bodyLines, "\n"))
}

func (m Model) renderAlertDock() string {
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Auto-hides after 3s")
	return m.renderDockPanel("Notice", lipgloss.Color("220"), lipgloss.Color("220"), m.alertMsg+"\n\n"+hint)
}

func (m Model) renderReviewPopup() string {
	width := 64
	if m.width > 0 && m.width-6 < width {
		width = max(24, m.width-6)
	}
	inner := max(1, width-2)

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	lines := []string{fmt.Sprintf("%d pending comment(s)", m.state.PendingCount()), ""}
	for _, e := range comments.Events() {
		box := "[ ]"
		style := lipgloss.NewStyle()
		if e == m.state.ReviewEvent() {
			box = "[x]"
			style = style.Foreground(lipgloss.Color("39")).Bold(true)
		}
		lines = append(lines, style.Render(box+" "+e.Label()))
	}

	input := m.reviewInput
	input.Width = max(1, inner-8)
	lines = append(lines, "", "Body: "+input.View(), "", dim.Render("Tab verdict | Enter submit | Esc close"))
	if m.state.Submitting() {
		lines = append(lines, "", "Submitting…")
	}
	if err := m.state.ReviewErr(); err != nil {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("Error: "+err.Error()))
	}
	if err := m.state.Refusal(); err != nil {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(err.Error()))
	}

	title := lipgloss.NewStyle().
		Width(inner).
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("63")).
		Render("Submit Review")
	bodyBlock := lipgloss.NewStyle().
		Width(inner).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(title + "\n" + bodyBlock)
}

func (m Model) renderDockPanel(title string, titleColor, borderColor lipgloss.Color, body string) string {
	contentW := max(10, m.width-2)
	titleBar := lipgloss.NewStyle().
		Width(contentW).
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(titleColor).
		Render(ansi.Truncate(title, max(1, contentW-2), ""))

	bodyBlock := lipgloss.NewStyle().
		Width(contentW).
		Padding(1, 2).
		Render(body)

	return lipgloss.NewStyle().
		Width(contentW).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Render(titleBar + "\n" + bodyBlock)
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return alertTickMsg{}
	})
}

func (m *Model) setAlert(msg string) {
	m.alertMsg = msg
	m.alertUntil = time.Now().Add(alertDuration)
}

func truncateLinesToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}
