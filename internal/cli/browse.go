package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// Browser focus targets.
const (
	focusCatalog = iota
	focusChat
)

type browseModel struct {
	ctx          context.Context
	store        core.CatalogStore
	newAssistant func() core.AssistantSession
	newEditor    func(existing *models.WorkflowRecord) core.CatalogEditor
	session      core.AssistantSession
	// form is the open create/edit form, if any.
	form *workflowForm

	focus   int
	creator bool
	width   int
	height  int

	categories  []string
	categoryIdx int
	items       []models.WorkflowRecord
	cursor      int

	// confirmingID is the workflow awaiting a y/n answer to DeletePrompt.
	confirmingID string
	input        string
	status       string
}

// workflowRemovedMsg reports the outcome of a delete.
type workflowRemovedMsg struct {
	id      string
	removed bool
	err     error
}

// assistantReplyMsg carries the assistant turn once it lands.
type assistantReplyMsg struct {
	turn models.ChatTurn
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	creatorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	userTurnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	assistantTurnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBrowseModel(ctx context.Context, store core.CatalogStore, newAssistant func() core.AssistantSession,
	newEditor func(*models.WorkflowRecord) core.CatalogEditor, creator bool) browseModel {
	m := browseModel{
		ctx:          ctx,
		store:        store,
		newAssistant: newAssistant,
		newEditor:    newEditor,
		creator:      creator,
	}
	m.reload()
	return m
}

// reload refreshes categories and the filtered list from the store,
// keeping the selected category when it still exists.
func (m *browseModel) reload() {
	selected := models.AllCategories
	if m.categoryIdx < len(m.categories) {
		selected = m.categories[m.categoryIdx]
	}

	m.categories = m.store.Categories()
	m.categoryIdx = max(slices.Index(m.categories, selected), 0)
	m.items = slices.Collect(m.store.FilteredBy(m.categories[m.categoryIdx]))
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
}

func (m browseModel) selected() (models.WorkflowRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return models.WorkflowRecord{}, false
	}
	return m.items[m.cursor], true
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirmingID != "" {
			return m.updateConfirm(msg)
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.focus == focusChat {
			return m.updateChat(msg)
		}
		return m.updateCatalog(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case workflowRemovedMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Deleted %s but saving failed: %s", msg.id, msg.err)
		case msg.removed:
			m.status = fmt.Sprintf("Deleted workflow %s", msg.id)
		default:
			m.status = "Delete cancelled."
		}
		m.reload()
		return m, nil

	case workflowSavedMsg:
		return m.handleSaved(msg)

	case assistantReplyMsg:
		return m, nil
	}

	return m, nil
}

func (m browseModel) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "left", "h":
		m.categoryIdx = (m.categoryIdx - 1 + len(m.categories)) % len(m.categories)
		m.cursor = 0
		m.reload()
	case "right", "l":
		m.categoryIdx = (m.categoryIdx + 1) % len(m.categories)
		m.cursor = 0
		m.reload()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "c":
		m.creator = !m.creator
		m.status = ""
	case "d":
		if !m.creator {
			m.status = "Press c to enter creator mode before deleting."
			return m, nil
		}
		if record, ok := m.selected(); ok {
			m.confirmingID = record.ID
		}
	case "n":
		return m.openForm(nil)
	case "e":
		record, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.openForm(&record)
	case "r":
		m.reload()
	case "tab":
		if m.newAssistant == nil {
			m.status = "Assistant is not configured."
			return m, nil
		}
		if m.session == nil {
			m.session = m.newAssistant()
		}
		m.focus = focusChat
	}
	return m, nil
}

func (m browseModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmingID
	m.confirmingID = ""

	answer := strings.ToLower(msg.String())
	confirmer := core.ConfirmFunc(func(string) bool { return answer == "y" })
	return m, removeWorkflow(m.ctx, m.store, id, confirmer)
}

func (m browseModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyTab:
		m.focus = focusCatalog
		return m, nil
	case tea.KeyEnter:
		done, ok := m.session.SendTurn(m.ctx, m.input)
		if !ok {
			return m, nil
		}
		m.input = ""
		return m, waitForReply(done)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func removeWorkflow(ctx context.Context, store core.CatalogStore, id string, confirmer core.Confirmer) tea.Cmd {
	return func() tea.Msg {
		removed, err := store.Remove(ctx, id, confirmer)
		return workflowRemovedMsg{id: id, removed: removed, err: err}
	}
}

func waitForReply(done <-chan models.ChatTurn) tea.Cmd {
	return func() tea.Msg {
		return assistantReplyMsg{turn: <-done}
	}
}

func (m browseModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Workflow Portfolio ")
	if m.creator {
		title += " " + creatorStyle.Render("[creator mode]")
	}

	availableWidth := max(m.width-2, 40)
	listWidth := availableWidth/3 - 4
	detailWidth := availableWidth - listWidth - 8

	list := m.applyPanelStyle(m.focus == focusCatalog, m.renderList(), listWidth)
	var right string
	switch {
	case m.form != nil:
		right = m.applyPanelStyle(true, m.renderForm(), detailWidth)
	case m.focus == focusChat:
		right = m.applyPanelStyle(true, m.renderChat(), detailWidth)
	default:
		right = m.applyPanelStyle(false, m.renderDetail(), detailWidth)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, right)

	footer := m.status
	if m.confirmingID != "" {
		footer = warnStyle.Render(core.DeletePrompt + " (y/n)")
	}

	help := "←/→: category | ↑/↓: select | tab: assistant | c: creator mode | q: quit"
	if m.creator {
		help = "←/→: category | ↑/↓: select | n: new | e: edit | d: delete | tab: assistant | c: visitor mode | q: quit"
	}
	if m.form != nil {
		help = "↑/↓: field | ←/→: change option | ctrl+s: save | esc: cancel"
	}
	if m.focus == focusChat {
		help = "enter: send | tab/esc: back to catalog | ctrl+c: quit"
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n%s", title, m.renderTabs(), body, footer, helpStyle.Render(help))
}

func (m browseModel) applyPanelStyle(active bool, content string, width int) string {
	style := panelStyle
	if active {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m browseModel) renderTabs() string {
	tabs := make([]string, len(m.categories))
	for i, c := range m.categories {
		if i == m.categoryIdx {
			tabs[i] = activeTabStyle.Render(c)
		} else {
			tabs[i] = tabStyle.Render(c)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m browseModel) renderList() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Workflows (%d)", len(m.items))))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString("  No workflows in this category.")
		return b.String()
	}

	for i, r := range m.items {
		marker := "  "
		line := r.Title
		if i == m.cursor {
			marker = "> "
			line = selectedStyle.Render(line)
		}
		dot := styleForSeverity(r.Complexity.Severity()).Render("●")
		b.WriteString(fmt.Sprintf("%s%s %s\n", marker, dot, line))
	}
	return b.String()
}

func (m browseModel) renderDetail() string {
	record, ok := m.selected()
	if !ok {
		return headerStyle.Render("Details") + "\n  Nothing selected."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(record.Title))
	b.WriteString("\n")
	sev := record.Complexity.Severity()
	b.WriteString(fmt.Sprintf("  %s  %s  %d nodes\n",
		record.Category,
		styleForSeverity(sev).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(record.Complexity)))),
		record.NodesCount))
	if len(record.Tags) > 0 {
		b.WriteString("  #" + strings.Join(record.Tags, " #") + "\n")
	}
	if record.HasInlineImage() {
		b.WriteString("  Image: (inline)\n")
	} else if record.ImageURL != "" {
		b.WriteString("  Image: " + record.ImageURL + "\n")
	}
	b.WriteString("\n  " + record.ShortDescription + "\n")
	if record.FullDescription != "" {
		b.WriteString("\n" + record.FullDescription + "\n")
	}
	return b.String()
}

func (m browseModel) renderChat() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Portfolio Assistant"))
	b.WriteString("\n")

	if m.session == nil {
		b.WriteString("  Assistant is not configured.")
		return b.String()
	}

	for _, turn := range m.session.Transcript() {
		if turn.Speaker == models.SpeakerUser {
			b.WriteString(userTurnStyle.Render("You: "+turn.Text) + "\n")
		} else {
			b.WriteString(assistantTurnStyle.Render("AI:  "+turn.Text) + "\n")
		}
	}
	if m.session.State() == core.AssistantSending {
		b.WriteString(helpStyle.Render("AI is thinking...") + "\n")
	}
	b.WriteString("\n> " + m.input + "█")
	return b.String()
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

var browseCreator bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the portfolio and chat with the assistant in a terminal UI",
	Long: `Launch an interactive view of the portfolio with category tabs, a
workflow list, a detail pane, and the portfolio assistant.

Switch categories with ←/→, select with ↑/↓, open the assistant with tab,
and quit with q. In creator mode (c, or --creator) n opens a form for a new
workflow, e edits the selected one, and d deletes it after confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}
		m := newBrowseModel(commandContext(cmd), Catalog, NewAssistant, NewEditor, CreatorMode || browseCreator)
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	browseCmd.Flags().BoolVar(&browseCreator, "creator", false, "Start in creator mode")
	rootCmd.AddCommand(browseCmd)
}
