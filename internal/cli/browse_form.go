package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// fieldTags is the form row holding the comma-separated tag list.
const fieldTags = "tags"

type formField struct {
	label string
	name  string
	value string
	// options makes the field a selector cycled with ←/→.
	options []string
}

// workflowForm edits one draft through a CatalogEditor.
type workflowForm struct {
	editor  core.CatalogEditor
	fields  []formField
	cursor  int
	saving  bool
	err     string
	created bool
}

// workflowSavedMsg reports the outcome of a form submit.
type workflowSavedMsg struct {
	record  models.WorkflowRecord
	created bool
	err     error
}

func newWorkflowForm(editor core.CatalogEditor) *workflowForm {
	d := editor.Draft()
	return &workflowForm{
		editor:  editor,
		created: !editor.IsEditing(),
		fields: []formField{
			{label: "Title", name: core.FieldTitle, value: d.Title},
			{label: "Summary", name: core.FieldShortDescription, value: d.ShortDescription},
			{label: "Description", name: core.FieldFullDescription, value: d.FullDescription},
			{label: "Category", name: core.FieldCategory, value: string(d.Category), options: categoryNames()},
			{label: "Complexity", name: core.FieldComplexity, value: string(d.Complexity), options: complexityNames()},
			{label: "Nodes", name: core.FieldNodesCount, value: strconv.Itoa(d.NodesCount)},
			{label: "Image URL", name: core.FieldImageURL, value: d.ImageURL},
			{label: "Tags", name: fieldTags, value: strings.Join(d.Tags, ", ")},
		},
	}
}

func categoryNames() []string {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = string(c)
	}
	return out
}

func complexityNames() []string {
	out := make([]string, len(models.Complexities))
	for i, c := range models.Complexities {
		out[i] = string(c)
	}
	return out
}

// cycle moves a selector field by step through its options.
func (f *formField) cycle(step int) {
	n := len(f.options)
	idx := max(slices.Index(f.options, f.value), 0)
	f.value = f.options[(idx+step+n)%n]
}

// apply copies the form rows onto the editor draft.
func (f *workflowForm) apply() error {
	for _, field := range f.fields {
		if field.name == fieldTags {
			f.applyTags(field.value)
			continue
		}
		if err := f.editor.SetField(field.name, field.value); err != nil {
			return fmt.Errorf("%s: %w", field.label, err)
		}
	}
	return nil
}

func (f *workflowForm) applyTags(value string) {
	var want []string
	for t := range strings.SplitSeq(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			want = append(want, t)
		}
	}
	for _, t := range f.editor.Draft().Tags {
		if !slices.Contains(want, t) {
			f.editor.RemoveTag(t)
		}
	}
	for _, t := range want {
		f.editor.AddTag(t)
	}
}

func (m browseModel) openForm(existing *models.WorkflowRecord) (tea.Model, tea.Cmd) {
	if !m.creator {
		m.status = "Press c to enter creator mode before editing."
		return m, nil
	}
	if m.newEditor == nil {
		m.status = "Editor is not configured."
		return m, nil
	}
	m.form = newWorkflowForm(m.newEditor(existing))
	m.status = ""
	return m, nil
}

func (m browseModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f.saving {
		return m, nil
	}
	field := &f.fields[f.cursor]

	switch msg.Type {
	case tea.KeyEsc:
		m.form = nil
		m.status = "Edit cancelled."
	case tea.KeyCtrlS:
		if err := f.apply(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		f.saving = true
		return m, submitWorkflow(m.ctx, f.editor, f.created)
	case tea.KeyUp, tea.KeyShiftTab:
		f.cursor = max(f.cursor-1, 0)
	case tea.KeyDown, tea.KeyTab, tea.KeyEnter:
		f.cursor = min(f.cursor+1, len(f.fields)-1)
	case tea.KeyLeft:
		if field.options != nil {
			field.cycle(-1)
		}
	case tea.KeyRight:
		if field.options != nil {
			field.cycle(1)
		}
	case tea.KeyBackspace:
		if r := []rune(field.value); field.options == nil && len(r) > 0 {
			field.value = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if field.options == nil {
			field.value += " "
		}
	case tea.KeyRunes:
		if field.options == nil {
			field.value += string(msg.Runes)
		}
	}
	return m, nil
}

func (m browseModel) handleSaved(msg workflowSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && !errors.Is(msg.err, core.ErrSaveFailed) {
		if m.form != nil {
			m.form.saving = false
			m.form.err = msg.err.Error()
		}
		return m, nil
	}

	m.form = nil
	verb := "Updated"
	if msg.created {
		verb = "Created"
	}
	m.status = fmt.Sprintf("%s workflow %s", verb, msg.record.ID)
	if msg.err != nil {
		m.status += " but saving failed: " + msg.err.Error()
	}
	m.reload()
	if idx := slices.IndexFunc(m.items, func(r models.WorkflowRecord) bool { return r.ID == msg.record.ID }); idx >= 0 {
		m.cursor = idx
	}
	return m, nil
}

func submitWorkflow(ctx context.Context, editor core.CatalogEditor, created bool) tea.Cmd {
	return func() tea.Msg {
		record, err := editor.Submit(ctx)
		return workflowSavedMsg{record: record, created: created, err: err}
	}
}

func (m browseModel) renderForm() string {
	f := m.form
	var b strings.Builder
	heading := "New workflow"
	if !f.created {
		heading = "Edit workflow"
	}
	b.WriteString(headerStyle.Render(heading))
	b.WriteString("\n")

	for i, field := range f.fields {
		marker := "  "
		value := field.value
		if field.options != nil {
			value = "‹ " + value + " ›"
		}
		if i == f.cursor {
			marker = "> "
			if field.options == nil {
				value += "█"
			}
			value = selectedStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", marker, field.label+":", value))
	}

	if f.saving {
		b.WriteString("\n" + helpStyle.Render("Saving..."))
	} else if f.err != "" {
		b.WriteString("\n" + warnStyle.Render(f.err))
	}
	return b.String()
}
