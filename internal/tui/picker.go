package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/model"
)

type pickerStage int

const (
	stageProvider pickerStage = iota
	stageModel
	stageCustom
)

type pickerModel struct {
	providers []catalog.Provider
	hasKey    map[string]bool
	stage     pickerStage
	provider  int
	cursor    int
	custom    textinput.Model
	target    model.Target
	done      bool
	quit      bool
}

func newPickerModel(providers []catalog.Provider, hasKey map[string]bool) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "vendor/model-name"
	ti.CharLimit = 128
	return pickerModel{providers: providers, hasKey: hasKey, custom: ti}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

// options returns the rows of the current stage.
func (m pickerModel) options() int {
	if m.stage == stageProvider {
		return len(m.providers)
	}
	return len(m.providers[m.provider].Models) + 1 // + custom
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.stage == stageCustom {
		switch key.String() {
		case "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "esc":
			m.stage = stageModel
			m.custom.Blur()
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.custom.Value())
			if name == "" {
				return m, nil
			}
			m.target.Model = model.CustomModelID
			m.target.CustomModel = name
			m.done = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.custom, cmd = m.custom.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "q", "ctrl+c":
		m.quit = true
		return m, tea.Quit
	case "esc", "backspace":
		if m.stage == stageModel {
			m.stage = stageProvider
			m.cursor = m.provider
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.options()-1 {
			m.cursor++
		}
	case "enter":
		if m.stage == stageProvider {
			m.provider = m.cursor
			m.target = model.Target{Provider: m.providers[m.provider].Name}
			m.stage = stageModel
			m.cursor = 0
			return m, nil
		}
		models := m.providers[m.provider].Models
		if m.cursor == len(models) {
			m.stage = stageCustom
			return m, m.custom.Focus()
		}
		m.target.Model = models[m.cursor].ID
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	switch m.stage {
	case stageProvider:
		b.WriteString(titleStyle.Render("Select an AI provider"))
		b.WriteString("\n")
		for i, p := range m.providers {
			label := p.DisplayName
			if m.hasKey[p.Name] {
				label += " " + keyMarkStyle.Render("✓ key")
			}
			b.WriteString(m.renderRow(i, label))
		}
	case stageModel:
		p := m.providers[m.provider]
		b.WriteString(titleStyle.Render(fmt.Sprintf("Select a %s model", p.DisplayName)))
		b.WriteString("\n")
		for i, mod := range p.Models {
			b.WriteString(m.renderRow(i, fmt.Sprintf("%s (%s)", mod.DisplayName, mod.ID)))
		}
		b.WriteString(m.renderRow(len(p.Models), "Custom model..."))
	case stageCustom:
		b.WriteString(titleStyle.Render("Enter a custom model name"))
		b.WriteString("\n  " + m.custom.View() + "\n")
		b.WriteString(hintStyle.Render("enter confirm  esc back  ctrl+c quit"))
		return b.String()
	}

	b.WriteString(hintStyle.Render("↑/↓/j/k navigate  enter select  esc back  q quit"))
	return b.String()
}

func (m pickerModel) renderRow(i int, label string) string {
	if i == m.cursor {
		return selectedItemStyle.Render("> "+label) + "\n"
	}
	return itemStyle.Render(label) + "\n"
}

// RunModelPicker shows an interactive provider then model selector. hasKey
// marks providers that already have an API key. ok is false if the user quit.
func RunModelPicker(providers []catalog.Provider, hasKey map[string]bool) (target model.Target, ok bool, err error) {
	if len(providers) == 0 {
		return model.Target{}, false, fmt.Errorf("no providers to pick from")
	}

	p := tea.NewProgram(newPickerModel(providers, hasKey))
	result, err := p.Run()
	if err != nil {
		return model.Target{}, false, err
	}

	final := result.(pickerModel)
	if !final.done {
		return model.Target{}, false, nil
	}
	return final.target, true, nil
}
