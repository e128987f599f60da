package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/verigen/internal/export"
	"github.com/amishk599/verigen/internal/model"
)

// Swapped in tests.
var (
	defaultClipboardWriteAll = clipboard.WriteAll
	clipboardWriteAll        = defaultClipboardWriteAll
	writeFiles               = export.WriteFiles
)

const (
	paneModule = iota
	paneTestbench
)

type viewerModel struct {
	result    model.Result
	outputDir string

	panes      [2]viewport.Model
	activePane int
	width      int
	height     int
	ready      bool

	showDescription bool
	status          string
}

func newViewerModel(r model.Result, outputDir string) viewerModel {
	return viewerModel{result: r, outputDir: outputDir, showDescription: true}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "left", "right", "h", "l":
			m.activePane = 1 - m.activePane
			m.status = ""
			return m, nil
		case "c":
			name, code := m.activeFile()
			if err := clipboardWriteAll(code); err != nil {
				m.status = fmt.Sprintf("copy failed: %v", err)
			} else {
				m.status = fmt.Sprintf("copied %s to clipboard", name)
			}
			return m, nil
		case "s":
			which := export.Module
			if m.activePane == paneTestbench {
				which = export.Testbench
			}
			m.status = m.save(which)
			return m, nil
		case "a":
			m.status = m.save(export.Combined)
			return m, nil
		case "d":
			m.showDescription = !m.showDescription
			m.recalcLayout()
			return m, nil
		}

		// Forward other keys (up/down/pgup/pgdn/home/end) to the active viewport.
		if m.ready {
			var cmd tea.Cmd
			m.panes[m.activePane], cmd = m.panes[m.activePane].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m viewerModel) activeFile() (name, code string) {
	if m.activePane == paneTestbench {
		return export.TestbenchFileName, m.result.TestbenchCode
	}
	return export.ModuleFileName, m.result.ModuleCode
}

func (m viewerModel) save(which export.Files) string {
	paths, err := writeFiles(m.outputDir, m.result, which)
	if err != nil {
		return fmt.Sprintf("save failed: %v", err)
	}
	return "saved " + strings.Join(paths, ", ")
}

func (m viewerModel) descriptionLines() int {
	if !m.showDescription {
		return 0
	}
	return 1
}

func (m *viewerModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4-m.descriptionLines(), 5)

	if !m.ready {
		m.panes[paneModule] = viewport.New(paneWidth, paneHeight)
		m.panes[paneTestbench] = viewport.New(paneWidth, paneHeight)
		m.panes[paneModule].SetContent(numberLines(m.result.ModuleCode))
		m.panes[paneTestbench].SetContent(numberLines(m.result.TestbenchCode))
		m.ready = true
		return
	}
	for i := range m.panes {
		m.panes[i].Width = paneWidth
		m.panes[i].Height = paneHeight
	}
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	paneWidth := m.panes[paneModule].Width

	headers := [2]string{" " + export.ModuleFileName, " " + export.TestbenchFileName}
	var rendered [2]string
	var borders [2]lipgloss.Style
	for i := range headers {
		if i == m.activePane {
			rendered[i] = activeHeaderStyle.Render(headers[i])
			borders[i] = activeBorderStyle.Width(paneWidth)
		} else {
			rendered[i] = inactiveHeaderStyle.Render(headers[i])
			borders[i] = inactiveBorderStyle.Width(paneWidth)
		}
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(rendered[paneModule]),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rendered[paneTestbench]),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		borders[paneModule].Render(m.panes[paneModule].View()),
		" ",
		borders[paneTestbench].Render(m.panes[paneTestbench].View()),
	)

	statusText := " ←/→/Tab switch  ↑/↓ scroll  c copy  s save  a save all  d description  q quit"
	if m.status != "" {
		statusText = " " + m.status
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	out := ""
	if m.showDescription {
		desc := m.result.Description
		if m.result.Source == model.SourceError || m.result.Source == model.SourceOffline {
			desc = errorSourceStyle.Render("["+string(m.result.Source)+"]") + " " + desc
		}
		out = descriptionStyle.Width(m.width).MaxHeight(1).Render(desc) + "\n"
	}
	return out + headerRow + "\n" + panes + "\n" + statusBar
}

// numberLines prefixes each line of code with a dim right-aligned line number.
func numberLines(code string) string {
	lines := strings.Split(code, "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(lineNumberStyle.Render(fmt.Sprintf("%*d ", width, i+1)))
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// RunResultViewer launches the split-pane module/testbench viewer. Saved files
// go to outputDir.
func RunResultViewer(r model.Result, outputDir string) error {
	p := tea.NewProgram(newViewerModel(r, outputDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
