// Package tui is the Bubble Tea chat interface over one conversation
// session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/session"
)

// SessionPort is the TUI-facing subset of the conversation session.
type SessionPort interface {
	ProcessTurn(ctx context.Context, userText string) (session.Reply, error)
	Mode() session.RetrievalMode
	Backend() session.BackendKind
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	session    SessionPort
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	summary    string
	status     string
	ready      bool
}

// New creates a chat model. summary is shown under the header once a
// document has been indexed.
func New(s SessionPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "سوال خود را بنویسید و Enter بزنید"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{session: s, input: ti, viewport: vp, summary: summary}
	m.status = m.statusLine("آماده")
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and drives the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header+summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if isExitPhrase(text) {
				m.status = "خداحافظ!"
				return m, tea.Quit
			}
			m = m.runTurn(text)
			m.input.SetValue("")
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func isExitPhrase(text string) bool {
	return text == "خروج" || strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit")
}

func (m Model) runTurn(text string) Model {
	reply, err := m.session.ProcessTurn(context.Background(), text)
	switch {
	case errors.Is(err, session.ErrNoContext):
		m.transcript = append(m.transcript, userStyle.Render("شما: ")+text)
		m.status = m.statusLine("هیچ متن مرتبطی یافت نشد")
	case err != nil:
		m.transcript = append(m.transcript, userStyle.Render("شما: ")+text)
		m.status = m.statusLine("خطا: " + err.Error())
	case reply.Control:
		m.status = m.statusLine(reply.Text)
	default:
		m.transcript = append(m.transcript,
			userStyle.Render("شما: ")+text,
			botStyle.Render("دستیار: ")+CleanResponse(reply.Text))
		m.status = m.statusLine("پاسخ دریافت شد")
	}
	return m
}

func (m Model) statusLine(note string) string {
	return fmt.Sprintf("[جستجو: %s | مدل: %s] %s", m.session.Mode(), m.session.Backend(), note)
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ربات چت فارسی")
	summary := summaryStyle.Render(m.summary)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "هنوز گفتگویی انجام نشده است."
	}
	return strings.Join(m.transcript, "\n\n")
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
