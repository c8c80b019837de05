package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/session"
)

type fakeSession struct {
	reply session.Reply
	err   error
	calls int
}

func (f *fakeSession) ProcessTurn(ctx context.Context, userText string) (session.Reply, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeSession) Mode() session.RetrievalMode { return session.ModeDocument }
func (f *fakeSession) Backend() session.BackendKind { return session.BackendLocal }

func submit(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestExitPhraseQuitsProgram(t *testing.T) {
	for _, phrase := range []string{"خروج", "exit", "quit", "EXIT"} {
		sess := &fakeSession{}
		m, cmd := submit(New(sess, ""), phrase)
		require.NotNil(t, cmd, "phrase %q", phrase)
		assert.Equal(t, tea.QuitMsg{}, cmd(), "phrase %q", phrase)
		assert.Equal(t, "خداحافظ!", m.status)
		assert.Zero(t, sess.calls, "exit must not reach the session")
	}
}

func TestEnterRunsTurnAndClearsInput(t *testing.T) {
	sess := &fakeSession{reply: session.Reply{Text: "گربه روی حصار است."}}
	m, cmd := submit(New(sess, ""), "گربه کجاست؟")
	assert.Nil(t, cmd)
	assert.Equal(t, 1, sess.calls)
	assert.Empty(t, m.input.Value())
	require.Len(t, m.transcript, 2)
	assert.Contains(t, m.transcript[1], "گربه روی حصار است.")
}
