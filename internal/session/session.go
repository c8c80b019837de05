// Package session holds the per-conversation state machine: retrieval
// mode, active model backend, and the rolling history, deciding per
// user turn which retrieval path feeds the prompt.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ragchat/internal/assembler"
	"ragchat/internal/domain"
	"ragchat/internal/index"
	"ragchat/internal/ranker"
)

// RetrievalMode selects the grounding source for a turn.
type RetrievalMode string

const (
	ModeDocument RetrievalMode = "document"
	ModeWeb      RetrievalMode = "web"
)

// BackendKind selects which model backend answers.
type BackendKind string

const (
	BackendLocal  BackendKind = "local"
	BackendRemote BackendKind = "remote"
)

var (
	// ErrNoContext reports a turn for which neither retrieval path
	// produced grounding text; no backend call is made for such turns.
	ErrNoContext = errors.New("no relevant context found")

	// ErrBackendUnavailable reports a refused switch to the remote
	// backend when it was not configured with credentials.
	ErrBackendUnavailable = errors.New("remote backend unavailable")
)

// Control phrases recognized inside a user turn (matched as
// case-insensitive substrings, the way the spoken commands arrive).
var (
	searchTogglePhrases = []string{"تغییر سرچ", "تغییر جستجو"}
	modelTogglePhrases  = []string{"تغییر مدل"}
)

const defaultSystemPrompt = "شما یک دستیار هوشمند فارسی هستید. لطفاً به فارسی پاسخ دهید."

// Options bound retrieval and history behavior for one session.
type Options struct {
	TopK            int
	DocThreshold    float64
	MaxContextChars int
	HistoryWindow   int
	SystemPrompt    string
}

func (o *Options) fillDefaults() {
	if o.TopK <= 0 {
		o.TopK = 5
	}
	if o.DocThreshold == 0 {
		o.DocThreshold = 0.7
	}
	if o.MaxContextChars <= 0 {
		o.MaxContextChars = 1000
	}
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = 5
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = defaultSystemPrompt
	}
}

// Reply is the outcome of one processed turn.
type Reply struct {
	Text    string
	Context string
	Control bool
}

// Session owns one conversation. Not safe for concurrent ProcessTurn
// calls; turns are strictly sequential.
type Session struct {
	provider domain.EmbeddingProvider
	idx      *index.Index
	web      domain.WebSearcher
	local    domain.ModelBackend
	remote   domain.ModelBackend

	mode    RetrievalMode
	backend BackendKind
	history []domain.Turn
	opts    Options
}

// New creates a session in document mode on the local backend with
// empty history. remote may be nil when credentials are absent; the
// session then refuses to switch to it. idx may be nil when no
// document is loaded.
func New(provider domain.EmbeddingProvider, idx *index.Index, web domain.WebSearcher, local, remote domain.ModelBackend, opts Options) (*Session, error) {
	if provider == nil {
		return nil, errors.New("session: embedding provider is required")
	}
	if local == nil {
		return nil, errors.New("session: local backend is required")
	}
	opts.fillDefaults()
	return &Session{
		provider: provider,
		idx:      idx,
		web:      web,
		local:    local,
		remote:   remote,
		mode:     ModeDocument,
		backend:  BackendLocal,
		opts:     opts,
	}, nil
}

func (s *Session) Mode() RetrievalMode  { return s.mode }
func (s *Session) Backend() BackendKind { return s.backend }

// History returns the full retained log, including turns the send
// window has already slid past.
func (s *Session) History() []domain.Turn {
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// ToggleMode flips document <-> web retrieval. History is untouched.
func (s *Session) ToggleMode() RetrievalMode {
	if s.mode == ModeDocument {
		s.mode = ModeWeb
	} else {
		s.mode = ModeDocument
	}
	return s.mode
}

// ToggleBackend flips local <-> remote. Switching to remote is refused
// when no remote backend was constructed, so the session never
// transitions into an unusable state.
func (s *Session) ToggleBackend() (BackendKind, error) {
	if s.backend == BackendLocal {
		if s.remote == nil {
			return s.backend, ErrBackendUnavailable
		}
		s.backend = BackendRemote
	} else {
		s.backend = BackendLocal
	}
	return s.backend, nil
}

func (s *Session) activeBackend() domain.ModelBackend {
	if s.backend == BackendRemote && s.remote != nil {
		return s.remote
	}
	return s.local
}

// ProcessTurn runs one user turn to completion: control phrases toggle
// state and short-circuit; otherwise the turn is grounded through the
// active retrieval path and dispatched to the active backend.
func (s *Session) ProcessTurn(ctx context.Context, userText string) (Reply, error) {
	if reply, ok := s.handleControl(userText); ok {
		return reply, nil
	}

	retrieved, err := s.retrieve(ctx, userText)
	if err != nil {
		return Reply{}, err
	}

	// A retried turn after a failed dispatch must not duplicate the
	// already-recorded user input.
	if n := len(s.history); n == 0 || s.history[n-1].Role != domain.RoleUser || s.history[n-1].Content != userText {
		s.history = append(s.history, domain.Turn{Role: domain.RoleUser, Content: userText})
	}

	if retrieved == "" {
		// Never send an ungrounded prompt silently.
		return Reply{}, ErrNoContext
	}

	messages := s.buildMessages(retrieved)
	answer, err := s.activeBackend().Complete(ctx, messages)
	if err != nil {
		// The user turn stays recorded; a retried turn must not
		// duplicate user input. No assistant turn is appended.
		return Reply{}, fmt.Errorf("backend %s: %w", s.activeBackend().Name(), err)
	}
	s.history = append(s.history, domain.Turn{Role: domain.RoleAssistant, Content: answer})
	return Reply{Text: answer, Context: retrieved}, nil
}

func (s *Session) handleControl(userText string) (Reply, bool) {
	lower := strings.ToLower(userText)
	for _, p := range searchTogglePhrases {
		if strings.Contains(lower, p) {
			mode := s.ToggleMode()
			return Reply{Control: true, Text: fmt.Sprintf("حالت جستجو به حالت %s تغییر کرد.", mode)}, true
		}
	}
	for _, p := range modelTogglePhrases {
		if strings.Contains(lower, p) {
			kind, err := s.ToggleBackend()
			if err != nil {
				return Reply{Control: true, Text: "مدل آنلاین در دسترس نیست یا کلید API تنظیم نشده است."}, true
			}
			return Reply{Control: true, Text: fmt.Sprintf("مدل به %s تغییر کرد.", kind)}, true
		}
	}
	return Reply{}, false
}

func (s *Session) retrieve(ctx context.Context, query string) (string, error) {
	switch s.mode {
	case ModeWeb:
		if s.web == nil {
			return "", nil
		}
		text, err := s.web.Search(ctx, query)
		if err != nil {
			return "", fmt.Errorf("web search: %w", err)
		}
		return strings.TrimSpace(text), nil
	default:
		if s.idx == nil || s.idx.Len() == 0 {
			return "", nil
		}
		queryVec, err := s.provider.Embed(ctx, query)
		if err != nil {
			return "", fmt.Errorf("embedding query: %w", err)
		}
		results, err := ranker.Rank(queryVec, s.idx, s.opts.TopK, s.opts.DocThreshold)
		if err != nil {
			return "", err
		}
		return assembler.Assemble(results, s.opts.MaxContextChars), nil
	}
}

// buildMessages produces the outgoing sequence: the fixed system
// instruction, one system message carrying the retrieved context, and
// the last HistoryWindow turns. The window bounds prompt growth no
// matter how long the session runs.
func (s *Session) buildMessages(retrieved string) []domain.Turn {
	messages := []domain.Turn{{Role: domain.RoleSystem, Content: s.opts.SystemPrompt}}
	if retrieved != "" {
		messages = append(messages, domain.Turn{
			Role:    domain.RoleSystem,
			Content: "متن مرتبط با سوال شما:\n" + retrieved,
		})
	}
	messages = append(messages, s.window()...)
	return messages
}

func (s *Session) window() []domain.Turn {
	start := len(s.history) - s.opts.HistoryWindow
	if start < 0 {
		start = 0
	}
	return s.history[start:]
}
