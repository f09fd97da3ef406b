package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	"nexus-ai-chat/internal/domain/ports/repository"
	"nexus-ai-chat/internal/infra/metrics"
	"nexus-ai-chat/internal/infra/worker"
	"nexus-ai-chat/internal/registry"
	"nexus-ai-chat/internal/reveal"
)

// Event is pushed to subscribers while an exchange settles and reveals.
type Event struct {
	Kind   string `json:"kind"` // token, done, notice, status
	Token  string `json:"token,omitempty"`
	Cursor int    `json:"cursor,omitempty"`
	Text   string `json:"text,omitempty"`
}

// PendingImage is an attachment staged for the next exchange.
type PendingImage struct {
	Name string
	Data []byte
}

// Snapshot is a point-in-time copy of the orchestrator's visible state.
type Snapshot struct {
	Session      *model.ChatSession
	RemoteID     string
	Model        model.Model
	PendingInput string
	HasImage     bool
	RecentPrompt string
	RevealBuffer string
	RevealCursor int
	Awaiting     bool
	ShowResult   bool
}

// OrchestratorDeps bundles the collaborators one orchestrator needs.
type OrchestratorDeps struct {
	AI       adapter.InferenceAdapter
	Sessions repository.SessionRepository
	Media    repository.MediaStore
	History  repository.HistoryStore
	Auth     *AuthSession
	Pool     *worker.Pool
	Reveal   *reveal.Scheduler
	Log      *zerolog.Logger
}

// Orchestrator drives one client's conversation: it owns the active session,
// the staged input, and the reveal of each reply. At most one exchange is in
// flight at a time; a second Send while one is settling is rejected rather
// than queued.
//
// Every state-resetting operation bumps an epoch counter. Work started under
// an older epoch (an outstanding provider call, a running reveal) checks the
// counter before touching state again and silently drops its result when it
// lost the race.
type Orchestrator struct {
	mu       sync.Mutex
	clientID string

	session  *model.ChatSession
	remoteID string // persisted session id, empty until first remote write

	selected model.Model
	params   model.GenParams

	pendingInput string
	pendingImage *PendingImage

	awaiting     bool
	showResult   bool
	recentPrompt string
	revealBuf    string
	revealCursor int

	epoch     uint64
	revealRun *reveal.Run

	// serializes remote writes so the create-then-append order of one
	// exchange can never interleave with the next
	persistMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int

	ai       adapter.InferenceAdapter
	sessions repository.SessionRepository
	media    repository.MediaStore
	history  repository.HistoryStore
	auth     *AuthSession
	pool     *worker.Pool
	sched    *reveal.Scheduler
	log      *zerolog.Logger
	base     context.Context
}

func NewOrchestrator(base context.Context, clientID string, deps OrchestratorDeps) *Orchestrator {
	l := deps.Log.With().Str("component", "Orchestrator").Str("client_id", clientID).Logger()
	o := &Orchestrator{
		clientID: clientID,
		session:  model.NewChatSession(),
		selected: registry.Default(),
		params:   model.ParamsDefault,
		subs:     map[int]chan Event{},
		ai:       deps.AI,
		sessions: deps.Sessions,
		media:    deps.Media,
		history:  deps.History,
		auth:     deps.Auth,
		pool:     deps.Pool,
		sched:    deps.Reveal,
		log:      &l,
		base:     base,
	}
	return o
}

func (o *Orchestrator) SetInput(s string) {
	o.mu.Lock()
	o.pendingInput = s
	o.mu.Unlock()
}

func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pendingInput
}

// SetModel switches the active model. Unknown ids are an error here, unlike
// ids arriving inside persisted turns, which fall back silently at dispatch.
func (o *Orchestrator) SetModel(id string) error {
	m, err := registry.Resolve(id)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.selected = m
	o.mu.Unlock()
	return nil
}

// SetParams selects a generation preset by name.
func (o *Orchestrator) SetParams(preset string) error {
	var p model.GenParams
	switch preset {
	case "default":
		p = model.ParamsDefault
	case "creative":
		p = model.ParamsCreative
	case "precise":
		p = model.ParamsPrecise
	default:
		return domain.ErrInvalidArgument
	}
	o.mu.Lock()
	o.params = p
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) AttachImage(name string, data []byte) error {
	if len(data) == 0 {
		return domain.ErrInvalidArgument
	}
	o.mu.Lock()
	o.pendingImage = &PendingImage{Name: name, Data: data}
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) ClearImage() {
	o.mu.Lock()
	o.pendingImage = nil
	o.mu.Unlock()
}

// Subscribe registers an event channel. The returned func unsubscribes;
// slow consumers lose events rather than stall the exchange.
func (o *Orchestrator) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 256)
	o.subMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	o.subMu.Unlock()
	return ch, func() {
		o.subMu.Lock()
		delete(o.subs, id)
		o.subMu.Unlock()
	}
}

func (o *Orchestrator) notify(ev Event) {
	o.subMu.Lock()
	for _, ch := range o.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	o.subMu.Unlock()
}

// Send dispatches one exchange. promptOverride, when non-empty, is sent
// instead of the staged input (prompt-template cards use this path).
//
// Returns ErrExchangeInFlight while a previous exchange is still settling or
// revealing, and ErrEmptyPrompt when there is nothing to send.
func (o *Orchestrator) Send(ctx context.Context, promptOverride string) error {
	o.mu.Lock()
	if o.awaiting {
		o.mu.Unlock()
		metrics.IncExchange("rejected_in_flight")
		return domain.ErrExchangeInFlight
	}
	prompt := o.pendingInput
	if promptOverride != "" {
		prompt = promptOverride
	}
	img := o.pendingImage
	if strings.TrimSpace(prompt) == "" && img == nil {
		o.mu.Unlock()
		return domain.ErrEmptyPrompt
	}

	if o.revealRun != nil {
		o.revealRun.Cancel()
		o.revealRun = nil
	}
	o.epoch++
	epoch := o.epoch
	o.awaiting = true
	o.showResult = true
	o.recentPrompt = prompt
	o.revealBuf = ""
	o.revealCursor = 0
	if o.session == nil {
		o.session = model.NewChatSession()
	}
	sess := o.session
	m := o.selected
	params := o.params
	o.mu.Unlock()

	ident := o.auth.Identity()
	go o.runExchange(epoch, sess, ident, m, params, prompt, img)
	return nil
}

func (o *Orchestrator) runExchange(epoch uint64, sess *model.ChatSession, ident *model.Identity, m model.Model, params model.GenParams, prompt string, img *PendingImage) {
	ctx := o.base

	imageURL := ""
	if img != nil {
		ownerID := ""
		if ident != nil {
			ownerID = ident.ID
		}
		url, err := o.media.Save(ctx, ownerID, img.Name, img.Data)
		if err != nil {
			metrics.IncPersist("media", false)
			o.log.Warn().Err(err).Msg("attachment upload failed, sending text only")
			o.notify(Event{Kind: "notice", Text: "Image upload failed; message sent without attachment."})
		} else {
			imageURL = url
			metrics.IncPersist("media", true)
		}
	}

	outbound := prompt
	if img != nil && m.Supports(model.CapImage) {
		outbound = "[Image attached] " + prompt
	}

	res, err := o.ai.Complete(ctx, m.ID, outbound, params)
	text := res.Text
	outcome := "ok"
	switch {
	case err != nil:
		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			text = "❌ Error: " + pe.Reason + "\n\nPlease check your API configuration or try a different model."
		} else {
			text = "❌ Error: " + err.Error()
		}
		outcome = "provider_error"
	case res.Advisory:
		outcome = "advisory"
	}
	metrics.IncExchange(outcome)

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		o.log.Debug().Str("model", m.ID).Msg("discarding completion from superseded exchange")
		return
	}
	now := time.Now()
	userTurn := model.ChatTurn{ID: ulid.Make().String(), Role: model.RoleUser, Content: prompt, ModelID: m.ID, ImageURL: imageURL, CreatedAt: now}
	asstTurn := model.ChatTurn{ID: ulid.Make().String(), Role: model.RoleAssistant, Content: text, ModelID: m.ID, CreatedAt: now}
	sess.AddTurn(userTurn)
	sess.AddTurn(asstTurn)
	title := sess.Title
	o.mu.Unlock()

	o.persistExchange(epoch, ident, m, title, prompt, text, imageURL, userTurn, asstTurn)
	o.startReveal(epoch, text)
}

// persistExchange writes the settled exchange to both sinks. The remote sink
// runs on the worker pool and its failure never reaches the caller; the
// local history write happens inline and is also non-fatal.
func (o *Orchestrator) persistExchange(epoch uint64, ident *model.Identity, m model.Model, title, prompt, response, imageURL string, userTurn, asstTurn model.ChatTurn) {
	if ident != nil {
		task := func(ctx context.Context) error {
			o.persistMu.Lock()
			defer o.persistMu.Unlock()

			o.mu.Lock()
			sid := o.remoteID
			o.mu.Unlock()
			if sid == "" {
				id, err := o.sessions.Create(ctx, ident.ID, title)
				if err != nil {
					metrics.IncPersist("remote", false)
					return err
				}
				sid = id
				o.mu.Lock()
				// adopt only while this exchange's conversation is still active
				if o.epoch == epoch {
					o.remoteID = id
				}
				o.mu.Unlock()
			}
			ut, at := userTurn, asstTurn
			ut.SessionID, at.SessionID = sid, sid
			if err := o.sessions.AppendTurn(ctx, sid, &ut); err != nil {
				metrics.IncPersist("remote", false)
				return err
			}
			if err := o.sessions.AppendTurn(ctx, sid, &at); err != nil {
				metrics.IncPersist("remote", false)
				return err
			}
			metrics.IncPersist("remote", true)
			return o.auth.RefreshSummaries(ctx)
		}
		if err := o.pool.Submit(task); err != nil {
			metrics.IncPersist("remote", false)
			o.log.Warn().Err(err).Msg("remote persistence dropped")
		}
	}

	entry := &model.HistoryEntry{
		ID:        ulid.Make().String(),
		Prompt:    prompt,
		Response:  response,
		Model:     m.DisplayName,
		ImageURL:  imageURL,
		Timestamp: time.Now(),
	}
	if err := o.history.Push(o.base, o.clientID, entry); err != nil {
		metrics.IncPersist("local", false)
		o.log.Warn().Err(err).Msg("local history write failed")
	} else {
		metrics.IncPersist("local", true)
	}
}

func (o *Orchestrator) startReveal(epoch uint64, text string) {
	tokens := reveal.Tokens(reveal.Format(text))

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return
	}
	run := o.sched.Start(o.base, tokens,
		func(i int, tok string) {
			o.mu.Lock()
			if o.epoch != epoch {
				o.mu.Unlock()
				return
			}
			o.revealBuf += tok + " "
			o.revealCursor = i + 1
			o.mu.Unlock()
			o.notify(Event{Kind: "token", Token: tok + " ", Cursor: i + 1})
		},
		func(cancelled bool) {
			metrics.IncRevealRun(cancelled)
			if cancelled {
				return
			}
			o.mu.Lock()
			if o.epoch != epoch {
				o.mu.Unlock()
				return
			}
			o.awaiting = false
			o.pendingInput = ""
			o.pendingImage = nil
			o.revealRun = nil
			o.mu.Unlock()
			o.notify(Event{Kind: "done"})
		})
	o.revealRun = run
	o.mu.Unlock()
}

// NewChat abandons the active conversation and starts a fresh unsaved one.
// A running reveal is cancelled; staged input survives.
func (o *Orchestrator) NewChat() {
	o.mu.Lock()
	o.epoch++
	if o.revealRun != nil {
		o.revealRun.Cancel()
		o.revealRun = nil
	}
	o.session = model.NewChatSession()
	o.remoteID = ""
	o.awaiting = false
	o.showResult = false
	o.recentPrompt = ""
	o.revealBuf = ""
	o.revealCursor = 0
	o.pendingImage = nil
	o.mu.Unlock()
	o.notify(Event{Kind: "status", Text: "new_chat"})
}

// LoadSession replaces the active conversation with a persisted one. The full
// transcript is hydrated; the most recent user/assistant pair becomes the
// visible result, shown at once with no reveal.
func (o *Orchestrator) LoadSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	ident := o.auth.Identity()
	if ident == nil {
		return nil, domain.ErrNotSignedIn
	}
	s, err := o.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.OwnerID != ident.ID {
		return nil, domain.ErrNotFound
	}

	prompt, reply := s.LastPair()
	formatted := reveal.Format(reply)

	o.mu.Lock()
	o.epoch++
	if o.revealRun != nil {
		o.revealRun.Cancel()
		o.revealRun = nil
	}
	o.session = s
	o.remoteID = s.ID
	o.awaiting = false
	o.showResult = reply != ""
	o.recentPrompt = prompt
	o.revealBuf = formatted
	o.revealCursor = len(reveal.Tokens(formatted))
	o.mu.Unlock()

	o.notify(Event{Kind: "status", Text: "session_loaded"})
	return s, nil
}

// DetachRemote forgets the persisted session id so the next exchange lazily
// creates a fresh remote session. Called when the identity changes.
func (o *Orchestrator) DetachRemote() {
	o.mu.Lock()
	o.remoteID = ""
	o.mu.Unlock()
}

// History returns the client's local history, most recent first.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	return o.history.Recent(ctx, o.clientID, limit)
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	var sess *model.ChatSession
	if o.session != nil {
		cp := *o.session
		cp.Turns = append([]model.ChatTurn{}, o.session.Turns...)
		sess = &cp
	}
	return Snapshot{
		Session:      sess,
		RemoteID:     o.remoteID,
		Model:        o.selected,
		PendingInput: o.pendingInput,
		HasImage:     o.pendingImage != nil,
		RecentPrompt: o.recentPrompt,
		RevealBuffer: o.revealBuf,
		RevealCursor: o.revealCursor,
		Awaiting:     o.awaiting,
		ShowResult:   o.showResult,
	}
}
