// Package session owns the process-wide authentication lifecycle: it
// resumes a persisted session on start, tracks sign-in and sign-out
// notifications from the identity store, and publishes the current
// user to subscribers. A single goroutine is the only writer of the
// session slot, so event ordering is explicit rather than a property
// of callback timing.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/internal/identity"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
	"github.com/terra-cloud/terra-backend/pkg/metrics"
)

// State is the reactive pair every consumer reads: the current user
// (nil when unauthenticated) and whether a login, signup, or restore
// is in flight.
type State struct {
	User    *access.User
	Loading bool
}

type identityStore interface {
	CurrentSession(ctx context.Context) (*identity.Session, error)
	OnSessionChange(fn func(identity.Event)) (cancel func())
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	SignOut(ctx context.Context) error
	Profile(ctx context.Context, identityID uuid.UUID) (*identity.Profile, error)
	InsertProfile(ctx context.Context, record identity.ProfileRecord) error
	ListAssignments(ctx context.Context, kind enums.AssignmentKind, userID uuid.UUID) ([]uuid.UUID, error)
}

type command interface{ isCommand() }

type cmdSetLoading struct {
	loading bool
}

type cmdStoreEvent struct {
	event identity.Event
}

type cmdResolved struct {
	generation uint64
	user       *access.User
}

type cmdGeneration struct {
	reply chan uint64
}

type cmdSnapshot struct {
	reply chan State
}

type cmdSubscribe struct {
	fn    func(State)
	reply chan int
}

type cmdUnsubscribe struct {
	id    int
	reply chan struct{}
}

func (cmdSetLoading) isCommand()  {}
func (cmdStoreEvent) isCommand()  {}
func (cmdResolved) isCommand()    {}
func (cmdGeneration) isCommand()  {}
func (cmdSnapshot) isCommand()    {}
func (cmdSubscribe) isCommand()   {}
func (cmdUnsubscribe) isCommand() {}

// ManagerParams bundles the dependencies for a session manager.
type ManagerParams struct {
	Store   identityStore
	Logger  *logger.Logger
	Metrics *metrics.AuthMetrics
}

// Manager is the single-slot session owner. All state lives inside the
// run goroutine; public methods communicate with it over a command
// channel, which serializes the init path and the event path onto one
// writer.
type Manager struct {
	store     identityStore
	resolver  *identity.Resolver
	logg      *logger.Logger
	metrics   *metrics.AuthMetrics
	cmds      chan command
	done      chan struct{}
	closeOnce sync.Once
	cancelSub func()
}

// NewManager starts the session actor and subscribes it to the
// identity store's session-change events.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	m := &Manager{
		store:    params.Store,
		resolver: identity.NewResolver(params.Store, params.Logger),
		logg:     params.Logger,
		metrics:  params.Metrics,
		cmds:     make(chan command, 32),
		done:     make(chan struct{}),
	}
	go m.run()
	m.cancelSub = m.store.OnSessionChange(func(ev identity.Event) {
		m.send(cmdStoreEvent{event: ev})
	})
	return m, nil
}

// Close cancels the store subscription and stops the actor. Safe to
// call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		if m.cancelSub != nil {
			m.cancelSub()
		}
		close(m.done)
	})
}

// Initialize restores a persisted session if one exists. Errors are
// logged and swallowed; the loading flag clears exactly once no matter
// which path runs.
func (m *Manager) Initialize(ctx context.Context) {
	m.send(cmdSetLoading{loading: true})
	defer m.send(cmdSetLoading{loading: false})

	session, err := m.store.CurrentSession(ctx)
	if err != nil {
		m.logError(ctx, "restore session", err)
		return
	}
	if session == nil {
		return
	}

	generation := m.generation()
	user, err := m.resolver.ResolveActor(ctx, session.IdentityID, session.Email)
	if err != nil {
		m.logError(ctx, "resolve restored profile", err)
		return
	}
	m.send(cmdResolved{generation: generation, user: user})
}

// Login authenticates the credential pair. On success the user slot is
// populated by the store's signed-in event, not by this call's return
// value. The store's error is returned verbatim so callers can show
// it.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.send(cmdSetLoading{loading: true})
	defer m.send(cmdSetLoading{loading: false})

	err := m.store.SignInWithPassword(ctx, email, password)
	if m.metrics != nil {
		if err != nil {
			m.metrics.ObserveLogin("failure")
		} else {
			m.metrics.ObserveLogin("success")
		}
	}
	return err
}

// Signup creates an identity and then its profile row. A profile
// insert failure leaves the identity without a profile; the error is
// wrapped with identity.ErrProfileMissing so callers can tell this
// half-created state apart from an ordinary signup rejection.
func (m *Manager) Signup(ctx context.Context, email, password, name string, role enums.UserRole) error {
	m.send(cmdSetLoading{loading: true})
	defer m.send(cmdSetLoading{loading: false})

	identityID, err := m.store.SignUp(ctx, email, password)
	if err != nil {
		return err
	}

	if name == "" {
		name = identity.LocalPart(email)
	}
	if err := m.store.InsertProfile(ctx, identity.ProfileRecord{
		ID:   identityID,
		Name: name,
		Role: role,
	}); err != nil {
		return pkgerrors.Wrap(
			pkgerrors.CodeStateConflict,
			fmt.Errorf("%w: %w", identity.ErrProfileMissing, err),
			"identity created but profile insert failed",
		)
	}
	return nil
}

// Logout is best-effort: store failures are logged, never surfaced,
// and local state is cleared regardless via the signed-out event.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.SignOut(ctx); err != nil {
		m.logError(ctx, "sign out", err)
	}
}

// Snapshot returns the current {user, loading} pair.
func (m *Manager) Snapshot() State {
	reply := make(chan State, 1)
	if !m.send(cmdSnapshot{reply: reply}) {
		return State{}
	}
	select {
	case state := <-reply:
		return state
	case <-m.done:
		return State{}
	}
}

// Subscribe registers a listener for state changes. Listeners run on
// the actor goroutine and must not call back into the manager. The
// returned cancel waits for the actor to drop the listener, so no
// callback fires after cancel returns.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	reply := make(chan int, 1)
	if !m.send(cmdSubscribe{fn: fn, reply: reply}) {
		return func() {}
	}
	select {
	case id := <-reply:
		return func() {
			ack := make(chan struct{}, 1)
			if !m.send(cmdUnsubscribe{id: id, reply: ack}) {
				return
			}
			select {
			case <-ack:
			case <-m.done:
			}
		}
	case <-m.done:
		return func() {}
	}
}

func (m *Manager) send(cmd command) bool {
	select {
	case m.cmds <- cmd:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) generation() uint64 {
	reply := make(chan uint64, 1)
	if !m.send(cmdGeneration{reply: reply}) {
		return 0
	}
	select {
	case gen := <-reply:
		return gen
	case <-m.done:
		return 0
	}
}

// run is the sole writer of session state. generation increments on
// every sign-in and sign-out, so a resolution started under an older
// generation can never resurrect a user after a signed-out event.
func (m *Manager) run() {
	var (
		user        *access.User
		loading     bool
		generation  uint64
		nextSub     int
		subscribers = make(map[int]func(State))
	)

	publish := func() {
		state := State{User: user.Clone(), Loading: loading}
		for _, fn := range subscribers {
			fn(state)
		}
	}

	setUser := func(next *access.User) {
		wasAuthed := user != nil
		user = next
		if m.metrics != nil {
			if user != nil && !wasAuthed {
				m.metrics.SessionOpened()
			}
			if user == nil && wasAuthed {
				m.metrics.SessionClosed()
			}
		}
		publish()
	}

	for {
		select {
		case <-m.done:
			return
		case raw := <-m.cmds:
			switch cmd := raw.(type) {
			case cmdSetLoading:
				if loading != cmd.loading {
					loading = cmd.loading
					publish()
				}
			case cmdStoreEvent:
				generation++
				switch cmd.event.Kind {
				case identity.EventSignedOut:
					// Signed-out wins over any in-flight resolution.
					setUser(nil)
				case identity.EventSignedIn:
					go m.resolveForEvent(generation, cmd.event.IdentityID)
				}
			case cmdResolved:
				if cmd.generation == generation {
					setUser(cmd.user)
				}
			case cmdGeneration:
				cmd.reply <- generation
			case cmdSnapshot:
				cmd.reply <- State{User: user.Clone(), Loading: loading}
			case cmdSubscribe:
				id := nextSub
				nextSub++
				subscribers[id] = cmd.fn
				cmd.reply <- id
			case cmdUnsubscribe:
				delete(subscribers, cmd.id)
				if cmd.reply != nil {
					cmd.reply <- struct{}{}
				}
			}
		}
	}
}

// resolveForEvent runs off the actor goroutine; its result is posted
// back tagged with the generation it started under and dropped if the
// world has moved on.
func (m *Manager) resolveForEvent(generation uint64, identityID uuid.UUID) {
	ctx := context.Background()

	session, err := m.store.CurrentSession(ctx)
	email := ""
	if err == nil && session != nil && session.IdentityID == identityID {
		email = session.Email
	}

	// The resolver owns the degrade policy: a profile failure aborts
	// assembly, assignment failures yield all-empty lists.
	user, err := m.resolver.ResolveActor(ctx, identityID, email)
	if err != nil {
		// Prior state stays as-is; a partial user is never published.
		m.logError(ctx, "resolve profile for signed-in event", err)
		return
	}
	m.send(cmdResolved{generation: generation, user: user})
}

func (m *Manager) logError(ctx context.Context, msg string, err error) {
	if m.logg != nil {
		m.logg.Error(ctx, msg, err)
	}
}
