package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/internal/identity"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
)

type stubStore struct {
	mu sync.Mutex

	session    *identity.Session
	signInErr  error
	signUpID   uuid.UUID
	signUpErr  error
	signOutErr error

	profile        *identity.Profile
	profileErr     error
	profileStarted chan struct{}
	profileGate    chan struct{}

	assignments    map[enums.AssignmentKind][]uuid.UUID
	assignmentsErr error

	insertProfileErr error
	inserted         []identity.ProfileRecord

	subs []func(identity.Event)
}

func newStubStore() *stubStore {
	return &stubStore{
		profile:     &identity.Profile{Name: "Dana Whitfield", Role: enums.UserRoleManager},
		assignments: map[enums.AssignmentKind][]uuid.UUID{},
		signUpID:    uuid.New(),
	}
}

func (s *stubStore) CurrentSession(context.Context) (*identity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *stubStore) OnSessionChange(fn func(identity.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *stubStore) emit(ev identity.Event) {
	s.mu.Lock()
	subs := append([]func(identity.Event){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (s *stubStore) SignInWithPassword(context.Context, string, string) error {
	if s.signInErr != nil {
		return s.signInErr
	}
	s.mu.Lock()
	id := s.signUpID
	s.session = &identity.Session{IdentityID: id, Email: "dana@terra.example"}
	s.mu.Unlock()
	s.emit(identity.Event{Kind: identity.EventSignedIn, IdentityID: id})
	return nil
}

func (s *stubStore) SignUp(context.Context, string, string) (uuid.UUID, error) {
	if s.signUpErr != nil {
		return uuid.Nil, s.signUpErr
	}
	return s.signUpID, nil
}

func (s *stubStore) SignOut(context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	s.emit(identity.Event{Kind: identity.EventSignedOut})
	return s.signOutErr
}

func (s *stubStore) Profile(context.Context, uuid.UUID) (*identity.Profile, error) {
	if s.profileStarted != nil {
		s.profileStarted <- struct{}{}
	}
	if s.profileGate != nil {
		<-s.profileGate
	}
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profile, nil
}

func (s *stubStore) InsertProfile(_ context.Context, record identity.ProfileRecord) error {
	if s.insertProfileErr != nil {
		return s.insertProfileErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, record)
	return nil
}

func (s *stubStore) ListAssignments(_ context.Context, kind enums.AssignmentKind, _ uuid.UUID) ([]uuid.UUID, error) {
	if s.assignmentsErr != nil {
		return nil, s.assignmentsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.assignments[kind]...), nil
}

func newTestManager(t *testing.T, store *stubStore) *Manager {
	t.Helper()
	m, err := NewManager(ManagerParams{Store: store})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestInitializeWithoutPersistedSession(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store)

	m.Initialize(context.Background())

	waitFor(t, "loading to clear", func() bool { return !m.Snapshot().Loading })
	if m.Snapshot().User != nil {
		t.Fatal("expected no user without a persisted session")
	}
}

func TestInitializeRestoresPersistedSession(t *testing.T) {
	store := newStubStore()
	identityID := uuid.New()
	propertyID := uuid.New()
	store.session = &identity.Session{IdentityID: identityID, Email: "dana@terra.example"}
	store.assignments[enums.AssignmentKindProperty] = []uuid.UUID{propertyID}

	m := newTestManager(t, store)
	m.Initialize(context.Background())

	waitFor(t, "restored user", func() bool {
		state := m.Snapshot()
		return state.User != nil && !state.Loading
	})

	state := m.Snapshot()
	if state.User.ID != identityID {
		t.Fatalf("expected user %s, got %s", identityID, state.User.ID)
	}
	if state.User.Name != "Dana Whitfield" {
		t.Fatalf("unexpected name %q", state.User.Name)
	}
	if state.User.Role != enums.UserRoleManager {
		t.Fatalf("unexpected role %s", state.User.Role)
	}
	if len(state.User.AssignedPropertyIDs) != 1 || state.User.AssignedPropertyIDs[0] != propertyID {
		t.Fatalf("unexpected property assignments %v", state.User.AssignedPropertyIDs)
	}
}

func TestInitializeProfileFailureLeavesUnauthenticated(t *testing.T) {
	store := newStubStore()
	store.session = &identity.Session{IdentityID: uuid.New(), Email: "dana@terra.example"}
	store.profileErr = errors.New("profiles table unavailable")

	m := newTestManager(t, store)
	m.Initialize(context.Background())

	waitFor(t, "loading to clear", func() bool { return !m.Snapshot().Loading })
	if m.Snapshot().User != nil {
		t.Fatal("profile failure on restore should leave no user")
	}
}

func TestLoginFailurePropagatesAndClearsLoading(t *testing.T) {
	store := newStubStore()
	store.signInErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")

	m := newTestManager(t, store)
	err := m.Login(context.Background(), "bad@x.com", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	waitFor(t, "loading to clear", func() bool { return !m.Snapshot().Loading })
	if m.Snapshot().User != nil {
		t.Fatal("failed login must not alter session state")
	}
}

func TestLoginPopulatesUserThroughSignedInEvent(t *testing.T) {
	store := newStubStore()
	taskID := uuid.New()
	store.assignments[enums.AssignmentKindTask] = []uuid.UUID{taskID}

	m := newTestManager(t, store)
	if err := m.Login(context.Background(), "dana@terra.example", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	waitFor(t, "user from signed-in event", func() bool { return m.Snapshot().User != nil })
	user := m.Snapshot().User
	if len(user.AssignedTaskIDs) != 1 || user.AssignedTaskIDs[0] != taskID {
		t.Fatalf("unexpected task assignments %v", user.AssignedTaskIDs)
	}
}

func TestSignedOutWinsOverInFlightResolution(t *testing.T) {
	store := newStubStore()
	store.profileStarted = make(chan struct{}, 1)
	store.profileGate = make(chan struct{})

	m := newTestManager(t, store)

	store.emit(identity.Event{Kind: identity.EventSignedIn, IdentityID: uuid.New()})
	<-store.profileStarted

	// The resolution is parked mid-fetch; sign out before it lands.
	store.emit(identity.Event{Kind: identity.EventSignedOut})
	close(store.profileGate)

	time.Sleep(100 * time.Millisecond)
	if user := m.Snapshot().User; user != nil {
		t.Fatalf("stale resolution resurrected user %s", user.ID)
	}
}

func TestAssignmentFailureDegradesToEmptyLists(t *testing.T) {
	store := newStubStore()
	store.assignmentsErr = errors.New("assignments table unavailable")

	m := newTestManager(t, store)
	store.emit(identity.Event{Kind: identity.EventSignedIn, IdentityID: uuid.New()})

	waitFor(t, "degraded user", func() bool { return m.Snapshot().User != nil })
	user := m.Snapshot().User
	if len(user.AssignedPropertyIDs) != 0 || len(user.AssignedEquipmentIDs) != 0 || len(user.AssignedTaskIDs) != 0 {
		t.Fatal("degraded user must carry empty assignment lists")
	}
	if user.Role != enums.UserRoleManager {
		t.Fatalf("degraded user keeps its role, got %s", user.Role)
	}
}

func TestSignupCreatesProfileWithProvidedName(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store)

	err := m.Signup(context.Background(), "leo@terra.example", "pw", "Leo Vance", enums.UserRoleFieldTechnician)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.inserted) != 1 {
		t.Fatalf("expected one profile insert, got %d", len(store.inserted))
	}
	record := store.inserted[0]
	if record.ID != store.signUpID || record.Name != "Leo Vance" || record.Role != enums.UserRoleFieldTechnician {
		t.Fatalf("unexpected profile record %+v", record)
	}
}

func TestSignupFallsBackToEmailLocalPart(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store)

	if err := m.Signup(context.Background(), "leo@terra.example", "pw", "", enums.UserRoleFieldTechnician); err != nil {
		t.Fatalf("signup: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.inserted[0].Name != "leo" {
		t.Fatalf("expected local-part fallback, got %q", store.inserted[0].Name)
	}
}

func TestSignupProfileInsertFailureLeavesOrphanError(t *testing.T) {
	store := newStubStore()
	store.insertProfileErr = errors.New("profiles table unavailable")

	m := newTestManager(t, store)
	err := m.Signup(context.Background(), "leo@terra.example", "pw", "Leo", enums.UserRoleFieldTechnician)
	if err == nil {
		t.Fatal("expected orphaned-identity error")
	}
	if !errors.Is(err, identity.ErrProfileMissing) {
		t.Fatalf("expected ErrProfileMissing in chain, got %v", err)
	}

	waitFor(t, "loading to clear", func() bool { return !m.Snapshot().Loading })
}

func TestLogoutIsBestEffortAndClearsUser(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store)

	if err := m.Login(context.Background(), "dana@terra.example", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	waitFor(t, "user", func() bool { return m.Snapshot().User != nil })

	store.signOutErr = errors.New("redis unreachable")
	m.Logout(context.Background())

	waitFor(t, "user cleared", func() bool { return m.Snapshot().User == nil })
}

func TestSubscribeObservesTransitions(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store)

	var mu sync.Mutex
	var sawUser bool
	cancel := m.Subscribe(func(state State) {
		mu.Lock()
		defer mu.Unlock()
		if state.User != nil {
			sawUser = true
		}
	})
	defer cancel()

	store.emit(identity.Event{Kind: identity.EventSignedIn, IdentityID: uuid.New()})
	waitFor(t, "subscriber to see user", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return sawUser
	})
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store)

	var mu sync.Mutex
	calls := 0
	cancel := m.Subscribe(func(State) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	store.emit(identity.Event{Kind: identity.EventSignedOut})
	waitFor(t, "first publish", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	})

	// Cancel waits for the actor, so anything queued before it has
	// already been delivered when it returns.
	cancel()
	mu.Lock()
	seen := calls
	mu.Unlock()

	store.emit(identity.Event{Kind: identity.EventSignedOut})
	// Snapshot round-trips the actor, flushing the event above.
	_ = m.Snapshot()

	mu.Lock()
	defer mu.Unlock()
	if calls != seen {
		t.Fatalf("subscriber fired after cancel: %d then %d", seen, calls)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	store := newStubStore()
	m, err := NewManager(ManagerParams{Store: store})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.Close()
	m.Close()

	if state := m.Snapshot(); state.User != nil {
		t.Fatal("closed manager should report empty state")
	}
}
