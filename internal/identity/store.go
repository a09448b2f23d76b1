package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/pkg/config"
	"github.com/terra-cloud/terra-backend/pkg/db"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
	"github.com/terra-cloud/terra-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// sessionSlot is the persisted single-slot session cache, normally the
// Redis client.
type sessionSlot interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// StoreParams bundles the dependencies required to build the store.
type StoreParams struct {
	DB         *gorm.DB
	Slot       sessionSlot
	SlotKey    string
	SessionTTL time.Duration
	Password   config.PasswordConfig
	Logger     *logger.Logger
}

type store struct {
	db     *gorm.DB
	slot   sessionSlot
	key    string
	ttl    time.Duration
	pwCfg  config.PasswordConfig
	logg   *logger.Logger
	events broadcaster
}

// NewStore constructs the gorm and Redis backed identity store.
func NewStore(params StoreParams) (Store, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	if params.Slot == nil {
		return nil, fmt.Errorf("session slot is required")
	}
	if params.SlotKey == "" {
		return nil, fmt.Errorf("session slot key is required")
	}
	ttl := params.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &store{
		db:    params.DB,
		slot:  params.Slot,
		key:   params.SlotKey,
		ttl:   ttl,
		pwCfg: params.Password,
		logg:  params.Logger,
	}, nil
}

func (s *store) CurrentSession(ctx context.Context) (*Session, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read session slot")
	}
	identityID, err := uuid.Parse(raw)
	if err != nil {
		// A corrupt slot is unrecoverable; clear it rather than loop.
		if s.logg != nil {
			s.logg.Warn(ctx, "session slot held a non-uuid value, clearing it")
		}
		_ = s.slot.Del(ctx, s.key)
		return nil, nil
	}

	var identity models.Identity
	if err := s.db.WithContext(ctx).First(&identity, "id = ?", identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.slot.Del(ctx, s.key)
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup identity")
	}
	return &Session{IdentityID: identity.ID, Email: identity.Email}, nil
}

func (s *store) OnSessionChange(fn func(Event)) (cancel func()) {
	return s.events.subscribe(fn)
}

func (s *store) SignInWithPassword(ctx context.Context, email, password string) error {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var identity models.Identity
	if err := s.db.WithContext(ctx).First(&identity, "email = ?", normalized).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup identity")
	}

	valid, err := security.VerifyPassword(password, identity.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !identity.IsActive {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", identity.ID).
		Update("last_login_at", now).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}

	if err := s.slot.Set(ctx, s.key, identity.ID.String(), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session slot")
	}

	s.events.emit(Event{Kind: EventSignedIn, IdentityID: identity.ID})
	return nil
}

func (s *store) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if password == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	identity := models.Identity{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&identity).Error; err != nil {
		if isDuplicateEmail(err) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create identity")
	}
	return identity.ID, nil
}

func (s *store) SignOut(ctx context.Context) error {
	err := s.slot.Del(ctx, s.key)
	// The local session is gone either way; subscribers must not be
	// left believing someone is still signed in.
	s.events.emit(Event{Kind: EventSignedOut})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session slot")
	}
	return nil
}

func (s *store) Profile(ctx context.Context, identityID uuid.UUID) (*Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileMissing
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch profile")
	}
	return &Profile{Name: profile.Name, Role: profile.Role}, nil
}

func (s *store) InsertProfile(ctx context.Context, record ProfileRecord) error {
	if !record.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	row := models.Profile{
		ID:   record.ID,
		Name: record.Name,
		Role: record.Role,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
	}
	return nil
}

func (s *store) ListAssignments(ctx context.Context, kind enums.AssignmentKind, userID uuid.UUID) ([]uuid.UUID, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment kind")
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("created_at ASC").
		Pluck("resource_id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assignments")
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isDuplicateEmail(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "") {
		return true
	}
	// sqlite phrases it differently than Postgres.
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

// LocalPart extracts the display-name fallback from an email address.
func LocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
