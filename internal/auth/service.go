package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/internal/identity"
	pkgAuth "github.com/terra-cloud/terra-backend/pkg/auth"
	"github.com/terra-cloud/terra-backend/pkg/auth/session"
	"github.com/terra-cloud/terra-backend/pkg/config"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type identityRepository interface {
	FindIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// registrar is the signup slice of the identity store; register shares
// its non-transactional identity-then-profile sequence.
type registrar interface {
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	InsertProfile(ctx context.Context, record identity.ProfileRecord) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type service struct {
	repo      identityRepository
	registrar registrar
	session   sessionManager
	jwtCfg    config.JWTConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Repo           identityRepository
	Registrar      registrar
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a login/register service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("identity repository is required")
	}
	if params.Registrar == nil {
		return nil, fmt.Errorf("registrar is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		repo:      params.Repo,
		registrar: params.Registrar,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	ident, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The halfway-signup gap: credentials exist, profile does
			// not. No role means no session.
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, identity.ErrProfileMissing, "account setup incomplete")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch profile")
	}
	if !profile.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, ident.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	ident.LastLoginAt = &now

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: ident.ID,
		Email:  ident.Email,
		Role:   profile.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: &UserDTO{
			ID:          ident.ID,
			Name:        displayName(profile.Name, ident.Email),
			Email:       ident.Email,
			Role:        profile.Role,
			LastLoginAt: ident.LastLoginAt,
		},
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	identityID, err := s.registrar.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = identity.LocalPart(strings.ToLower(strings.TrimSpace(req.Email)))
	}
	if err := s.registrar.InsertProfile(ctx, identity.ProfileRecord{
		ID:   identityID,
		Name: name,
		Role: role,
	}); err != nil {
		// The identity row stays behind on purpose; surfacing the gap
		// beats a silent rollback that hides half-created accounts.
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeStateConflict,
			fmt.Errorf("%w: %w", identity.ErrProfileMissing, err),
			"identity created but profile insert failed",
		)
	}

	return &RegisterResponse{
		User: &UserDTO{
			ID:    identityID,
			Name:  name,
			Email: strings.ToLower(strings.TrimSpace(req.Email)),
			Role:  role,
		},
	}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	ident, err := s.repo.FindIdentityByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup identity")
	}

	valid, err := security.VerifyPassword(password, ident.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !ident.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return ident, nil
}

func displayName(profileName, email string) string {
	if name := strings.TrimSpace(profileName); name != "" {
		return name
	}
	return identity.LocalPart(email)
}
