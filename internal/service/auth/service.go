package auth

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	"github.com/jwalitptl/hospital-api/internal/session"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

var (
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	ErrAccountRemoved     = stderrors.New("account no longer exists")
)

type Service struct {
	store    repository.Store
	jwtSvc   auth.JWTService
	sessions session.Store
	hasher   security.PasswordHasher
}

func NewService(store repository.Store, jwtSvc auth.JWTService, sessions session.Store, hasher security.PasswordHasher) *Service {
	return &Service{
		store:    store,
		jwtSvc:   jwtSvc,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Login verifies the credentials, resolves the role once and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	identity, err := s.store.Identities().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized(ErrInvalidCredentials)
	}

	principal, err := s.resolvePrincipal(ctx, identity)
	if err != nil {
		return nil, err
	}
	principal.SessionID = uuid.NewString()

	sess := &model.Session{
		ID:         principal.SessionID,
		IdentityID: principal.IdentityID,
		Role:       principal.Role,
		ProfileID:  principal.ProfileID,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, errors.Internal(err)
	}

	token, err := s.jwtSvc.GenerateAccessToken(principal, principal.SessionID)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	if err := audit.Log(ctx, s.store.Audit(), principal, model.AuditActionLogin, model.AuditEntityIdentity, identity.ID, nil); err != nil {
		log.Error().Err(err).Str("identity_id", identity.ID.String()).Msg("failed to audit login")
	}

	return &model.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtSvc.Expiry().Seconds()),
		Role:        principal.Role,
		ProfileID:   principal.ProfileID,
		Redirect:    principal.DashboardPath(),
	}, nil
}

// Authenticate turns a bearer token into the principal stored in its session. A token
// whose session was closed by logout, or whose account has since been deleted, is rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return model.Principal{}, errors.Unauthorized(err)
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			return model.Principal{}, errors.Unauthorized(err)
		}
		return model.Principal{}, errors.Internal(err)
	}

	if err := s.checkAccount(ctx, sess); err != nil {
		return model.Principal{}, err
	}

	return model.Principal{
		IdentityID: sess.IdentityID,
		Username:   claims.Username,
		Role:       sess.Role,
		ProfileID:  sess.ProfileID,
		SessionID:  sess.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, principal model.Principal) error {
	if err := s.sessions.Delete(ctx, principal.SessionID); err != nil {
		return errors.Internal(err)
	}
	if err := audit.Log(ctx, s.store.Audit(), principal, model.AuditActionLogout, model.AuditEntityIdentity, principal.IdentityID, nil); err != nil {
		log.Error().Err(err).Str("identity_id", principal.IdentityID.String()).Msg("failed to audit logout")
	}
	return nil
}

// checkAccount confirms the profile behind the session still exists. Sessions of a
// deleted account are dropped on first use.
func (s *Service) checkAccount(ctx context.Context, sess *model.Session) error {
	var err error
	switch sess.Role {
	case model.RolePatient:
		_, err = s.store.Patients().Get(ctx, sess.ProfileID)
	case model.RoleDoctor:
		_, err = s.store.Doctors().Get(ctx, sess.ProfileID)
	case model.RoleStaff:
		_, err = s.store.Staff().Get(ctx, sess.ProfileID)
	default:
		_, err = s.store.Identities().Get(ctx, sess.IdentityID)
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return errors.Internal(err)
	}

	if derr := s.sessions.Delete(ctx, sess.ID); derr != nil {
		log.Warn().Err(derr).Str("session_id", sess.ID).Msg("failed to drop session of removed account")
	}
	return errors.Unauthorized(ErrAccountRemoved)
}

// resolvePrincipal probes the profile tables in a fixed order. An identity with no profile
// logs in as unassigned and only reaches the home route.
func (s *Service) resolvePrincipal(ctx context.Context, identity *model.Identity) (model.Principal, error) {
	principal := model.Principal{
		IdentityID: identity.ID,
		Username:   identity.Username,
		Role:       model.RoleUnassigned,
	}

	probes := []struct {
		role  model.RoleKind
		probe func() (uuid.UUID, error)
	}{
		{model.RolePatient, func() (uuid.UUID, error) {
			p, err := s.store.Patients().GetByIdentity(ctx, identity.ID)
			if err != nil {
				return uuid.Nil, err
			}
			return p.ID, nil
		}},
		{model.RoleDoctor, func() (uuid.UUID, error) {
			d, err := s.store.Doctors().GetByIdentity(ctx, identity.ID)
			if err != nil {
				return uuid.Nil, err
			}
			return d.ID, nil
		}},
		{model.RoleStaff, func() (uuid.UUID, error) {
			st, err := s.store.Staff().GetByIdentity(ctx, identity.ID)
			if err != nil {
				return uuid.Nil, err
			}
			return st.ID, nil
		}},
	}

	for _, p := range probes {
		id, err := p.probe()
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.Principal{}, err
		}
		principal.Role = p.role
		principal.ProfileID = id
		return principal, nil
	}
	return principal, nil
}
