package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// TokenPair is returned by every successful authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResult carries either tokens or a pending two-factor challenge.
type LoginResult struct {
	Tokens      *TokenPair `json:"tokens,omitempty"`
	MFARequired bool       `json:"mfa_required"`
	MFAToken    string     `json:"mfa_token,omitempty"`
}

// Profile describes the authenticated principal.
type Profile struct {
	ID          string           `json:"id"`
	Kind        tenant.ActorKind `json:"kind"`
	TenantID    string           `json:"tenant_id,omitempty"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	Role        string           `json:"role,omitempty"`
	Permissions []string         `json:"permissions"`
	SuperAdmin  bool             `json:"super_admin,omitempty"`
	TOTPEnabled bool             `json:"totp_enabled"`
	LastLoginAt *time.Time       `json:"last_login_at"`
}

// AuthService authenticates tenant and management users.
type AuthService interface {
	// Login authenticates a tenant user. When two-factor is enabled the
	// result carries an MFA token instead of a token pair.
	Login(ctx context.Context, tenantSlug, email, password string) (*LoginResult, error)
	ManagementLogin(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyMFA(ctx context.Context, mfaToken, code string) (*TokenPair, error)
	// Refresh rotates the refresh token: the presented one is revoked.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes the access token of the caller and, when given, its refresh token.
	Logout(ctx context.Context, access *auth.Claims, refreshToken string) error
	// Authenticate validates an access token and rejects revoked ones.
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)

	Me(ctx context.Context) (*Profile, error)
	ChangePassword(ctx context.Context, current, next string) error
	SetupTOTP(ctx context.Context) (*auth.TOTPEnrollment, error)
	EnableTOTP(ctx context.Context, code string) error
	DisableTOTP(ctx context.Context, code string) error
}

type authService struct {
	users   repository.UserRepository
	admins  repository.ManagementUserRepository
	roles   repository.RoleRepository
	tenants repository.TenantRepository
	issuer  *auth.Issuer
	revoked auth.RevocationStore
	cfg     config.AuthConfig
	now     func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	admins repository.ManagementUserRepository,
	roles repository.RoleRepository,
	tenants repository.TenantRepository,
	issuer *auth.Issuer,
	revoked auth.RevocationStore,
	cfg config.AuthConfig,
) AuthService {
	return &authService{
		users:   users,
		admins:  admins,
		roles:   roles,
		tenants: tenants,
		issuer:  issuer,
		revoked: revoked,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) Login(ctx context.Context, tenantSlug, email, password string) (*LoginResult, error) {
	u, err := s.users.FindForLogin(ctx, tenantSlug, email)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	claims := auth.Claims{UserID: u.ID, TenantID: u.TenantID, Kind: tenant.KindUser}
	if u.TOTPEnabled {
		return s.challenge(claims)
	}
	pair, err := s.userTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair}, nil
}

func (s *authService) ManagementLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	if u.TOTPEnabled {
		return s.challenge(auth.Claims{UserID: u.ID, Kind: tenant.KindManagement})
	}
	pair, err := s.managementTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair}, nil
}

func (s *authService) challenge(c auth.Claims) (*LoginResult, error) {
	token, _, err := s.issuer.Issue(c, auth.TokenMFA, s.cfg.MFATokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{MFARequired: true, MFAToken: token}, nil
}

func (s *authService) VerifyMFA(ctx context.Context, mfaToken, code string) (*TokenPair, error) {
	claims, err := s.issuer.Parse(mfaToken, auth.TokenMFA)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	var (
		secret string
		issue  func() (*TokenPair, error)
	)
	switch claims.Kind {
	case tenant.KindManagement:
		u, err := s.admins.FindByID(ctx, claims.UserID)
		if err != nil {
			return nil, s.lostPrincipal(err)
		}
		if !u.IsActive {
			return nil, ErrAccountInactive
		}
		secret = u.TOTPSecret
		issue = func() (*TokenPair, error) { return s.managementTokens(ctx, u) }
	default:
		u, err := s.activeUser(ctx, claims)
		if err != nil {
			return nil, err
		}
		secret = u.TOTPSecret
		issue = func() (*TokenPair, error) { return s.userTokens(ctx, u) }
	}

	if !auth.ValidateTOTPAt(code, secret, s.now()) {
		return nil, ErrInvalidMFACode
	}
	// A challenge token is single use.
	if err := s.consume(ctx, claims); err != nil {
		return nil, err
	}
	return issue()
}

// activeUser loads the tenant user named by claims and fails unless both the
// user and the tenant are active.
func (s *authService) activeUser(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	t, err := s.tenants.FindByID(ctx, claims.TenantID)
	if err != nil {
		return nil, s.lostPrincipal(err)
	}
	u, err := s.users.FindByIDUnscoped(ctx, claims.TenantID, claims.UserID)
	if err != nil {
		return nil, s.lostPrincipal(err)
	}
	if !u.IsActive || !t.IsActive {
		return nil, ErrAccountInactive
	}
	return u, nil
}

// consume burns the presented token. A token another request burned first
// is rejected.
func (s *authService) consume(ctx context.Context, claims *auth.Claims) error {
	ok, err := s.revoked.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrInvalidToken
	}
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	var issue func() (*TokenPair, error)
	switch claims.Kind {
	case tenant.KindManagement:
		u, err := s.admins.FindByID(ctx, claims.UserID)
		if err != nil {
			return nil, s.lostPrincipal(err)
		}
		if !u.IsActive {
			return nil, ErrAccountInactive
		}
		issue = func() (*TokenPair, error) { return s.managementTokens(ctx, u) }
	default:
		u, err := s.activeUser(ctx, claims)
		if err != nil {
			return nil, err
		}
		issue = func() (*TokenPair, error) { return s.userTokens(ctx, u) }
	}

	// Rotation: the presented refresh token is burned before a new pair exists.
	if err := s.consume(ctx, claims); err != nil {
		return nil, err
	}
	return issue()
}

func (s *authService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access == nil {
		return auth.ErrInvalidToken
	}
	if err := s.revoked.Revoke(ctx, access.ID, access.ExpiresAt.Time); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	rc, err := s.issuer.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		// An unusable refresh token needs no revocation.
		return nil
	}
	if rc.UserID != access.UserID {
		return ErrForbidden
	}
	return s.revoked.Revoke(ctx, rc.ID, rc.ExpiresAt.Time)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.issuer.Parse(accessToken, auth.TokenAccess)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *authService) checkRevoked(ctx context.Context, c *auth.Claims) error {
	revoked, err := s.revoked.IsRevoked(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return fmt.Errorf("%w: token revoked", auth.ErrInvalidToken)
	}
	return nil
}

// lostPrincipal maps a vanished user onto an invalid token.
func (s *authService) lostPrincipal(err error) error {
	if errors.Is(notFound(err), ErrNotFound) {
		return fmt.Errorf("%w: principal no longer exists", auth.ErrInvalidToken)
	}
	return err
}

func (s *authService) userTokens(ctx context.Context, u *model.User) (*TokenPair, error) {
	claims := auth.Claims{UserID: u.ID, TenantID: u.TenantID, Kind: tenant.KindUser, Permissions: []string{}}
	if u.RoleID != nil {
		name, perms, err := s.roles.PermissionsFor(ctx, u.TenantID, *u.RoleID)
		if err != nil && !errors.Is(notFound(err), ErrNotFound) {
			return nil, err
		}
		claims.Role, claims.Permissions = name, perms
	}
	pair, err := s.pair(claims)
	if err != nil {
		return nil, err
	}
	if err := s.users.TouchLogin(ctx, u.TenantID, u.ID, s.now()); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *authService) managementTokens(ctx context.Context, u *model.ManagementUser) (*TokenPair, error) {
	pair, err := s.pair(auth.Claims{UserID: u.ID, Kind: tenant.KindManagement, SuperAdmin: u.IsSuperAdmin})
	if err != nil {
		return nil, err
	}
	if err := s.admins.TouchLogin(ctx, u.ID, s.now()); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *authService) pair(c auth.Claims) (*TokenPair, error) {
	access, _, err := s.issuer.Issue(c, auth.TokenAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	// Refresh tokens carry identity only; permissions are reloaded on refresh.
	refresh, _, err := s.issuer.Issue(auth.Claims{UserID: c.UserID, TenantID: c.TenantID, Kind: c.Kind}, auth.TokenRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

// principal is the credential view shared by both account kinds.
type principal struct {
	id           string
	tenantID     string
	email        string
	passwordHash string
	totpSecret   string
	totpEnabled  bool
	setPassword  func(hash string) error
	setTOTP      func(secret string, enabled bool) error
}

func (s *authService) current(ctx context.Context) (*principal, error) {
	a, ok := tenant.ActorFromContext(ctx)
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	if a.IsManagement() {
		u, err := s.admins.FindByID(ctx, a.UserID)
		if err != nil {
			return nil, s.lostPrincipal(err)
		}
		return &principal{
			id: u.ID, email: u.Email, passwordHash: u.PasswordHash,
			totpSecret: u.TOTPSecret, totpEnabled: u.TOTPEnabled,
			setPassword: func(h string) error { return s.admins.UpdatePassword(ctx, u.ID, h) },
			setTOTP:     func(sec string, on bool) error { return s.admins.UpdateTOTP(ctx, u.ID, sec, on) },
		}, nil
	}
	u, err := s.users.FindByIDUnscoped(ctx, a.TenantID, a.UserID)
	if err != nil {
		return nil, s.lostPrincipal(err)
	}
	return &principal{
		id: u.ID, tenantID: u.TenantID, email: u.Email, passwordHash: u.PasswordHash,
		totpSecret: u.TOTPSecret, totpEnabled: u.TOTPEnabled,
		setPassword: func(h string) error { return s.users.UpdatePassword(ctx, u.TenantID, u.ID, h) },
		setTOTP:     func(sec string, on bool) error { return s.users.UpdateTOTP(ctx, u.TenantID, u.ID, sec, on) },
	}, nil
}

func (s *authService) Me(ctx context.Context) (*Profile, error) {
	a, ok := tenant.ActorFromContext(ctx)
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	if a.IsManagement() {
		u, err := s.admins.FindByID(ctx, a.UserID)
		if err != nil {
			return nil, s.lostPrincipal(err)
		}
		return &Profile{
			ID: u.ID, Kind: a.Kind, Email: u.Email, FullName: u.FullName, Permissions: []string{},
			SuperAdmin: u.IsSuperAdmin, TOTPEnabled: u.TOTPEnabled, LastLoginAt: u.LastLoginAt,
		}, nil
	}
	u, err := s.users.FindByIDUnscoped(ctx, a.TenantID, a.UserID)
	if err != nil {
		return nil, s.lostPrincipal(err)
	}
	perms := a.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &Profile{
		ID: u.ID, Kind: a.Kind, TenantID: u.TenantID, Email: u.Email, FullName: u.FullName,
		Role: a.Role, Permissions: perms, TOTPEnabled: u.TOTPEnabled, LastLoginAt: u.LastLoginAt,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, current, next string) error {
	p, err := s.current(ctx)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(current, p.passwordHash) {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePasswordStrength(next); err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.setPassword(hash)
}

func (s *authService) SetupTOTP(ctx context.Context) (*auth.TOTPEnrollment, error) {
	p, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if p.totpEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}
	enr, err := auth.GenerateTOTP(s.cfg.TOTPIssuer, p.email)
	if err != nil {
		return nil, err
	}
	if err := p.setTOTP(enr.Secret, false); err != nil {
		return nil, err
	}
	return enr, nil
}

func (s *authService) EnableTOTP(ctx context.Context, code string) error {
	p, err := s.current(ctx)
	if err != nil {
		return err
	}
	if p.totpEnabled {
		return ErrTOTPAlreadyEnabled
	}
	if p.totpSecret == "" {
		return ErrTOTPNotSetUp
	}
	if !auth.ValidateTOTPAt(code, p.totpSecret, s.now()) {
		return ErrInvalidMFACode
	}
	return p.setTOTP(p.totpSecret, true)
}

func (s *authService) DisableTOTP(ctx context.Context, code string) error {
	p, err := s.current(ctx)
	if err != nil {
		return err
	}
	if !p.totpEnabled {
		return ErrTOTPNotEnabled
	}
	if !auth.ValidateTOTPAt(code, p.totpSecret, s.now()) {
		return ErrInvalidMFACode
	}
	return p.setTOTP("", false)
}
