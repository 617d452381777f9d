package rbac

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenDetails is one issued token plus its lifetime metadata, expressed
// as unix milliseconds.
type TokenDetails struct {
	Token     string `json:"token"`
	IssuedAt  int64  `json:"issuedAt,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

// AuthResponse is the login/register/refresh payload.
type AuthResponse struct {
	User         *CleanUser   `json:"user"`
	AccessToken  TokenDetails `json:"accessToken"`
	RefreshToken TokenDetails `json:"refreshToken"`
}

// AuthService implements the session lifecycle: register, login, refresh
// and profile lookup.
type AuthService struct {
	repo   RepositoryManager
	users  *UsersService
	tokens *TokenService
	logger Logger
}

func NewAuthService(repo RepositoryManager, users *UsersService, tokens *TokenService, logger Logger) *AuthService {
	if logger == nil {
		logger = defLogger{}
	}
	return &AuthService{
		repo:   repo,
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates the user under the default role set and then behaves
// exactly like a login, handing back a fresh access+refresh pair.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.Create(ctx, CreateUserInput{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// Login verifies the password and issues a fresh access+refresh pair. A
// missing user, a user without a local password and a wrong password all
// fail with the same generic message so callers can't enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, BadRequest("Bad Credentials")
		}
		return nil, Internal(err, "failed to load user for login")
	}

	if !PasswordMatches(password, user.Password) {
		return nil, BadRequest("Bad Credentials")
	}

	return s.issueTokens(user.Clean())
}

// Refresh mints a new access token. The refresh token is not rotated:
// its value and original issued/expiry metadata are echoed back as-is.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, ok := s.tokens.VerifyRefreshToken(refreshToken)
	if !ok || claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, Internal(err, "failed to load user for token refresh")
	}

	access, err := s.tokens.IssueAccessToken(user.ID.String())
	if err != nil {
		return nil, Internal(err, "failed to issue access token")
	}

	return &AuthResponse{
		User:         user.Clean(),
		AccessToken:  tokenDetails(access, s.tokens.VerifyAccessToken),
		RefreshToken: tokenDetails(refreshToken, func(string) (*jwt.RegisteredClaims, bool) { return claims, true }),
	}, nil
}

// Me returns the caller's sanitized profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*CleanUser, error) {
	return s.users.Get(ctx, userID)
}

func (s *AuthService) issueTokens(user *CleanUser) (*AuthResponse, error) {
	access, err := s.tokens.IssueAccessToken(user.ID.String())
	if err != nil {
		return nil, Internal(err, "failed to issue access token")
	}

	refresh, err := s.tokens.IssueRefreshToken(user.ID.String())
	if err != nil {
		return nil, Internal(err, "failed to issue refresh token")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  tokenDetails(access, s.tokens.VerifyAccessToken),
		RefreshToken: tokenDetails(refresh, s.tokens.VerifyRefreshToken),
	}, nil
}

// tokenDetails reads the lifetime metadata out of the signed token so
// login and refresh report the exact same numbers for the same token.
func tokenDetails(token string, verify func(string) (*jwt.RegisteredClaims, bool)) TokenDetails {
	details := TokenDetails{Token: token}

	claims, ok := verify(token)
	if !ok || claims == nil {
		return details
	}

	if claims.IssuedAt != nil {
		details.IssuedAt = claims.IssuedAt.Time.UnixMilli()
	}
	if claims.ExpiresAt != nil {
		details.ExpiresAt = claims.ExpiresAt.Time.UnixMilli()
	}
	return details
}
