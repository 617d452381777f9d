package rbac

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// IssueApiTokenInput describes a new opaque token. A nil ExpiresAt means
// the token never expires.
type IssueApiTokenInput struct {
	Name        string
	FullAccess  bool
	Permissions []uuid.UUID
	ExpiresAt   *time.Time
}

// ApiTokenView is the serialized form of a token. The raw secret leaves
// the service exactly once, on issue; every other read gets the obscured
// rendition.
type ApiTokenView struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Token       string        `json:"token"`
	FullAccess  bool          `json:"fullAccess"`
	UserID      uuid.UUID     `json:"userId"`
	Permissions []*Permission `json:"permissions,omitempty"`
	ExpiresAt   *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
}

// ApiTokensService manages opaque API tokens. Listing and issuing are
// reserved for super admins; reads and revocation are scoped to the
// owning user.
type ApiTokensService struct {
	repo   RepositoryManager
	logger Logger
}

func NewApiTokensService(repo RepositoryManager, logger Logger) *ApiTokensService {
	if logger == nil {
		logger = defLogger{}
	}
	return &ApiTokensService{repo: repo, logger: logger}
}

// ListForUser returns the caller's tokens, obscured.
func (s *ApiTokensService) ListForUser(ctx context.Context, callerID uuid.UUID) ([]*ApiTokenView, error) {
	if err := s.requireSuperAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	records, err := s.repo.ApiTokens().ListByUser(ctx, callerID)
	if err != nil {
		return nil, Internal(err, "failed to list api tokens")
	}

	out := make([]*ApiTokenView, 0, len(records))
	for _, t := range records {
		out = append(out, viewApiToken(t, false))
	}
	return out, nil
}

// Get returns one of the caller's tokens, obscured.
func (s *ApiTokensService) Get(ctx context.Context, callerID, id uuid.UUID) (*ApiTokenView, error) {
	token, err := s.repo.ApiTokens().GetWithPermissions(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Api Token Not Found")
		}
		return nil, Internal(err, "failed to load api token")
	}

	if token.UserID != callerID {
		return nil, ErrForbidden
	}

	return viewApiToken(token, false), nil
}

// Issue mints a new token for the caller. The response carries the raw
// secret; it is never retrievable again.
func (s *ApiTokensService) Issue(ctx context.Context, callerID uuid.UUID, input IssueApiTokenInput) (*ApiTokenView, error) {
	if err := s.requireSuperAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	token, err := s.repo.ApiTokens().Create(ctx, &ApiToken{
		ID:         uuid.New(),
		Name:       input.Name,
		Token:      GenerateRandomToken(ApiTokenByteLength),
		FullAccess: input.FullAccess,
		UserID:     callerID,
		ExpiresAt:  input.ExpiresAt,
	})
	if err != nil {
		return nil, Internal(err, "failed to create api token")
	}

	if len(input.Permissions) > 0 {
		if err := s.repo.ApiTokens().SetPermissions(ctx, token.ID, input.Permissions); err != nil {
			return nil, Internal(err, "failed to attach token permissions")
		}
	}

	full, err := s.repo.ApiTokens().GetWithPermissions(ctx, token.ID)
	if err != nil {
		return nil, Internal(err, "failed to reload api token")
	}

	return viewApiToken(full, true), nil
}

// Revoke deletes one of the caller's tokens and returns its obscured view.
func (s *ApiTokensService) Revoke(ctx context.Context, callerID, id uuid.UUID) (*ApiTokenView, error) {
	token, err := s.repo.ApiTokens().GetWithPermissions(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Api Token Not Found")
		}
		return nil, Internal(err, "failed to load api token")
	}

	if token.UserID != callerID {
		return nil, ErrForbidden
	}

	if err := s.repo.ApiTokens().DeleteByID(ctx, token.ID); err != nil {
		return nil, Internal(err, "failed to revoke api token")
	}

	return viewApiToken(token, false), nil
}

func (s *ApiTokensService) requireSuperAdmin(ctx context.Context, callerID uuid.UUID) error {
	caller, err := s.repo.Users().GetWithPermissions(ctx, callerID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUnauthenticated
		}
		return Internal(err, "failed to load caller")
	}

	if !caller.HasRole(RoleSuperAdmin) {
		return ErrForbidden
	}
	return nil
}

func viewApiToken(t *ApiToken, raw bool) *ApiTokenView {
	view := &ApiTokenView{
		ID:          t.ID,
		Name:        t.Name,
		Token:       ObscureToken(t.Token),
		FullAccess:  t.FullAccess,
		UserID:      t.UserID,
		Permissions: t.Permissions,
		ExpiresAt:   t.ExpiresAt,
		CreatedAt:   t.CreatedAt,
	}
	if raw {
		view.Token = t.Token
	}
	return view
}
