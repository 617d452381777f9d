package rbac

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateUserInput carries everything needed to create a user. Roles may
// be empty; the authenticated role is always attached regardless.
type CreateUserInput struct {
	Email    string
	Password string
	Roles    []uuid.UUID
}

// UpdateUserInput uses pointers for optional scalar updates. A nil Roles
// slice keeps the current role set; a non-nil one replaces it and must
// include the authenticated role.
type UpdateUserInput struct {
	Email     *string
	Password  *string
	Confirmed *bool
	Blocked   *bool
	Roles     []uuid.UUID
}

// UsersService implements user CRUD with the role invariants: every user
// holds the authenticated role, and the seeded super admin account can
// never be deleted.
type UsersService struct {
	repo            RepositoryManager
	superAdminEmail string
	logger          Logger
}

func NewUsersService(repo RepositoryManager, superAdminEmail string, logger Logger) *UsersService {
	if logger == nil {
		logger = defLogger{}
	}
	return &UsersService{
		repo:            repo,
		superAdminEmail: superAdminEmail,
		logger:          logger,
	}
}

func (s *UsersService) List(ctx context.Context) ([]*CleanUser, error) {
	records, err := s.repo.Users().List(ctx)
	if err != nil {
		return nil, Internal(err, "failed to list users")
	}

	out := make([]*CleanUser, 0, len(records))
	for _, u := range records {
		out = append(out, u.Clean())
	}
	return out, nil
}

func (s *UsersService) Get(ctx context.Context, id uuid.UUID) (*CleanUser, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("User Not Found")
		}
		return nil, Internal(err, "failed to load user")
	}
	return user.Clean(), nil
}

func (s *UsersService) Create(ctx context.Context, input CreateUserInput) (*CleanUser, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.repo.Users().GetByEmail(ctx, email); err == nil {
		return nil, BadRequest("Email already in use")
	} else if !repository.IsRecordNotFound(err) {
		return nil, Internal(err, "failed to check email uniqueness")
	}

	roleIDs, err := s.withDefaultRole(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, Internal(err, "failed to hash password")
	}

	user := &User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Provider: ProviderLocal,
	}

	// the user row and its role links commit together: a user must never
	// exist without the authenticated role
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created

		return s.repo.Users().SetRolesTx(ctx, tx, user.ID, roleIDs)
	})
	if err != nil {
		return nil, Internal(err, "failed to create user")
	}

	return user.Clean(), nil
}

func (s *UsersService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*CleanUser, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("User Not Found")
		}
		return nil, Internal(err, "failed to load user")
	}

	if input.Roles != nil {
		defaultRole, err := s.defaultRole(ctx)
		if err != nil {
			return nil, err
		}

		if !containsID(input.Roles, defaultRole.ID) {
			return nil, BadRequest("Default role cannot be removed")
		}

		if err := s.repo.Users().SetRoles(ctx, user.ID, input.Roles); err != nil {
			return nil, Internal(err, "failed to update roles")
		}
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email != user.Email {
			if _, err := s.repo.Users().GetByEmail(ctx, email); err == nil {
				return nil, BadRequest("Email already in use")
			} else if !repository.IsRecordNotFound(err) {
				return nil, Internal(err, "failed to check email uniqueness")
			}
		}
		user.Email = email
	}
	if input.Password != nil {
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, Internal(err, "failed to hash password")
		}
		user.Password = hash
	}
	if input.Confirmed != nil {
		user.Confirmed = *input.Confirmed
	}
	if input.Blocked != nil {
		user.Blocked = *input.Blocked
	}

	updated, err := s.repo.Users().Update(ctx, user)
	if err != nil {
		return nil, Internal(err, "failed to update user")
	}

	return updated.Clean(), nil
}

// Delete removes a user. The configured super admin account is guarded
// regardless of who asks.
func (s *UsersService) Delete(ctx context.Context, id uuid.UUID) (*CleanUser, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("User Not Found")
		}
		return nil, Internal(err, "failed to load user")
	}

	if strings.EqualFold(user.Email, s.superAdminEmail) {
		return nil, BadRequest(`Cannot delete the default "super-admin" user`)
	}

	if err := s.repo.Users().DeleteByID(ctx, user.ID); err != nil {
		return nil, Internal(err, "failed to delete user")
	}

	return user.Clean(), nil
}

// defaultRole resolves the authenticated role. Its absence means the
// store was never seeded: that is a deployment fault and surfaces as an
// internal error, never a 4xx.
func (s *UsersService) defaultRole(ctx context.Context) (*Role, error) {
	role, err := s.repo.Roles().GetByName(ctx, RoleAuthenticated)
	if err != nil {
		return nil, Internal(err, `default "authenticated" role not found`)
	}
	return role, nil
}

func (s *UsersService) withDefaultRole(ctx context.Context, roleIDs []uuid.UUID) ([]uuid.UUID, error) {
	defaultRole, err := s.defaultRole(ctx)
	if err != nil {
		return nil, err
	}

	if !containsID(roleIDs, defaultRole.ID) {
		roleIDs = append(roleIDs, defaultRole.ID)
	}
	return roleIDs, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
