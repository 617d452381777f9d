package rbac

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Provider identifies where a user's credentials live.
type Provider = string

const (
	// ProviderLocal is a user with a locally stored password hash
	ProviderLocal Provider = "local"
)

// Distinguished role names. RoleAuthenticated is attached to every user
// and can never be removed; RoleSuperAdmin is granted every registered
// permission during bootstrap.
const (
	RoleAuthenticated = "authenticated"
	RoleSuperAdmin    = "super-admin"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Password      string     `bun:"password,nullzero" json:"-"`
	Provider      Provider   `bun:"provider,notnull" json:"provider,omitempty"`
	Confirmed     bool       `bun:"confirmed" json:"confirmed"`
	Blocked       bool       `bun:"blocked" json:"blocked"`
	Roles         []*Role    `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// CleanUser is the user profile with credential material stripped. It is
// the only user shape that crosses the service boundary.
type CleanUser struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Provider  Provider   `json:"provider"`
	Confirmed bool       `json:"confirmed"`
	Blocked   bool       `json:"blocked"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Clean strips password and token material from the user record.
func (u *User) Clean() *CleanUser {
	if u == nil {
		return nil
	}
	return &CleanUser{
		ID:        u.ID,
		Email:     u.Email,
		Provider:  u.Provider,
		Confirmed: u.Confirmed,
		Blocked:   u.Blocked,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HasRole reports whether the loaded role set contains name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r != nil && r.Name == name {
			return true
		}
	}
	return false
}

// HasAction reports whether any of the user's roles carries a permission
// matching action. Roles and their permissions must have been loaded.
func (u *User) HasAction(action string) bool {
	for _, r := range u.Roles {
		if r.HasAction(action) {
			return true
		}
	}
	return false
}

// Role is a named group of permissions
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string        `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string        `bun:"description" json:"description,omitempty"`
	Permissions   []*Permission `bun:"m2m:role_permissions,join:Role=Permission" json:"permissions,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasAction reports whether the loaded permission set contains action.
func (r *Role) HasAction(action string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p != nil && p.Action == action {
			return true
		}
	}
	return false
}

// Permission is the atomic unit of authorization: a unique dot-namespaced
// action string, e.g. "users.createUser". Rows are created lazily the
// first time a protected route declares the action.
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:perm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Action        string     `bun:"action,notnull,unique" json:"action,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ApiToken is a long-lived opaque credential owned by a user. When
// FullAccess is set the token bypasses per-action permission checks.
type ApiToken struct {
	bun.BaseModel `bun:"table:api_tokens,alias:apitok"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string        `bun:"name,notnull" json:"name,omitempty"`
	Token         string        `bun:"token,notnull,unique" json:"token,omitempty"`
	FullAccess    bool          `bun:"full_access" json:"full_access"`
	UserID        uuid.UUID     `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User         `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Permissions   []*Permission `bun:"m2m:api_token_permissions,join:ApiToken=Permission" json:"permissions,omitempty"`
	ExpiresAt     *time.Time    `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// HasAction reports whether the token's own permission set contains action.
func (t *ApiToken) HasAction(action string) bool {
	if t == nil {
		return false
	}
	for _, p := range t.Permissions {
		if p != nil && p.Action == action {
			return true
		}
	}
	return false
}

// PasswordResetToken is a single-use opaque credential for the password
// reset flow. A user holds at most one live token: minting a new one
// removes all prior tokens.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:pwdtok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token expiry has passed at now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Product is the sample owned resource gated by products.* actions.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Price         float64    `bun:"price,notnull" json:"price"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserToRole is the users<->roles join table
type UserToRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:usrrol"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid" json:"role_id"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id" json:"-"`
}

// RoleToPermission is the roles<->permissions join table
type RoleToPermission struct {
	bun.BaseModel `bun:"table:role_permissions,alias:rolperm"`
	RoleID        uuid.UUID   `bun:"role_id,pk,type:uuid" json:"role_id"`
	Role          *Role       `bun:"rel:belongs-to,join:role_id=id" json:"-"`
	PermissionID  uuid.UUID   `bun:"permission_id,pk,type:uuid" json:"permission_id"`
	Permission    *Permission `bun:"rel:belongs-to,join:permission_id=id" json:"-"`
}

// ApiTokenToPermission is the api_tokens<->permissions join table
type ApiTokenToPermission struct {
	bun.BaseModel `bun:"table:api_token_permissions,alias:apitokperm"`
	ApiTokenID    uuid.UUID   `bun:"api_token_id,pk,type:uuid" json:"api_token_id"`
	ApiToken      *ApiToken   `bun:"rel:belongs-to,join:api_token_id=id" json:"-"`
	PermissionID  uuid.UUID   `bun:"permission_id,pk,type:uuid" json:"permission_id"`
	Permission    *Permission `bun:"rel:belongs-to,join:permission_id=id" json:"-"`
}

// RegisterModels registers the m2m join tables with bun. Call before any
// relation query; both the server binary and tests go through here.
func RegisterModels(db *bun.DB) {
	db.RegisterModel(
		(*UserToRole)(nil),
		(*RoleToPermission)(nil),
		(*ApiTokenToPermission)(nil),
	)
}
