package rbac_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	rbac "github.com/goliatone/go-rbac"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "super-secret-pw"
)

type testEnv struct {
	db   *bun.DB
	repo rbac.RepositoryManager
	cfg  *rbac.Config
	svcs *rbac.Services
	app  *fiber.App
}

// newTestEnv stands up the full stack against a private in-memory
// database: schema, routes, services and seed data.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	rbac.RegisterModels(db)

	ctx := context.Background()
	models := []any{
		(*rbac.User)(nil),
		(*rbac.Role)(nil),
		(*rbac.Permission)(nil),
		(*rbac.ApiToken)(nil),
		(*rbac.PasswordResetToken)(nil),
		(*rbac.Product)(nil),
		(*rbac.UserToRole)(nil),
		(*rbac.RoleToPermission)(nil),
		(*rbac.ApiTokenToPermission)(nil),
	}
	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	cfg := &rbac.Config{
		AccessTokenSecret:  "test-access-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret",
		RefreshTokenTTL:    720 * time.Hour,
		ResetTokenTTL:      time.Hour,
		SuperAdminEmail:    testAdminEmail,
		SuperAdminPassword: testAdminPassword,
	}

	repo := rbac.NewRepositoryManager(db)
	svcs := rbac.NewServices(repo, cfg, nil)

	app := rbac.NewApp(nil)
	rbac.RegisterRoutes(app, svcs)

	require.NoError(t, rbac.Seed(ctx, repo, cfg, nil))

	return &testEnv{
		db:   db,
		repo: repo,
		cfg:  cfg,
		svcs: svcs,
		app:  app,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeJSON(t *testing.T, res *http.Response, target any) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(target))
}

// createUser registers a user directly through the service layer.
func (e *testEnv) createUser(t *testing.T, email, password string, roles ...uuid.UUID) *rbac.CleanUser {
	t.Helper()

	user, err := e.svcs.Users.Create(context.Background(), rbac.CreateUserInput{
		Email:    email,
		Password: password,
		Roles:    roles,
	})
	require.NoError(t, err)
	return user
}

// login returns a signed access token for the account.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	res, err := e.svcs.Auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return res.AccessToken.Token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	return e.login(t, testAdminEmail, testAdminPassword)
}

// grantActions creates a role carrying the named registered actions and
// attaches it to the user.
func (e *testEnv) grantActions(t *testing.T, userID uuid.UUID, roleName string, actions ...string) *rbac.Role {
	t.Helper()
	ctx := context.Background()

	permissionIDs := make([]uuid.UUID, 0, len(actions))
	for _, action := range actions {
		permission, err := e.repo.Permissions().GetByAction(ctx, action)
		require.NoError(t, err, "action %s must be registered", action)
		permissionIDs = append(permissionIDs, permission.ID)
	}

	role, err := e.svcs.Roles.Create(ctx, rbac.CreateRoleInput{
		Name:        roleName,
		Permissions: permissionIDs,
	})
	require.NoError(t, err)

	require.NoError(t, e.repo.Users().ConnectRole(ctx, userID, role.ID))
	return role
}
