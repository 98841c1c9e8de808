package admins

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/auth"
)

type fakeRepo struct {
	byEmail     map[string]*Admin
	byID        map[string]*Admin
	lastLoginID string
	newHash     string
	createErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*Admin{}, byID: map[string]*Admin{}}
}

func (f *fakeRepo) add(admin *Admin) {
	f.byEmail[admin.Email] = admin
	f.byID[admin.ID] = admin
}

func (f *fakeRepo) Create(ctx context.Context, admin *Admin) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[admin.Email]; ok {
		return ErrEmailTaken
	}
	f.add(admin)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Admin, error) {
	if admin, ok := f.byID[id]; ok {
		return admin, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	if admin, ok := f.byEmail[email]; ok {
		return admin, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) UpdateLastLogin(ctx context.Context, id string) error {
	f.lastLoginID = id
	return nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	f.newHash = hash
	return nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	tokens, err := auth.NewManager("test-secret", 7*24*time.Hour, "test")
	require.NoError(t, err)
	return NewService(repo, tokens, zerolog.Nop())
}

func seededAdmin(t *testing.T) *Admin {
	t.Helper()
	hash, err := auth.HashPassword("Admin123!")
	require.NoError(t, err)
	return &Admin{
		ID:           "01JDWX5A3V9T2K4M6P8R0S1T2V",
		Email:        "admin@x.com",
		PasswordHash: hash,
		Name:         "Root",
		Role:         RoleAdmin,
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := newFakeRepo()
	repo.add(seededAdmin(t))
	service := newTestService(t, repo)

	admin, token, err := service.Login(context.Background(), "Admin@X.com", "Admin123!")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "01JDWX5A3V9T2K4M6P8R0S1T2V", admin.ID)
	assert.Equal(t, admin.ID, repo.lastLoginID)

	claims, err := service.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.Subject)
	assert.Equal(t, admin.Email, claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeRepo()
	repo.add(seededAdmin(t))
	service := newTestService(t, repo)

	_, _, err := service.Login(context.Background(), "admin@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service := newTestService(t, newFakeRepo())

	_, _, err := service.Login(context.Background(), "nobody@x.com", "Admin123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	repo.add(seededAdmin(t))
	service := newTestService(t, repo)

	_, err := service.Register(context.Background(), RegisterParams{
		Email:    "ADMIN@x.com",
		Password: "Another123!",
		Name:     "Second",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, repo.byEmail, 1)
}

func TestRegisterDefaultsRoleAndNormalizesEmail(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(t, repo)

	admin, err := service.Register(context.Background(), RegisterParams{
		Email:    " New@BuilderCircle.dev ",
		Password: "Password1!",
		Name:     "<b>New</b> Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@buildercircle.dev", admin.Email)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.Equal(t, "New Admin", admin.Name)
	assert.True(t, auth.CheckPassword("Password1!", admin.PasswordHash))
}

func TestRegisterRejectsBadInput(t *testing.T) {
	service := newTestService(t, newFakeRepo())

	_, err := service.Register(context.Background(), RegisterParams{Email: "not-an-email", Password: "Password1!"})
	assert.Error(t, err)

	_, err = service.Register(context.Background(), RegisterParams{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	_, err = service.Register(context.Background(), RegisterParams{Email: "a@b.com", Password: "Password1!", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepo()
	admin := seededAdmin(t)
	repo.add(admin)
	service := newTestService(t, repo)

	err := service.ChangePassword(context.Background(), admin.ID, "wrong", "NewPass123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, repo.newHash)

	err = service.ChangePassword(context.Background(), admin.ID, "Admin123!", "NewPass123!")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("NewPass123!", repo.newHash))
}

func TestRoleAllowed(t *testing.T) {
	assert.True(t, RoleAllowed(RoleAdmin, []string{RoleAdmin, RoleSuperadmin}))
	assert.True(t, RoleAllowed(RoleSuperadmin, []string{RoleSuperadmin}))
	assert.False(t, RoleAllowed(RoleAdmin, []string{RoleSuperadmin}))
	assert.False(t, RoleAllowed("", []string{RoleAdmin}))
}
