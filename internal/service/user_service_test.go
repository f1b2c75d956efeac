package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
)

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

func (m *memoryUserRepo) List(ctx context.Context) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		results = append(results, user)
	}
	return results, nil
}

func (m *memoryUserRepo) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	results := make([]models.User, 0)
	for _, user := range m.users {
		if user.Role == role {
			results = append(results, user)
		}
	}
	return results, nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[m.nextID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *memoryUserRepo) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	for _, user := range m.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func testUserService(t *testing.T) (UserService, *memoryUserRepo) {
	t.Helper()

	repo := newMemoryUserRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	return NewUserService(repo, validate, nil, logger), repo
}

func TestUserServiceCreateNormalizesRoleAndEmail(t *testing.T) {
	svc, _ := testUserService(t)

	user, err := svc.Create(context.Background(), dto.UserCreateRequest{
		Name:     "Alice Chen",
		Email:    "Alice@Example.EDU",
		Password: "secret123",
		Role:     "student",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.edu", user.Email)
	require.Equal(t, "STUDENT", user.Role)
	require.True(t, user.Enabled)
}

func TestUserServiceCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _ := testUserService(t)

	_, err := svc.Create(context.Background(), dto.UserCreateRequest{
		Name:     "Alice Chen",
		Email:    "alice@example.edu",
		Password: "secret123",
		Role:     "STUDENT",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.UserCreateRequest{
		Name:     "Alice B",
		Email:    "ALICE@example.edu",
		Password: "secret456",
		Role:     "FACULTY",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := testUserService(t)

	_, err := svc.Create(context.Background(), dto.UserCreateRequest{
		Name:     "Bob",
		Email:    "bob@example.edu",
		Password: "secret123",
		Role:     "SUPERUSER",
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserServiceResolveStudent(t *testing.T) {
	svc, repo := testUserService(t)

	student := models.User{Name: "Carol", Email: "carol@example.edu", Role: models.RoleStudent, Enabled: true}
	require.NoError(t, repo.Create(context.Background(), &student))
	faculty := models.User{Name: "Dan", Email: "dan@example.edu", Role: models.RoleFaculty, Enabled: true}
	require.NoError(t, repo.Create(context.Background(), &faculty))

	resolved, err := svc.ResolveStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, resolved.ID)

	_, err = svc.ResolveStudent(context.Background(), faculty.ID)
	require.ErrorIs(t, err, ErrNotStudent)

	_, err = svc.ResolveStudent(context.Background(), 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceUpdateAndDelete(t *testing.T) {
	svc, repo := testUserService(t)

	user := models.User{Name: "Eve", Email: "eve@example.edu", Role: models.RoleStudent, Enabled: true}
	require.NoError(t, repo.Create(context.Background(), &user))

	actor := ActivityActor{ID: 1, Role: models.RoleAdmin}
	updated, err := svc.Update(context.Background(), user.ID, dto.UserUpdateRequest{
		Name:    "Eve Park",
		Email:   "eve.park@example.edu",
		Role:    "FACULTY",
		Enabled: false,
	}, actor)
	require.NoError(t, err)
	require.Equal(t, "FACULTY", updated.Role)
	require.False(t, updated.Enabled)

	require.NoError(t, svc.Delete(context.Background(), user.ID, actor))
	require.ErrorIs(t, svc.Delete(context.Background(), user.ID, actor), ErrUserNotFound)
}
