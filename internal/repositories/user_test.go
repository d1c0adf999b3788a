package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupUserPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), db))

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func newUser(username, email string) *models.UserDB {
	return &models.UserDB{
		FirstName:    "First",
		LastName:     "Last",
		Username:     username,
		Email:        email,
		PasswordHash: "hash-" + username,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	assert.NoError(t, Migrate(context.Background(), db))
}

func TestUserWriteRepository_Create(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db, nil)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("alice", "a@x.com"))
	require.NoError(t, err)
	assert.NotZero(t, created.UserID)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "hash-alice", created.PasswordHash)
	assert.False(t, created.IsDeleted)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := repo.Create(ctx, newUser("alice", "other@x.com"))
		assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.Create(ctx, newUser("bob", "a@x.com"))
		assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	})

	t.Run("UsernameIsCaseSensitive", func(t *testing.T) {
		_, err := repo.Create(ctx, newUser("Alice", "alice2@x.com"))
		assert.NoError(t, err)
	})
}

func TestUserReadRepository_GetByID(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	created, err := writeRepo.Create(ctx, newUser("charlie", "charlie@example.com"))
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		user, err := readRepo.GetByID(ctx, created.UserID)
		assert.NoError(t, err)
		assert.Equal(t, "charlie", user.Username)
	})

	t.Run("NotFound", func(t *testing.T) {
		user, err := readRepo.GetByID(ctx, created.UserID+1000)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("SoftDeleted", func(t *testing.T) {
		require.NoError(t, writeRepo.SoftDelete(ctx, created.UserID))
		user, err := readRepo.GetByID(ctx, created.UserID)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.Nil(t, user)
	})
}

func TestUserReadRepository_GetByUsername(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	_, err := writeRepo.Create(ctx, newUser("dave", "dave@example.com"))
	require.NoError(t, err)

	user, err := readRepo.GetByUsername(ctx, "dave")
	assert.NoError(t, err)
	assert.Equal(t, "dave@example.com", user.Email)

	_, err = readRepo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestUserReadRepository_List(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	empty, err := readRepo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var ids []int64
	for _, name := range []string{"u1", "u2", "u3"} {
		u, err := writeRepo.Create(ctx, newUser(name, name+"@example.com"))
		require.NoError(t, err)
		ids = append(ids, u.UserID)
	}

	require.NoError(t, writeRepo.SoftDelete(ctx, ids[1]))

	users, err := readRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ids[0], users[0].UserID)
	assert.Equal(t, ids[2], users[1].UserID)
}

func TestUserWriteRepository_Update(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	ctx := context.Background()

	alice, err := writeRepo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	_, err = writeRepo.Create(ctx, newUser("bob", "bob@example.com"))
	require.NoError(t, err)

	t.Run("KeepOwnUsernameAndHash", func(t *testing.T) {
		changes := newUser("alice", "alice@example.com")
		changes.FirstName = "Alicia"
		changes.PasswordHash = ""

		updated, err := writeRepo.Update(ctx, alice.UserID, changes)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", updated.FirstName)
		assert.Equal(t, "hash-alice", updated.PasswordHash)
		assert.True(t, updated.UpdatedAt.After(alice.UpdatedAt) || updated.UpdatedAt.Equal(alice.UpdatedAt))
		assert.Equal(t, alice.CreatedAt, updated.CreatedAt)
	})

	t.Run("NewHash", func(t *testing.T) {
		changes := newUser("alice", "alice@example.com")
		changes.PasswordHash = "rotated"

		updated, err := writeRepo.Update(ctx, alice.UserID, changes)
		require.NoError(t, err)
		assert.Equal(t, "rotated", updated.PasswordHash)
	})

	t.Run("ConflictWithOtherUser", func(t *testing.T) {
		_, err := writeRepo.Update(ctx, alice.UserID, newUser("bob", "alice@example.com"))
		assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := writeRepo.Update(ctx, alice.UserID+1000, newUser("zed", "zed@example.com"))
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestUserWriteRepository_SoftDelete(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	ctx := context.Background()

	user, err := writeRepo.Create(ctx, newUser("erin", "erin@example.com"))
	require.NoError(t, err)

	assert.NoError(t, writeRepo.SoftDelete(ctx, user.UserID))
	assert.ErrorIs(t, writeRepo.SoftDelete(ctx, user.UserID), models.ErrUserNotFound)

	var isDeleted bool
	require.NoError(t, db.Get(&isDeleted, "SELECT is_deleted FROM users WHERE user_id = $1", user.UserID))
	assert.True(t, isDeleted)

	t.Run("NamesFreedAfterDelete", func(t *testing.T) {
		again, err := writeRepo.Create(ctx, newUser("erin", "erin@example.com"))
		require.NoError(t, err)
		assert.NotEqual(t, user.UserID, again.UserID)
	})
}

func TestUserWriteRepository_UsesTransactionFromContext(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	tx, err := db.Beginx()
	require.NoError(t, err)

	writeRepo := NewUserWriteRepository(db, func(ctx context.Context) *sqlx.Tx { return tx })
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	created, err := writeRepo.Create(ctx, newUser("frank", "frank@example.com"))
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = readRepo.GetByID(ctx, created.UserID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
