package session_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"residadmin/internal/sqldb"
	"residadmin/pkg/session"
)

// exerciseRepo runs the Repository contract against repo.
func exerciseRepo(t *testing.T, repo session.Repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx, testKey)
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, repo.Put(ctx, testKey, []byte(`{"accessToken":"one"}`)))
	v, err := repo.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"one"}`, string(v))

	require.NoError(t, repo.Put(ctx, testKey, []byte(`{"accessToken":"two"}`)))
	v, err = repo.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"two"}`, string(v))

	require.NoError(t, repo.Delete(ctx, testKey))
	require.NoError(t, repo.Delete(ctx, testKey))
	_, err = repo.Get(ctx, testKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryRepo(t *testing.T) {
	exerciseRepo(t, session.NewMemoryRepo())
}

func TestFileRepo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	repo := session.NewFileRepo(dir)
	exerciseRepo(t, repo)

	require.NoError(t, repo.Put(context.Background(), testKey, []byte(`{}`)))
	info, err := os.Stat(filepath.Join(dir, testKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

func TestFileRepo_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	repo := session.NewFileRepo(filepath.Join(dir, "inner"))

	require.NoError(t, repo.Put(context.Background(), "../escape", []byte(`x`)))
	_, err := os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileRepo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := session.NewFileRepo(t.TempDir()).Get(ctx, testKey)
	assert.ErrorIs(t, err, context.Canceled)
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqldb.Migrate(context.Background(), db, sqldb.DriverSQLite))
	return db
}

func TestSQLRepo_SQLite(t *testing.T) {
	db := setupTestDB(t)
	exerciseRepo(t, session.NewSQLiteRepo(db))
}

func TestSQLRepo_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := session.NewSQLiteRepo(db)
	_, err = repo.Get(context.Background(), testKey)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)

	store := session.NewStore(repo, testKey, quietLogger)
	_, ok := store.Load(context.Background())
	assert.False(t, ok)
}

func TestRedisRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	exerciseRepo(t, session.NewRedisRepo(rdb, 0))
}

func TestRedisRepo_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	repo := session.NewRedisRepo(rdb, time.Hour)
	require.NoError(t, repo.Put(context.Background(), testKey, []byte(`{"accessToken":"abc"}`)))
	assert.Equal(t, time.Hour, mr.TTL(testKey))

	mr.FastForward(2 * time.Hour)
	_, err := repo.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get existing", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.session_records", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: testKey},
			{Key: "value", Value: `{"accessToken":"abc"}`},
		}))

		v, err := repo.Get(context.Background(), testKey)
		assert.NoError(t, err)
		assert.Equal(t, `{"accessToken":"abc"}`, string(v))
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.session_records", mtest.FirstBatch))

		_, err := repo.Get(context.Background(), testKey)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	mt.Run("get command error", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "some error",
		}))

		_, err := repo.Get(context.Background(), testKey)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrNotFound)
	})

	mt.Run("put upserts", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: testKey}}}},
		))

		assert.NoError(t, repo.Put(context.Background(), testKey, []byte(`{"accessToken":"abc"}`)))
	})

	mt.Run("put write error", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		assert.Error(t, repo.Put(context.Background(), testKey, []byte(`{}`)))
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(t, repo.Delete(context.Background(), testKey))
	})

	mt.Run("store over mongo", func(mt *mtest.T) {
		repo := session.NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.session_records", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: testKey},
			{Key: "value", Value: `{"accessToken":"abc","roles":["ROLE_MODERATOR"]}`},
		}))

		store := session.NewStore(repo, testKey, quietLogger)
		sess, ok := store.Load(context.Background())
		assert.True(t, ok)
		assert.True(t, sess.Roles.Has("moderator"))
	})
}
