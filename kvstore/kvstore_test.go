package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
	"github.com/jrsteele09/web-analyzer-client/kvstore"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s kvstore.Storage) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", v)

	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, _, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	// Removing twice is fine.
	require.NoError(t, s.Remove(ctx, "k"))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, kvstore.NewMemory())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := kvstore.NewFile(path)
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFileStoragePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first, err := kvstore.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "a", "1"))
	require.NoError(t, first.Close())

	second, err := kvstore.NewFile(path)
	require.NoError(t, err)
	v, found, err := second.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", v)
}

func TestFileStorageRecoversFromCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := kvstore.NewFile(path)
	require.NoError(t, err)

	_, _, err = s.Get(ctx, "a")
	require.Error(t, err)

	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Set(ctx, "a", "1"))
	v, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", v)
}

func TestFileStorageClosed(t *testing.T) {
	s, err := kvstore.NewFile(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	err = s.Set(context.Background(), "a", "1")
	require.True(t, apperrors.Is(err, apperrors.ErrStorageClosed))
}

func TestRedisStorage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := kvstore.New(context.Background(), kvstore.Config{
		Driver: kvstore.DriverRedis,
		Redis:  &kvstore.RedisConfig{Addr: mr.Addr(), Prefix: "test:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStorage(t, s)

	require.NoError(t, s.Set(context.Background(), "prefixed", "x"))
	require.True(t, mr.Exists("test:prefixed"))
}

func TestRedisStorageUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = kvstore.NewRedis(context.Background(), kvstore.RedisConfig{Addr: addr})
	require.Error(t, err)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := kvstore.New(context.Background(), kvstore.Config{
		Driver: kvstore.DriverSQLite,
		SQLite: &kvstore.SQLiteConfig{DSN: filepath.Join(t.TempDir(), "kv.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStorage(t, s)
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	s, err := kvstore.New(ctx, kvstore.Config{Driver: kvstore.DriverMemory})
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = kvstore.New(ctx, kvstore.Config{Driver: "etcd"})
	require.True(t, apperrors.Is(err, apperrors.ErrUnsupportedStorage))

	_, err = kvstore.New(ctx, kvstore.Config{Driver: kvstore.DriverRedis})
	require.True(t, apperrors.Is(err, apperrors.ErrMissingConfig))

	_, err = kvstore.New(ctx, kvstore.Config{Driver: kvstore.DriverSQLite})
	require.True(t, apperrors.Is(err, apperrors.ErrMissingConfig))

	_, err = kvstore.New(ctx, kvstore.Config{Driver: kvstore.DriverFile})
	require.True(t, apperrors.Is(err, apperrors.ErrMissingConfig))

	_, err = kvstore.NewRedis(ctx, kvstore.RedisConfig{})
	require.True(t, apperrors.Is(err, apperrors.ErrMissingConfig))

	_, err = kvstore.NewSQLite(ctx, kvstore.SQLiteConfig{})
	require.True(t, apperrors.Is(err, apperrors.ErrMissingConfig))

	_, err = kvstore.New(ctx, kvstore.Config{Driver: kvstore.DriverFile})
	require.Error(t, err)
}
