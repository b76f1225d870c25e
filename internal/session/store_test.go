package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/account"
	"github.com/stretchr/testify/require"
)

func testSession() Session {
	return Session{
		Tokens:  account.TokenPair{Access: "access-1", Refresh: "refresh-1"},
		Profile: account.Profile{Email: "ada@example.com", FirstName: "Ada"},
	}
}

func TestStore_RoundTripAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")

	first := NewStore(path)
	require.NoError(t, first.Load())
	require.False(t, first.IsAuthenticated())
	require.NoError(t, first.Set(testSession()))

	second := NewStore(path)
	require.NoError(t, second.Load())
	sess, ok := second.Current()
	require.True(t, ok)
	require.Equal(t, "access-1", sess.Tokens.Access)
	require.Equal(t, "Ada", sess.Profile.FirstName)
	require.Equal(t, "access-1", second.AccessToken())
}

func TestStore_CorruptFileMeansLoggedOut(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path)
	require.NoError(t, store.Load())
	require.False(t, store.IsAuthenticated())
	require.Empty(t, store.AccessToken())
}

func TestStore_ClearRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	require.NoError(t, store.Set(testSession()))
	require.NoError(t, store.Clear())
	require.False(t, store.IsAuthenticated())

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing an already-cleared session stays a no-op.
	require.NoError(t, store.Clear())
}

func TestStore_UpdateProfileKeepsTokens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	require.NoError(t, store.Set(testSession()))

	require.NoError(t, store.UpdateProfile(account.Profile{Email: "ada@example.com", FirstName: "Countess"}))
	sess, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, "Countess", sess.Profile.FirstName)
	require.Equal(t, "access-1", sess.Tokens.Access)
}

func TestStore_SetRejectsEmptyAccessToken(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.Error(t, store.Set(Session{}))
}

func TestStore_SetCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	store := NewStore(path)
	require.NoError(t, store.Set(testSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
}
