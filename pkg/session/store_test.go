package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*Store, *MemorySlot, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	token := NewMemorySlot()
	return New(token, NewFileSlot(path)), token, path
}

func alice() Profile {
	return Profile{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: "user"}
}

func TestRestore_Empty(t *testing.T) {
	s, _, _ := newFileStore(t)

	st, err := s.Restore()
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
}

func TestLoginSuccess_ThenRestoreInNewStore(t *testing.T) {
	s, token, path := newFileStore(t)
	require.NoError(t, s.LoginSuccess(alice(), "tok-1"))

	st := s.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "tok-1", st.Token)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@example.com", st.User.Email)

	// Same slots, fresh store: everything comes back.
	restored, err := New(token, NewFileSlot(path)).Restore()
	require.NoError(t, err)
	assert.True(t, restored.Authenticated)
	assert.Equal(t, "tok-1", restored.Token)
	assert.Equal(t, "Alice", restored.User.Name)
}

func TestRestore_StaleProfileWithoutToken(t *testing.T) {
	s, _, path := newFileStore(t)
	require.NoError(t, s.LoginSuccess(alice(), "tok-1"))

	// The token slot ends with the process; the profile file survives.
	st, err := New(NewMemorySlot(), NewFileSlot(path)).Restore()
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Empty(t, st.Token)
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)
}

func TestRestore_TokenWithoutProfile(t *testing.T) {
	token := NewMemorySlot()
	require.NoError(t, token.Save([]byte("tok-1")))

	st, err := New(token, NewMemorySlot()).Restore()
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Nil(t, st.User)
}

func TestRestore_CorruptProfileIsEvicted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	st, err := New(NewMemorySlot(), NewFileSlot(path)).Restore()
	require.NoError(t, err)
	assert.Nil(t, st.User)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestLogout_ClearsStateAndSlots(t *testing.T) {
	s, token, path := newFileStore(t)
	require.NoError(t, s.LoginSuccess(alice(), "tok-1"))

	require.NoError(t, s.Logout())
	assert.Equal(t, State{}, s.State())
	assert.Empty(t, s.Token())

	raw, err := token.Load()
	require.NoError(t, err)
	assert.Nil(t, raw)

	st, err := New(token, NewFileSlot(path)).Restore()
	require.NoError(t, err)
	assert.Equal(t, State{}, st)
}

func TestLoginSuccess_EmptyToken(t *testing.T) {
	s, _, _ := newFileStore(t)
	assert.ErrorIs(t, s.LoginSuccess(alice(), ""), ErrEmptyToken)
	assert.False(t, s.State().Authenticated)
}

type failingSlot struct {
	MemorySlot
	fail bool
}

func (f *failingSlot) Save(data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemorySlot.Save(data)
}

func TestLoginSuccess_SlotFailureKeepsPreviousState(t *testing.T) {
	token := NewMemorySlot()
	s := New(token, &failingSlot{fail: true})

	require.Error(t, s.LoginSuccess(alice(), "tok-1"))
	assert.False(t, s.State().Authenticated)

	raw, err := token.Load()
	require.NoError(t, err)
	assert.Nil(t, raw, "token slot must be rolled back")
}

func TestLoginSuccess_SlotFailureRestoresPreviousToken(t *testing.T) {
	token := NewMemorySlot()
	profile := &failingSlot{}
	s := New(token, profile)
	require.NoError(t, s.LoginSuccess(alice(), "tok-old"))

	profile.fail = true
	require.Error(t, s.LoginSuccess(Profile{ID: "u2", Email: "bob@example.com"}, "tok-new"))

	st := s.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "tok-old", st.Token)
	assert.Equal(t, "u1", st.User.ID)

	raw, err := token.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-old", string(raw), "token slot must match the in-memory session")
}

func TestState_ReturnsCopy(t *testing.T) {
	s, _, _ := newFileStore(t)
	p := alice()
	p.Addresses = []Address{{Street: "1 Main", City: "Town", ZipCode: "111"}}
	require.NoError(t, s.LoginSuccess(p, "tok-1"))

	st := s.State()
	st.User.Name = "Mallory"
	st.User.Addresses[0].City = "Elsewhere"

	again := s.State()
	assert.Equal(t, "Alice", again.User.Name)
	assert.Equal(t, "Town", again.User.Addresses[0].City)
}

func TestStore_ConsistentUnderConcurrency(t *testing.T) {
	s := New(NewMemorySlot(), NewMemorySlot())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.LoginSuccess(alice(), "tok")
		}()
		go func() {
			defer wg.Done()
			_ = s.Logout()
		}()
	}

	for i := 0; i < 100; i++ {
		st := s.State()
		assert.Equal(t, st.Token != "", st.Authenticated)
		assert.Equal(t, st.Authenticated, st.User != nil)
	}
	wg.Wait()
}
