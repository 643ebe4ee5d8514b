package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemoryStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemoryStore(ttl)
	m.now = clock.Now
	return m, clock
}

func TestMemoryStore_GetCreatesFreshSession(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name  string
		token string
	}

	tests := []testCase{
		{name: "empty token", token: ""},
		{name: "unknown token", token: "forged-by-client"},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newTestMemoryStore(time.Hour)
			sess, err := m.Get(t.Context(), tt.token)
			require.NoError(t, err)

			assert.NotEmpty(t, sess.Token)
			assert.NotEqual(t, tt.token, sess.Token)
			assert.False(t, sess.Authenticated())
			assert.Equal(t, 1, m.Len())
		})
	}
}

func TestMemoryStore_LoginRoundTrip(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemoryStore(time.Hour)
	sess, err := m.Get(t.Context(), "")
	require.NoError(t, err)

	require.NoError(t, m.SetSenseiUser(t.Context(), sess.Token, "jdoe"))

	again, err := m.Get(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, again.Token)
	assert.Equal(t, "jdoe", again.SenseiUser)
}

func TestMemoryStore_ClearDestroysSession(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemoryStore(time.Hour)
	sess, err := m.Get(t.Context(), "")
	require.NoError(t, err)
	require.NoError(t, m.SetSenseiUser(t.Context(), sess.Token, "jdoe"))

	require.NoError(t, m.Clear(t.Context(), sess.Token))
	// clearing twice is harmless
	require.NoError(t, m.Clear(t.Context(), sess.Token))

	after, err := m.Get(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, after.Token)
	assert.False(t, after.Authenticated())

	assert.ErrorIs(t, m.SetSenseiUser(t.Context(), sess.Token, "jdoe"), ErrUnknownSession)
}

func TestMemoryStore_SlidingExpiry(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemoryStore(time.Hour)
	sess, err := m.Get(t.Context(), "")
	require.NoError(t, err)
	require.NoError(t, m.SetSenseiUser(t.Context(), sess.Token, "jdoe"))

	// each visit inside the window pushes expiry forward
	clock.Advance(50 * time.Minute)
	kept, err := m.Get(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, kept.Token)

	clock.Advance(50 * time.Minute)
	kept, err = m.Get(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", kept.SenseiUser)

	clock.Advance(time.Hour)
	expired, err := m.Get(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, expired.Token)
	assert.False(t, expired.Authenticated())
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemoryStore(time.Hour)
	for i := 0; i < 3; i++ {
		_, err := m.Get(t.Context(), "")
		require.NoError(t, err)
	}

	clock.Advance(30 * time.Minute)
	fresh, err := m.Get(t.Context(), "")
	require.NoError(t, err)

	clock.Advance(45 * time.Minute)
	removed, err := m.Sweep(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, m.Len())

	still, err := m.Get(t.Context(), fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, fresh.Token, still.Token)
}
