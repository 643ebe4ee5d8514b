package session

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := NewPostgresStore(mock, time.Hour)
	s.now = func() time.Time { return testNow }
	return s, mock
}

func TestPostgresStore_Get(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name  string
		token string

		prepareFn func(t *testing.T, mock pgxmock.PgxPoolIface)

		expectSameToken bool
		expectedUser    string
		expectedErr     error
	}

	created := testNow.Add(-10 * time.Minute)

	tests := []testCase{
		{
			name:  "known token slides expiry",
			token: "tok-1",
			prepareFn: func(t *testing.T, mock pgxmock.PgxPoolIface) {
				t.Helper()
				mock.ExpectQuery("SELECT .* FROM sessions WHERE token").
					WithArgs("tok-1", testNow).
					WillReturnRows(pgxmock.NewRows([]string{"sensei_user", "created_at"}).AddRow("jdoe", created))
				mock.ExpectExec("UPDATE sessions SET expires_at").
					WithArgs(testNow.Add(time.Hour), "tok-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			expectSameToken: true,
			expectedUser:    "jdoe",
		},
		{
			name:  "unknown token starts a new session",
			token: "forged",
			prepareFn: func(t *testing.T, mock pgxmock.PgxPoolIface) {
				t.Helper()
				mock.ExpectQuery("SELECT .* FROM sessions WHERE token").
					WithArgs("forged", testNow).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectExec("INSERT INTO sessions").
					WithArgs(pgxmock.AnyArg(), testNow, testNow.Add(time.Hour)).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:  "empty token skips lookup",
			token: "",
			prepareFn: func(t *testing.T, mock pgxmock.PgxPoolIface) {
				t.Helper()
				mock.ExpectExec("INSERT INTO sessions").
					WithArgs(pgxmock.AnyArg(), testNow, testNow.Add(time.Hour)).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:  "lookup failure",
			token: "tok-1",
			prepareFn: func(t *testing.T, mock pgxmock.PgxPoolIface) {
				t.Helper()
				mock.ExpectQuery("SELECT .* FROM sessions WHERE token").
					WithArgs("tok-1", testNow).
					WillReturnError(assert.AnError)
			},
			expectedErr: assert.AnError,
		},
		{
			name:  "insert failure",
			token: "",
			prepareFn: func(t *testing.T, mock pgxmock.PgxPoolIface) {
				t.Helper()
				mock.ExpectExec("INSERT INTO sessions").
					WithArgs(pgxmock.AnyArg(), testNow, testNow.Add(time.Hour)).
					WillReturnError(assert.AnError)
			},
			expectedErr: assert.AnError,
		},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, mock := newTestPostgresStore(t)
			tt.prepareFn(t, mock)

			sess, err := s.Get(t.Context(), tt.token)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, sess)
			} else {
				require.NoError(t, err)
				if tt.expectSameToken {
					assert.Equal(t, tt.token, sess.Token)
				} else {
					assert.NotEmpty(t, sess.Token)
					assert.NotEqual(t, tt.token, sess.Token)
				}
				assert.Equal(t, tt.expectedUser, sess.SenseiUser)
				assert.Equal(t, testNow.Add(time.Hour), sess.ExpiresAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_SetSenseiUser(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name        string
		affected    int64
		execErr     error
		expectedErr error
	}

	tests := []testCase{
		{name: "live session", affected: 1},
		{name: "missing session", affected: 0, expectedErr: ErrUnknownSession},
		{name: "database error", execErr: assert.AnError, expectedErr: assert.AnError},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, mock := newTestPostgresStore(t)
			exp := mock.ExpectExec("UPDATE sessions SET sensei_user").WithArgs("jdoe", "tok-1", testNow)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			}

			err := s.SetSenseiUser(t.Context(), "tok-1", "jdoe")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_Clear(t *testing.T) {
	t.Parallel()

	s, mock := newTestPostgresStore(t)
	mock.ExpectExec("DELETE FROM sessions WHERE token").
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, s.Clear(t.Context(), "tok-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Sweep(t *testing.T) {
	t.Parallel()

	s, mock := newTestPostgresStore(t)
	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WithArgs(testNow).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	removed, err := s.Sweep(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 4, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
