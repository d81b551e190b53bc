package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	testUsername     = "testuser"
	testPassword     = "testpass"
	testPasswordHash = "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i" // testpass
	testAdmin        = &Admin{
		Username:     testUsername,
		PasswordHash: testPasswordHash,
	}
	testCredentials = Credentials{
		Username: testUsername,
		Password: testPassword,
	}
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestAuthService_Login(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(testAdmin, time.Hour, db)
	require.NotNil(t, authService)
	assert.Equal(t, time.Hour, authService.ttl)

	testToken := "test_token"
	authService.RandStringFunc = func(s int) (string, error) {
		assert.Equal(t, tokenLength, s)
		return testToken, nil
	}

	now := time.Now()
	mock.ExpectSet(sessionKey(testToken), now.Unix(), 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)
	token, err := authService.Login(context.Background(), testCredentials, now)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	token, err = authService.Login(context.Background(), Credentials{
		Username: testUsername,
		Password: "invalid_pass",
	}, now)
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Empty(t, token)

	token, err = authService.Login(context.Background(), Credentials{
		Username: "someone",
		Password: testPassword,
	}, now)
	assert.ErrorIs(t, err, ErrWrongUsername)
	assert.Empty(t, token)

	// redis down
	mock.ExpectSet(sessionKey(testToken), now.Unix(), 0).SetErr(errors.New("connection refused"))
	_, err = authService.Login(context.Background(), testCredentials, now)
	assert.ErrorContains(t, err, "store session")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Logout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	authService := NewAuthService(testAdmin, time.Hour, db)

	now := time.Now()
	mock.ExpectGet(sessionKey("t1")).SetVal(fmt.Sprintf("%d", now.Unix()))
	mock.ExpectSet(sessionKey("t1"), 0, 0).SetVal("OK")
	mock.ExpectSRem(tokensSetKey, "t1").SetVal(1)
	loggedOut, err := authService.Logout(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, loggedOut)

	// already logged out
	mock.ExpectGet(sessionKey("t1")).SetVal("0")
	mock.ExpectSet(sessionKey("t1"), 0, 0).SetVal("OK")
	mock.ExpectSRem(tokensSetKey, "t1").SetVal(0)
	loggedOut, err = authService.Logout(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, loggedOut)

	mock.ExpectGet(sessionKey("unknown")).RedisNil()
	loggedOut, err = authService.Logout(context.Background(), "unknown")
	assert.ErrorIs(t, err, redis.Nil)
	assert.False(t, loggedOut)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	authService := NewAuthService(testAdmin, ttl, rdb)

	t1, t2, t3 := "token1", "token2", "token3"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2, t3})
	mock.ExpectGet(sessionKey(t1)).SetVal(fmt.Sprintf("%d", then.Unix()))
	mock.ExpectGet(sessionKey(t2)).SetVal(fmt.Sprintf("%d", now.Unix()))
	mock.ExpectGet(sessionKey(t3)).SetVal("garbage")
	// only t1 is too old
	mock.ExpectDel(sessionKey(t1)).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)

	authService.ScanAndClean(context.Background(), now)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectSMembers(tokensSetKey).SetVal(nil)
	authService.ScanAndClean(context.Background(), now)
	assert.NoError(t, mock.ExpectationsWereMet())
}
