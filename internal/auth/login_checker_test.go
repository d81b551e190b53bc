package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_IsLogged(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	now := time.Now()
	loginChecker := NewLoginChecker(time.Hour, db)
	loginChecker.now = func() time.Time { return now }

	ctx := context.Background()

	mock.ExpectGet(sessionKey("invalid token")).RedisNil()
	isLogged, err := loginChecker.IsLogged(ctx, "invalid token")
	require.NoError(t, err)
	assert.False(t, isLogged)

	testToken := "test-token"
	mock.ExpectGet(sessionKey(testToken)).SetVal(fmt.Sprintf("%d", now.Unix()))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.True(t, isLogged)

	mock.ExpectGet(sessionKey(testToken)).SetVal(fmt.Sprintf("%d", now.Add(-2*time.Hour).Unix()))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, isLogged)

	// logged out
	mock.ExpectGet(sessionKey(testToken)).SetVal("0")
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, isLogged)

	mock.ExpectGet(sessionKey(testToken)).SetErr(errors.New("connection refused"))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	assert.Error(t, err)
	assert.False(t, isLogged)

	assert.NoError(t, mock.ExpectationsWereMet())
}
