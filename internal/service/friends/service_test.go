package friends_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/db"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/service/friends"
)

// setupService spins up an in-memory SQLite DB, applies migrations and
// seeds four users with no relationships between them.
func setupService(t *testing.T) *friends.Service {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	users := []db.User{
		{ID: 1, Name: "alice", Email: "alice@test.com", PasswordHash: "x"},
		{ID: 2, Name: "bruno", Email: "bruno@test.com", PasswordHash: "x"},
		{ID: 3, Name: "carla", Email: "carla@test.com", PasswordHash: "x"},
		{ID: 4, Name: "dorian", Email: "dorian@test.com", PasswordHash: "x"},
	}
	require.NoError(t, gdb.Create(&users).Error)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests
	return friends.NewService(app.New(gdb, nil, logger))
}

func requireAPIError(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *svcErr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status)
}

func TestSendRequestAndAccept(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	require.NoError(t, svc.SendRequest(ctx, 1, 2))

	// bruno sees alice's pending request
	requests, err := svc.ListRequests(ctx, 2)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, uint64(1), requests[0].RequesterID)
	assert.Equal(t, "alice", requests[0].Name)

	require.NoError(t, svc.Respond(ctx, 2, 1, "ACCEPTED"))

	// both sides now list each other, the request queue is empty
	for caller, friendName := range map[uint64]string{1: "bruno", 2: "alice"} {
		list, err := svc.ListFriends(ctx, caller)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, friendName, list[0].Name)
	}

	requests, err = svc.ListRequests(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestSendRequestValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	// to yourself
	requireAPIError(t, svc.SendRequest(ctx, 1, 1), 400)

	// to an unknown user
	requireAPIError(t, svc.SendRequest(ctx, 1, 99), 404)

	// duplicate in either direction
	require.NoError(t, svc.SendRequest(ctx, 1, 2))
	requireAPIError(t, svc.SendRequest(ctx, 1, 2), 409)
	requireAPIError(t, svc.SendRequest(ctx, 2, 1), 409)

	// still a conflict once accepted
	require.NoError(t, svc.Respond(ctx, 2, 1, "ACCEPTED"))
	requireAPIError(t, svc.SendRequest(ctx, 1, 2), 409)
}

func TestRespondDeclineDeletesRequest(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	require.NoError(t, svc.SendRequest(ctx, 1, 2))
	require.NoError(t, svc.Respond(ctx, 2, 1, "DECLINED"))

	requests, err := svc.ListRequests(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, requests)

	list, err := svc.ListFriends(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)

	// the row is gone, so alice may try again
	require.NoError(t, svc.SendRequest(ctx, 1, 2))
}

func TestRespondValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	requireAPIError(t, svc.Respond(ctx, 2, 1, "MAYBE"), 400)

	// nothing pending from carla
	requireAPIError(t, svc.Respond(ctx, 2, 3, "ACCEPTED"), 404)

	// an accepted friendship is no longer a pending request
	require.NoError(t, svc.SendRequest(ctx, 1, 2))
	require.NoError(t, svc.Respond(ctx, 2, 1, "ACCEPTED"))
	requireAPIError(t, svc.Respond(ctx, 2, 1, "ACCEPTED"), 404)
}

func TestUnfriend(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	require.NoError(t, svc.SendRequest(ctx, 1, 2))
	require.NoError(t, svc.Respond(ctx, 2, 1, "ACCEPTED"))

	// works from the addressee side even though alice created the row
	require.NoError(t, svc.Unfriend(ctx, 2, 1))

	for _, caller := range []uint64{1, 2} {
		list, err := svc.ListFriends(ctx, caller)
		require.NoError(t, err)
		assert.Empty(t, list)
	}

	requireAPIError(t, svc.Unfriend(ctx, 1, 0), 400)
}

func TestSearchExcludesRelatedUsers(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Search(ctx, 1, "  ")
	requireAPIError(t, err, 400)

	// "o" matches bruno and dorian, never alice herself
	results, err := svc.Search(ctx, 1, "o")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// once related (even only pending), bruno disappears from alice's results
	require.NoError(t, svc.SendRequest(ctx, 1, 2))
	results, err = svc.Search(ctx, 1, "o")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "dorian", results[0].Name)
}
