package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

// newSession creates a VOTING session with the given participants.
func newSession(t *testing.T, repo *repository.MatchRepository, creator uint64, participants []uint64) uint64 {
	t.Helper()
	session, err := repo.CreateSession(context.Background(), creator, participants)
	require.NoError(t, err)
	return session.ID
}

func TestCreateSessionInsertsAllParticipants(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2})

	ids, err := repo.ParticipantIDs(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)

	session, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.SessionVoting, session.Status)
	assert.Equal(t, uint64(1), session.CreatorID)
}

func TestFindVotingSessionExactSet(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2})

	// exact participant set → found
	found, err := repo.FindVotingSession(ctx, []uint64{1, 2})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)

	// different pair → not found
	found, err = repo.FindVotingSession(ctx, []uint64{1, 3})
	require.NoError(t, err)
	assert.Nil(t, found)

	// superset pair of a 3-way session is not an exact match
	newSession(t, repo, 1, []uint64{1, 2, 3})
	found, err = repo.FindVotingSession(ctx, []uint64{1, 2})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
}

func TestFindVotingSessionSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2})

	// both accept the same candidate → session completes
	_, err := repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)
	result, err := repo.CastVote(ctx, id, 2, 10, db.VoteAccepted)
	require.NoError(t, err)
	require.NotNil(t, result)

	found, err := repo.FindVotingSession(ctx, []uint64{1, 2})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCastVoteUpsertOverride(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2})

	// ACCEPTED → DECLINED → ACCEPTED leaves exactly one row, latest action
	_, err := repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)
	_, err = repo.CastVote(ctx, id, 1, 10, db.VoteDeclined)
	require.NoError(t, err)
	_, err = repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)

	var votes []db.MatchVote
	require.NoError(t, dbase.Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, db.VoteAccepted, votes[0].Action)
}

func TestCastVoteExactlyOnceCompletion(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2})

	// first accept does not complete
	result, err := repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)
	assert.Nil(t, result)

	// second accept completes and returns the result
	result, err = repo.CastVote(ctx, id, 2, 10, db.VoteAccepted)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint64(10), result.InterestID)

	// exactly one result row, session terminal
	var results []db.MatchResult
	require.NoError(t, dbase.Find(&results).Error)
	assert.Len(t, results, 1)

	session, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.SessionCompleted, session.Status)

	// any further vote is rejected, no second result appears
	_, err = repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	assert.True(t, errors.Is(err, repository.ErrSessionClosed))

	require.NoError(t, dbase.Find(&results).Error)
	assert.Len(t, results, 1)
}

func TestCastVoteSingleParticipantNeverMatches(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1})

	result, err := repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)
	assert.Nil(t, result)

	session, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.SessionVoting, session.Status)
}

func TestCastVoteDeclineNeverMatches(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2})

	_, err := repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)

	// a decline performs no consensus check at all
	result, err := repo.CastVote(ctx, id, 2, 10, db.VoteDeclined)
	require.NoError(t, err)
	assert.Nil(t, result)

	session, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.SessionVoting, session.Status)

	// flipping the decline to accept completes it
	result, err = repo.CastVote(ctx, id, 2, 10, db.VoteAccepted)
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestCastVoteThreeWayConsensus(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	id := newSession(t, repo, 1, []uint64{1, 2, 3})

	_, err := repo.CastVote(ctx, id, 1, 10, db.VoteAccepted)
	require.NoError(t, err)
	result, err := repo.CastVote(ctx, id, 2, 10, db.VoteAccepted)
	require.NoError(t, err)
	assert.Nil(t, result, "two of three accepts must not complete")

	result, err = repo.CastVote(ctx, id, 3, 10, db.VoteAccepted)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint64(10), result.InterestID)
}

func TestCastVoteConcurrentAcceptsCompleteOnce(t *testing.T) {
	ctx := context.Background()

	// shared-cache DB pinned to one connection so both goroutines contend
	// on the same store instead of private :memory: copies
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(dbase))

	repo := repository.NewMatchRepository(dbase)
	id := newSession(t, repo, 1, []uint64{1, 2})

	// both participants accept the same candidate at the same time
	var (
		wg        sync.WaitGroup
		outcomes  [2]*db.MatchResult
		committed [2]bool
		failures  [2]error
	)
	for i, voter := range []uint64{1, 2} {
		wg.Add(1)
		go func(i int, voter uint64) {
			defer wg.Done()
			for attempt := 0; attempt < 100; attempt++ {
				result, err := repo.CastVote(ctx, id, voter, 10, db.VoteAccepted)
				if err == nil {
					outcomes[i] = result
					committed[i] = true
					return
				}
				if errors.Is(err, repository.ErrSessionClosed) {
					// a vote still pending can never find its own session
					// closed; both accepts are required to complete it
					failures[i] = err
					return
				}
				// transient store contention, nothing committed: retry
				failures[i] = err
				time.Sleep(time.Millisecond)
			}
		}(i, voter)
	}
	wg.Wait()

	for i := range committed {
		if !committed[i] {
			t.Fatalf("vote of participant %d never committed: %v", i+1, failures[i])
		}
	}

	// exactly one of the racing votes announces the match
	var matched int
	for _, outcome := range outcomes {
		if outcome != nil {
			matched++
			assert.Equal(t, uint64(10), outcome.InterestID)
		}
	}
	assert.Equal(t, 1, matched)

	// one result row, one VOTING -> COMPLETED transition
	var results []db.MatchResult
	require.NoError(t, dbase.Find(&results).Error)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].SessionID)

	session, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.SessionCompleted, session.Status)

	var votes int64
	require.NoError(t, dbase.Model(&db.MatchVote{}).Where("session_id = ?", id).Count(&votes).Error)
	assert.Equal(t, int64(2), votes)
}

func TestCastVoteUnknownSession(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	_, err := repo.CastVote(ctx, 999, 1, 10, db.VoteAccepted)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
