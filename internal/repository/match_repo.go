package repository

import (
	"context"
	"errors"

	"github.com/cinematch/cinematch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSessionClosed is returned when a vote reaches a session that is no
// longer in VOTING state. The service maps it to Forbidden.
var ErrSessionClosed = errors.New("session already completed")

// MatchRepository provides data access for match sessions, participants,
// votes and results. The consensus-critical path (CastVote) runs inside a
// single transaction so concurrent votes on one session serialize.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// GetSession loads one session by id.
func (r *MatchRepository) GetSession(ctx context.Context, sessionID uint64) (*db.MatchSession, error) {
	var session db.MatchSession
	if err := r.db.WithContext(ctx).First(&session, sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindVotingSession returns the open session whose participant set is
// exactly userIDs, or nil when none exists. Used for idempotent re-entry:
// repeated "start a match" clicks reuse the same session.
func (r *MatchRepository) FindVotingSession(ctx context.Context, userIDs []uint64) (*db.MatchSession, error) {
	var sessions []db.MatchSession
	err := r.db.WithContext(ctx).
		Table("match_sessions s").
		Where("s.status = ?", db.SessionVoting).
		Where("(SELECT COUNT(*) FROM match_participants p WHERE p.session_id = s.id) = ?", len(userIDs)).
		Where("(SELECT COUNT(*) FROM match_participants p WHERE p.session_id = s.id AND p.user_id IN ?) = ?", userIDs, len(userIDs)).
		Order("s.id DESC").
		Limit(1).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// CreateSession inserts a new VOTING session together with its participant
// rows. Both writes happen in one transaction: a session with zero or one
// participant is never observable.
func (r *MatchRepository) CreateSession(ctx context.Context, creatorID uint64, participantIDs []uint64) (*db.MatchSession, error) {
	session := db.MatchSession{CreatorID: creatorID, Status: db.SessionVoting}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		participants := make([]db.MatchParticipant, 0, len(participantIDs))
		for _, id := range participantIDs {
			participants = append(participants, db.MatchParticipant{
				SessionID: session.ID,
				UserID:    id,
			})
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ParticipantIDs returns the user ids of all session participants.
func (r *MatchRepository) ParticipantIDs(ctx context.Context, sessionID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.MatchParticipant{}).
		Where("session_id = ?", sessionID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// IsParticipant reports whether userID belongs to the session.
func (r *MatchRepository) IsParticipant(ctx context.Context, sessionID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.MatchParticipant{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count > 0, err
}

// CastVote records one participant's decision and atomically detects
// whether it completes the match.
//
// The whole sequence runs in one transaction with the session row locked:
//  1. Re-read the session under lock; a non-VOTING status aborts with
//     ErrSessionClosed (two racing accepts cannot both commit).
//  2. Upsert the vote keyed by (session_id, user_id, interest_id). The
//     latest action per triple wins, so re-voting is idempotent and a
//     DECLINED can later flip to ACCEPTED.
//  3. For ACCEPTED only: tally participants (P) and ACCEPTED votes for
//     this candidate (A). P > 1 && A == P commits the session to
//     COMPLETED and inserts the single MatchResult row.
//
// Returns the created result when the vote completed the match, nil otherwise.
func (r *MatchRepository) CastVote(ctx context.Context, sessionID, userID, interestID uint64, action string) (*db.MatchResult, error) {
	var result *db.MatchResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessionQuery := tx
		// SQLite has a single writer and rejects FOR UPDATE syntax;
		// its transaction already serializes this block.
		if tx.Dialector.Name() != "sqlite" {
			sessionQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var session db.MatchSession
		if err := sessionQuery.First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.Status != db.SessionVoting {
			return ErrSessionClosed
		}

		vote := db.MatchVote{
			SessionID:  sessionID,
			UserID:     userID,
			InterestID: interestID,
			Action:     action,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "session_id"}, {Name: "user_id"}, {Name: "interest_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"action"}),
		}).Create(&vote).Error; err != nil {
			return err
		}

		// A single decline can never complete a match.
		if action != db.VoteAccepted {
			return nil
		}

		var total, accepted int64
		if err := tx.Model(&db.MatchParticipant{}).
			Where("session_id = ?", sessionID).
			Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.MatchVote{}).
			Where("session_id = ? AND interest_id = ? AND action = ?", sessionID, interestID, db.VoteAccepted).
			Count(&accepted).Error; err != nil {
			return err
		}

		// total > 1 guards the degenerate single-participant session.
		if total > 1 && accepted == total {
			if err := tx.Model(&db.MatchSession{}).
				Where("id = ?", sessionID).
				Update("status", db.SessionCompleted).Error; err != nil {
				return err
			}
			res := db.MatchResult{SessionID: sessionID, InterestID: interestID}
			if err := tx.Create(&res).Error; err != nil {
				return err
			}
			result = &res
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetResult returns the committed result of a session, if any.
func (r *MatchRepository) GetResult(ctx context.Context, sessionID uint64) (*db.MatchResult, error) {
	var result db.MatchResult
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
