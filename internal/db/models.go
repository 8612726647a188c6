package db

import (
	"time"
)

// Friendship statuses.
const (
	FriendshipPending  = "PENDING"
	FriendshipAccepted = "ACCEPTED"
	FriendshipDeclined = "DECLINED"
)

// Match session statuses. A session only ever moves VOTING -> COMPLETED.
const (
	SessionVoting    = "VOTING"
	SessionCompleted = "COMPLETED"
)

// Vote actions.
const (
	VoteAccepted = "ACCEPTED"
	VoteDeclined = "DECLINED"
)

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Friendship is a directed (requester, addressee) pair with a status.
//
// Composite PK: (RequesterID, AddresseeID). The service layer checks both
// directions before inserting, so at most one row exists per unordered pair.
type Friendship struct {
	RequesterID uint64    `gorm:"primaryKey"`
	AddresseeID uint64    `gorm:"primaryKey;index:idx_addressee_status,priority:1"`
	Status      string    `gorm:"size:16;not null;index:idx_addressee_status,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Interest is a canonical movie reference shared across users.
// Created on first reference; two users adding the same title share one row.
type Interest struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"uniqueIndex;size:255;not null"`
	ImageURL  string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// UserInterest joins a user to an interest.
//
// Composite PK: (UserID, InterestID). Adding the same title twice is a no-op.
type UserInterest struct {
	UserID     uint64    `gorm:"primaryKey"`
	InterestID uint64    `gorm:"primaryKey"`
	Type       string    `gorm:"size:16;not null;default:like"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// MatchSession is a bounded matching negotiation among a fixed participant set.
type MatchSession struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatorID uint64    `gorm:"not null"`
	Status    string    `gorm:"size:16;not null;default:VOTING;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchParticipant defines the authorization boundary of a session:
// only listed users may vote or read session detail.
//
// Composite PK: (SessionID, UserID).
type MatchParticipant struct {
	SessionID uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchVote records a participant's latest decision on one candidate.
//
// Composite PK: (SessionID, UserID, InterestID)
//   - One row per triple; re-voting overwrites the action (overwrite guarantee).
//
// Index idx_session_interest_action(session_id, interest_id, action) backs the
// consensus tally (count ACCEPTED votes per candidate).
type MatchVote struct {
	SessionID  uint64    `gorm:"primaryKey;index:idx_session_interest_action,priority:1"`
	UserID     uint64    `gorm:"primaryKey"`
	InterestID uint64    `gorm:"primaryKey;index:idx_session_interest_action,priority:2"`
	Action     string    `gorm:"size:16;not null;index:idx_session_interest_action,priority:3"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// MatchResult is the committed outcome of a session. SessionID is the primary
// key, so the schema itself enforces at most one result per session.
type MatchResult struct {
	SessionID  uint64    `gorm:"primaryKey"`
	InterestID uint64    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
