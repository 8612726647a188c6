package repository

import (
	"context"

	"github.com/cinematch/cinematch/internal/db"

	"gorm.io/gorm"
)

// FriendshipRepository provides data access for the friend graph.
// A relationship is stored as a single directed (requester, addressee) row;
// undirected queries check both orientations.
type FriendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository creates a new repository bound to the given DB connection.
func NewFriendshipRepository(database *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: database}
}

// Exists reports whether any relationship row links the two users,
// in either direction and regardless of status.
func (r *FriendshipRepository) Exists(ctx context.Context, userA, userB uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Friendship{}).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

// AreFriends reports whether the two users have a confirmed friendship.
func (r *FriendshipRepository) AreFriends(ctx context.Context, userA, userB uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Friendship{}).
		Where("status = ?", db.FriendshipAccepted).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new PENDING request from requester to addressee.
func (r *FriendshipRepository) Create(ctx context.Context, requesterID, addresseeID uint64) error {
	friendship := db.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      db.FriendshipPending,
	}
	return r.db.WithContext(ctx).Create(&friendship).Error
}

// Accept flips a PENDING request addressed to addresseeID to ACCEPTED.
// Returns gorm.ErrRecordNotFound when no such pending request exists.
func (r *FriendshipRepository) Accept(ctx context.Context, requesterID, addresseeID uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.Friendship{}).
		Where("requester_id = ? AND addressee_id = ? AND status = ?",
			requesterID, addresseeID, db.FriendshipPending).
		Update("status", db.FriendshipAccepted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Decline deletes a PENDING request addressed to addresseeID.
func (r *FriendshipRepository) Decline(ctx context.Context, requesterID, addresseeID uint64) error {
	res := r.db.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ? AND status = ?",
			requesterID, addresseeID, db.FriendshipPending).
		Delete(&db.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Unfriend removes the relationship between two users, whichever direction
// it was stored in.
func (r *FriendshipRepository) Unfriend(ctx context.Context, userA, userB uint64) error {
	return r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userA, userB, userB, userA).
		Delete(&db.Friendship{}).Error
}

// PendingFor returns all pending requests addressed to userID.
func (r *FriendshipRepository) PendingFor(ctx context.Context, userID uint64) ([]db.Friendship, error) {
	var friendships []db.Friendship
	err := r.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, db.FriendshipPending).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}

// FriendIDs returns the ids of every confirmed friend of userID.
func (r *FriendshipRepository) FriendIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var friendships []db.Friendship
	err := r.db.WithContext(ctx).
		Where("status = ?", db.FriendshipAccepted).
		Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(friendships))
	for _, f := range friendships {
		if f.RequesterID == userID {
			ids = append(ids, f.AddresseeID)
		} else {
			ids = append(ids, f.RequesterID)
		}
	}
	return ids, nil
}

// RelatedIDs returns every user id that shares any relationship row with
// userID, in either direction. Used to exclude known users from search.
func (r *FriendshipRepository) RelatedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var friendships []db.Friendship
	err := r.db.WithContext(ctx).
		Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	seen := map[uint64]bool{}
	ids := make([]uint64, 0, len(friendships))
	for _, f := range friendships {
		other := f.RequesterID
		if f.RequesterID == userID {
			other = f.AddresseeID
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}
