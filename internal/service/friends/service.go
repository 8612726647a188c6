package friends

import (
	"context"
	"errors"
	"strings"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/db"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/repository"

	"gorm.io/gorm"
)

// UserSummary is how other users appear in friend lists and search results.
type UserSummary struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Request is one pending friend request as seen by its addressee.
type Request struct {
	RequesterID uint64 `json:"requesterId"`
	Name        string `json:"name"`
}

// Service implements the friend graph: request, accept/decline, unfriend,
// listing and user search.
type Service struct {
	appCtx     *app.AppContext
	friendRepo *repository.FriendshipRepository
	userRepo   *repository.UserRepository
}

// NewService creates the friends service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		friendRepo: repository.NewFriendshipRepository(appCtx.DB),
		userRepo:   repository.NewUserRepository(appCtx.DB),
	}
}

// SendRequest creates a PENDING request towards addresseeID.
// At most one relationship row may exist per unordered pair, so an existing
// row in either direction is a conflict.
func (s *Service) SendRequest(ctx context.Context, requesterID, addresseeID uint64) error {
	if requesterID == addresseeID {
		return svcErr.BadRequest("cannot send a friend request to yourself")
	}

	if _, err := s.userRepo.FindByID(ctx, addresseeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("user not found")
		}
		return svcErr.Map(err)
	}

	exists, err := s.friendRepo.Exists(ctx, requesterID, addresseeID)
	if err != nil {
		return svcErr.Map(err)
	}
	if exists {
		return svcErr.Conflict("a relationship with this user already exists")
	}

	if err := s.friendRepo.Create(ctx, requesterID, addresseeID); err != nil {
		s.appCtx.Logger.Error("failed to create friend request", "err", err)
		return svcErr.Internal("could not send friend request")
	}
	return nil
}

// Respond accepts or declines a pending request addressed to the caller.
// Accepting keeps the row as ACCEPTED; declining deletes it entirely.
func (s *Service) Respond(ctx context.Context, currentUserID, requesterID uint64, status string) error {
	switch strings.ToUpper(status) {
	case db.FriendshipAccepted:
		err := s.friendRepo.Accept(ctx, requesterID, currentUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("friend request not found")
		}
		return wrap(err)
	case db.FriendshipDeclined:
		err := s.friendRepo.Decline(ctx, requesterID, currentUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("friend request not found")
		}
		return wrap(err)
	default:
		return svcErr.BadRequest("status must be ACCEPTED or DECLINED")
	}
}

// Unfriend removes the relationship with friendID in whichever direction
// it was stored.
func (s *Service) Unfriend(ctx context.Context, currentUserID, friendID uint64) error {
	if friendID == 0 {
		return svcErr.BadRequest("friendId is required")
	}
	return wrap(s.friendRepo.Unfriend(ctx, currentUserID, friendID))
}

// ListRequests returns the pending requests addressed to the caller.
func (s *Service) ListRequests(ctx context.Context, currentUserID uint64) ([]Request, error) {
	pending, err := s.friendRepo.PendingFor(ctx, currentUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	requests := make([]Request, 0, len(pending))
	for _, f := range pending {
		req := Request{RequesterID: f.RequesterID}
		if user, err := s.userRepo.FindByID(ctx, f.RequesterID); err == nil {
			req.Name = user.Name
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// ListFriends returns the caller's confirmed friends.
func (s *Service) ListFriends(ctx context.Context, currentUserID uint64) ([]UserSummary, error) {
	ids, err := s.friendRepo.FriendIDs(ctx, currentUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	friends := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			continue
		}
		friends = append(friends, UserSummary{ID: user.ID, Name: user.Name})
	}
	return friends, nil
}

// Search finds users to add, excluding the caller and anyone already related.
func (s *Service) Search(ctx context.Context, currentUserID uint64, query string) ([]UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, svcErr.BadRequest("query is required")
	}

	exclude, err := s.friendRepo.RelatedIDs(ctx, currentUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	exclude = append(exclude, currentUserID)

	users, err := s.userRepo.SearchByName(ctx, query, exclude, 10)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	results := make([]UserSummary, 0, len(users))
	for _, u := range users {
		results = append(results, UserSummary{ID: u.ID, Name: u.Name})
	}
	return results, nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return svcErr.Map(err)
}
