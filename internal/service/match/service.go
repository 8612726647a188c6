package match

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/db"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/repository"

	"gorm.io/gorm"
)

// Catalog is the slice of the catalog gateway the match flows need.
// Lookups are best-effort: any failure degrades to stored interest fields.
type Catalog interface {
	SearchMovie(ctx context.Context, query string) (*catalog.Movie, error)
}

// Movie is a candidate (or winning) movie as returned to clients.
type Movie struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Year     string `json:"year,omitempty"`
	Overview string `json:"overview,omitempty"`
}

// StartResult is the response of StartSession.
type StartResult struct {
	SessionID uint64 `json:"sessionId"`
	Status    string `json:"status"`
	Created   bool   `json:"-"`
}

// VoteResult is the response of CastVote: either a plain registration
// acknowledgement or the match announcement.
type VoteResult struct {
	Message    string `json:"message,omitempty"`
	MatchFound bool   `json:"matchFound,omitempty"`
	Movie      *Movie `json:"movie,omitempty"`
}

// StatusResult is the response of Status polls.
type StatusResult struct {
	Status string `json:"status"`
	Movie  *Movie `json:"movie,omitempty"`
}

// Service implements the match session lifecycle and the voting engine.
// All durable state lives in the repositories; the service itself holds no
// per-session state, so concurrent requests only contend inside the store
// transaction of CastVote.
type Service struct {
	appCtx       *app.AppContext
	matchRepo    *repository.MatchRepository
	friendRepo   *repository.FriendshipRepository
	interestRepo *repository.InterestRepository
	catalog      Catalog
}

// NewService creates the match service with dependencies from AppContext
// plus the catalog gateway.
func NewService(appCtx *app.AppContext, cat Catalog) *Service {
	return &Service{
		appCtx:       appCtx,
		matchRepo:    repository.NewMatchRepository(appCtx.DB),
		friendRepo:   repository.NewFriendshipRepository(appCtx.DB),
		interestRepo: repository.NewInterestRepository(appCtx.DB),
		catalog:      cat,
	}
}

// StartSession finds or creates the VOTING session between the caller and
// one confirmed friend.
//
// Behavior:
//   - Self-match is invalid input.
//   - friendID must be a confirmed friend of the caller.
//   - An existing VOTING session with exactly {caller, friend} is reused,
//     so repeated "start a match" clicks never spawn duplicates.
//   - Otherwise session + participants are inserted atomically.
func (s *Service) StartSession(ctx context.Context, currentUserID, friendID uint64) (*StartResult, error) {
	if friendID == currentUserID {
		return nil, svcErr.BadRequest("cannot start a match with yourself")
	}

	friends, err := s.friendRepo.AreFriends(ctx, currentUserID, friendID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !friends {
		return nil, svcErr.Forbidden("you can only match with confirmed friends")
	}

	participants := []uint64{currentUserID, friendID}

	existing, err := s.matchRepo.FindVotingSession(ctx, participants)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if existing != nil {
		s.appCtx.Logger.Debug("reusing match session", "session_id", existing.ID, "user_id", currentUserID)
		return &StartResult{SessionID: existing.ID, Status: existing.Status}, nil
	}

	session, err := s.matchRepo.CreateSession(ctx, currentUserID, participants)
	if err != nil {
		s.appCtx.Logger.Error("failed to create match session", "err", err)
		return nil, svcErr.Internal("could not create match session")
	}

	s.appCtx.Logger.Info("match session created", "session_id", session.ID, "creator_id", currentUserID)
	return &StartResult{SessionID: session.ID, Status: session.Status, Created: true}, nil
}

// Candidates returns the movies every participant of the session likes,
// the intersection of all participants' interest sets.
//
// Behavior:
//   - Caller must be a participant.
//   - If any participant has zero interests the list is empty; that is a
//     valid result, not an error.
//   - Order follows the first participant's interest list, so it is stable
//     within one response.
//   - Each candidate is enriched with catalog metadata opportunistically.
func (s *Service) Candidates(ctx context.Context, sessionID, callerID uint64) ([]Movie, error) {
	if _, err := s.authorizeParticipant(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	participantIDs, err := s.matchRepo.ParticipantIDs(ctx, sessionID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	// base list comes from the first participant; everybody else only filters
	var common []db.Interest
	for i, userID := range participantIDs {
		interests, err := s.interestRepo.InterestsByUser(ctx, userID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if i == 0 {
			common = interests
			continue
		}
		ids := make(map[uint64]bool, len(interests))
		for _, interest := range interests {
			ids[interest.ID] = true
		}
		filtered := common[:0]
		for _, interest := range common {
			if ids[interest.ID] {
				filtered = append(filtered, interest)
			}
		}
		common = filtered
		if len(common) == 0 {
			break
		}
	}

	movies := make([]Movie, 0, len(common))
	for _, interest := range common {
		movies = append(movies, s.enrich(ctx, interest))
	}
	return movies, nil
}

// CastVote registers one participant's decision on one candidate and
// reports whether it completed the match.
//
// Preconditions, each a distinct failure: session exists (404), session
// still VOTING (403), caller is a participant (403), action valid (400).
// The upsert-tally-commit sequence itself is atomic in the repository.
func (s *Service) CastVote(ctx context.Context, sessionID, callerID, interestID uint64, action string) (*VoteResult, error) {
	session, err := s.matchRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("match session not found")
		}
		return nil, svcErr.Map(err)
	}
	if session.Status != db.SessionVoting {
		return nil, svcErr.Forbidden("session already completed")
	}

	isParticipant, err := s.matchRepo.IsParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !isParticipant {
		return nil, svcErr.Forbidden("you are not a participant of this match session")
	}

	if interestID == 0 {
		return nil, svcErr.BadRequest("interestId is required")
	}
	if action != db.VoteAccepted && action != db.VoteDeclined {
		return nil, svcErr.BadRequest("action must be ACCEPTED or DECLINED")
	}

	result, err := s.matchRepo.CastVote(ctx, sessionID, callerID, interestID, action)
	if err != nil {
		// the session may have completed between the precondition read and
		// the locked transaction; same outcome as precondition 2
		if errors.Is(err, repository.ErrSessionClosed) {
			return nil, svcErr.Forbidden("session already completed")
		}
		s.appCtx.Logger.Error("failed to cast vote", "session_id", sessionID, "user_id", callerID, "err", err)
		return nil, svcErr.Internal("could not register vote")
	}

	if result == nil {
		return &VoteResult{Message: "vote registered"}, nil
	}

	movie, err := s.resolveWinner(ctx, result.InterestID)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("match found",
		"session_id", sessionID, "interest_id", result.InterestID, "movie", movie.Name)

	s.cacheCompleted(ctx, sessionID, movie)

	return &VoteResult{MatchFound: true, Movie: movie}, nil
}

// Status reports whether the session is still open; once completed it also
// carries the winning movie. Designed for client polling: completed
// payloads are immutable and served cache-first.
func (s *Service) Status(ctx context.Context, sessionID, callerID uint64) (*StatusResult, error) {
	session, err := s.authorizeParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	if session.Status != db.SessionCompleted {
		return &StatusResult{Status: session.Status}, nil
	}

	if cached, err := s.appCtx.RedisCache.GetSessionResult(ctx, sessionID); err == nil && cached != "" {
		var status StatusResult
		if err := json.Unmarshal([]byte(cached), &status); err == nil {
			return &status, nil
		}
	}

	result, err := s.matchRepo.GetResult(ctx, sessionID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	movie, err := s.resolveWinner(ctx, result.InterestID)
	if err != nil {
		return nil, err
	}

	s.cacheCompleted(ctx, sessionID, movie)

	return &StatusResult{Status: db.SessionCompleted, Movie: movie}, nil
}

// authorizeParticipant loads the session and verifies the caller belongs to it.
func (s *Service) authorizeParticipant(ctx context.Context, sessionID, callerID uint64) (*db.MatchSession, error) {
	session, err := s.matchRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("match session not found")
		}
		return nil, svcErr.Map(err)
	}

	isParticipant, err := s.matchRepo.IsParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !isParticipant {
		return nil, svcErr.Forbidden("you are not a participant of this match session")
	}
	return session, nil
}

// resolveWinner loads and enriches the interest behind a committed result.
func (s *Service) resolveWinner(ctx context.Context, interestID uint64) (*Movie, error) {
	interest, err := s.interestRepo.GetInterest(ctx, interestID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	movie := s.enrich(ctx, *interest)
	if movie.Overview == "" {
		movie.Overview = catalog.OverviewPlaceholder
	}
	return &movie, nil
}

// enrich augments a stored interest with provider metadata. A lookup
// failure degrades to the stored fields and is logged at debug level only.
func (s *Service) enrich(ctx context.Context, interest db.Interest) Movie {
	movie := Movie{
		ID:       interest.ID,
		Name:     interest.Name,
		ImageURL: interest.ImageURL,
	}

	meta, err := s.catalog.SearchMovie(ctx, interest.Name)
	if err != nil {
		s.appCtx.Logger.Debug("catalog lookup failed", "name", interest.Name, "err", err)
		return movie
	}

	movie.Year = meta.Year
	movie.Overview = meta.Overview
	if movie.ImageURL == "" {
		movie.ImageURL = meta.Poster
	}
	return movie
}

// cacheCompleted stores the terminal status payload; best-effort.
func (s *Service) cacheCompleted(ctx context.Context, sessionID uint64, movie *Movie) {
	payload, err := json.Marshal(StatusResult{Status: db.SessionCompleted, Movie: movie})
	if err != nil {
		return
	}
	if err := s.appCtx.RedisCache.SetSessionResult(ctx, sessionID, string(payload)); err != nil {
		s.appCtx.Logger.Debug("failed to cache session result", "session_id", sessionID, "err", err)
	}
}
