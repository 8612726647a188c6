package interests

import (
	"context"
	"errors"
	"strings"

	"github.com/cinematch/cinematch/internal/app"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/repository"

	"gorm.io/gorm"
)

// Interest is one movie on a user's list.
type Interest struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Page is one page of a user's interest list.
type Page struct {
	Interests []Interest `json:"interests"`
	NextToken *string    `json:"nextPaginationToken,omitempty"`
}

// Service implements the per-user interest list. Interest rows are
// canonical: the first user to add a title creates it, later users share it.
type Service struct {
	appCtx       *app.AppContext
	interestRepo *repository.InterestRepository
}

// NewService creates the interests service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		interestRepo: repository.NewInterestRepository(appCtx.DB),
	}
}

// Add puts a movie on the caller's list. Adding a title already on the
// list is a no-op; added reports whether a new link was created.
func (s *Service) Add(ctx context.Context, userID uint64, name, imageURL string) (added bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, svcErr.BadRequest("name is required")
	}

	interest, err := s.interestRepo.UpsertInterest(ctx, name, imageURL)
	if err != nil {
		s.appCtx.Logger.Error("failed to upsert interest", "name", name, "err", err)
		return false, svcErr.Internal("could not add interest")
	}

	added, err = s.interestRepo.AddUserInterest(ctx, userID, interest.ID)
	if err != nil {
		return false, svcErr.Map(err)
	}
	return added, nil
}

// Remove takes a movie off the caller's list. The canonical interest row
// stays; other users may still reference it.
func (s *Service) Remove(ctx context.Context, userID, interestID uint64) error {
	err := s.interestRepo.RemoveUserInterest(ctx, userID, interestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("interest not found for this user")
	}
	if err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// List returns one page of the caller's interests, newest first.
func (s *Service) List(ctx context.Context, userID uint64, paginationToken *string, limit int) (*Page, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, nextToken, err := s.interestRepo.ListByUser(ctx, userID, paginationToken, limit)
	if err != nil {
		if strings.Contains(err.Error(), "invalid pagination token") {
			return nil, svcErr.BadRequest("invalid pagination token")
		}
		return nil, svcErr.Map(err)
	}

	page := &Page{Interests: make([]Interest, 0, len(rows)), NextToken: nextToken}
	for _, row := range rows {
		page.Interests = append(page.Interests, Interest{
			ID:       row.ID,
			Name:     row.Name,
			ImageURL: row.ImageURL,
		})
	}
	return page, nil
}
