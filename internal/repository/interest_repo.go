package repository

import (
	"context"
	"time"

	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InterestRepository provides data access for the canonical interest table
// and the per-user interest lists that feed candidate intersection.
type InterestRepository struct {
	db *gorm.DB
}

// NewInterestRepository creates a new repository bound to the given DB connection.
func NewInterestRepository(database *gorm.DB) *InterestRepository {
	return &InterestRepository{db: database}
}

// UpsertInterest returns the canonical interest row for a movie name,
// creating it on first reference. Two users adding the same title share
// one row, so the insert ignores conflicts on the unique name.
func (r *InterestRepository) UpsertInterest(ctx context.Context, name, imageURL string) (*db.Interest, error) {
	interest := db.Interest{Name: name, ImageURL: imageURL}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&interest).Error
	if err != nil {
		return nil, err
	}

	// On conflict the insert is a no-op and leaves ID unset; fetch the row.
	if interest.ID == 0 {
		if err := r.db.WithContext(ctx).Where("name = ?", name).First(&interest).Error; err != nil {
			return nil, err
		}
	}
	return &interest, nil
}

// GetInterest loads one interest by id.
func (r *InterestRepository) GetInterest(ctx context.Context, id uint64) (*db.Interest, error) {
	var interest db.Interest
	if err := r.db.WithContext(ctx).First(&interest, id).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

// AddUserInterest links a user to an interest. Adding the same title twice
// is a no-op; the second call reports added=false.
func (r *InterestRepository) AddUserInterest(ctx context.Context, userID, interestID uint64) (bool, error) {
	link := db.UserInterest{UserID: userID, InterestID: interestID, Type: "like"}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "interest_id"}},
			DoNothing: true,
		}).
		Create(&link)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveUserInterest deletes the link between a user and an interest.
// Returns gorm.ErrRecordNotFound when the user never had that interest.
func (r *InterestRepository) RemoveUserInterest(ctx context.Context, userID, interestID uint64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND interest_id = ?", userID, interestID).
		Delete(&db.UserInterest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InterestsByUser returns a user's full interest set, ordered by interest id
// for a stable intersection base.
func (r *InterestRepository) InterestsByUser(ctx context.Context, userID uint64) ([]db.Interest, error) {
	var interests []db.Interest
	err := r.db.WithContext(ctx).
		Table("interests i").
		Joins("JOIN user_interests ui ON ui.interest_id = i.id").
		Where("ui.user_id = ?", userID).
		Order("i.id").
		Find(&interests).Error
	return interests, err
}

// userInterestRow carries the link creation time next to the interest
// fields so cursor pagination can order by it.
type userInterestRow struct {
	ID       uint64
	Name     string
	ImageURL string
	AddedAt  time.Time
}

// ListByUser returns one page of a user's interests, newest first.
//
// Behavior:
//   - Ordered by (added_at DESC, interest_id DESC).
//   - Supports cursor-based pagination via paginationToken.
func (r *InterestRepository) ListByUser(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Interest, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("user_interests ui").
		Select("i.id AS id, i.name AS name, i.image_url AS image_url, ui.created_at AS added_at").
		Joins("JOIN interests i ON i.id = ui.interest_id").
		Where("ui.user_id = ?", userID).
		Order("ui.created_at DESC, ui.interest_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(ui.created_at < ? OR (ui.created_at = ? AND ui.interest_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var rows []userInterestRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(rows) > limit {
		last := rows[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.AddedAt.UnixMilli(),
		})
		nextToken = &token
		rows = rows[:limit]
	}

	interests := make([]db.Interest, 0, len(rows))
	for _, row := range rows {
		interests = append(interests, db.Interest{
			ID:       row.ID,
			Name:     row.Name,
			ImageURL: row.ImageURL,
		})
	}
	return interests, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
