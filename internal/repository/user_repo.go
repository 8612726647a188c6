package repository

import (
	"context"

	"github.com/cinematch/cinematch/internal/db"

	"gorm.io/gorm"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads one user by id.
func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads one user by its unique email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchByName returns up to limit users whose name contains query,
// excluding the given ids (the caller and everyone already related to them).
func (r *UserRepository) SearchByName(ctx context.Context, query string, excludeIDs []uint64, limit int) ([]db.User, error) {
	var users []db.User
	q := r.db.WithContext(ctx).
		Where("name LIKE ?", "%"+query+"%").
		Order("name").
		Limit(limit)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
