package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kbukum/feedback/database"
)

// GormRepository is the gorm-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository returns a repository using db. db must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepository) first(ctx context.Context, query string, arg any) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Where(query, arg).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepository) Create(ctx context.Context, a *Account) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if database.IsDuplicateError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *GormRepository) List(ctx context.Context) ([]Account, error) {
	var out []Account
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
