package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/smartblinds/internal/datamodels/adminuser"
)

type adminRepo struct {
	db *gorm.DB
}

// NewAdminUserRepository creates the MySQL-backed admin user repository.
func NewAdminUserRepository(db *gorm.DB) adminuser.Repository {
	return &adminRepo{db: db}
}

func (r *adminRepo) GetByUsername(ctx context.Context, username string) (*adminuser.AdminUser, error) {
	var u adminuser.AdminUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *adminRepo) Create(ctx context.Context, u *adminuser.AdminUser) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *adminRepo) Update(ctx context.Context, u *adminuser.AdminUser) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *adminRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&adminuser.AdminUser{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
