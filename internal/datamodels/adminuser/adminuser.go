package adminuser

import (
	"context"
	"time"
)

// AdminUser is the back-office identity performing status transitions
// and deletes. Separate aggregate from the order lifecycle.
type AdminUser struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email              string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password           string    `gorm:"size:255;not null" json:"-"`
	Salt               string    `gorm:"size:64" json:"-"`
	Role               string    `gorm:"size:32;not null" json:"role"`
	Active             bool      `gorm:"not null;default:true" json:"active"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Repository is the storage port for admin users.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)
	Create(ctx context.Context, u *AdminUser) error
	Update(ctx context.Context, u *AdminUser) error
	Count(ctx context.Context) (int64, error)
}
