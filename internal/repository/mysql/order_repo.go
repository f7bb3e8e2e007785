package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/smartblinds/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository creates the MySQL-backed order repository.
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := o.Items
		o.Items = nil
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_ref"}},
			DoNothing: true,
		}).Create(o)
		o.Items = items
		if res.Error != nil {
			return res.Error
		}
		// DoNothing hit the unique index: the order already exists
		// and this attempt must not write items either.
		if res.RowsAffected == 0 {
			return order.ErrDuplicateRef
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) GetByRef(ctx context.Context, ref string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_ref = ?", ref).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) applyFilter(tx *gorm.DB, f order.Filter) *gorm.DB {
	if f.OrderRef != "" {
		tx = tx.Where("order_ref = ?", f.OrderRef)
	}
	if f.Email != "" {
		tx = tx.Where("customer_email = ?", f.Email)
	}
	return tx
}

func (r *orderRepo) List(ctx context.Context, f order.Filter, limit, offset int) ([]*order.Order, error) {
	var list []*order.Order
	tx := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), f)
	err := tx.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) Count(ctx context.Context, f order.Filter) (int64, error) {
	var total int64
	tx := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), f)
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, ref string, s order.Status) error {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("order_ref = ?", ref).
		Update("status", s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, ref string) (*order.Order, error) {
	var deleted *order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Preload("Items").Where("order_ref = ?", ref).First(&o).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&order.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&order.Order{}, o.ID).Error; err != nil {
			return err
		}
		deleted = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// IsNotFound reports whether err is the driver's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
