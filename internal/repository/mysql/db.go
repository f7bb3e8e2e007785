package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/adminuser"
	"github.com/example/smartblinds/internal/datamodels/order"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init opens the shared GORM handle and migrates the schema. The
// unique index on orders.order_ref is the idempotency authority for
// order confirmation; OrderItem rows cascade on order delete.
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = db.AutoMigrate(&order.Order{}, &order.OrderItem{}, &adminuser.AdminUser{}); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// DB returns the shared handle.
func DB() *gorm.DB {
	return db
}
