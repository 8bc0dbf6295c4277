package repository

import (
	"go-inventory-pos/internal/model"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
var Models = []interface{}{
	&model.Privilege{},
	&model.Role{},
	&model.User{},
	&model.Product{},
	&model.LogEntry{},
	&model.LogItem{},
	&model.Expense{},
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
