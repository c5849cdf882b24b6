package model

import (
	"gorm.io/gorm"
)

// AutoMigrate migrates the table named by key.
// AutoMigrate 按 key 迁移对应的数据表
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "User":
		return db.AutoMigrate(User{})
	case "Fragment":
		return db.AutoMigrate(Fragment{})
	case "FragmentNote":
		return db.AutoMigrate(FragmentNote{})
	case "FragmentTag":
		return db.AutoMigrate(FragmentTag{})
	case "FragmentBackup":
		return db.AutoMigrate(FragmentBackup{})
	}
	return nil
}

// Keys lists every migratable model in dependency order.
func Keys() []string {
	return []string{"User", "Fragment", "FragmentNote", "FragmentTag", "FragmentBackup"}
}
