package bootstrap

import (
	"log"

	"anoa.com/communityforum/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Thread{},
		&model.ThreadLike{},
		&model.Comment{},
	)
}

// SeedAdminUser creates the bootstrap admin for development environments.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("role = ?", model.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hash := string(hashedPasswordBytes)
	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@communityforum.local",
		PasswordHash: &hash,
		Role:         model.RoleAdmin,
		Grants:       model.DefaultGrants(model.RoleAdmin),
	}

	return db.Create(&adminUser).Error
}
