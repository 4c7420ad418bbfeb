package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"anoa.com/communityforum/internal/bootstrap"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory sqlite database and migrates the
// schema. A single connection keeps concurrent writers serialized, which
// is what the production postgres setup provides per row anyway.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func mustCreateUser(t *testing.T, repo repository.UserRepository, username string, role model.Role) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	hash := string(hashed)
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: &hash,
		Role:         role,
		Grants:       model.DefaultGrants(role),
	}
	if role == model.RoleGuest {
		user.PasswordHash = nil
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func mustCreateThread(t *testing.T, repo repository.ThreadRepository, author *model.User, title string) *model.Thread {
	t.Helper()

	thread := &model.Thread{
		AuthorID: author.ID,
		Title:    title,
		Content:  "content of " + title,
		IsPublic: true,
	}
	if err := repo.Create(context.Background(), thread); err != nil {
		t.Fatalf("failed to create thread %s: %v", title, err)
	}
	return thread
}

// stubSender captures the last message instead of delivering it.
type stubSender struct {
	to      string
	subject string
	body    string
	fail    bool
}

func (s *stubSender) Send(to, subject, htmlBody string) error {
	if s.fail {
		return fmt.Errorf("smtp unreachable")
	}
	s.to = to
	s.subject = subject
	s.body = htmlBody
	return nil
}

// expireResetToken backdates the stored expiry so reset completion fails.
func expireResetToken(t *testing.T, db *gorm.DB, email string) {
	t.Helper()

	past := time.Now().Add(-time.Minute)
	if err := db.Model(&model.User{}).
		Where("email = ?", email).
		Update("reset_token_expiry", past).Error; err != nil {
		t.Fatalf("failed to expire reset token: %v", err)
	}
}
