package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type gormUsers struct{ s *GormStore }

func (r gormUsers) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var u models.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var u models.User
	if err := db.Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r gormUsers) List(ctx context.Context) ([]models.User, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	users := make([]models.User, 0)
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

func (r gormUsers) Count(ctx context.Context) (int64, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, translate(err, "users")
	}
	return n, nil
}

func (r gormUsers) Create(ctx context.Context, u *models.User) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(u.Email)
	return translate(db.Create(u).Error, "user")
}

func (r gormUsers) Update(ctx context.Context, u *models.User) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	u.UpdatedAt = time.Now().UTC()
	result := db.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":          u.Name,
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"status":        u.Status,
		"updated_at":    u.UpdatedAt,
	})
	return affected(result, "user")
}

type gormSessions struct{ s *GormStore }

func (r gormSessions) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var sess models.Session
	if err := db.Where("token_hash = ?", tokenHash).First(&sess).Error; err != nil {
		return nil, translate(err, "session")
	}
	return &sess, nil
}

func (r gormSessions) Create(ctx context.Context, sess *models.Session) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	return translate(db.Create(sess).Error, "session")
}

func (r gormSessions) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return affected(db.Where("token_hash = ?", tokenHash).Delete(&models.Session{}), "session")
}

func (r gormSessions) DeleteByUser(ctx context.Context, userID uuid.UUID, keepHash string) (int64, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	q := db.Where("user_id = ?", userID)
	if keepHash != "" {
		q = q.Where("token_hash <> ?", keepHash)
	}
	result := q.Delete(&models.Session{})
	return result.RowsAffected, translate(result.Error, "sessions")
}

func (r gormSessions) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	result := db.Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, translate(result.Error, "sessions")
}
