package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sdko-org/media-vault/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAdminExists   = errors.New("admin with this email already exists")
	ErrAdminNotFound = errors.New("admin does not exist")
)

// AdminStore is the persistence boundary for administrator accounts.
type AdminStore interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (models.AdminUser, error)
	SaveRefreshToken(ctx context.Context, adminID uint, refreshToken string) error
}

type PostgresAdminStore struct {
	db *gorm.DB
}

func NewPostgresAdminStore(db *gorm.DB) *PostgresAdminStore {
	return &PostgresAdminStore{db: db}
}

func (s *PostgresAdminStore) Create(ctx context.Context, admin *models.AdminUser) error {
	var existing models.AdminUser
	err := s.db.WithContext(ctx).Where("email = ?", admin.Email).First(&existing).Error
	if err == nil {
		return ErrAdminExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check existing admin: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (s *PostgresAdminStore) FindByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	var admin models.AdminUser
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AdminUser{}, ErrAdminNotFound
	}
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("find admin: %w", err)
	}
	return admin, nil
}

func (s *PostgresAdminStore) SaveRefreshToken(ctx context.Context, adminID uint, refreshToken string) error {
	result := s.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", adminID).
		Update("refresh_token", refreshToken)
	if result.Error != nil {
		return fmt.Errorf("save refresh token: %w", result.Error)
	}
	return nil
}

// MemoryAdminStore is an in-process AdminStore used by tests.
type MemoryAdminStore struct {
	mu     sync.Mutex
	nextID uint
	admins map[string]models.AdminUser
}

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{admins: make(map[string]models.AdminUser)}
}

func (s *MemoryAdminStore) Create(ctx context.Context, admin *models.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.Email]; ok {
		return ErrAdminExists
	}
	s.nextID++
	admin.ID = s.nextID
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	s.admins[admin.Email] = *admin
	return nil
}

func (s *MemoryAdminStore) FindByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[email]
	if !ok {
		return models.AdminUser{}, ErrAdminNotFound
	}
	return admin, nil
}

func (s *MemoryAdminStore) SaveRefreshToken(ctx context.Context, adminID uint, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, admin := range s.admins {
		if admin.ID == adminID {
			admin.RefreshToken = refreshToken
			s.admins[email] = admin
			return nil
		}
	}
	return ErrAdminNotFound
}
