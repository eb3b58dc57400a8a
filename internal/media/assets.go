package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sdko-org/media-vault/internal/models"
	"gorm.io/gorm"
)

// AssetStore is the persistence boundary for media assets.
type AssetStore interface {
	FindByID(ctx context.Context, id string) (models.MediaAsset, error)
	Create(ctx context.Context, asset *models.MediaAsset) error
}

// PostgresAssetStore backs AssetStore with the media_assets table.
type PostgresAssetStore struct {
	db *gorm.DB
}

func NewPostgresAssetStore(db *gorm.DB) *PostgresAssetStore {
	return &PostgresAssetStore{db: db}
}

func (s *PostgresAssetStore) FindByID(ctx context.Context, id string) (models.MediaAsset, error) {
	var asset models.MediaAsset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MediaAsset{}, ErrNotFound
	}
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("find asset: %w", err)
	}
	return asset, nil
}

func (s *PostgresAssetStore) Create(ctx context.Context, asset *models.MediaAsset) error {
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// MemoryAssetStore is an in-process AssetStore used by tests.
type MemoryAssetStore struct {
	mu     sync.Mutex
	assets map[string]models.MediaAsset
}

func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{assets: make(map[string]models.MediaAsset)}
}

func (s *MemoryAssetStore) FindByID(ctx context.Context, id string) (models.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return models.MediaAsset{}, ErrNotFound
	}
	return asset, nil
}

func (s *MemoryAssetStore) Create(ctx context.Context, asset *models.MediaAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.ID] = *asset
	return nil
}
