// Package apikeys manages issued client keys. Plaintext keys are
// shown once at issue time; only Argon2id hashes are stored.
package apikeys

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
	"github.com/stockwise-ai/stockwise-backend/pkg/security"
)

// Verifier checks a presented key against the stored key set.
type Verifier interface {
	Verify(ctx context.Context, providedKey string) (*models.APIKey, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Issue creates a named key and returns its plaintext exactly once.
func (r *GormRepository) Issue(ctx context.Context, name string) (string, error) {
	key, err := security.GenerateAPIKey()
	if err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	hash, err := security.HashAPIKey(key)
	if err != nil {
		return "", fmt.Errorf("hashing key: %w", err)
	}

	record := models.APIKey{Name: name, KeyHash: hash}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("storing key: %w", err)
	}
	return key, nil
}

// Verify returns the matching active key record, or nil when the
// presented key matches nothing. The active key set is expected to be
// small (one per calling service), so scanning it is fine.
func (r *GormRepository) Verify(ctx context.Context, providedKey string) (*models.APIKey, error) {
	if providedKey == "" {
		return nil, nil
	}

	var records []models.APIKey
	err := r.db.WithContext(ctx).
		Where("revoked = ?", false).
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("loading api keys: %w", err)
	}

	for i := range records {
		ok, err := security.VerifyAPIKey(providedKey, records[i].KeyHash)
		if err != nil || !ok {
			continue
		}
		r.touch(ctx, &records[i])
		return &records[i], nil
	}
	return nil, nil
}

// Revoke deactivates a key by name.
func (r *GormRepository) Revoke(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("name = ? AND revoked = ?", name, false).
		Update("revoked", true)
	if result.Error != nil {
		return fmt.Errorf("revoking key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no active key named %q", name)
	}
	return nil
}

// touch records key usage; failures here must not block the request.
func (r *GormRepository) touch(ctx context.Context, record *models.APIKey) {
	now := time.Now().UTC()
	r.db.WithContext(ctx).
		Model(record).
		Update("last_used_at", now)
}

// CountActive reports how many non-revoked keys exist. Used to decide
// whether key auth is enforced at all.
func (r *GormRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("revoked = ?", false).
		Count(&count).Error
	return count, err
}
