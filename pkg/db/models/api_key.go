package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey stores the Argon2id hash of an issued client key.
type APIKey struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	KeyHash    string     `gorm:"column:key_hash;not null"`
	Revoked    bool       `gorm:"column:revoked;not null;default:false"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
