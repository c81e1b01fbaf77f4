package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
)

// Profile is an account: a pharmacy, hospital, group, or admin.
type Profile struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	Name         string          `gorm:"column:name;not null"`
	Phone        *string         `gorm:"column:phone"`
	Role         enums.Role      `gorm:"column:role;type:text;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	TaxPercent   decimal.Decimal `gorm:"column:tax_percent;type:numeric;not null;default:0"`
	FreeShipping bool            `gorm:"column:free_shipping;not null;default:false"`
	GroupID      *uuid.UUID      `gorm:"column:group_id;type:uuid"`
	Active       bool            `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
