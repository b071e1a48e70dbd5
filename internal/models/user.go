package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Username     string          `json:"username" gorm:"unique;not null"`
	Email        string          `json:"email" gorm:"unique;not null"`
	PasswordHash string          `json:"-" gorm:"not null"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Role         string          `json:"role" gorm:"default:'EMPLOYEE'"` // SUPER_ADMIN, COMPANY_ADMIN, EMPLOYEE
	CompanyID    *uint           `json:"company_id" gorm:"index"`
	Company      *Company        `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Budget       decimal.Decimal `json:"budget" gorm:"type:decimal(12,2);not null;default:0"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"-" gorm:"index"`
}

type UserRole string

const (
	SuperAdmin   UserRole = "SUPER_ADMIN"
	CompanyAdmin UserRole = "COMPANY_ADMIN"
	Employee     UserRole = "EMPLOYEE"
)

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
