package employee

import "time"

// Account is the credential-store record that owns the canonical employee
// key. It carries shadow copies of the descriptive fields so the system
// stays functional when no matching profile exists.
type Account struct {
	ID               string    `gorm:"column:id;primaryKey"`
	LoginName        string    `gorm:"column:login_name;uniqueIndex;not null"`
	PasswordHash     string    `gorm:"column:password_hash;not null"`
	Role             string    `gorm:"column:role;not null;default:employee"`
	IsActive         bool      `gorm:"column:is_active;default:true"`
	Name             string    `gorm:"column:name"`
	Email            string    `gorm:"column:email"`
	Department       string    `gorm:"column:department"`
	Position         string    `gorm:"column:position"`
	EmploymentStatus string    `gorm:"column:employment_status"`
	CreatedAt        time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;default:now()"`
}

func (Account) TableName() string {
	return "accounts"
}

// Profile is the independently written descriptive record. Its key may drift
// in format from the account key (case, separators, prefix), so joins go
// through the identity normalizer rather than byte equality.
type Profile struct {
	ProfileID        string    `gorm:"column:profile_id;primaryKey"`
	Name             *string   `gorm:"column:name"`
	Email            *string   `gorm:"column:email"`
	Department       *string   `gorm:"column:department"`
	Position         *string   `gorm:"column:position"`
	EmploymentStatus *string   `gorm:"column:employment_status"`
	CreatedAt        time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;default:now()"`
}

func (Profile) TableName() string {
	return "profiles"
}
