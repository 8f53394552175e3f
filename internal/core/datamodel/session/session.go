package session

import "time"

// Session rows are never deleted; revocation and expiry only flip is_active
// so the table doubles as an audit trail. RevokedAt stays NULL when a
// session was closed by the expiry sweep, which keeps explicit revocation
// and natural expiry distinguishable after the fact.
type Session struct {
	ID               string     `gorm:"column:id;primaryKey"`
	CanonicalID      string     `gorm:"column:canonical_id;index;not null"`
	TokenFingerprint string     `gorm:"column:token_fingerprint;uniqueIndex;not null"`
	IsActive         bool       `gorm:"column:is_active;default:true"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;index;not null"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	UserAgent        string     `gorm:"column:user_agent"`
	Origin           string     `gorm:"column:origin"`
	CreatedAt        time.Time  `gorm:"column:created_at;default:now()"`
}

func (Session) TableName() string {
	return "sessions"
}
