package auth

import (
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	LoginName  string `json:"login_name"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// Validate checks required fields; failures come back as field-level
// validation errors, never as credential failures.
func (d LoginDTO) Validate() error {
	if err := validation.ValidateLoginName(d.LoginName); err != nil {
		return err
	}
	if err := validation.ValidatePassword(d.Password); err != nil {
		return err
	}
	return nil
}
