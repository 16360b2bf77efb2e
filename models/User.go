package models

import (
	"errors"
	"html"
	"strings"
	"time"

	"github.com/adriannogy/TFG/security"

	"github.com/badoux/checkmail"
	"gorm.io/gorm"
)

type User struct {
	ID                uint       `gorm:"primary_key;autoIncrement" json:"id"`
	Username          string     `gorm:"size:255;not null;unique" json:"username"`
	Email             string     `gorm:"size:100;not null;unique" json:"email"`
	Password          string     `gorm:"size:255;not null" json:"password,omitempty"`
	AvatarURL         string     `gorm:"size:512" json:"avatar_url"`
	IsPrivate         bool       `gorm:"not null;default:true" json:"is_private"`
	Verified          bool       `gorm:"not null;default:false" json:"verified"`
	VerificationToken string     `gorm:"size:64;index" json:"-"`
	ResetToken        string     `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry  *time.Time `json:"-"`
	DeactivatedAt     *time.Time `gorm:"index" json:"deactivated_at,omitempty"`
	CreatedAt         time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (u *User) HashPassword() error {
	hashedPassword, err := security.Hash(u.Password)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) Prepare() {
	u.Username = html.EscapeString(strings.ToLower(strings.TrimSpace(u.Username)))
	u.Email = html.EscapeString(strings.ToLower(strings.TrimSpace(u.Email)))
}

func (u *User) Validate(action string) map[string]string {
	var errorMessages = make(map[string]string)

	switch strings.ToLower(action) {
	case "login":
		if u.Password == "" {
			errorMessages["Required_password"] = "Required Password"
		}
		if u.Email == "" {
			errorMessages["Required_email"] = "Required Email"
		}
		if u.Email != "" {
			if err := checkmail.ValidateFormat(u.Email); err != nil {
				errorMessages["Invalid_email"] = "Invalid Email"
			}
		}
	case "forgotpassword":
		if u.Email == "" {
			errorMessages["Required_email"] = "Required Email"
		}
		if u.Email != "" {
			if err := checkmail.ValidateFormat(u.Email); err != nil {
				errorMessages["Invalid_email"] = "Invalid Email"
			}
		}
	default:
		if u.Username == "" {
			errorMessages["Required_username"] = "Required Username"
		}
		if u.Password == "" {
			errorMessages["Required_password"] = "Required Password"
		}
		if u.Password != "" && len(u.Password) < 6 {
			errorMessages["Invalid_password"] = "Password should be at least 6 characters"
		}
		if u.Email == "" {
			errorMessages["Required_email"] = "Required Email"
		}
		if u.Email != "" {
			if err := checkmail.ValidateFormat(u.Email); err != nil {
				errorMessages["Invalid_email"] = "Invalid Email"
			}
		}
	}
	return errorMessages
}

func (u *User) FindUserByID(db *gorm.DB, uid uint) (*User, error) {
	var user User
	err := db.Where("id = ?", uid).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (u *User) FindUserByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	err := db.Where("username = ?", strings.ToLower(username)).Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *User) FindUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	err := db.Where("lower(email) = ?", strings.ToLower(email)).Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsActive reports whether the account has not been soft-deleted.
func (u *User) IsActive() bool {
	return u.DeactivatedAt == nil
}
