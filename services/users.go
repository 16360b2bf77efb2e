package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/adriannogy/TFG/auth"
	"github.com/adriannogy/TFG/mailer"
	"github.com/adriannogy/TFG/models"
	"github.com/adriannogy/TFG/security"

	"github.com/twinj/uuid"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

// UserService owns the account lifecycle: registration, verification,
// credentials and profile settings. Email delivery failures are logged and
// never fail the operation that triggered them.
type UserService struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func NewUserService(db *gorm.DB, m mailer.Mailer) *UserService {
	return &UserService{DB: db, Mailer: m}
}

// Register creates an unverified account. Registering with the email of a
// soft-deleted account reactivates it under the new credentials instead of
// conflicting.
func (s *UserService) Register(ctx context.Context, user *models.User) (*models.User, error) {
	user.Prepare()
	if msgs := user.Validate(""); len(msgs) > 0 {
		return nil, validationError(msgs)
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", user.Email).Take(&existing).Error
	switch {
	case err == nil && existing.IsActive():
		return nil, conflictf("email already registered")
	case err == nil:
		return s.reactivate(ctx, &existing, user)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var sameName models.User
	err = s.DB.WithContext(ctx).Where("username = ?", user.Username).Take(&sameName).Error
	if err == nil {
		return nil, conflictf("username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	// New accounts start private; the privacy endpoint toggles it later.
	user.IsPrivate = true
	user.Verified = false
	user.VerificationToken = uuid.NewV4().String()

	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	if err := s.Mailer.SendVerification(user.Email, user.Username, user.VerificationToken); err != nil {
		log.Printf("could not send verification email to %s: %v", user.Email, err)
	}
	log.Printf("registered user %q", user.Username)
	return user, nil
}

// reactivate revives a soft-deleted account with the incoming credentials.
// The account must verify its email again.
func (s *UserService) reactivate(ctx context.Context, existing, incoming *models.User) (*models.User, error) {
	if err := incoming.HashPassword(); err != nil {
		return nil, err
	}
	existing.Username = incoming.Username
	existing.Password = incoming.Password
	existing.DeactivatedAt = nil
	existing.Verified = false
	existing.VerificationToken = uuid.NewV4().String()

	if err := s.DB.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}

	if err := s.Mailer.SendVerification(existing.Email, existing.Username, existing.VerificationToken); err != nil {
		log.Printf("could not send verification email to %s: %v", existing.Email, err)
	}
	log.Printf("reactivated account for %q", existing.Username)
	return existing, nil
}

// Login checks credentials and returns a signed token. Unverified and
// deactivated accounts are rejected even with a correct password.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	probe := models.User{Email: email, Password: password}
	probe.Prepare()
	if msgs := probe.Validate("login"); len(msgs) > 0 {
		return "", nil, validationError(msgs)
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", probe.Email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, unauthorizedf("incorrect email or password")
	}
	if err != nil {
		return "", nil, err
	}

	if err := security.VerifyPassword(user.Password, password); err != nil {
		return "", nil, unauthorizedf("incorrect email or password")
	}
	if !user.Verified {
		return "", nil, forbiddenf("account not verified, check your email")
	}
	if !user.IsActive() {
		return "", nil, forbiddenf("account is deactivated")
	}

	token, err := auth.CreateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// VerifyEmail consumes a verification token, marking the account verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return badRequestf("verification token required")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("verification_token = ?", token).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("invalid verification token")
	}
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Model(&user).
		Updates(map[string]interface{}{"verified": true, "verification_token": ""}).Error
	if err != nil {
		return err
	}

	if err := s.Mailer.SendWelcome(user.Email, user.Username); err != nil {
		log.Printf("could not send welcome email to %s: %v", user.Email, err)
	}
	log.Printf("user %q verified their email", user.Username)
	return nil
}

// RequestPasswordReset issues a reset token valid for one hour. To avoid
// account enumeration an unknown email is reported as success.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	probe := models.User{Email: email}
	probe.Prepare()
	if msgs := probe.Validate("forgotpassword"); len(msgs) > 0 {
		return validationError(msgs)
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", probe.Email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewV4().String()
	expiry := time.Now().Add(resetTokenTTL)
	err = s.DB.WithContext(ctx).Model(&user).
		Updates(map[string]interface{}{"reset_token": token, "reset_token_expiry": expiry}).Error
	if err != nil {
		return err
	}

	if err := s.Mailer.SendPasswordReset(user.Email, user.Username, token); err != nil {
		log.Printf("could not send reset email to %s: %v", user.Email, err)
	}
	return nil
}

// ResetPassword consumes a live reset token and stores the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || len(newPassword) < 6 {
		return badRequestf("token and a password of at least 6 characters are required")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("reset_token = ?", token).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("invalid reset token")
	}
	if err != nil {
		return err
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return badRequestf("reset token has expired")
	}

	hashed, err := security.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password":           string(hashed),
		"reset_token":        "",
		"reset_token_expiry": nil,
	}).Error
}

// ChangeUsername renames the account, rejecting handles already in use.
func (s *UserService) ChangeUsername(ctx context.Context, userID uint, newUsername string) (*models.User, error) {
	newUsername = strings.ToLower(strings.TrimSpace(newUsername))
	if newUsername == "" {
		return nil, badRequestf("username required")
	}

	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var taken models.User
	err = s.DB.WithContext(ctx).Where("username = ? AND id <> ?", newUsername, userID).Take(&taken).Error
	if err == nil {
		return nil, conflictf("username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(user).Update("username", newUsername).Error; err != nil {
		return nil, err
	}
	user.Username = newUsername
	return user, nil
}

// ChangeEmail updates the address and resets verification for it.
func (s *UserService) ChangeEmail(ctx context.Context, userID uint, newEmail string) (*models.User, error) {
	probe := models.User{Email: newEmail}
	probe.Prepare()
	if msgs := probe.Validate("forgotpassword"); len(msgs) > 0 {
		return nil, validationError(msgs)
	}

	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var taken models.User
	err = s.DB.WithContext(ctx).Where("email = ? AND id <> ?", probe.Email, userID).Take(&taken).Error
	if err == nil {
		return nil, conflictf("email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token := uuid.NewV4().String()
	err = s.DB.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"email":              probe.Email,
		"verified":           false,
		"verification_token": token,
	}).Error
	if err != nil {
		return nil, err
	}
	user.Email = probe.Email

	if err := s.Mailer.SendVerification(user.Email, user.Username, token); err != nil {
		log.Printf("could not send verification email to %s: %v", user.Email, err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return badRequestf("password must have at least 6 characters")
	}

	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := security.VerifyPassword(user.Password, oldPassword); err != nil {
		return unauthorizedf("current password is incorrect")
	}

	hashed, err := security.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(user).Update("password", string(hashed)).Error
}

// SetPrivacy toggles whether the profile is hidden from non-followers.
func (s *UserService) SetPrivacy(ctx context.Context, userID uint, private bool) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(user).Update("is_private", private).Error
}

// SetAvatar stores a new avatar URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, url string) (*models.User, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("avatar_url", url).Error; err != nil {
		return nil, err
	}
	user.AvatarURL = url
	return user, nil
}

// Deactivate soft-deletes the account. Relations and reviews are kept; the
// account stops authenticating and its email can reactivate later.
func (s *UserService) Deactivate(ctx context.Context, userID uint) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.DB.WithContext(ctx).Model(user).Update("deactivated_at", now).Error; err != nil {
		return err
	}
	log.Printf("user %q deactivated their account", user.Username)
	return nil
}

// Search finds active users whose handle starts with the prefix, excluding
// the searcher.
func (s *UserService) Search(ctx context.Context, searcherID uint, prefix string) ([]UserSummary, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []UserSummary{}, nil
	}

	var rows []UserSummary
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Select("username, avatar_url").
		Where("username LIKE ? AND id <> ? AND deactivated_at IS NULL", prefix+"%", searcherID).
		Order("username ASC").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []UserSummary{}
	}
	return rows, nil
}

func (s *UserService) userByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
