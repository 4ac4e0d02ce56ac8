package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/config"
	"github.com/sharath018/welfare-management-backend/utils"
)

type Service interface {
	Login(input LoginInput) (*TokenPair, *User, error)
	Refresh(refreshToken string) (string, error)
	GetUserByID(userID uint) (User, error)

	// Beneficiary onboarding via OTP
	RequestOTP(input RequestOTPInput) error
	VerifyOTP(input VerifyOTPInput) (*TokenPair, *User, bool, error)

	// Admin user management
	CreateAdmin(input CreateAdminInput, createdBy string) (*User, error)
	UpdateScope(userID uint, input UpdateScopeInput) (*AdminScope, error)

	// Password reset methods
	RequestPasswordReset(email string) error
	ResetPassword(token string, newPassword string) error
	Logout() error

	GetPublicRoles() ([]PublicRoleResponse, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	otpTTL        time.Duration
}

func NewService(r Repository, cfg *config.Config) Service {
	return &service{
		repo:          r,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
		otpTTL:        time.Duration(cfg.OTPTTLMinutes) * time.Minute,
	}
}

// =============================
// Login (admins & coordinators)
// =============================

func (s *service) Login(in LoginInput) (*TokenPair, *User, error) {
	user, err := s.repo.FindByEmail(in.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound || strings.Contains(err.Error(), "record not found") {
			return nil, nil, errors.New("couldn't find your account")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	switch user.Status {
	case "pending":
		return nil, nil, errors.New("your account is pending approval")
	case "inactive":
		return nil, nil, errors.New("your account is inactive")
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, user, nil
}

func (s *service) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role_id": user.RoleID,
		"role":    user.Role.RoleName,
		"exp":     time.Now().Add(s.accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role_id": user.RoleID,
		"exp":     time.Now().Add(s.refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

// =============================
// Refresh
// =============================

func (s *service) Refresh(refreshToken string) (string, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", errors.New("invalid token claims")
	}

	userID := uint(claims["user_id"].(float64))
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return "", errors.New("user not found")
	}

	return s.generateAccessToken(&user)
}

// =============================
// OTP onboarding (beneficiaries)
// =============================

func (s *service) RequestOTP(in RequestOTPInput) error {
	phone, err := cleanPhone(in.Phone)
	if err != nil {
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return errors.New("could not generate verification code")
	}

	if err := utils.SetOTP(phone, code, s.otpTTL); err != nil {
		return errors.New("could not save verification code")
	}

	if err := utils.SendOTPSMS(phone, code, int(s.otpTTL.Minutes())); err != nil {
		return errors.New("failed to send verification code")
	}

	return nil
}

// VerifyOTP checks the pending code, then finds or creates the beneficiary
// for the phone. Creation is idempotent: a second verification for the same
// phone logs into the existing account.
func (s *service) VerifyOTP(in VerifyOTPInput) (*TokenPair, *User, bool, error) {
	phone, err := cleanPhone(in.Phone)
	if err != nil {
		return nil, nil, false, err
	}

	stored, err := utils.GetOTP(phone)
	if err != nil || stored != in.Code {
		return nil, nil, false, errors.New("invalid or expired verification code")
	}

	role, err := s.repo.FindRoleByName(RoleBeneficiary)
	if err != nil {
		return nil, nil, false, errors.New("beneficiary role not seeded")
	}

	fullName := in.FullName
	if fullName == "" {
		fullName = "Beneficiary " + phone[len(phone)-4:]
	}

	user, created, err := s.repo.FindOrCreateBeneficiary(phone, fullName, role.ID)
	if err != nil {
		return nil, nil, false, err
	}

	if user.Status == "inactive" {
		return nil, nil, false, errors.New("your account is inactive")
	}

	_ = utils.DeleteOTP(phone) // single use

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, false, err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, nil, false, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, user, created, nil
}

// =============================
// Admin user management
// =============================

func (s *service) CreateAdmin(in CreateAdminInput, createdBy string) (*User, error) {
	roleName := strings.ToLower(in.Role)
	if roleName == RoleBeneficiary {
		return nil, errors.New("beneficiaries register through OTP onboarding")
	}

	role, err := s.repo.FindRoleByName(roleName)
	if err != nil {
		return nil, errors.New("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	phone, err := cleanPhone(in.Phone)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        phone,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Status:       "active",
		CreatedBy:    createdBy,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	if len(in.RegionIDs) > 0 || len(in.ProjectIDs) > 0 || len(in.SchemeIDs) > 0 {
		scope := &AdminScope{
			UserID:     user.ID,
			RegionIDs:  in.RegionIDs,
			ProjectIDs: in.ProjectIDs,
			SchemeIDs:  in.SchemeIDs,
		}
		if err := s.repo.SaveScope(scope); err != nil {
			return nil, errors.New("failed to save admin scope")
		}
		user.AdminScope = scope
	}

	if err := utils.SendAdminCredentialsEmail(user.Email, user.FullName, roleName, in.Password); err != nil {
		fmt.Printf("⚠️ Failed to send credentials email to %s: %v\n", user.Email, err)
	}

	return user, nil
}

// UpdateScope rewrites a user's scope in the normalized RegionIDs form and
// clears the legacy single-region fields.
func (s *service) UpdateScope(userID uint, in UpdateScopeInput) (*AdminScope, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	roleName := user.Role.RoleName
	if roleName == RoleSuperAdmin || roleName == RoleStateAdmin {
		return nil, errors.New("global roles do not carry an explicit scope")
	}
	if roleName == RoleBeneficiary {
		return nil, errors.New("beneficiaries do not carry an admin scope")
	}

	scope := &AdminScope{
		UserID:     userID,
		RegionIDs:  in.RegionIDs,
		ProjectIDs: in.ProjectIDs,
		SchemeIDs:  in.SchemeIDs,
	}
	if err := s.repo.SaveScope(scope); err != nil {
		return nil, err
	}

	return scope, nil
}

// =============================
// Forgot Password
// =============================

func (s *service) RequestPasswordReset(email string) error {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return errors.New("user not found")
	}

	resetToken := generateSecureToken()
	ttl := 15 * time.Minute
	key := fmt.Sprintf("reset_token:%s", resetToken)

	err = utils.SetToken(key, fmt.Sprint(user.ID), ttl)
	if err != nil {
		return errors.New("could not save reset token")
	}

	if err := utils.SendResetLink(user.Email, resetToken); err != nil {
		return errors.New("failed to send email")
	}

	return nil
}

func (s *service) ResetPassword(token string, newPassword string) error {
	key := fmt.Sprintf("reset_token:%s", token)
	val, err := utils.GetToken(key)
	if err != nil {
		return errors.New("invalid or expired token")
	}

	var userID uint
	_, err = fmt.Sscan(val, &userID)
	if err != nil {
		return errors.New("invalid token data")
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		return errors.New("user not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	err = s.repo.Update(&user)
	if err != nil {
		return errors.New("failed to update password")
	}

	_ = utils.DeleteToken(key) // Cleanup token

	return nil
}

// =============================
// Logout
// =============================

func (s *service) Logout() error {
	// JWT is stateless — frontend should just clear token
	return nil
}

// =============================
// Get User By ID
// =============================

func (s *service) GetUserByID(userID uint) (User, error) {
	return s.repo.FindByID(userID)
}

// =============================
// Helpers
// =============================

func generateSecureToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func cleanPhone(raw string) (string, error) {
	re := regexp.MustCompile(`\D`)
	cleaned := re.ReplaceAllString(raw, "")

	// Strip leading 91 if present and length is 12
	if len(cleaned) == 12 && strings.HasPrefix(cleaned, "91") {
		cleaned = cleaned[2:]
	}

	if len(cleaned) != 10 {
		return "", errors.New("invalid phone number format")
	}

	return cleaned, nil
}

func (s *service) GetPublicRoles() ([]PublicRoleResponse, error) {
	roles, err := s.repo.GetRoles()
	if err != nil {
		return nil, err
	}

	var publicRoles []PublicRoleResponse
	for _, role := range roles {
		publicRoles = append(publicRoles, PublicRoleResponse{
			ID:          role.ID,
			RoleName:    role.RoleName,
			Description: role.Description,
		})
	}

	return publicRoles, nil
}
