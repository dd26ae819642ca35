package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultJWTExpireHours = 7 * 24
	affiliateSignupNotes  = "Auto-generated from registration"
)

// AuthService 用户注册、登录与 token 签发
type AuthService struct {
	cfg        *config.Config
	users      repository.UserRepository
	affiliates *AffiliateService

	// registerMu 串行化注册，保证邮箱唯一与首个管理员判断
	registerMu sync.Mutex
	now        func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, users repository.UserRepository, affiliates *AffiliateService) *AuthService {
	return &AuthService{
		cfg:        cfg,
		users:      users,
		affiliates: affiliates,
		now:        time.Now,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	RoleRequested string `json:"roleRequested"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	RoleRequested string `json:"roleRequested"`
}

// UserJWTClaims JWT 声明
type UserJWTClaims struct {
	UserID int    `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	cost := s.cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// Register 注册用户；affiliate 同时创建待审核账本，admin 仅允许首个
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := repository.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	role := constants.RoleUser
	switch strings.ToLower(strings.TrimSpace(input.RoleRequested)) {
	case constants.RoleAffiliate:
		role = constants.RoleAffiliate
	case constants.RoleAdmin:
		admins, err := s.users.CountByRole(ctx, constants.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins > 0 {
			return nil, ErrAdminExists
		}
		role = constants.RoleAdmin
	}

	hashed, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:    email,
		Password: hashed,
		Role:     role,
		Status:   constants.UserStatusActive,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", role)

	if role == constants.RoleAffiliate {
		application := &models.AffiliateApplication{
			Date:   s.now().UTC(),
			Status: constants.AffiliateStatusPending,
			Notes:  affiliateSignupNotes,
		}
		if _, err := s.affiliates.CreatePending(ctx, user.ID, user.Email, 0, application); err != nil {
			logger.Errorw("user_register_affiliate_ledger_failed", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// Login 校验凭证并签发 token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, time.Time, error) {
	email := repository.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(user.Password, input.Password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if strings.EqualFold(strings.TrimSpace(input.RoleRequested), constants.RoleAdmin) && user.Role != constants.RoleAdmin {
		return nil, "", time.Time{}, ErrNotAdmin
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.users.Save(ctx, user); err != nil {
		logger.Warnw("user_last_login_update_failed", "user_id", user.ID, "error", err)
	}
	return user, token, expiresAt, nil
}

// RegisterAffiliate 已登录用户申请成为推广员，返回新账本与刷新后的 token
func (s *AuthService) RegisterAffiliate(ctx context.Context, userID int) (*models.Affiliate, string, time.Time, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	application := &models.AffiliateApplication{
		Date:   s.now().UTC(),
		Status: constants.AffiliateStatusPending,
	}
	affiliate, err := s.affiliates.CreatePending(ctx, user.ID, user.Email, 0, application)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if user.Role == constants.RoleUser {
		user.Role = constants.RoleAffiliate
		if err := s.users.Save(ctx, user); err != nil {
			return nil, "", time.Time{}, err
		}
	}
	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return affiliate, token, expiresAt, nil
}

// Me 当前用户
func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = defaultJWTExpireHours
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := UserJWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &UserJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid && claims.UserID > 0 {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}
