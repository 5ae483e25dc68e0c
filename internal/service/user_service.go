package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const TokenTTL = 24 * time.Hour

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	// CompanyID defaults to the caller's company.
	CompanyID string `json:"company_id"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     string `json:"role"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// DTO for returning User without exposing the password hash
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

type UserService interface {
	CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, actor Actor, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, actor Actor, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actor Actor, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, id string) error
	// EnsureAdmin creates the first admin account and its company when no user exists.
	EnsureAdmin(ctx context.Context, email, password, companyName string) (bool, error)
}

type userService struct {
	repo        repository.UserRepository
	companyRepo repository.CompanyRepository
	secret      []byte
}

func NewUserService(repo repository.UserRepository, companyRepo repository.CompanyRepository, secret []byte) UserService {
	return &userService{repo: repo, companyRepo: companyRepo, secret: secret}
}

func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		CompanyID: user.CompanyID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, validationError("invalid role: must be admin, manager or staff")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRegex.MatchString(email) {
		return nil, validationError("invalid email format")
	}
	if len(req.Password) < 8 {
		return nil, validationError("password must have at least 8 characters")
	}

	companyID := actor.CompanyID
	if req.CompanyID != "" {
		id, err := parseID(req.CompanyID, "company_id")
		if err != nil {
			return nil, err
		}
		companyID = id
	}
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		if isRecordNotFound(err) {
			return nil, validationError("company not found")
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, conflictError("username already exists")
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, conflictError("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		CompanyID: companyID,
		Username:  strings.TrimSpace(req.Username),
		Email:     email,
		Password:  string(hashedPassword),
		Role:      req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateDBError(err, "user")
	}
	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	expiresAt := time.Now().Add(TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        user.ID.String(),
		"role":       user.Role,
		"company_id": user.CompanyID.String(),
		"iat":        time.Now().Unix(),
		"exp":        expiresAt.Unix(),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      mapToResponse(user),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, actor Actor, id string) (*UserResponse, error) {
	user, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, actor Actor, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.ListByCompany(ctx, actor.CompanyID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, validationError("invalid role: must be admin, manager or staff")
		}
		user.Role = req.Role
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
			return nil, conflictError("username already exists")
		}
		user.Username = req.Username
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && email != user.Email {
		if !emailRegex.MatchString(email) {
			return nil, validationError("invalid email format")
		}
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return nil, conflictError("email already exists")
		}
		user.Email = email
	}

	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, validationError("password must have at least 8 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.New("failed to hash password")
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateDBError(err, "user")
	}
	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, id string) error {
	user, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if user.ID == actor.UserID {
		return conflictError("you cannot delete your own account")
	}
	return s.repo.Delete(ctx, user.ID)
}

func (s *userService) EnsureAdmin(ctx context.Context, email, password, companyName string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	company, err := s.companyRepo.GetByName(ctx, companyName)
	if err != nil {
		if !isRecordNotFound(err) {
			return false, fmt.Errorf("failed to load company: %w", err)
		}
		company = &model.Company{Name: companyName}
		if err := s.companyRepo.Create(ctx, company); err != nil {
			return false, fmt.Errorf("failed to create company: %w", err)
		}
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}
	_, err = s.CreateUser(ctx, Actor{CompanyID: company.ID, Role: model.RoleAdmin}, CreateUserRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// load fetches a user of the actor's company.
func (s *userService) load(ctx context.Context, actor Actor, rawID string) (*model.User, error) {
	id, err := parseID(rawID, "user id")
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "user")
	}
	if user.CompanyID != actor.CompanyID {
		return nil, notFoundError("user")
	}
	return user, nil
}
