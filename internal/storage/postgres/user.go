package postgres

import (
	"fmt"

	"github.com/VitaminP8/threadly/internal/auth"
	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"

	"golang.org/x/crypto/bcrypt"
)

type UserPostgresStorage struct {
	db *gorm.DB
}

func NewUserPostgresStorage(db *gorm.DB) *UserPostgresStorage {
	return &UserPostgresStorage{db: db}
}

func (s *UserPostgresStorage) RegisterUser(username, email, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, model.Invalid("username", "username and password are required")
	}

	// проверка - существует ли такой пользователь
	var existUser models.User
	err := s.db.Where("username = ?", username).First(&existUser).Error
	if err == nil {
		return nil, model.Conflict("user %s already exists", username)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	err = s.db.Create(user).Error
	if isUniqueViolation(err) {
		return nil, model.Conflict("user %s already exists", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &model.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

func (s *UserPostgresStorage) LoginUser(username, password string) (string, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return "", fmt.Errorf("user %s not found", username)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		return "", fmt.Errorf("invalid password or username: %w", err)
	}

	return auth.IssueToken(user.ID, user.Username)
}
