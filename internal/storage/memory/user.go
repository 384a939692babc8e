package memory

import (
	"fmt"
	"sync"

	"github.com/VitaminP8/threadly/internal/auth"
	"github.com/VitaminP8/threadly/internal/model"

	"golang.org/x/crypto/bcrypt"
)

type UserMemoryStorage struct {
	mu        sync.Mutex
	users     map[string]*model.User
	passwords map[string]string
	nextID    uint
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users:     make(map[string]*model.User),
		passwords: make(map[string]string),
		nextID:    1,
	}
}

func (s *UserMemoryStorage) RegisterUser(username, email, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, model.Invalid("username", "username and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, model.Conflict("user %s already exists", username)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:       s.nextID,
		Username: username,
		Email:    email,
	}
	s.nextID++

	s.users[username] = user
	s.passwords[username] = string(hashedPassword)

	cp := *user
	return &cp, nil
}

func (s *UserMemoryStorage) LoginUser(username, password string) (string, error) {
	s.mu.Lock()
	user, exists := s.users[username]
	hashedPassword := s.passwords[username]
	s.mu.Unlock()

	if !exists {
		return "", fmt.Errorf("user %s not found", username)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return "", fmt.Errorf("password for user %s is incorrect", username)
	}

	return auth.IssueToken(user.ID, user.Username)
}
