package mocks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/VitaminP8/threadly/internal/model"
)

// MockUserStorage реализует интерфейс user.UserStorage для тестирования
type MockUserStorage struct {
	mu        sync.Mutex
	users     map[string]*model.User // username -> user
	emails    map[string]string      // email -> username
	passwords map[string]string      // username -> password
	nextID    uint
}

func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:     make(map[string]*model.User),
		emails:    make(map[string]string),
		passwords: make(map[string]string),
		nextID:    1,
	}
}

func (m *MockUserStorage) RegisterUser(username, email, password string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return nil, model.Conflict("user %s already exists", username)
	}
	if existingUsername, exists := m.emails[email]; exists {
		return nil, model.Conflict("email %s already registered to user %s", email, existingUsername)
	}

	user := &model.User{
		ID:       m.nextID,
		Username: username,
		Email:    email,
	}
	m.nextID++

	m.users[username] = user
	m.emails[email] = username
	m.passwords[username] = password

	return user, nil
}

// LoginUser вместо JWT отдает строку с id пользователя
func (m *MockUserStorage) LoginUser(username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[username]
	if !exists {
		return "", fmt.Errorf("user %s not found", username)
	}

	storedPassword, exists := m.passwords[username]
	if !exists || storedPassword != password {
		return "", errors.New("invalid password or username")
	}

	return fmt.Sprintf("jwt-token-for-user-%d", user.ID), nil
}

// GetUserByUsername вспомогательный метод для тестирования
func (m *MockUserStorage) GetUserByUsername(username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[username]
	if !exists {
		return nil, errors.New("user not found")
	}
	return user, nil
}
