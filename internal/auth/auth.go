// Package auth handles registration and login against the stats store.
// Sessions, tokens and everything beyond name+password are out of scope;
// the game itself accepts guests.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"wolftag/internal/stats"
)

var ErrInvalidCredentials = errors.New("invalid name or password")
var ErrBadName = errors.New("name must be 2-24 characters")
var ErrBadPassword = errors.New("password must be at least 6 characters")

// CredentialStore is the slice of the stats store auth needs. Satisfied by
// *stats.DB and *stats.Memory.
type CredentialStore interface {
	CreateUser(name, passwordHash string) error
	Credentials(name string) (string, bool, error)
	FindByName(name string) (stats.Record, bool, error)
}

type Service struct {
	store CredentialStore
}

func NewService(store CredentialStore) *Service {
	return &Service{store: store}
}

func (s *Service) Register(name, password string) (stats.Record, error) {
	if len(name) < 2 || len(name) > 24 {
		return stats.Record{}, ErrBadName
	}
	if len(password) < 6 {
		return stats.Record{}, ErrBadPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return stats.Record{}, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.CreateUser(name, string(hash)); err != nil {
		return stats.Record{}, err
	}
	return stats.Record{Name: name}, nil
}

func (s *Service) Login(name, password string) (stats.Record, error) {
	hash, found, err := s.store.Credentials(name)
	if err != nil {
		return stats.Record{}, fmt.Errorf("lookup credentials: %w", err)
	}
	if !found {
		return stats.Record{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return stats.Record{}, ErrInvalidCredentials
	}
	rec, _, err := s.store.FindByName(name)
	if err != nil {
		return stats.Record{}, fmt.Errorf("load record: %w", err)
	}
	return rec, nil
}
