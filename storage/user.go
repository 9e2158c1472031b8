package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"contentengine/models"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"
)

// userRecord is the persisted form of a local account
type userRecord struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// UserStorage manages local accounts in bbolt
type UserStorage struct {
	db   *bbolt.DB
	cost int
}

// NewUserStorage creates a new user storage instance
func NewUserStorage(db *bbolt.DB) *UserStorage {
	return &UserStorage{db: db, cost: bcrypt.DefaultCost}
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserStorage) SetHashCost(cost int) {
	s.cost = cost
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a new user. Returns ErrDuplicate when the email is taken.
func (s *UserStorage) CreateUser(email, password string) (*models.User, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec := userRecord{
		User: models.User{
			ID:        uuid.NewString(),
			Email:     normalizeEmail(email),
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: string(hashedPassword),
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket([]byte(userEmailBucket))
		if emails.Get([]byte(rec.Email)) != nil {
			return ErrDuplicate
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := tx.Bucket([]byte(userBucket)).Put([]byte(rec.ID), data); err != nil {
			return err
		}
		return emails.Put([]byte(rec.Email), []byte(rec.ID))
	})
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// GetUser retrieves a user by ID
func (s *UserStorage) GetUser(userID string) (*models.User, error) {
	rec, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// Authenticate verifies an email/password pair and returns the user.
// Unknown emails and wrong passwords both yield ErrNotFound.
func (s *UserStorage) Authenticate(email, password string) (*models.User, error) {
	var userID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(userEmailBucket)).Get([]byte(normalizeEmail(email)))
		if id == nil {
			return ErrNotFound
		}
		userID = string(id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return &rec.User, nil
}

func (s *UserStorage) load(userID string) (*userRecord, error) {
	var rec userRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket([]byte(userBucket)), []byte(userID), &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
