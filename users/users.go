package users

import (
	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a portal role
type RoleType string

const (
	RoleAdmin   RoleType = "admin"   // System administrator
	RoleAgent   RoleType = "agent"   // Collection agent working the call queue
	RoleManager RoleType = "manager" // Branch manager reviewing NPL performance
)

// Identity is a known portal user
type Identity struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"` // never serialize
	DisplayName  string   `json:"name"`
	Role         RoleType `json:"role"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the identity's hash
func (i Identity) CheckPassword(password string) bool {
	return CheckPasswordHash(password, i.PasswordHash)
}

func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleManager:
		return true
	}
	return false
}
