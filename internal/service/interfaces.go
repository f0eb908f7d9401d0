package service

import (
	"taskManager/internal/auth"
	"taskManager/internal/models"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenIssuer interface {
	GenerateToken(user *models.User) (auth.Token, error)
}
