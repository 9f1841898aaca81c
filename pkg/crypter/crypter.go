// Package crypter 负责用户密码的单向哈希。
package crypter

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost 密码哈希强度
const DefaultCost = 12

// maxPasswordBytes bcrypt 只使用前 72 字节
const maxPasswordBytes = 72

var (
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
	ErrEmptyStoredHash  = errors.New("stored password hash is empty")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// Crypter 密码哈希器
type Crypter interface {
	Encrypt(password string) (string, error)
	Verify(password, encrypted string) error
}

// BcryptCrypter bcrypt 实现
type BcryptCrypter struct {
	cost int
}

// NewBcryptCrypter cost 越界时回退到 DefaultCost
func NewBcryptCrypter(cost int) *BcryptCrypter {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptCrypter{cost: cost}
}

func (c *BcryptCrypter) Cost() int { return c.cost }

// Encrypt 生成带盐哈希，同一明文每次结果不同
func (c *BcryptCrypter) Encrypt(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 不匹配时返回 ErrPasswordMismatch
func (c *BcryptCrypter) Verify(password, encrypted string) error {
	if strings.TrimSpace(encrypted) == "" {
		return ErrEmptyStoredHash
	}
	err := bcrypt.CompareHashAndPassword([]byte(encrypted), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
