package util

import "golang.org/x/crypto/bcrypt"

// GeneratePasswordHash 生成 bcrypt 密码哈希
// 超过 72 字节的密码由 bcrypt 返回 ErrPasswordTooLong
func GeneratePasswordHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPasswordHash reports whether password matches the stored bcrypt hash.
func CheckPasswordHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
