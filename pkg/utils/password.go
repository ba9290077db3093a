package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost 固定为 10
const PasswordCost = 10

// MaxPasswordBytes bcrypt 只接受 72 字节以内的输入（按字节，不是字符）
const MaxPasswordBytes = 72

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 空哈希（第三方登录用户）永远不通过
func CheckPassword(pw, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
