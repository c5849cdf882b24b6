package util

import (
	"crypto/md5"
	"encoding/hex"
)

// EncodeMD5 returns the hex MD5 digest of s.
// CLI 用它把 endpoint 与身份拼成缓存分区键
func EncodeMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
