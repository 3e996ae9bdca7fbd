package crypto_util

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"
)

// CalculateBlake3 计算输入的 Blake3 哈希值。
// 用于配方 (recipe) 摘要和缓存键。
func CalculateBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CalculateBlake2b256 计算输入的 Blake2b-256 哈希值。
func CalculateBlake2b256(data []byte) string {
	hash := blake2b.Sum256(data)
	return hex.EncodeToString(hash[:])
}
