/*
 * @author: sun977
 * @description: uuid工具包
 * @func: 提供uuid生成、校验工具函数
 */

package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// 标准UUID格式: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// GenerateUUID 生成UUID v4（基于随机数）
// 返回标准格式的UUID字符串，如：550e8400-e29b-41d4-a716-446655440000
func GenerateUUID() (string, error) {
	uuid := make([]byte, 16)
	if _, err := rand.Read(uuid); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	// 设置版本号 (4) 和变体位
	uuid[6] = (uuid[6] & 0x0f) | 0x40
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16]), nil
}

// MustUUID 生成UUID，失败时panic
// 仅在进程内部生成标识时使用 (crypto/rand 失败意味着系统已不可用)
func MustUUID() string {
	id, err := GenerateUUID()
	if err != nil {
		panic(err)
	}
	return id
}

// IsValidUUID 校验是否为标准格式UUID
func IsValidUUID(s string) bool {
	return uuidRegex.MatchString(s)
}
