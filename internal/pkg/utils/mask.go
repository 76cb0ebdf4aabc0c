package utils

import "strings"

// MaskKey скрывает середину ключа, оставляя первые и последние 4 символа.
// Короткие ключи (до 8 символов) заменяются на "****".
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// MaskKeys возвращает маскированные ключи; отсутствующий ключ отдаётся как nil
func MaskKeys(keys map[string]string) map[string]*string {
	result := make(map[string]*string, len(keys))
	for service, key := range keys {
		if key == "" {
			result[service] = nil
			continue
		}
		masked := MaskKey(key)
		result[service] = &masked
	}
	return result
}
