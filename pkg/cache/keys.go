package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Key pattern: skybook:{module}:{operation}:{params}
const keyPrefix = "skybook"

// SearchResultKey builds the cache key for a flight-offer search.
// Criteria are hashed so arbitrary parameter combinations stay within key-length limits.
func SearchResultKey(criteria interface{}) string {
	data, err := json.Marshal(criteria)
	if err != nil {
		return keyPrefix + ":flights:search:invalid"
	}
	sum := sha1.Sum(data)
	return keyPrefix + ":flights:search:" + hex.EncodeToString(sum[:])
}

// AirportLookupKey builds the cache key for an airport keyword lookup.
func AirportLookupKey(keyword string) string {
	return keyPrefix + ":airports:lookup:" + strings.ToLower(strings.TrimSpace(keyword))
}

// RateLimitKey builds the counter key used by the rate limiter.
func RateLimitKey(clientIP, limitType string) string {
	return keyPrefix + ":ratelimit:" + clientIP + ":" + limitType
}
