package redis

const (
	// KeyPrefixCapabilities is the prefix for cached capabilities snapshots
	KeyPrefixCapabilities = "ds:capabilities:"
)

// CapabilitiesKey returns the Redis key for a cache key
func CapabilitiesKey(cacheKey string) string {
	return KeyPrefixCapabilities + cacheKey
}
