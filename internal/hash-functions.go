package internal

// StringHash returns a hash value for the given string value.
func StringHash(s string) (hash uint64) {
	// DJBX33A
	hash = 5381
	for _, b := range s {
		hash = ((hash << 5) + hash) + uint64(b)
	}
	return
}

// IntHash returns a hash value for the given integer value.
func IntHash(i uint64) uint64 {
	// splitmix64 finalizer
	i ^= i >> 30
	i *= 0xbf58476d1ce4e5b9
	i ^= i >> 27
	i *= 0x94d049bb133111eb
	i ^= i >> 31
	return i
}

// MixHash combines a seed with a position-like value into a new seed.
// Runs with the same inputs always produce the same result, which keeps
// derived random number generators reproducible.
func MixHash(seed int64, value uint64) int64 {
	return int64(IntHash(uint64(seed) ^ IntHash(value)))
}
