package env

import "os"

// Get reads an environment variable, falling back when it is unset or
// empty. Empty values fall through so a blank PORT in a deploy manifest
// does not silently break the listener address.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
