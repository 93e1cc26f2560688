package cache

import "fmt"

// ResultKey builds the cache key for a bundle digest.
func ResultKey(digest string) string {
	return fmt.Sprintf("extract:result:%s", digest)
}
