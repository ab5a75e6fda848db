package cache

// RequestCacher keeps the most recent entries written under a key.
type RequestCacher interface {
	Write(key string, value []byte) error
	Read(key string) ([]string, error)
}
