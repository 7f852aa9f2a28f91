package core

// Cache is an in-process key/value store with expiring entries.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
}
