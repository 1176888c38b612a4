package interfaces

// Storage is durable client-side key/value storage for session data.
// A missing key is reported with ok=false, not an error.
type Storage interface {
	Load(key string) (value []byte, ok bool, err error)
	Save(key string, value []byte) error
	Delete(keys ...string) error
}
