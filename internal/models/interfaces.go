package models

// Entity is implemented by persisted records that carry a stable identity,
// used for cache keys and audit logging.
type Entity interface {
	GetEntityID() string
	GetEntityType() string
}
