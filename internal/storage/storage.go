package storage

import "errors"

// ErrNotFound is returned when no value has been stored under a name yet.
var ErrNotFound = errors.New("no value found")

// Logical names of the persisted collections. Everything under these keys is
// a JSON blob; everything else the application tracks is session or call
// state and deliberately does not survive a restart.
const (
	KeyUsers          = "app_users"
	KeyMessages       = "app_messages"
	KeyFriendRequests = "app_friend_requests"
	KeySitePassword   = "site_password"
)

// Storage is the durable key-value collaborator the state store mirrors
// every mutation into.
type Storage interface {
	Get(name string) ([]byte, error)
	Set(name string, value []byte) error
	Close() error
}
