package store

import (
	"context"
	"errors"
	"fmt"
)

// Store is the local persistence capability for serialized cart blobs.
// Consumers define this interface, not the storage implementations.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")

// CartKey namespaces the cart blob per user, so switching accounts on the
// same device does not leak another user's cart.
func CartKey(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("cart:%s", userID)
}
