// Package storage is the key-value persistence used for the cart and session
// snapshots. Any implementation must make a Put visible to the next Get.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
