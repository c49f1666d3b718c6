// Package secure keeps resolved secret values encrypted in memory between
// the moment a value is accepted and the moment it is written to the podman
// secret store.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer holds one secret value in a memguard enclave: encrypted at rest in
// memory, mlocked where the platform allows it.
type Buffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewBuffer seals the given value. The caller should not retain the
// plaintext afterwards.
func NewBuffer(value string) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave([]byte(value))}
}

// WithValue decrypts the secret, passes the plaintext to fn, and wipes the
// plaintext again when fn returns. The plaintext must not escape fn.
func (b *Buffer) WithValue(fn func(value []byte) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed || b.enclave == nil {
		return fn(nil)
	}

	locked, err := b.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Destroy marks the buffer unusable. Idempotent; after Destroy, WithValue
// sees a nil value.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
