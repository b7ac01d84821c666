package blacklist

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRevoke(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.IsRevoked("tok"))

	r.Revoke("tok")
	assert.True(t, r.IsRevoked("tok"))

	r.Revoke("tok")
	assert.True(t, r.IsRevoked("tok"))
	assert.Equal(t, 1, r.Len(), "revoking twice keeps a single entry")
}

func TestRegistryIgnoresBlank(t *testing.T) {
	r := NewRegistry()
	r.Revoke("")
	r.Revoke("   ")
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.IsRevoked(""))
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	const workers, perWorker = 16, 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tok := fmt.Sprintf("token-%d", i)
				r.Revoke(tok)
				_ = r.IsRevoked(tok)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, perWorker, r.Len())
	for i := 0; i < perWorker; i++ {
		assert.True(t, r.IsRevoked(fmt.Sprintf("token-%d", i)))
	}
}
