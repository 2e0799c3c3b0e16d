package network_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/groupweave/weave-go/network"
)

func TestIsRateLimited(t *testing.T) {
	err := network.NewRateLimitedError(30 * time.Second)

	retryAfter, limited := network.IsRateLimited(err)
	assert.True(t, limited)
	assert.Equal(t, 30*time.Second, retryAfter)

	// wrapped errors are still recognized
	retryAfter, limited = network.IsRateLimited(fmt.Errorf("open failed: %w", err))
	assert.True(t, limited)
	assert.Equal(t, 30*time.Second, retryAfter)

	_, limited = network.IsRateLimited(fmt.Errorf("some other failure"))
	assert.False(t, limited)
	_, limited = network.IsRateLimited(nil)
	assert.False(t, limited)
}
