package interpose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticResolverAlwaysFails(t *testing.T) {
	var r Resolver = StaticResolver{}
	ptr, err := r.Resolve("pthread_mutex_lock")
	assert.Nil(t, ptr)
	assert.Error(t, err)
}
