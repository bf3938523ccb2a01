package pool

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"quoterScope/internal/model"
)

// DescriptorCache caches immutable pool descriptors by address.
type DescriptorCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.PoolDescriptor
}

func NewDescriptorCache() *DescriptorCache {
	return &DescriptorCache{data: make(map[common.Address]model.PoolDescriptor)}
}

func (c *DescriptorCache) Get(address common.Address) (model.PoolDescriptor, bool) {
	c.mu.RLock()
	desc, ok := c.data[address]
	c.mu.RUnlock()
	return desc, ok
}

func (c *DescriptorCache) Set(address common.Address, desc model.PoolDescriptor) {
	c.mu.Lock()
	c.data[address] = desc
	c.mu.Unlock()
}
