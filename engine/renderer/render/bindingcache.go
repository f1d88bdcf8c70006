package render

import (
	"fmt"
	"strings"

	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// BindingCache memoizes binding sets by the resources they bind.
// Cached sets hold references to their resources; Clear drops the whole
// cache, which is the only safe response to a target-set recreate since
// stale entries would pin destroyed resources.
type BindingCache struct {
	device rhi.Device
	sets   map[string]rhi.BindingSet
}

func NewBindingCache(device rhi.Device) *BindingCache {
	return &BindingCache{
		device: device,
		sets:   make(map[string]rhi.BindingSet),
	}
}

func bindingSetKey(desc rhi.BindingSetDesc) string {
	var sb strings.Builder
	for _, item := range desc.Items {
		fmt.Fprintf(&sb, "%d/%d:%s;", item.Type, item.Slot, item.Resource.DebugID())
	}
	return sb.String()
}

// GetOrCreateBindingSet returns the cached set for desc, creating and
// retaining one on first use.
func (c *BindingCache) GetOrCreateBindingSet(desc rhi.BindingSetDesc, layout rhi.BindingLayout) (rhi.BindingSet, error) {
	key := bindingSetKey(desc)
	if set, ok := c.sets[key]; ok {
		return set, nil
	}
	set, err := c.device.CreateBindingSet(desc, layout)
	if err != nil {
		return nil, err
	}
	for _, item := range desc.Items {
		item.Resource.Retain()
	}
	c.sets[key] = set
	return set, nil
}

// Clear releases every cached set's resource references and empties the
// cache.
func (c *BindingCache) Clear() {
	for _, set := range c.sets {
		for _, item := range set.Desc().Items {
			item.Resource.Release()
		}
	}
	c.sets = make(map[string]rhi.BindingSet)
}
