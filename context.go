package saga

import "github.com/tidwall/btree"

// Context is the per-run key/value state that steps use to hand results
// to later steps without coupling to each other. One Context belongs to
// exactly one run and is mutated only by step output writes.
//
// Context is not synchronized: exactly one step executes at a time within
// a run, so no locking is needed. Never share a Context across concurrent
// runs.
type Context struct {
	values *btree.Map[string, any]
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{values: btree.NewMap[string, any](8)}
}

// Get returns the value stored under key, or nil when the key is absent.
func (c *Context) Get(key string) any {
	v, _ := c.values.Get(key)
	return v
}

// Set stores value under key, overwriting any previous value. It returns
// the Context so writes can be chained.
func (c *Context) Set(key string, value any) *Context {
	c.values.Set(key, value)
	return c
}

// Contains reports whether a value is stored under key.
func (c *Context) Contains(key string) bool {
	_, ok := c.values.Get(key)
	return ok
}

// Keys returns the stored keys in ascending order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, c.values.Len())
	c.values.Scan(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Len returns the number of stored values.
func (c *Context) Len() int {
	return c.values.Len()
}

// ValueAs retrieves the value under key as type T. It returns the zero
// value and false when the key is absent or the stored value has a
// different type; a lookup never fails with an error.
func ValueAs[T any](c *Context, key string) (T, bool) {
	var zero T
	value, ok := c.values.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
