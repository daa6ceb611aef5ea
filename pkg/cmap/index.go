package cmap

// Index maps each key to a set of values, and each value back to the keys
// it was added under. Both directions are sharded maps.
type Index[K, V comparable] struct {
	forward *Map[K, map[V]struct{}]
	reverse *Map[V, map[K]struct{}]
}

// NewIndex creates an empty index.
func NewIndex[K, V comparable]() *Index[K, V] {
	return &Index[K, V]{
		forward: New[K, map[V]struct{}](),
		reverse: New[V, map[K]struct{}](),
	}
}

// Add records value under key.
func (x *Index[K, V]) Add(key K, value V) {
	x.forward.Update(key, func(set map[V]struct{}, _ bool) map[V]struct{} {
		if set == nil {
			set = make(map[V]struct{})
		}
		set[value] = struct{}{}
		return set
	})
	x.reverse.Update(value, func(set map[K]struct{}, _ bool) map[K]struct{} {
		if set == nil {
			set = make(map[K]struct{})
		}
		set[key] = struct{}{}
		return set
	})
}

// Lookup returns the values recorded under key.
func (x *Index[K, V]) Lookup(key K) []V {
	var out []V
	x.forward.View(key, func(set map[V]struct{}, _ bool) {
		for v := range set {
			out = append(out, v)
		}
	})
	return out
}

// Take removes key and returns its values. Each returned value is also
// detached from every other key it was added under.
func (x *Index[K, V]) Take(key K) []V {
	set, ok := x.forward.Pop(key)
	if !ok {
		return nil
	}
	out := make([]V, 0, len(set))
	for v := range set {
		out = append(out, v)
		x.RemoveValue(v)
	}
	return out
}

// RemoveValue detaches value from all keys. Keys left without values are
// dropped.
func (x *Index[K, V]) RemoveValue(value V) {
	keys, ok := x.reverse.Pop(value)
	if !ok {
		return
	}
	for k := range keys {
		x.forward.Compute(k, func(set map[V]struct{}, exists bool) (map[V]struct{}, bool) {
			if !exists {
				return nil, false
			}
			delete(set, value)
			return set, len(set) > 0
		})
	}
}

// Keys returns every key that has at least one value.
func (x *Index[K, V]) Keys() []K {
	return x.forward.Keys()
}

// Len returns the number of distinct values.
func (x *Index[K, V]) Len() int {
	return x.reverse.Count()
}

// Clear empties the index.
func (x *Index[K, V]) Clear() {
	x.forward.Clear()
	x.reverse.Clear()
}
