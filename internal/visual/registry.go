package visual

import (
	"container/list"
	"sync"
)

// MaxCacheSize bounds the hash -> State LRU cache.
const MaxCacheSize = 10000

// MaxObserverCacheSize bounds the per-observer seen-hash set.
const MaxObserverCacheSize = 500

// Registry maps visual-state hashes to their full payload and tracks,
// per observer, which hashes that observer has already been sent in
// full. It lets the broadcast pipeline send a bare 12-char hash for
// anything the observer has already seen, and the full State only on
// first sight (spec §4.9).
type Registry struct {
	mu sync.Mutex

	cacheOrder *list.List               // front = most recently used
	cacheElems map[string]*list.Element // hash -> element (element.Value is *cacheEntry)

	entityHash map[string]string            // entity id -> current hash
	observers  map[string]map[string]struct{} // observer id -> seen hash set
}

type cacheEntry struct {
	hash  string
	state State
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		cacheOrder: list.New(),
		cacheElems: make(map[string]*list.Element),
		entityHash: make(map[string]string),
		observers:  make(map[string]map[string]struct{}),
	}
}

// Register stores state under entityID, computes its hash, and returns
// it. The hash cache is LRU-bounded at MaxCacheSize; the least-recently
// used entry is evicted once capacity is exceeded.
func (r *Registry) Register(entityID string, state State) string {
	hash := state.Hash()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entityHash[entityID] = hash

	if elem, ok := r.cacheElems[hash]; ok {
		r.cacheOrder.MoveToFront(elem)
	} else {
		elem := r.cacheOrder.PushFront(&cacheEntry{hash: hash, state: state})
		r.cacheElems[hash] = elem
		for r.cacheOrder.Len() > MaxCacheSize {
			oldest := r.cacheOrder.Back()
			if oldest == nil {
				break
			}
			r.cacheOrder.Remove(oldest)
			delete(r.cacheElems, oldest.Value.(*cacheEntry).hash)
		}
	}
	return hash
}

// Lookup returns the cached State for hash, touching it as most
// recently used.
func (r *Registry) Lookup(hash string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.cacheElems[hash]
	if !ok {
		return State{}, false
	}
	r.cacheOrder.MoveToFront(elem)
	return elem.Value.(*cacheEntry).state, true
}

// EntityHash returns the current hash registered for an entity.
func (r *Registry) EntityHash(entityID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.entityHash[entityID]
	return h, ok
}

// HasChanged reports whether newHash differs from the entity's last
// registered hash (or the entity has never been registered).
func (r *Registry) HasChanged(entityID, newHash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entityHash[entityID] != newHash
}

// ObserverNeedsFull reports whether observerID has not yet been sent
// the full visual payload for hash.
func (r *Registry) ObserverNeedsFull(observerID, hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen, ok := r.observers[observerID]
	if !ok {
		return true
	}
	_, seenHash := seen[hash]
	return !seenHash
}

// MarkSeen records that observerID has now received the full payload
// for hash. When the observer's seen-set exceeds MaxObserverCacheSize,
// it is halved by discarding an arbitrary half of the entries — Go
// maps have no iteration order guarantee, so this is a non-strict
// eviction, not true LRU (ported intentionally: spec §9 calls for the
// same non-strict behavior as the reference implementation).
func (r *Registry) MarkSeen(observerID, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen, ok := r.observers[observerID]
	if !ok {
		seen = make(map[string]struct{})
		r.observers[observerID] = seen
	}
	seen[hash] = struct{}{}

	if len(seen) > MaxObserverCacheSize {
		keep := make(map[string]struct{}, len(seen)/2)
		half := len(seen) / 2
		i := 0
		for h := range seen {
			if i >= half {
				keep[h] = struct{}{}
			}
			i++
		}
		r.observers[observerID] = keep
	}
}

// VisualForObserver is the main entry point for the broadcast pipeline:
// it registers entityID's current state, determines whether observerID
// needs the full payload, marks it seen if so, and returns the hash
// plus the full state (nil if the observer has already seen this hash).
func (r *Registry) VisualForObserver(observerID, entityID string, state State) (hash string, full *State) {
	hash = r.Register(entityID, state)
	if r.ObserverNeedsFull(observerID, hash) {
		r.MarkSeen(observerID, hash)
		return hash, &state
	}
	return hash, nil
}

// RemoveObserver discards all seen-hash tracking for a disconnected
// observer.
func (r *Registry) RemoveObserver(observerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, observerID)
}

// RemoveEntity discards the current-hash binding for a despawned
// entity. The underlying cached State is left in place since other
// entities may share the same visual hash.
func (r *Registry) RemoveEntity(entityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entityHash, entityID)
}

// Stats reports registry sizes for observability.
type Stats struct {
	CacheSize           int
	EntityCount         int
	ObserverCount       int
	MaxCacheSize        int
	MaxObserverCacheSize int
}

// Stats returns a snapshot of the registry's current sizes.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		CacheSize:            r.cacheOrder.Len(),
		EntityCount:          len(r.entityHash),
		ObserverCount:        len(r.observers),
		MaxCacheSize:         MaxCacheSize,
		MaxObserverCacheSize: MaxObserverCacheSize,
	}
}
