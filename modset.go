// SPDX-License-Identifier: MIT

package publicchat

import (
	"sort"
	"sync"
)

type identMap map[string]struct{}

// ModeratorSet is the set of identities allowed to moderate one
// channel. A refresh replaces the whole set, it never merges.
type ModeratorSet struct {
	mu  *sync.Mutex
	set identMap
}

func NewModeratorSet(size int) *ModeratorSet {
	return &ModeratorSet{
		mu:  new(sync.Mutex),
		set: make(identMap, size),
	}
}

func (ms *ModeratorSet) Replace(ids []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.set = make(identMap, len(ids))
	for _, id := range ids {
		ms.set[id] = struct{}{}
	}
}

func (ms *ModeratorSet) Has(id string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	_, ok := ms.set[id]
	return ok
}

func (ms *ModeratorSet) Count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.set)
}

func (ms *ModeratorSet) List() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	lst := make([]string, 0, len(ms.set))
	for id := range ms.set {
		lst = append(lst, id)
	}
	sort.Strings(lst)
	return lst
}

// ModeratorDirectory caches moderator sets per (server, channel).
// Entries live for the process lifetime and are only updated through
// Replace. Lookups never trigger a fetch, staleness is the caller's
// problem.
type ModeratorDirectory struct {
	mu   sync.Mutex
	sets map[cursorKey]*ModeratorSet
}

func NewModeratorDirectory() *ModeratorDirectory {
	return &ModeratorDirectory{
		sets: make(map[cursorKey]*ModeratorSet),
	}
}

func (d *ModeratorDirectory) Replace(server, channel string, ids []string) *ModeratorSet {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := cursorKey{server, channel}
	ms, ok := d.sets[k]
	if !ok {
		ms = NewModeratorSet(len(ids))
		d.sets[k] = ms
	}
	ms.Replace(ids)
	return ms
}

func (d *ModeratorDirectory) Get(server, channel string) (*ModeratorSet, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ms, ok := d.sets[cursorKey{server, channel}]
	return ms, ok
}

// Is reports whether id moderates the channel. Unknown channels are
// not moderated by anyone as far as the cache knows.
func (d *ModeratorDirectory) Is(id, server, channel string) bool {
	ms, ok := d.Get(server, channel)
	if !ok {
		return false
	}
	return ms.Has(id)
}
