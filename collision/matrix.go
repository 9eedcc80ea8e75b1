package collision

import "sort"

type tagPair struct {
	a, b string
}

// TagPair is an unordered pair of tags evaluated by the collision pass.
// A <= B lexically.
type TagPair struct {
	A, B    string
	Collide bool
	Trigger bool
}

// TagMatrix holds the two symmetric relations over collider tags:
// collide pairs are pushed apart, trigger pairs only record each other.
// A pair may be in neither, either or both. Build it once at startup and
// treat it as read-only while the simulation runs.
type TagMatrix struct {
	collide map[tagPair]struct{}
	trigger map[tagPair]struct{}
}

// NewTagMatrix creates an empty matrix.
func NewTagMatrix() *TagMatrix {
	return &TagMatrix{
		collide: make(map[tagPair]struct{}),
		trigger: make(map[tagPair]struct{}),
	}
}

// Collide registers (a, b) and (b, a) as physically colliding.
func (m *TagMatrix) Collide(a, b string) *TagMatrix {
	m.collide[tagPair{a, b}] = struct{}{}
	m.collide[tagPair{b, a}] = struct{}{}
	return m
}

// Trigger registers (a, b) and (b, a) as trigger pairs.
func (m *TagMatrix) Trigger(a, b string) *TagMatrix {
	m.trigger[tagPair{a, b}] = struct{}{}
	m.trigger[tagPair{b, a}] = struct{}{}
	return m
}

// Collides reports whether the two tags are pushed apart on overlap.
func (m *TagMatrix) Collides(a, b string) bool {
	_, ok := m.collide[tagPair{a, b}]
	return ok
}

// Triggers reports whether the two tags record each other on overlap.
func (m *TagMatrix) Triggers(a, b string) bool {
	_, ok := m.trigger[tagPair{a, b}]
	return ok
}

// Tags returns every tag mentioned by the matrix, sorted.
func (m *TagMatrix) Tags() []string {
	seen := make(map[string]struct{})
	for p := range m.collide {
		seen[p.a] = struct{}{}
	}
	for p := range m.trigger {
		seen[p.a] = struct{}{}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Pairs returns the union of both relations as unordered pairs, sorted by (A, B).
func (m *TagMatrix) Pairs() []TagPair {
	byKey := make(map[tagPair]*TagPair)
	var order []tagPair

	add := func(p tagPair, collide bool) {
		if p.a > p.b {
			return
		}
		entry, ok := byKey[p]
		if !ok {
			entry = &TagPair{A: p.a, B: p.b}
			byKey[p] = entry
			order = append(order, p)
		}
		if collide {
			entry.Collide = true
		} else {
			entry.Trigger = true
		}
	}

	for p := range m.collide {
		add(p, true)
	}
	for p := range m.trigger {
		add(p, false)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].a != order[j].a {
			return order[i].a < order[j].a
		}
		return order[i].b < order[j].b
	})

	pairs := make([]TagPair, 0, len(order))
	for _, p := range order {
		pairs = append(pairs, *byKey[p])
	}
	return pairs
}
