// Package join reconciles an ordered list of data items against a set of
// retained visual elements.
//
// A [Join] remembers which element it created for each item key. Each call
// to [Join.Join] reuses the elements of keys it has seen before, creates
// elements for new keys, removes elements for keys that disappeared, and
// finally reorders the container's children to match the item order:
//
//	j := join.New(join.Options[Course, int, *scene.Node]{
//		Container: group,
//		Key:       func(c Course) int { return c.ID },
//		Enter:     func(c Course) *scene.Node { return scene.New("rect") },
//		Update:    func(c Course, el *scene.Node, prev *Course) { ... },
//	})
//	err := j.Join(courses)
//
// Elements in the container that the join did not create are left alone,
// although the join's own elements are moved after them.
//
// A Join is not safe for concurrent use. Calling Join, ForceUpdate or
// Measure from inside one of the same Join's callbacks returns
// [ErrReentrant].
package join

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey is returned by [Join.Element] for keys with no element.
	ErrUnknownKey = errors.New("join: unknown key")

	// ErrReentrant is returned when a Join method is called from one of the
	// same Join's callbacks.
	ErrReentrant = errors.New("join: re-entrant call")
)

// Container holds the elements a Join manages.
type Container[E any] interface {
	// Append adds el as the last child, moving it if already attached.
	Append(el E)
	// InsertAfter places el directly after ref, moving it if already
	// attached.
	InsertAfter(ref, el E)
	// Remove detaches el.
	Remove(el E)
}

// Rect is the geometry of a container, read once per measure pass.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Options configures a [Join]. Container, Key and Enter are required.
type Options[T any, K comparable, E any] struct {
	Container Container[E]
	Key       func(item T) K
	Enter     func(item T) E

	// Update runs for every item on every join. prev is the item previously
	// bound to the element, or nil if the element was just entered.
	Update func(item T, el E, prev *T)

	// Exit runs just before el is removed from the container.
	Exit func(item T, el E)

	// Frame and Measure form the optional measure pass. Frame is called
	// once per pass and its result handed to every Measure call.
	Frame   func() Rect
	Measure func(item T, el E, frame Rect)
}

type entry[T any, K comparable, E any] struct {
	key  K
	item T
	el   E
}

// Join is a keyed reconciler between items of type T, identified by keys
// of type K, and elements of type E.
type Join[T any, K comparable, E any] struct {
	opts    Options[T, K, E]
	entries []entry[T, K, E]
	busy    bool
}

// New returns an empty Join. It panics if a required option is missing.
func New[T any, K comparable, E any](opts Options[T, K, E]) *Join[T, K, E] {
	if opts.Container == nil || opts.Key == nil || opts.Enter == nil {
		panic("join: Container, Key and Enter are required")
	}
	return &Join[T, K, E]{opts: opts}
}

func (j *Join[T, K, E]) enter() error {
	if j.busy {
		return ErrReentrant
	}
	j.busy = true
	return nil
}

func (j *Join[T, K, E]) leave() { j.busy = false }

// Join reconciles the elements against items.
//
// Items whose key matched an entry of the previous round keep that entry's
// element. Among duplicate keys, entries are matched in order of first
// appearance. After Join returns, the container's managed children are
// exactly one element per item, in items order.
func (j *Join[T, K, E]) Join(items []T) error {
	if err := j.enter(); err != nil {
		return err
	}
	defer j.leave()

	old := make(map[K][]int, len(j.entries))
	for i, e := range j.entries {
		old[e.key] = append(old[e.key], i)
	}
	kept := make([]bool, len(j.entries))

	next := make([]entry[T, K, E], 0, len(items))
	for _, item := range items {
		key := j.opts.Key(item)
		if idx := old[key]; len(idx) > 0 {
			old[key] = idx[1:]
			kept[idx[0]] = true
			prev := j.entries[idx[0]]
			next = append(next, entry[T, K, E]{key: key, item: item, el: prev.el})
			j.update(item, prev.el, &prev.item)
			continue
		}
		el := j.opts.Enter(item)
		next = append(next, entry[T, K, E]{key: key, item: item, el: el})
		j.update(item, el, nil)
	}

	for i, e := range j.entries {
		if kept[i] {
			continue
		}
		if j.opts.Exit != nil {
			j.opts.Exit(e.item, e.el)
		}
		j.opts.Container.Remove(e.el)
	}

	if len(next) > 0 {
		j.opts.Container.Append(next[0].el)
		for i := 1; i < len(next); i++ {
			j.opts.Container.InsertAfter(next[i-1].el, next[i].el)
		}
	}
	j.entries = next
	return nil
}

func (j *Join[T, K, E]) update(item T, el E, prev *T) {
	if j.opts.Update != nil {
		j.opts.Update(item, el, prev)
	}
}

// ForceUpdate calls Update for every current entry with the entry's item as
// both the new and the previous item. Membership and order do not change.
func (j *Join[T, K, E]) ForceUpdate() error {
	if err := j.enter(); err != nil {
		return err
	}
	defer j.leave()

	for i := range j.entries {
		e := j.entries[i]
		j.update(e.item, e.el, &e.item)
	}
	return nil
}

// Measure runs the measure pass. It does nothing if Measure is unset.
func (j *Join[T, K, E]) Measure() error {
	if j.opts.Measure == nil {
		return nil
	}
	if err := j.enter(); err != nil {
		return err
	}
	defer j.leave()

	var frame Rect
	if j.opts.Frame != nil {
		frame = j.opts.Frame()
	}
	for _, e := range j.entries {
		j.opts.Measure(e.item, e.el, frame)
	}
	return nil
}

// Element returns the element bound to key. With duplicate keys it returns
// the first.
func (j *Join[T, K, E]) Element(key K) (E, error) {
	for _, e := range j.entries {
		if e.key == key {
			return e.el, nil
		}
	}
	var zero E
	return zero, fmt.Errorf("%w: %v", ErrUnknownKey, key)
}

// Len returns the number of current entries.
func (j *Join[T, K, E]) Len() int { return len(j.entries) }

// Items returns the current items in order.
func (j *Join[T, K, E]) Items() []T {
	items := make([]T, len(j.entries))
	for i, e := range j.entries {
		items[i] = e.item
	}
	return items
}

// Elements returns the current elements in order.
func (j *Join[T, K, E]) Elements() []E {
	els := make([]E, len(j.entries))
	for i, e := range j.entries {
		els[i] = e.el
	}
	return els
}
