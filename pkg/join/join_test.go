package join

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Key   string
	Label string
}

type elem struct {
	key     string
	label   string
	updates int
}

// list is a Container backed by a slice.
type list struct {
	children []*elem
	removed  []*elem
}

func (l *list) detach(el *elem) {
	if i := slices.Index(l.children, el); i >= 0 {
		l.children = slices.Delete(l.children, i, i+1)
	}
}

func (l *list) Append(el *elem) {
	l.detach(el)
	l.children = append(l.children, el)
}

func (l *list) InsertAfter(ref, el *elem) {
	l.detach(el)
	i := slices.Index(l.children, ref)
	l.children = slices.Insert(l.children, i+1, el)
}

func (l *list) Remove(el *elem) {
	l.detach(el)
	l.removed = append(l.removed, el)
}

func (l *list) keys() []string {
	var keys []string
	for _, el := range l.children {
		keys = append(keys, el.key)
	}
	return keys
}

type recorder struct {
	entered []string
	exited  []string
	prevs   []*item
}

func newJoin(l *list, r *recorder) *Join[item, string, *elem] {
	return New(Options[item, string, *elem]{
		Container: l,
		Key:       func(it item) string { return it.Key },
		Enter: func(it item) *elem {
			r.entered = append(r.entered, it.Key)
			return &elem{key: it.Key}
		},
		Update: func(it item, el *elem, prev *item) {
			el.label = it.Label
			el.updates++
			r.prevs = append(r.prevs, prev)
		},
		Exit: func(it item, el *elem) {
			r.exited = append(r.exited, it.Key)
		},
	})
}

func items(keys ...string) []item {
	out := make([]item, len(keys))
	for i, k := range keys {
		out[i] = item{Key: k, Label: k}
	}
	return out
}

func TestJoinPreservesIdentity(t *testing.T) {
	l := &list{}
	r := &recorder{}
	j := newJoin(l, r)

	require.NoError(t, j.Join(items("A", "B", "C")))
	a, _ := j.Element("A")
	b, _ := j.Element("B")
	c, _ := j.Element("C")

	require.NoError(t, j.Join(items("B", "C", "D")))

	b2, err := j.Element("B")
	require.NoError(t, err)
	c2, err := j.Element("C")
	require.NoError(t, err)
	assert.Same(t, b, b2)
	assert.Same(t, c, c2)

	assert.Equal(t, []string{"A", "B", "C", "D"}, r.entered)
	assert.Equal(t, []string{"A"}, r.exited)
	assert.Equal(t, []*elem{a}, l.removed)
	assert.Equal(t, []string{"B", "C", "D"}, l.keys())

	_, err = j.Element("A")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestJoinUpdatePrev(t *testing.T) {
	l := &list{}
	r := &recorder{}
	j := newJoin(l, r)

	require.NoError(t, j.Join([]item{{Key: "A", Label: "old"}}))
	require.Len(t, r.prevs, 1)
	assert.Nil(t, r.prevs[0])

	require.NoError(t, j.Join([]item{{Key: "A", Label: "new"}}))
	require.Len(t, r.prevs, 2)
	require.NotNil(t, r.prevs[1])
	assert.Equal(t, "old", r.prevs[1].Label)

	el, _ := j.Element("A")
	assert.Equal(t, "new", el.label)
}

func TestJoinReorders(t *testing.T) {
	l := &list{children: []*elem{{key: "foreign"}}}
	r := &recorder{}
	j := newJoin(l, r)

	require.NoError(t, j.Join(items("A", "B", "C", "D")))
	require.NoError(t, j.Join(items("D", "B", "A", "C")))

	assert.Equal(t, []string{"foreign", "D", "B", "A", "C"}, l.keys())
	assert.Equal(t, []string{"A", "B", "C", "D"}, r.entered)
	assert.Empty(t, r.exited)
	assert.Equal(t, items("D", "B", "A", "C"), j.Items())
}

func TestJoinEmpty(t *testing.T) {
	l := &list{}
	r := &recorder{}
	j := newJoin(l, r)

	require.NoError(t, j.Join(items("A", "B")))
	require.NoError(t, j.Join(nil))

	assert.Empty(t, l.children)
	assert.Equal(t, []string{"A", "B"}, r.exited)
	assert.Zero(t, j.Len())
}

func TestJoinDuplicateKeys(t *testing.T) {
	l := &list{}
	r := &recorder{}
	j := newJoin(l, r)

	require.NoError(t, j.Join(items("A", "A", "B")))
	require.NoError(t, j.Join(items("A", "B")))

	assert.Equal(t, 2, j.Len())
	assert.Len(t, r.exited, 1)
	assert.Equal(t, []string{"A", "B"}, l.keys())
}

func TestForceUpdate(t *testing.T) {
	l := &list{}
	r := &recorder{}
	j := newJoin(l, r)

	require.NoError(t, j.Join(items("A", "B")))
	before := j.Elements()

	require.NoError(t, j.ForceUpdate())

	assert.Equal(t, before, j.Elements())
	assert.Equal(t, []string{"A", "B"}, l.keys())
	assert.Equal(t, []string{"A", "B"}, r.entered)
	assert.Empty(t, r.exited)
	for _, el := range j.Elements() {
		assert.Equal(t, 2, el.updates)
	}
	// Prev is the item itself.
	require.Len(t, r.prevs, 4)
	assert.Equal(t, "A", r.prevs[2].Key)
	assert.Equal(t, "B", r.prevs[3].Key)
}

func TestMeasureReadsFrameOnce(t *testing.T) {
	l := &list{}
	frames := 0
	measured := map[string]Rect{}

	j := New(Options[item, string, *elem]{
		Container: l,
		Key:       func(it item) string { return it.Key },
		Enter:     func(it item) *elem { return &elem{key: it.Key} },
		Frame: func() Rect {
			frames++
			return Rect{X: 10, Y: 20, Width: 300, Height: 200}
		},
		Measure: func(it item, el *elem, frame Rect) {
			measured[it.Key] = frame
		},
	})

	require.NoError(t, j.Join(items("A", "B", "C")))
	require.NoError(t, j.Measure())

	assert.Equal(t, 1, frames)
	assert.Len(t, measured, 3)
	assert.Equal(t, 300.0, measured["C"].Width)
}

func TestMeasureWithoutCallback(t *testing.T) {
	j := newJoin(&list{}, &recorder{})
	require.NoError(t, j.Join(items("A")))
	assert.NoError(t, j.Measure())
}

func TestReentrantCallsFail(t *testing.T) {
	l := &list{}
	var j *Join[item, string, *elem]
	var inner []error

	j = New(Options[item, string, *elem]{
		Container: l,
		Key:       func(it item) string { return it.Key },
		Enter:     func(it item) *elem { return &elem{key: it.Key} },
		Update: func(it item, el *elem, prev *item) {
			inner = append(inner, j.Join(nil), j.ForceUpdate())
		},
	})

	require.NoError(t, j.Join(items("A")))
	require.Len(t, inner, 2)
	for _, err := range inner {
		assert.ErrorIs(t, err, ErrReentrant)
	}

	// The guard is released afterwards.
	assert.NoError(t, j.Join(items("A", "B")))
	assert.Equal(t, []string{"A", "B"}, l.keys())
}

func TestNewPanicsWithoutRequiredOptions(t *testing.T) {
	assert.Panics(t, func() {
		New(Options[item, string, *elem]{Key: func(it item) string { return it.Key }})
	})
}
