package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekamauln/livo-next/internal/upstream"
)

func TestDebouncerFiresLastValueOnce(t *testing.T) {
	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 4)

	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		done <- struct{}{}
	})
	d.Trigger("a")
	d.Trigger("ab")
	d.Trigger("abc")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"abc"}, got)
}

func TestDebouncerStop(t *testing.T) {
	fired := make(chan string, 1)
	d := NewDebouncer(10*time.Millisecond, func(v string) { fired <- v })
	d.Trigger("x")
	d.Stop()

	select {
	case v := <-fired:
		t.Fatalf("stopped debouncer fired with %q", v)
	case <-time.After(40 * time.Millisecond):
	}
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestManagerDiscardsStaleResponse(t *testing.T) {
	started := make(chan string, 4)
	gate := make(chan struct{})
	search := func(_ context.Context, term string, _ int) ([]Item, error) {
		started <- term
		if term == "ab" {
			<-gate
		}
		return []Item{{ID: 1, Code: term, Label: term}}, nil
	}

	hub := NewHub(nil)
	m := NewManager(hub, map[string]SearchFunc{KindProducts: search}, nil, Options{Delay: 10 * time.Millisecond, MinChars: 1}, nil)
	s, err := m.Open(context.Background(), "u1", KindProducts)
	require.NoError(t, err)
	defer m.Close(s.ID)

	seq1, err := m.Key(s.ID, "u1", "ab")
	require.NoError(t, err)
	assert.Equal(t, "ab", <-started)

	// a newer keystroke arrives while the first lookup is still in flight
	seq2, err := m.Key(s.ID, "u1", "abc")
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1)
	close(gate)

	ev := nextEvent(t, s.Client)
	require.Equal(t, EventResults, ev.EventType)
	var res Result
	require.NoError(t, json.Unmarshal([]byte(ev.Data), &res))
	assert.Equal(t, seq2, res.Seq)
	assert.Equal(t, "abc", res.Term)

	select {
	case ev := <-s.Client.Events:
		t.Fatalf("unexpected extra event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManagerErrors(t *testing.T) {
	search := func(context.Context, string, int) ([]Item, error) {
		return nil, &upstream.StatusError{Status: 500, Message: "boom"}
	}
	hub := NewHub(nil)
	m := NewManager(hub, map[string]SearchFunc{KindBoxes: search}, nil, Options{Delay: 5 * time.Millisecond, MinChars: 2}, nil)

	_, err := m.Open(context.Background(), "u1", "widgets")
	assert.ErrorIs(t, err, ErrUnknownKind)

	s, err := m.Open(context.Background(), "u1", KindBoxes)
	require.NoError(t, err)
	defer m.Close(s.ID)

	_, err = m.Key(s.ID, "u2", "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound, "sessions belong to their user")

	// below MinChars: empty results without searching
	_, err = m.Key(s.ID, "u1", "a")
	require.NoError(t, err)
	ev := nextEvent(t, s.Client)
	assert.Equal(t, EventResults, ev.EventType)
	assert.JSONEq(t, `{"seq":1,"term":"a","items":[]}`, ev.Data)

	_, err = m.Key(s.ID, "u1", "abc")
	require.NoError(t, err)
	ev = nextEvent(t, s.Client)
	assert.Equal(t, EventError, ev.EventType)
	assert.Contains(t, ev.Data, "Server error")
}

func TestManagerClose(t *testing.T) {
	hub := NewHub(nil)
	m := NewManager(hub, Searchers(nil), nil, Options{}, nil)
	s, err := m.Open(context.Background(), "u1", KindProducts)
	require.NoError(t, err)

	m.Close(s.ID)
	assert.False(t, hub.Send(s.ID, Event{EventType: "ping"}), "client unregistered")
	_, ok := <-s.Client.Events
	assert.False(t, ok, "events channel closed")

	_, err = m.Key(s.ID, "u1", "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	c := NewCache(rdb, 30*time.Second)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, KindBoxes, "Kardus", 20)
	require.NoError(t, err)
	assert.False(t, ok)

	items := []Item{{ID: 3, Code: "PK-01", Label: "Packing Kardus"}}
	require.NoError(t, c.Set(ctx, KindBoxes, "Kardus", 20, items))

	got, ok, err := c.Get(ctx, KindBoxes, " kardus ", 20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, items, got)

	mr.FastForward(31 * time.Second)
	_, ok, _ = c.Get(ctx, KindBoxes, "Kardus", 20)
	assert.False(t, ok)
}

func TestManagerUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	calls := 0
	search := func(_ context.Context, term string, _ int) ([]Item, error) {
		calls++
		return []Item{{ID: 9, Code: "SKU-9", Label: term}}, nil
	}
	m := NewManager(NewHub(nil), map[string]SearchFunc{KindProducts: search}, NewCache(rdb, time.Minute), Options{Delay: 5 * time.Millisecond}, nil)

	for i := 0; i < 2; i++ {
		items, err := m.lookup(context.Background(), KindProducts, "tea")
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, 1, calls)
}

type fakeCatalog struct{}

func (fakeCatalog) ListProducts(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Product], error) {
	if q.Search == "fail" {
		return nil, errors.New("down")
	}
	return &upstream.Page[upstream.Product]{Records: []upstream.Product{
		{ID: 1, SKU: "TEA-1", Name: "Tea", Variant: "Green"},
		{ID: 2, SKU: "MUG-1", Name: "Mug"},
	}, Total: 2}, nil
}

func (fakeCatalog) ListBoxes(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Box], error) {
	return &upstream.Page[upstream.Box]{Records: []upstream.Box{{ID: 3, Code: "PK-01", Name: "Packing"}}, Total: 1}, nil
}

func TestSearchers(t *testing.T) {
	s := Searchers(fakeCatalog{})
	items, err := s[KindProducts](context.Background(), "t", 20)
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: 1, Code: "TEA-1", Label: "Tea (Green)"}, {ID: 2, Code: "MUG-1", Label: "Mug"}}, items)

	_, err = s[KindProducts](context.Background(), "fail", 20)
	assert.Error(t, err)

	boxes, err := s[KindBoxes](context.Background(), "p", 20)
	require.NoError(t, err)
	assert.Equal(t, "PK-01", boxes[0].Code)
}

func TestHubSend(t *testing.T) {
	hub := NewHub(nil)
	b := &Client{ID: "b", UserID: "u2", Events: make(chan Event, 1)}
	hub.Register(b)

	assert.True(t, hub.Send("b", Event{EventType: "x"}))
	assert.False(t, hub.Send("b", Event{EventType: "y"}), "full buffer drops")
	assert.False(t, hub.Send("missing", Event{}))
	assert.Equal(t, "x", (<-b.Events).EventType)
}
