package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/internal/clock"
	"framecore/internal/errx"
	"framecore/internal/store"
)

// mockMedium is an in-memory Medium with injectable failures.
type mockMedium struct {
	data   map[string]string
	setErr error
	getErr error
	sets   int
}

func newMockMedium() *mockMedium {
	return &mockMedium{data: map[string]string{}}
}

func (m *mockMedium) k(scope store.Scope, key string) string { return string(scope) + "/" + key }

func (m *mockMedium) Get(_ context.Context, scope store.Scope, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[m.k(scope, key)]
	return v, ok, nil
}

func (m *mockMedium) Set(_ context.Context, scope store.Scope, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[m.k(scope, key)] = value
	return nil
}

func (m *mockMedium) Remove(_ context.Context, scope store.Scope, key string) error {
	delete(m.data, m.k(scope, key))
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *clock.Manual) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clk := clock.NewManual(time.UnixMilli(1_700_000_000_000))
	return New(st, WithClock(clk)), clk
}

func urls(links []RecentLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.URL
	}
	return out
}

func TestRecentLinks_EmptyOnFirstRun(t *testing.T) {
	e, _ := newTestEngine(t)
	links := e.RecentLinks(context.Background())
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestSaveLink_LRUReorder(t *testing.T) {
	ctx := context.Background()
	e, clk := newTestEngine(t)

	require.NoError(t, e.SaveLink(ctx, "https://a.example"))
	clk.Advance(time.Second)
	require.NoError(t, e.SaveLink(ctx, "https://b.example"))
	clk.Advance(time.Second)
	require.NoError(t, e.SaveLink(ctx, "https://a.example"))

	links := e.RecentLinks(ctx)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls(links))
	assert.Equal(t, int64(1_700_000_002_000), links[0].Timestamp)
	assert.Equal(t, int64(1_700_000_001_000), links[1].Timestamp)
}

func TestSaveLink_Eviction(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	for i := 0; i < 11; i++ {
		require.NoError(t, e.SaveLink(ctx, fmt.Sprintf("https://site%d.example", i)))
	}

	links := e.RecentLinks(ctx)
	require.Len(t, links, MaxLinks)
	assert.NotContains(t, urls(links), "https://site0.example")
	assert.Equal(t, "https://site10.example", links[0].URL)
	assert.Equal(t, "https://site1.example", links[MaxLinks-1].URL)
}

func TestSaveLink_CustomCapacity(t *testing.T) {
	ctx := context.Background()
	e := New(newMockMedium(), WithMaxLinks(2))

	for _, u := range []string{"https://1.example", "https://2.example", "https://3.example"} {
		require.NoError(t, e.SaveLink(ctx, u))
	}
	assert.Equal(t, []string{"https://3.example", "https://2.example"}, urls(e.RecentLinks(ctx)))
}

func TestRecentLinks_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.SaveLink(ctx, "https://a.example"))
	require.NoError(t, e.SaveLink(ctx, "https://b.example"))

	assert.Equal(t, e.RecentLinks(ctx), e.RecentLinks(ctx))
}

func TestRecentLinks_SchemaGuard(t *testing.T) {
	ctx := context.Background()
	m := newMockMedium()
	m.data["local/recentLinks"] = `{"version":2,"links":[{"url":"https://a.example","timestamp":1}]}`
	e := New(m)

	assert.Empty(t, e.RecentLinks(ctx))
	_, ok := m.data["local/recentLinks"]
	assert.False(t, ok, "mismatched collection should be deleted")
}

func TestRecentLinks_MissingVersionIsDiscarded(t *testing.T) {
	ctx := context.Background()
	m := newMockMedium()
	m.data["local/recentLinks"] = `{"links":[{"url":"https://a.example","timestamp":1}]}`
	e := New(m)

	assert.Empty(t, e.RecentLinks(ctx))
	assert.NotContains(t, m.data, "local/recentLinks")
}

func TestRecentLinks_FiltersInvalidURLs(t *testing.T) {
	ctx := context.Background()
	m := newMockMedium()
	m.data["local/recentLinks"] = `{"version":1,"links":[
		{"url":"https://ok.example","timestamp":3},
		{"url":"","timestamp":2},
		{"url":"javascript:alert(1)","timestamp":2},
		{"url":"http//broken","timestamp":1},
		{"url":"http://also-ok.example/path","timestamp":1}
	]}`
	e := New(m)

	assert.Equal(t, []string{"https://ok.example", "http://also-ok.example/path"}, urls(e.RecentLinks(ctx)))
}

func TestRecentLinks_Unparseable(t *testing.T) {
	ctx := context.Background()
	m := newMockMedium()
	m.data["local/recentLinks"] = `{not json`
	e := New(m)

	assert.Empty(t, e.RecentLinks(ctx))
}

func TestRecentLinks_MediumFailure(t *testing.T) {
	m := newMockMedium()
	m.getErr = errors.New("io")
	assert.Empty(t, New(m).RecentLinks(context.Background()))
}

func TestSaveLink_RejectsInvalidURL(t *testing.T) {
	ctx := context.Background()
	m := newMockMedium()
	e := New(m)

	for _, u := range []string{"", "ftp://a.example", "/relative", "example.com"} {
		err := e.SaveLink(ctx, u)
		assert.Equal(t, errx.Invalid, errx.KindOf(err), u)
	}
	assert.Zero(t, m.sets)
}

func TestSaveLink_WriteFailuresAreTyped(t *testing.T) {
	ctx := context.Background()

	t.Run("quota", func(t *testing.T) {
		m := newMockMedium()
		m.setErr = fmt.Errorf("set: %w", store.ErrQuotaExceeded)
		err := New(m).SaveLink(ctx, "https://a.example")
		require.Error(t, err)
		assert.True(t, IsQuotaError(err))
		assert.Equal(t, "storage.SaveLink", errx.OpOf(err))
	})

	t.Run("generic", func(t *testing.T) {
		m := newMockMedium()
		m.setErr = errors.New("disk I/O error")
		err := New(m).SaveLink(ctx, "https://a.example")
		require.Error(t, err)
		assert.False(t, IsQuotaError(err))
		assert.Equal(t, errx.Internal, errx.KindOf(err))
	})

	t.Run("no medium", func(t *testing.T) {
		e := New(nil)
		assert.Equal(t, errx.Unavailable, errx.KindOf(e.SaveLink(ctx, "https://a.example")))
		assert.Empty(t, e.RecentLinks(ctx))
	})
}

func TestSaveLink_FailedWriteKeepsLastDurableState(t *testing.T) {
	ctx := context.Background()
	m := newMockMedium()
	e := New(m)
	require.NoError(t, e.SaveLink(ctx, "https://a.example"))

	m.setErr = errors.New("boom")
	require.Error(t, e.SaveLink(ctx, "https://b.example"))

	assert.Equal(t, []string{"https://a.example"}, urls(e.RecentLinks(ctx)))
}

func TestSaveLink_QuotaFromRealStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.New(t.TempDir(), store.WithQuota(64))
	require.NoError(t, err)
	defer st.Close()

	e := New(st)
	err = e.SaveLink(ctx, "https://example.com/"+strings.Repeat("p", 100))
	assert.True(t, IsQuotaError(err))
	assert.Equal(t, "Storage full - Clear some links or browser data", errx.UserMessage(err))
}

func TestSaveLinkWithTitle_KeepsTitleOnReorder(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	require.NoError(t, e.SaveLinkWithTitle(ctx, "https://a.example", "Site A"))
	require.NoError(t, e.SaveLink(ctx, "https://b.example"))
	require.NoError(t, e.SaveLink(ctx, "https://a.example"))

	links := e.RecentLinks(ctx)
	require.Len(t, links, 2)
	assert.Equal(t, "Site A", links[0].Title)
	assert.Empty(t, links[1].Title)

	require.NoError(t, e.SaveLinkWithTitle(ctx, "https://a.example", "Renamed"))
	assert.Equal(t, "Renamed", e.RecentLinks(ctx)[0].Title)
}

func TestClearLinks(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.SaveLink(ctx, "https://a.example"))
	require.NoError(t, e.ClearLinks(ctx))
	assert.Empty(t, e.RecentLinks(ctx))
}
