package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithEndpoint(srv.URL), WithRateLimit(rate.Inf, 1)}, opts...)
	return NewClient(opts...)
}

func TestResolveAddress(t *testing.T) {
	var gotQuery, gotAgent, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name": "1600 Amphitheatre Parkway, Mountain View"}`))
	}, WithAPIKey("secret"))

	addr, ok := c.ResolveAddress(context.Background(), 37.4219, -122.084)
	require.True(t, ok)
	assert.Equal(t, "1600 Amphitheatre Parkway, Mountain View", addr)
	assert.Equal(t, "/reverse", gotPath)
	assert.Contains(t, gotQuery, "lat=37.4219")
	assert.Contains(t, gotQuery, "lon=-122.084")
	assert.Contains(t, gotQuery, "format=jsonv2")
	assert.Contains(t, gotQuery, "key=secret")
	assert.True(t, strings.HasPrefix(gotAgent, "PanCrop/"))
}

func TestResolveAddressFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": "Unable to geocode"}`))
		}},
		{"empty name", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"display_name": ""}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			addr, ok := c.ResolveAddress(context.Background(), 1, 2)
			assert.False(t, ok)
			assert.Empty(t, addr)
		})
	}
}

func TestResolveAddressTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, ok := c.ResolveAddress(context.Background(), 1, 2)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolveAddressCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name": "x"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := c.ResolveAddress(ctx, 1, 2)
	assert.False(t, ok)
}

func TestResolveAddressSharesInflightRequests(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte(`{"display_name": "Shared"}`))
	})

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.ResolveAddress(context.Background(), 10, 20)
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	for _, r := range results {
		assert.Equal(t, "Shared", r)
	}
}

type fakeResolver struct {
	answers map[float64]chan string
}

func (f *fakeResolver) ResolveAddress(ctx context.Context, lat, lon float64) (string, bool) {
	addr := <-f.answers[lat]
	return addr, addr != ""
}

func TestResolverKeepsNewest(t *testing.T) {
	f := &fakeResolver{answers: map[float64]chan string{
		1: make(chan string, 1),
		2: make(chan string, 1),
	}}
	r := NewResolver(f)

	var mu sync.Mutex
	var delivered []string
	done := make(chan struct{}, 2)
	record := func(_ uint64, addr string, ok bool) {
		mu.Lock()
		delivered = append(delivered, addr)
		mu.Unlock()
		done <- struct{}{}
	}

	r.Request(context.Background(), 1, 0, record)
	r.Request(context.Background(), 2, 0, record)

	f.answers[2] <- "newer"
	<-done
	f.answers[1] <- "stale"
	time.Sleep(50 * time.Millisecond)

	addr, ok := r.Address()
	require.True(t, ok)
	assert.Equal(t, "newer", addr)
	mu.Lock()
	assert.Equal(t, []string{"newer"}, delivered)
	mu.Unlock()

	r.Reset()
	_, ok = r.Address()
	assert.False(t, ok)
}

func TestResolverCurrentAfterReset(t *testing.T) {
	f := &fakeResolver{answers: map[float64]chan string{1: make(chan string, 1)}}
	r := NewResolver(f)

	gens := make(chan uint64, 1)
	r.Request(context.Background(), 1, 0, func(gen uint64, addr string, ok bool) {
		gens <- gen
	})
	f.answers[1] <- "Harbour Road"

	var gen uint64
	select {
	case gen = <-gens:
	case <-time.After(time.Second):
		t.Fatal("lookup never finished")
	}
	assert.True(t, r.Current(gen))

	// An answer queued for the UI must not land after a reset.
	r.Reset()
	assert.False(t, r.Current(gen))
}

func TestUserAgentTransport(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := &http.Client{Transport: &UserAgentTransport{UserAgent: "Test/1"}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Test/1", got)
}
