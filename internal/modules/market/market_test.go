package market

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Symbol,Date,Time,Open,High,Low,Close
^SSEC,2024-03-01,15:00:00,3000.00,3030.00,2990.00,3013.50
^HSI,2024-03-01,16:10:00,17000.00,17100.00,16800.00,16966.00
^SPX,N/D,N/D,N/A,N/A,N/A,N/A
^NDX,2024-03-01,22:00:00,18000.00,18000.00,18000.00,18000.00
`

func TestParse(t *testing.T) {
	list, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, Index{Name: "上证指数", Value: "3013.50", Change: "+0.45%", Up: true}, list[0])
	assert.Equal(t, Index{Name: "恒生指数", Value: "16966.00", Change: "-0.20%", Up: false}, list[1])
	assert.Equal(t, Index{Name: "纳斯达克", Value: "18000.00", Change: "0.00%", Up: true}, list[2])
}

func TestParse_HeaderOnly(t *testing.T) {
	list, err := Parse(strings.NewReader("Symbol,Date,Time,Open,High,Low,Close\n"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

type fakeSource struct {
	list  []Index
	err   error
	calls int
}

func (f *fakeSource) Fetch(context.Context) ([]Index, error) {
	f.calls++
	return f.list, f.err
}

type memCache struct {
	data map[string]string
	err  error
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.data[key], nil
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value.(string)
	return nil
}

func TestIndices_Fallbacks(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("dial tcp: timeout")}, nil, time.Minute, nil)
	assert.Equal(t, UnavailableIndices(), svc.Indices(context.Background()))

	svc = NewService(&fakeSource{list: []Index{}}, nil, time.Minute, nil)
	assert.Equal(t, DemoIndices(), svc.Indices(context.Background()))
}

func TestIndices_CachesSnapshot(t *testing.T) {
	src := &fakeSource{list: []Index{{Name: "标普500", Value: "5000.00", Change: "+1.00%", Up: true}}}
	cache := &memCache{data: map[string]string{}}
	svc := NewService(src, cache, time.Minute, nil)

	first := svc.Indices(context.Background())
	second := svc.Indices(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
	assert.Contains(t, cache.data[CacheKey], "标普500")
}

func TestIndices_FallbacksAreNotCached(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	cache := &memCache{data: map[string]string{}}
	svc := NewService(src, cache, time.Minute, nil)

	svc.Indices(context.Background())
	svc.Indices(context.Background())
	assert.Equal(t, 2, src.calls)
	assert.Empty(t, cache.data)
}

func TestIndices_CacheErrorDegradesToFetch(t *testing.T) {
	src := &fakeSource{list: []Index{{Name: "x", Value: "1.00", Change: "0.00%", Up: true}}}
	svc := NewService(src, &memCache{err: errors.New("redis down")}, time.Minute, nil)
	assert.Equal(t, src.list, svc.Indices(context.Background()))
}

func TestFetcher_SendsBrowserUserAgent(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, []string{"^SSEC", "^HSI"}, time.Second)
	list, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "s=^SSEC+^HSI&f=sd2t2ohlc&h&e=csv", gotQuery)
}

func TestFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, []string{"^SPX"}, time.Second).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHandler_AlwaysOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(&fakeSource{err: errors.New("down")}, nil, 0, nil)).RegisterRoutes(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/market-indices", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list []Index
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
	assert.Equal(t, "服务不可用", list[1].Name)
}
