package server

import (
	"context"
	"dbdocs/internal/listing"
	"dbdocs/internal/schema"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	s := &schema.Schema{
		Database: "sqlite",
		Tables: []schema.Table{
			{Name: "users", Schema: "main", Type: "BASE TABLE", Columns: []schema.Column{{Name: "id", Type: "INTEGER"}}},
			{Name: "orders", Schema: "main", Type: "BASE TABLE"},
		},
		Views: []schema.View{{Name: "recent_orders", Schema: "main"}},
		Routines: []schema.Routine{
			{Name: "f", Type: "function"},
			{Name: "p", Type: "procedure"},
		},
	}

	pages, err := listing.BuildAll(s, listing.Options{ObjectLayout: listing.LayoutCurrent})
	require.NoError(t, err)

	return New(Config{
		Pages:    pages,
		Database: s.Database,
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, testServer(t).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"sqlite"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	rec := get(t, testServer(t).Handler(), "/api/pages/")
	require.Equal(t, http.StatusOK, rec.Code)

	var pages []PageSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pages))
	require.Len(t, pages, len(listing.PageTypes))
	assert.Equal(t, PageSummary{Name: "columns", Title: "Columns", Rows: 1}, pages[0])
	assert.Equal(t, PageSummary{Name: "objects", Title: "Tables and views", Rows: 3}, pages[1])
}

func TestPageFiltering(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantFilter  string
		wantVisible []int
		wantActive  string
	}{
		{
			name:        "unfiltered",
			target:      "/api/pages/objects",
			wantFilter:  "All",
			wantVisible: []int{0, 1, 2},
		},
		{
			name:        "views",
			target:      "/api/pages/objects?filter=View",
			wantFilter:  "View",
			wantVisible: []int{2},
			wantActive:  "View",
		},
		{
			name:        "case sensitive table page",
			target:      "/api/pages/objects?filter=view",
			wantFilter:  "view",
			wantVisible: []int{},
		},
		{
			name:        "routines ignore case",
			target:      "/api/pages/Routines?filter=procedure",
			wantFilter:  "procedure",
			wantVisible: []int{1},
			wantActive:  "PROCEDURE",
		},
	}

	h := testServer(t).Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp PageResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantFilter, resp.Filter)
			assert.Equal(t, tt.wantVisible, resp.Visible)
			assert.Len(t, resp.Rows, len(tt.wantVisible))

			active := ""
			for _, b := range resp.Buttons {
				if b.Active {
					assert.Empty(t, active, "two active buttons")
					active = b.ID
				}
			}
			assert.Equal(t, tt.wantActive, active)
		})
	}
}

func TestPageRequestsDoNotShareState(t *testing.T) {
	h := testServer(t).Handler()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target, want := "/api/pages/objects?filter=Table", 2
			if i%2 == 0 {
				target, want = "/api/pages/objects", 3
			}
			rec := get(t, h, target)
			var resp PageResponse
			if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)) {
				assert.Len(t, resp.Visible, want)
			}
		}(i)
	}
	wg.Wait()
}

func TestUnknownPage(t *testing.T) {
	rec := get(t, testServer(t).Handler(), "/api/pages/anomalies")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown page")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	srv := testServer(t)
	srv.port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
