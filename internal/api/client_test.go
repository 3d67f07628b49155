package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semret/internal/domain"
)

func TestClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "vector & graph", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]string{"third chunk", "first chunk", "second chunk"})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/", Timeout: 5 * time.Second}, nil)

	results, err := client.Search(context.Background(), domain.Query("vector & graph"))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultSet{"third chunk", "first chunk", "second chunk"}, results)
}

func TestClient_Search_EmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	results, err := New(Config{BaseURL: server.URL}, nil).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestClient_Search_NullBodyIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer server.Close()

	results, err := New(Config{BaseURL: server.URL}, nil).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("qdrant unavailable"))
	}))
	defer server.Close()

	results, err := New(Config{BaseURL: server.URL}, nil).Search(context.Background(), "q")
	assert.Nil(t, results)

	var serr *domain.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Equal(t, "qdrant unavailable", serr.Body)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Search_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": []}`))
	}))
	defer server.Close()

	_, err := New(Config{BaseURL: server.URL}, nil).Search(context.Background(), "q")
	var serr *domain.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusOK, serr.StatusCode)
	assert.Equal(t, "server", domain.Kind(err))
}

func TestClient_Search_ConnectionRefused(t *testing.T) {
	_, err := New(Config{BaseURL: closedServerURL(t)}, nil).Search(context.Background(), "q")

	var nerr *domain.NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "search", nerr.Op)
}

func TestClient_Search_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	_, err := New(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, nil).Search(context.Background(), "slow")
	assert.Equal(t, "network", domain.Kind(err))
}

func TestClient_Ingest_Success(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ingest", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "semret-test", r.Header.Get("User-Agent"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"title": "Agents", "content": "One.\n\nTwo."}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("Document ingested successfully"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, UserAgent: "semret-test"}, nil)
	ack, err := client.Ingest(context.Background(), domain.Document{Title: "Agents", Content: "One.\n\nTwo."})
	require.NoError(t, err)
	assert.Equal(t, "Document ingested successfully", ack.Message)
	assert.Equal(t, 1, calls)
}

func TestClient_Ingest_TruncatedAckIsLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("accepted"))
	}))
	defer server.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ack, err := New(Config{BaseURL: server.URL}, logger).Ingest(context.Background(), domain.Document{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", ack.Message)
	assert.Contains(t, logs.String(), "ingest ack unreadable")
}

func TestClient_Ingest_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Title and content are required", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := New(Config{BaseURL: server.URL}, nil).Ingest(context.Background(), domain.Document{Title: "t", Content: "c"})
	var serr *domain.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Equal(t, "Title and content are required", serr.Body)
}

func TestClient_Ingest_ConnectionRefused(t *testing.T) {
	_, err := New(Config{BaseURL: closedServerURL(t)}, nil).Ingest(context.Background(), domain.Document{Title: "t", Content: "c"})
	assert.Equal(t, "network", domain.Kind(err))
}

func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{BaseURL: server.URL}, nil).Search(ctx, "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// closedServerURL returns an address nothing listens on.
func closedServerURL(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "http://" + addr
}
