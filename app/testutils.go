package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/mapleroot/pressroom/internal/blogservice"
	"github.com/mapleroot/pressroom/internal/common"
	"github.com/stretchr/testify/assert"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// stubProducer records published messages so tests can assert on the
// comment.created events without a running broker.
type stubProducer struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *stubProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := loadConfig("../.test.env")
	assert.NoError(t, err)

	app := &application{
		config:      cfg,
		logger:      logger,
		blogService: blogservice.NewBlogService(db, &stubProducer{}),
	}

	return app, db
}

func (ts *testServer) do(t *testing.T, method, path string, data any, secret *string) (int, http.Header, envelope) {
	var body io.Reader
	if data != nil {
		jsonPayload, err := json.Marshal(data)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if secret != nil {
		req.Header.Set(adminPasswordHeader, *secret)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, secret *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, secret)
}

func (ts *testServer) post(t *testing.T, path string, data any, secret *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, data, secret)
}

func (ts *testServer) put(t *testing.T, path string, data any, secret *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, data, secret)
}

func (ts *testServer) delete(t *testing.T, path string, secret *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, secret)
}
