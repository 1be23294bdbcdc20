package dncpd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shurlinet/dncp/pkg/dncp"
	"github.com/shurlinet/dncp/pkg/tlv"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a minimal in-memory dncp.Transport good enough to
// construct a real Core for handler tests, mirroring the "blocking
// channel, no real socket" fake the core's own tests use.
type fakeTransport struct {
	inbound chan dncp.Inbound
	closed  chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbound: make(chan dncp.Inbound, 16), closed: make(chan struct{})}
}

func (f *fakeTransport) Recv(ctx context.Context) (dncp.Inbound, error) {
	select {
	case ib := <-f.inbound:
		return ib, nil
	case <-f.closed:
		return dncp.Inbound{}, dncp.ErrTransportClosed
	case <-ctx.Done():
		return dncp.Inbound{}, ctx.Err()
	}
}

func (f *fakeTransport) Send(endpoint, dst string, b []byte) (dncp.SendResult, error) {
	return dncp.SendOK, nil
}
func (f *fakeTransport) Join(endpoint string) error       { return nil }
func (f *fakeTransport) Leave(endpoint string) error      { return nil }
func (f *fakeTransport) HWAddrs() [][]byte                { return [][]byte{{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}} }
func (f *fakeTransport) MTU(endpoint string) (int, error) { return 1500, nil }
func (f *fakeTransport) close()                           { close(f.closed) }

// mockRuntime implements RuntimeInfo against a real Core for handler tests.
type mockRuntime struct {
	core      *dncp.Core
	startedAt time.Time
}

func (m *mockRuntime) Core() *dncp.Core     { return m.core }
func (m *mockRuntime) StartedAt() time.Time { return m.startedAt }
func (m *mockRuntime) Version() string      { return "test" }
func (m *mockRuntime) UserAgent() string    { return "dncpd-test" }

func newTestServer(t *testing.T) (*Server, *dncp.Core, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	core, err := dncp.New(dncp.Config{
		Transport: tr,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		tr.close()
		core.Close()
	})

	ok, err := core.EnableEndpoint("eth0", 1)
	require.NoError(t, err)
	require.True(t, ok)

	rt := &mockRuntime{core: core, startedAt: time.Now().Add(-time.Minute)}
	srv := NewServer("127.0.0.1:0", rt, nil)
	return srv, core, tr
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleStatus(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	require.Equal(t, "test", data["version"])
	require.EqualValues(t, 1, data["endpoint_count"])
}

func TestHandlePublishAndListNodes(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body, err := json.Marshal(PublishRequest{Type: tlv.TypeVersion, Payload: []byte{1}})
	require.NoError(t, err)
	rec := doRequest(t, srv, http.MethodPost, "/v1/publish", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/v1/nodes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	nodes := resp.Data.([]any)
	require.Len(t, nodes, 1)
}

func TestHandleUnpublish(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body, _ := json.Marshal(PublishRequest{Type: tlv.TypeVersion, Payload: []byte{1}})
	doRequest(t, srv, http.MethodPost, "/v1/publish", body)

	ubody, _ := json.Marshal(UnpublishRequest{Type: tlv.TypeVersion, Payload: []byte{1}})
	rec := doRequest(t, srv, http.MethodDelete, "/v1/publish", ubody)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePublishBadRequest(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/v1/publish", []byte("not json"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListPeersEmpty(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/v1/peers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	eps := resp.Data.([]any)
	require.Len(t, eps, 1)
	ep := eps[0].(map[string]any)
	require.Equal(t, "eth0", ep["name"])
	require.EqualValues(t, 0, ep["peer_count"])
}
