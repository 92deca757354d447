package mcp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stash/internal/core/services"
)

func TestNewServer(t *testing.T) {
	t.Run("nil library service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingLibraryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		library := &mockLibraryService{}
		ports := &Ports{
			Library: library,
			Browse:  services.NewBrowser(library, nil),
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	library := &mockLibraryService{}

	t.Run("nil library service returns error", func(t *testing.T) {
		ports := &Ports{Browse: services.NewBrowser(library, nil)}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingLibraryService)
	})

	t.Run("nil browse service returns error", func(t *testing.T) {
		ports := &Ports{Library: library}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingBrowseService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Library: library,
			Browse:  services.NewBrowser(library, &mockSearchService{}),
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_Handler_AcceptsInitialize(t *testing.T) {
	server := newTestServer(t, &Ports{Library: &mockLibraryService{}})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{` +
		`"protocolVersion":"2025-06-18","capabilities":{},` +
		`"clientInfo":{"name":"test","version":"1.0"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server := newTestServer(t, &Ports{Library: &mockLibraryService{}})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.RunHTTP(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestServer_RunHTTP_ReportsListenError(t *testing.T) {
	server := newTestServer(t, &Ports{Library: &mockLibraryService{}})
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	err = server.RunHTTP(context.Background(), taken.Addr().String())

	require.Error(t, err)
	assert.Contains(t, err.Error(), taken.Addr().String())
}
