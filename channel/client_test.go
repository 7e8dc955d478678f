package channel

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowChannelURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "plain", base: "https://chat.example.com", token: "abc", want: "https://chat.example.com/v2/api/external/abc/showChannel"},
		{name: "trailing slashes", base: "https://chat.example.com//", token: "abc", want: "https://chat.example.com/v2/api/external/abc/showChannel"},
		{name: "escaped token", base: "http://localhost:8080", token: "a/b c", want: "http://localhost:8080/v2/api/external/a%2Fb%20c/showChannel"},
		{name: "missing token", base: "http://localhost", wantErr: true},
		{name: "missing base", token: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShowChannelURL(tt.base, tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShowChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/api/external/tok/showChannel", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"number":"5511999999999"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"channel":"whatsapp"}`))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, "tok", time.Second).
		ShowChannel(context.Background(), "post", []byte(`{"number":"5511999999999"}`))
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, `{"channel":"whatsapp"}`, result.Body)
}

func TestShowChannelNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		http.Error(w, "token not found", http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, "tok", time.Second).ShowChannel(context.Background(), "GET", nil)
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, http.StatusNotFound, result.Status)
}
