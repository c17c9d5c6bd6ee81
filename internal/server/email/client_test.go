package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotToken  string
		gotBody   sendRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sender@example.com", "secret-token", time.Second)

	err := client.Send(context.Background(), Email{
		To:       "recipient@example.com",
		Subject:  "Welcome!",
		HTMLBody: "<p>hi</p>",
		TextBody: "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/email", gotPath)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "sender@example.com", gotBody.From)
	assert.Equal(t, "recipient@example.com", gotBody.To)
	assert.Equal(t, "Welcome!", gotBody.Subject)
	assert.Equal(t, "<p>hi</p>", gotBody.HtmlBody)
	assert.Equal(t, "hi", gotBody.TextBody)
}

func TestClient_SendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sender@example.com", "secret-token", time.Second)

	err := client.Send(context.Background(), Email{To: "recipient@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_SendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sender@example.com", "secret-token", 50*time.Millisecond)

	err := client.Send(context.Background(), Email{To: "recipient@example.com"})
	require.Error(t, err)
}

func TestClient_SendUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "sender@example.com", "secret-token", time.Second)

	err := client.Send(context.Background(), Email{To: "recipient@example.com"})
	require.Error(t, err)
}
