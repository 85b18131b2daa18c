package queryclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_Ask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "Hello" {
			t.Errorf("unexpected query: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "Hi there"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, nil, nil)
	reply, err := client.Ask(context.Background(), "Hello")

	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if reply.Response == nil || *reply.Response != "Hi there" {
		t.Errorf("unexpected reply: %+v", reply)
	}
}

func TestHTTPClient_MissingResponseField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"other":"field"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, nil, nil)
	reply, err := client.Ask(context.Background(), "Hello")

	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if reply.Response != nil {
		t.Error("response should be absent")
	}
}

func TestHTTPClient_ServerErrorWithJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, nil, nil)
	reply, err := client.Ask(context.Background(), "Hello")

	if err != nil {
		t.Fatalf("a decodable error body is still a reply: %v", err)
	}
	if reply.Response != nil {
		t.Error("response should be absent")
	}
}

func TestHTTPClient_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, nil, nil)
	_, err := client.Ask(context.Background(), "Hello")

	if err == nil {
		t.Error("should error on undecodable body")
	}
}

func TestHTTPClient_ParseableBodies(t *testing.T) {
	tests := []struct {
		body    string
		want    string // empty means no response
		wantErr bool
	}{
		{body: `[]`},
		{body: `"ok"`},
		{body: `{"response":5}`, want: "5"},
		{body: `{"response":2.5}`, want: "2.5"},
		{body: `{"response":0}`},
		{body: `{"response":null}`},
		{body: `{"response":{"text":"hi"}}`},
		{body: `null`, wantErr: true},
		{body: ``, wantErr: true},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tt.body))
		}))
		reply, err := NewHTTPClient(server.URL, nil, nil).Ask(context.Background(), "Hello")
		server.Close()

		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.body)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.body, err)
			continue
		}
		got := ""
		if reply.Response != nil {
			got = *reply.Response
		}
		if got != tt.want {
			t.Errorf("%q: expected response %q, got %q", tt.body, tt.want, got)
		}
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClient(url, nil, nil)
	_, err := client.Ask(context.Background(), "Hello")

	if err == nil {
		t.Error("should error when the server is gone")
	}
}

func TestHTTPClient_DefaultValues(t *testing.T) {
	client := NewHTTPClient("", nil, nil)
	if client.url != DefaultURL {
		t.Errorf("should default to %s", DefaultURL)
	}
	if client.client.Timeout != 0 {
		t.Error("default client should not impose a timeout")
	}
}
