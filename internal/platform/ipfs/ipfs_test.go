package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMemoryStore_PinAndFetch(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	res, err := store.Pin(ctx, "report.pdf", strings.NewReader("lab report body"))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if res.CID == "" {
		t.Fatal("expected non-empty CID")
	}
	if res.Size != int64(len("lab report body")) {
		t.Errorf("expected size %d, got %d", len("lab report body"), res.Size)
	}

	rc, err := store.Fetch(ctx, res.CID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if string(data) != "lab report body" {
		t.Errorf("expected original content, got %q", data)
	}
}

func TestMemoryStore_DeterministicCID(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	r1, err := store.Pin(ctx, "a.txt", strings.NewReader("same bytes"))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	r2, err := store.Pin(ctx, "b.txt", strings.NewReader("same bytes"))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if r1.CID != r2.CID {
		t.Errorf("expected identical CIDs for identical content, got %q and %q", r1.CID, r2.CID)
	}

	r3, err := store.Pin(ctx, "c.txt", strings.NewReader("different bytes"))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if r3.CID == r1.CID {
		t.Error("expected different CID for different content")
	}
}

func TestMemoryStore_SizeLimit(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	if _, err := store.Pin(ctx, "small.txt", strings.NewReader("tiny")); err != nil {
		t.Fatalf("Pin under limit: %v", err)
	}
	_, err := store.Pin(ctx, "big.txt", strings.NewReader("this is more than ten bytes"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestMemoryStore_Unpin(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	res, err := store.Pin(ctx, "x.txt", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := store.Unpin(ctx, res.CID); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	if _, err := store.Fetch(ctx, res.CID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after unpin, got %v", err)
	}
	if err := store.Unpin(ctx, res.CID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for double unpin, got %v", err)
	}
}

func TestMemoryStore_PinJSON(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	res, err := store.PinJSON(ctx, "analysis", map[string]string{"severity": "high"})
	if err != nil {
		t.Fatalf("PinJSON: %v", err)
	}

	rc, err := store.Fetch(ctx, res.CID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer rc.Close()

	var decoded map[string]string
	if err := json.NewDecoder(rc).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["severity"] != "high" {
		t.Errorf("expected severity high, got %q", decoded["severity"])
	}
}

func TestPinataClient_Pin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinFileToIPFS" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("pinata_api_key") != "key" || r.Header.Get("pinata_secret_api_key") != "secret" {
			t.Error("expected auth headers to be set")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "scan.png" {
			t.Errorf("expected filename scan.png, got %q", hdr.Filename)
		}
		data, _ := io.ReadAll(f)
		json.NewEncoder(w).Encode(pinResponse{IpfsHash: "QmTest123", PinSize: int64(len(data))})
	}))
	defer srv.Close()

	client := NewPinataClient(PinataConfig{
		APIKey: "key", SecretKey: "secret",
		BaseURL: srv.URL, GatewayURL: srv.URL + "/ipfs",
	})

	res, err := client.Pin(context.Background(), "scan.png", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if res.CID != "QmTest123" {
		t.Errorf("expected CID QmTest123, got %q", res.CID)
	}
	if res.Size != int64(len("image bytes")) {
		t.Errorf("expected size %d, got %d", len("image bytes"), res.Size)
	}
}

func TestPinataClient_PinJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinJSONToIPFS" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if _, ok := payload["pinataContent"]; !ok {
			t.Error("expected pinataContent in payload")
		}
		json.NewEncoder(w).Encode(pinResponse{IpfsHash: "QmJSON456", PinSize: 42})
	}))
	defer srv.Close()

	client := NewPinataClient(PinataConfig{BaseURL: srv.URL, GatewayURL: srv.URL + "/ipfs"})

	res, err := client.PinJSON(context.Background(), "meta", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("PinJSON: %v", err)
	}
	if res.CID != "QmJSON456" {
		t.Errorf("expected CID QmJSON456, got %q", res.CID)
	}
}

func TestPinataClient_FetchAndUnpin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ipfs/QmKnown":
			io.WriteString(w, "stored bytes")
		case r.Method == http.MethodDelete && r.URL.Path == "/pinning/unpin/QmKnown":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewPinataClient(PinataConfig{BaseURL: srv.URL, GatewayURL: srv.URL + "/ipfs"})
	ctx := context.Background()

	rc, err := client.Fetch(ctx, "QmKnown")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "stored bytes" {
		t.Errorf("expected stored bytes, got %q", data)
	}

	if _, err := client.Fetch(ctx, "QmMissing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := client.Unpin(ctx, "QmKnown"); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	if err := client.Unpin(ctx, "QmMissing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
