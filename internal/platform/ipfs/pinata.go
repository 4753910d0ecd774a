package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// PinataConfig holds credentials and endpoints for the Pinata pinning service.
type PinataConfig struct {
	APIKey    string
	SecretKey string
	// BaseURL is the Pinata API endpoint, e.g. https://api.pinata.cloud.
	BaseURL string
	// GatewayURL is the public gateway prefix, e.g. https://gateway.pinata.cloud/ipfs.
	GatewayURL string
}

// PinataClient implements FileStore against the Pinata HTTP API.
type PinataClient struct {
	cfg    PinataConfig
	client *http.Client
}

func NewPinataClient(cfg PinataConfig) *PinataClient {
	return &PinataClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// pinResponse is the Pinata wire format for pin operations.
type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *PinataClient) authHeaders(req *http.Request) {
	req.Header.Set("pinata_api_key", p.cfg.APIKey)
	req.Header.Set("pinata_secret_api_key", p.cfg.SecretKey)
}

// Pin uploads the content via pinFileToIPFS and returns the resulting CID.
func (p *PinataClient) Pin(ctx context.Context, fileName string, content io.Reader) (*PinResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("pinata: create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("pinata: copy content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("pinata: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return nil, fmt.Errorf("pinata: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	p.authHeaders(req)

	return p.doPin(req)
}

// PinJSON uploads a JSON value via pinJSONToIPFS.
func (p *PinataClient) PinJSON(ctx context.Context, name string, v interface{}) (*PinResult, error) {
	payload := map[string]interface{}{
		"pinataMetadata": map[string]string{"name": name},
		"pinataContent":  v,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("pinata: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pinata: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authHeaders(req)

	return p.doPin(req)
}

func (p *PinataClient) doPin(req *http.Request) (*PinResult, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinata: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("pinata: pin returned status %d: %s", resp.StatusCode, slurp)
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pinata: decode response: %w", err)
	}
	return &PinResult{CID: out.IpfsHash, Size: out.PinSize}, nil
}

// Fetch streams content from the configured gateway.
func (p *PinataClient) Fetch(ctx context.Context, cid string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.cfg.GatewayURL+"/"+cid, nil)
	if err != nil {
		return nil, fmt.Errorf("pinata: build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinata: fetch: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("pinata: gateway returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Unpin removes a pin from the service.
func (p *PinataClient) Unpin(ctx context.Context, cid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		p.cfg.BaseURL+"/pinning/unpin/"+cid, nil)
	if err != nil {
		return fmt.Errorf("pinata: build request: %w", err)
	}
	p.authHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinata: unpin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinata: unpin returned status %d", resp.StatusCode)
	}
	return nil
}
