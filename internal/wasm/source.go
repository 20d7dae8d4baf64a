package wasm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ModuleSource represents a source for Wasm bytecode.
type ModuleSource interface {
	// Bytes returns the complete Wasm bytecode.
	Bytes(ctx context.Context) ([]byte, error)

	// Name returns a name/identifier for this module.
	Name() string
}

// FileModuleSource loads Wasm from a file.
type FileModuleSource struct {
	Path string
}

// Bytes reads the Wasm file.
func (f *FileModuleSource) Bytes(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FetchError{Source: f.Path, Err: err}
	}
	return data, nil
}

// Name returns the file path as the module name.
func (f *FileModuleSource) Name() string {
	return f.Path
}

// MemoryModuleSource loads Wasm from memory.
type MemoryModuleSource struct {
	ModuleName string
	Data       []byte
}

// Bytes returns the Wasm bytecode.
func (m *MemoryModuleSource) Bytes(ctx context.Context) ([]byte, error) {
	return m.Data, nil
}

// Name returns the module name.
func (m *MemoryModuleSource) Name() string {
	return m.ModuleName
}

// HTTPModuleSource fetches Wasm with a single GET request.
type HTTPModuleSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPModuleSource resolves path against baseURL.
func NewHTTPModuleSource(baseURL, path string, client *http.Client) (*HTTPModuleSource, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid module base URL '%s': %w", baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid module path '%s': %w", path, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPModuleSource{
		URL:    base.ResolveReference(ref).String(),
		Client: client,
	}, nil
}

// Bytes performs the request and reads the whole body.
func (h *HTTPModuleSource) Bytes(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: h.URL, Err: err}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: h.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Source: h.URL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: h.URL, Err: fmt.Errorf("reading body: %w", err)}
	}
	return data, nil
}

// Name returns the request URL.
func (h *HTTPModuleSource) Name() string {
	return h.URL
}
