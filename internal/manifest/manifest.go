// Package manifest reads the optional manifest.yaml that describes a Wasm
// module: where its binary lives, its expected digest and the exports it
// must provide.
package manifest

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/woxQAQ/wasmadd/internal/wasm"
)

// FileName is the manifest file looked up in a module directory.
const FileName = "manifest.yaml"

// Manifest represents the manifest.yaml structure.
type Manifest struct {
	Name    string       `yaml:"name"`
	Version string       `yaml:"version"`
	Wasm    WasmConfig   `yaml:"wasm"`
	Exports []ExportDecl `yaml:"exports"`
	Author  string       `yaml:"author"`
	License string       `yaml:"license"`

	// Internal fields
	dir string // Directory containing manifest
}

// WasmConfig holds Wasm module configuration.
type WasmConfig struct {
	File   string `yaml:"file"`
	SHA256 string `yaml:"sha256"`
}

// ExportDecl declares one function the module must export.
type ExportDecl struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params"`
	Results []string `yaml:"results"`
}

// ParseManifest reads and parses manifest.yaml from a directory.
func ParseManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, FileName)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &ManifestNotFoundError{
			Path: manifestPath,
			Err:  err,
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: manifestPath,
			Err:  err,
		}
	}

	m.dir = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return m.invalid("name", "name is required")
	}

	if m.Version == "" {
		return m.invalid("version", "version is required")
	}

	if m.Wasm.File == "" {
		return m.invalid("wasm.file", "wasm.file is required")
	}

	if m.Wasm.SHA256 != "" {
		if b, err := hex.DecodeString(m.Wasm.SHA256); err != nil || len(b) != 32 {
			return m.invalid("wasm.sha256", "wasm.sha256 must be 64 hex characters")
		}
	}

	if len(m.Exports) == 0 {
		return m.invalid("exports", "at least one export is required")
	}

	seen := make(map[string]bool, len(m.Exports))
	for i, e := range m.Exports {
		field := fmt.Sprintf("exports[%d]", i)
		if e.Name == "" {
			return m.invalid(field+".name", "export name is required")
		}
		if seen[e.Name] {
			return m.invalid(field+".name", fmt.Sprintf("duplicate export: %s", e.Name))
		}
		seen[e.Name] = true

		if len(e.Results) != 1 {
			return m.invalid(field+".results", "exactly one result is required")
		}
		for _, t := range append(append([]string{}, e.Params...), e.Results...) {
			if _, err := wasm.ParseValueType(t); err != nil {
				return m.invalid(field, err.Error())
			}
		}
	}

	if _, err := os.Stat(m.WasmPath()); os.IsNotExist(err) {
		return &WasmNotFoundError{
			ManifestPath: m.Path(),
			WasmFile:     m.Wasm.File,
		}
	}

	return nil
}

func (m *Manifest) invalid(field, msg string) error {
	return &ManifestValidationError{
		Path:    m.Path(),
		Field:   field,
		Message: msg,
	}
}

// Export returns the signature declared for name.
func (m *Manifest) Export(name string) (wasm.ExportSpec, error) {
	for _, e := range m.Exports {
		if e.Name != name {
			continue
		}
		spec := wasm.ExportSpec{Name: e.Name}
		for _, p := range e.Params {
			vt, err := wasm.ParseValueType(p)
			if err != nil {
				return wasm.ExportSpec{}, err
			}
			spec.Params = append(spec.Params, vt)
		}
		for _, r := range e.Results {
			vt, err := wasm.ParseValueType(r)
			if err != nil {
				return wasm.ExportSpec{}, err
			}
			spec.Results = append(spec.Results, vt)
		}
		return spec, nil
	}
	return wasm.ExportSpec{}, &ExportNotDeclaredError{ManifestPath: m.Path(), Export: name}
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, FileName)
}

// WasmPath returns the path to the Wasm file.
func (m *Manifest) WasmPath() string {
	return filepath.Join(m.dir, m.Wasm.File)
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return m.dir
}
