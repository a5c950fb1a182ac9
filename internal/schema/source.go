package schema

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/common"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.json
var embedded embed.FS

// Source loads schema definitions by identifier. Sources are read only.
type Source interface {
	Load(id string) ([]byte, error)
	List() ([]string, error)
}

var schemaExtensions = []string{".json", ".yaml", ".yml"}

// fsSource serves <id>.json, <id>.yaml or <id>.yml files from a file system.
type fsSource struct {
	fsys fs.FS
}

// EmbeddedSource returns the schemas compiled into the binary.
func EmbeddedSource() Source {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		panic(fmt.Sprintf("embedded schemas: %v", err))
	}
	return fsSource{fsys: sub}
}

// DirSource reads schemas from a directory.
func DirSource(dir string) Source {
	return fsSource{fsys: os.DirFS(dir)}
}

// Load returns the schema as JSON, converting YAML definitions on the way.
func (s fsSource) Load(id string) ([]byte, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", common.ErrSchemaNotFound, id)
	}

	for _, ext := range schemaExtensions {
		data, err := fs.ReadFile(s.fsys, id+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", id, err)
		}
		if ext == ".json" {
			return data, nil
		}
		return yamlToJSON(data)
	}

	return nil, fmt.Errorf("%w: %s", common.ErrSchemaNotFound, id)
}

// List returns the identifiers of every schema file, sorted.
func (s fsSource) List() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if !isSchemaExtension(ext) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ext)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isSchemaExtension(ext string) bool {
	for _, e := range schemaExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML schema: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML schema: %w", err)
	}
	return out, nil
}
