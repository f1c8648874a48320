package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/openfroyo/refdata/pkg/refdata"
)

// seedExtensions are the file extensions recognised as seed documents.
var seedExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
	".cue":  true,
}

// IsSeedFile reports whether path has a seed document extension.
func IsSeedFile(path string) bool {
	return seedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SeedDocument is one decoded seed file.
type SeedDocument struct {
	Path        string
	Collections refdata.Collections
}

// SeedSet is the merged result of loading several seed documents.
type SeedSet struct {
	Documents   []*SeedDocument
	Collections refdata.Collections
}

// Files returns the paths of the documents in merge order.
func (s *SeedSet) Files() []string {
	files := make([]string, 0, len(s.Documents))
	for _, doc := range s.Documents {
		files = append(files, doc.Path)
	}
	return files
}

// Source describes the set for snapshot metadata.
func (s *SeedSet) Source() string {
	return strings.Join(s.Files(), ",")
}

// SeedLoader decodes and validates seed documents.
type SeedLoader struct {
	schemas  *SchemaRegistry
	validate *validator.Validate
}

// NewSeedLoader creates a seed loader with the built-in schemas.
func NewSeedLoader() *SeedLoader {
	return &SeedLoader{
		schemas:  NewSchemaRegistry(),
		validate: validator.New(),
	}
}

// LoadSeeds loads every seed file named by paths. Directories contribute
// their seed files (non-recursive, sorted by name, hidden files skipped).
// Documents are merged in order; problems from every document are
// collected into one error.
func (l *SeedLoader) LoadSeeds(ctx context.Context, paths []string) (*SeedSet, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no seed paths provided")
	}

	files, err := ExpandSeedPaths(paths)
	if err != nil {
		return nil, err
	}

	set := &SeedSet{}
	var result *multierror.Error

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := l.DecodeSeed(file)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		set.Documents = append(set.Documents, doc)
		set.Collections.Append(doc.Collections)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return set, nil
}

// ExpandSeedPaths resolves files and directories into the ordered list of
// seed files they name.
func ExpandSeedPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat seed path %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !IsSeedFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

// DecodeSeed reads and validates a single seed file.
func (l *SeedLoader) DecodeSeed(path string) (*SeedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	var c refdata.Collections
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = l.decodeYAML(data, &c)
	case ".json":
		err = l.decodeJSON(data, &c)
	case ".cue":
		err = l.decodeCUE(path, data, &c)
	default:
		return nil, &ValidationError{File: path, Message: "unsupported seed format"}
	}
	if err != nil {
		return nil, &ValidationError{File: path, Message: err.Error()}
	}

	if err := l.validateRecords(&c); err != nil {
		return nil, &ValidationError{File: path, Message: err.Error()}
	}

	return &SeedDocument{Path: path, Collections: c}, nil
}

func (l *SeedLoader) decodeYAML(data []byte, c *refdata.Collections) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return l.validateSchema(c)
}

func (l *SeedLoader) decodeJSON(data []byte, c *refdata.Collections) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	return l.validateSchema(c)
}

func (l *SeedLoader) decodeCUE(path string, data []byte, c *refdata.Collections) error {
	val := l.schemas.Context().CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile cue: %w", err)
	}

	unified, err := l.schemas.Unify(SeedSchema, val)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if err := unified.Decode(c); err != nil {
		return fmt.Errorf("failed to decode cue: %w", err)
	}
	return nil
}

// validateSchema checks decoded YAML or JSON against the seed schema. The
// document is re-encoded as JSON so omitted fields stay omitted.
func (l *SeedLoader) validateSchema(c *refdata.Collections) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := l.schemas.ValidateJSON(SeedSchema, data); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func (l *SeedLoader) validateRecords(c *refdata.Collections) error {
	if err := l.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("record validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("record validation failed: %w", err)
	}
	return nil
}
