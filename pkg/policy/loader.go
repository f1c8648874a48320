package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// severityDirective sets a .rego file's default severity when it appears
// in a leading comment, e.g. "# severity: error".
const severityDirective = "severity:"

// Loader handles loading policies from files and directories.
type Loader struct {
	logger zerolog.Logger
	cache  map[string]*Policy
	mu     sync.RWMutex
}

// NewLoader creates a new policy loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "policy-loader").Logger(),
		cache:  make(map[string]*Policy),
	}
}

// LoadFromPaths loads policies from a list of file or directory paths.
func (l *Loader) LoadFromPaths(ctx context.Context, paths []string) ([]Policy, error) {
	var allPolicies []Policy

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		policies, err := l.loadFromPath(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load from path %s: %w", path, err)
		}
		allPolicies = append(allPolicies, policies...)
	}

	l.logger.Debug().
		Int("total", len(allPolicies)).
		Int("sources", len(paths)).
		Msg("Policies loaded from paths")

	return allPolicies, nil
}

// loadFromPath loads policies from a single path (file or directory).
func (l *Loader) loadFromPath(ctx context.Context, path string) ([]Policy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return l.loadFromDirectory(ctx, path)
	}

	policy, err := l.loadFromFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return []Policy{*policy}, nil
}

// loadFromDirectory loads all .rego and .json files from a directory
// recursively. Files that fail to load are logged and skipped.
func (l *Loader) loadFromDirectory(ctx context.Context, dirPath string) ([]Policy, error) {
	var policies []Policy

	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".rego") && !strings.HasSuffix(path, ".json") {
			return nil
		}

		policy, err := l.loadFromFile(ctx, path)
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("Failed to load policy file")
			return nil
		}

		policies = append(policies, *policy)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return policies, nil
}

// loadFromFile loads a policy from a single file.
func (l *Loader) loadFromFile(_ context.Context, filePath string) (*Policy, error) {
	l.mu.RLock()
	if cached, exists := l.cache[filePath]; exists {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var policy *Policy

	switch {
	case strings.HasSuffix(filePath, ".rego"):
		policy, err = l.parseRegoFile(filePath, data)
	case strings.HasSuffix(filePath, ".json"):
		policy, err = l.parseJSONFile(filePath, data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filePath)
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[filePath] = policy
	l.mu.Unlock()

	l.logger.Debug().
		Str("path", filePath).
		Str("policy", policy.Name).
		Msg("Policy loaded from file")

	return policy, nil
}

// parseRegoFile parses a .rego file into a Policy named after the file.
func (l *Loader) parseRegoFile(filePath string, data []byte) (*Policy, error) {
	name := strings.TrimSuffix(filepath.Base(filePath), ".rego")
	content := string(data)

	severity := SeverityWarning
	if s := extractSeverity(content); s != "" {
		parsed, err := ParseSeverity(s)
		if err != nil {
			return nil, fmt.Errorf("invalid severity in %s: %w", filePath, err)
		}
		severity = parsed
	}

	return &Policy{
		Name:        name,
		Description: extractDescription(content),
		Rego:        content,
		Severity:    severity,
		Enabled:     true,
		Source:      filePath,
	}, nil
}

// parseJSONFile parses a JSON policy definition.
func (l *Loader) parseJSONFile(filePath string, data []byte) (*Policy, error) {
	var policy Policy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse JSON policy: %w", err)
	}

	if policy.Name == "" {
		policy.Name = strings.TrimSuffix(filepath.Base(filePath), ".json")
	}
	if policy.Severity == "" {
		policy.Severity = SeverityWarning
	}
	if _, err := ParseSeverity(string(policy.Severity)); err != nil {
		return nil, fmt.Errorf("invalid severity in %s: %w", filePath, err)
	}
	if policy.Rego == "" {
		return nil, fmt.Errorf("policy %s has no rego code", policy.Name)
	}
	policy.Builtin = false
	policy.Source = filePath

	return &policy, nil
}

// leadingComments returns the comment lines before the first code line.
func leadingComments(content string) []string {
	var comments []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
		case trimmed == "":
			if len(comments) > 0 {
				return comments
			}
		default:
			return comments
		}
	}
	return comments
}

// extractDescription joins the leading comment block of a Rego file.
func extractDescription(content string) string {
	var parts []string
	for _, comment := range leadingComments(content) {
		if comment == "" || strings.HasPrefix(strings.ToLower(comment), severityDirective) {
			continue
		}
		parts = append(parts, comment)
	}
	return strings.Join(parts, " ")
}

// extractSeverity returns the value of a "# severity:" comment, if any.
func extractSeverity(content string) string {
	for _, comment := range leadingComments(content) {
		if strings.HasPrefix(strings.ToLower(comment), severityDirective) {
			return strings.TrimSpace(comment[len(severityDirective):])
		}
	}
	return ""
}

// ClearCache clears the policy cache.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[string]*Policy)
	l.logger.Debug().Msg("Policy cache cleared")
}
