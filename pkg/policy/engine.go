package policy

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/rs/zerolog"

	"github.com/openfroyo/refdata/pkg/refdata"
)

// Engine evaluates Rego policies against reference data snapshots.
type Engine struct {
	mu       sync.RWMutex
	policies map[string]*compiledPolicy
	paths    []string
	store    storage.Store
	logger   zerolog.Logger
	failOn   Severity
}

// compiledPolicy represents a compiled Rego policy.
type compiledPolicy struct {
	policy   *Policy
	module   *ast.Module
	query    rego.PreparedEvalQuery
	compiled time.Time
}

// NewEngine creates a policy engine with the built-in policies loaded.
// Violations at or above failOn make a result disallowed; an empty failOn
// means SeverityError.
func NewEngine(logger zerolog.Logger, failOn Severity) (*Engine, error) {
	if failOn == "" {
		failOn = SeverityError
	}
	if _, err := ParseSeverity(string(failOn)); err != nil {
		return nil, err
	}

	e := &Engine{
		policies: make(map[string]*compiledPolicy),
		store:    inmem.New(),
		logger:   logger.With().Str("component", "policy-engine").Logger(),
		failOn:   failOn,
	}

	if err := e.loadBuiltinPolicies(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load built-in policies: %w", err)
	}

	return e, nil
}

// FailOn returns the severity threshold that blocks a publish.
func (e *Engine) FailOn() Severity {
	return e.failOn
}

// EvaluateSnapshot evaluates every enabled policy against snap. A nil
// snapshot is evaluated as an empty one. Policies that fail to evaluate
// are reported in Result.Errors and do not block.
func (e *Engine) EvaluateSnapshot(ctx context.Context, snap *refdata.Snapshot) (*Result, error) {
	startTime := time.Now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	input := &Input{
		Revision:    snap.Revision(),
		Source:      snap.Source(),
		Collections: snap.Collections(),
	}

	result := &Result{
		Allowed:           true,
		FailOn:            e.failOn,
		Revision:          input.Revision,
		EvaluatedPolicies: make([]string, 0, len(e.policies)),
	}

	for _, name := range e.sortedNames() {
		cp := e.policies[name]
		if !cp.policy.Enabled {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("policy evaluation cancelled: %w", err)
		}

		result.EvaluatedPolicies = append(result.EvaluatedPolicies, name)

		violations, err := e.evaluatePolicy(ctx, cp, input)
		if err != nil {
			e.logger.Error().Err(err).
				Str("policy", name).
				Str("revision", input.Revision).
				Msg("Policy evaluation failed")
			result.Errors = append(result.Errors, fmt.Sprintf("policy %s evaluation failed: %v", name, err))
			continue
		}

		result.Violations = append(result.Violations, violations...)
	}

	for i := range result.Violations {
		if result.Violations[i].Severity.AtLeast(e.failOn) {
			result.Allowed = false
			break
		}
	}

	result.EvaluatedAt = time.Now()
	result.Duration = time.Since(startTime)

	e.logger.Debug().
		Str("revision", input.Revision).
		Int("violations", len(result.Violations)).
		Bool("allowed", result.Allowed).
		Dur("duration", result.Duration).
		Msg("Snapshot policy evaluation completed")

	return result, nil
}

// evaluatePolicy evaluates a single compiled policy.
func (e *Engine) evaluatePolicy(ctx context.Context, cp *compiledPolicy, input *Input) ([]Violation, error) {
	results, err := cp.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("policy evaluation error: %w", err)
	}

	var violations []Violation
	for _, result := range results {
		if len(result.Expressions) == 0 {
			continue
		}
		if denySet, ok := result.Expressions[0].Value.([]interface{}); ok {
			for _, d := range denySet {
				violations = append(violations, createViolation(cp.policy, d))
			}
		}
	}

	return violations, nil
}

// createViolation creates a Violation from a deny set element.
func createViolation(policy *Policy, result interface{}) Violation {
	violation := Violation{
		Policy:   policy.Name,
		Severity: policy.Severity,
	}

	switch v := result.(type) {
	case string:
		violation.Message = v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			violation.Message = msg
		}
		if sev, ok := v["severity"].(string); ok {
			if parsed, err := ParseSeverity(sev); err == nil && sev != "" {
				violation.Severity = parsed
			}
		}
		if res, ok := v["resource"].(string); ok {
			violation.Resource = res
		}
	default:
		violation.Message = fmt.Sprintf("%v", result)
	}

	return violation
}

// LoadPolicies loads policy files from paths and remembers the paths for
// ReloadPolicies.
func (e *Engine) LoadPolicies(ctx context.Context, paths []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadPaths(ctx, paths); err != nil {
		return err
	}
	e.paths = append(e.paths, paths...)
	return nil
}

func (e *Engine) loadPaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	loader := NewLoader(e.logger)
	policies, err := loader.LoadFromPaths(ctx, paths)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	for i := range policies {
		if err := e.compileAndStorePolicy(ctx, &policies[i]); err != nil {
			e.logger.Error().Err(err).
				Str("policy", policies[i].Name).
				Msg("Failed to compile policy")
			return fmt.Errorf("failed to compile policy %s: %w", policies[i].Name, err)
		}
	}

	e.logger.Info().
		Int("count", len(policies)).
		Msg("Policies loaded successfully")

	return nil
}

// AddPolicy compiles and registers a single policy, replacing any policy
// with the same name.
func (e *Engine) AddPolicy(ctx context.Context, policy Policy) error {
	if policy.Name == "" {
		return fmt.Errorf("policy name is required")
	}
	if policy.Severity == "" {
		policy.Severity = SeverityWarning
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.compileAndStorePolicy(ctx, &policy)
}

// compileAndStorePolicy compiles a policy and stores it.
func (e *Engine) compileAndStorePolicy(ctx context.Context, policy *Policy) error {
	module, err := ast.ParseModule(policy.Name, policy.Rego)
	if err != nil {
		return fmt.Errorf("failed to parse policy: %w", err)
	}
	if module == nil || module.Package == nil {
		return fmt.Errorf("policy %s has no package", policy.Name)
	}

	r := rego.New(
		rego.Module(policy.Name, policy.Rego),
		rego.Store(e.store),
		rego.Query(module.Package.Path.String()+".deny"),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare query: %w", err)
	}

	if _, exists := e.policies[policy.Name]; exists {
		e.logger.Warn().Str("policy", policy.Name).Msg("Replacing existing policy")
	}

	e.policies[policy.Name] = &compiledPolicy{
		policy:   policy,
		module:   module,
		query:    query,
		compiled: time.Now(),
	}

	e.logger.Debug().
		Str("policy", policy.Name).
		Msg("Policy compiled successfully")

	return nil
}

// loadBuiltinPolicies loads the built-in policies.
func (e *Engine) loadBuiltinPolicies(ctx context.Context) error {
	builtins := GetBuiltinPolicies()
	for i := range builtins {
		if err := e.compileAndStorePolicy(ctx, &builtins[i]); err != nil {
			return fmt.Errorf("failed to compile built-in policy %s: %w", builtins[i].Name, err)
		}
	}

	e.logger.Debug().
		Int("count", len(builtins)).
		Msg("Built-in policies loaded")

	return nil
}

// GetPolicy returns a copy of the named policy.
func (e *Engine) GetPolicy(name string) (*Policy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cp, exists := e.policies[name]
	if !exists {
		return nil, fmt.Errorf("policy not found: %s", name)
	}

	p := *cp.policy
	return &p, nil
}

// ListPolicies returns all loaded policies sorted by name.
func (e *Engine) ListPolicies() []Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies := make([]Policy, 0, len(e.policies))
	for _, name := range e.sortedNames() {
		policies = append(policies, *e.policies[name].policy)
	}

	return policies
}

// ReloadPolicies recompiles the built-in policies and re-reads every path
// given to LoadPolicies. Enabled flags survive the reload.
func (e *Engine) ReloadPolicies(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	enabled := make(map[string]bool, len(e.policies))
	for name, cp := range e.policies {
		enabled[name] = cp.policy.Enabled
	}

	previous := e.policies
	e.policies = make(map[string]*compiledPolicy)

	err := e.loadBuiltinPolicies(ctx)
	if err == nil {
		err = e.loadPaths(ctx, e.paths)
	}
	if err != nil {
		e.policies = previous
		return err
	}

	for name, cp := range e.policies {
		if on, ok := enabled[name]; ok {
			cp.policy.Enabled = on
		}
	}

	return nil
}

// EnablePolicy enables a policy by name.
func (e *Engine) EnablePolicy(name string) error {
	return e.setEnabled(name, true)
}

// DisablePolicy disables a policy by name.
func (e *Engine) DisablePolicy(name string) error {
	return e.setEnabled(name, false)
}

func (e *Engine) setEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp, exists := e.policies[name]
	if !exists {
		return fmt.Errorf("policy not found: %s", name)
	}

	cp.policy.Enabled = enabled
	e.logger.Info().Str("policy", name).Bool("enabled", enabled).Msg("Policy state changed")

	return nil
}

// sortedNames returns policy names in evaluation order. Callers hold mu.
func (e *Engine) sortedNames() []string {
	names := make([]string, 0, len(e.policies))
	for name := range e.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
