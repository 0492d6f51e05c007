// Package query evaluates expr-lang expressions against Threads API responses.
//
// An expression sees the decoded response as body, the HTTP status as status
// and the response headers as headers:
//
//	body.data[0].id
//	status == 200 and header("Content-Type") contains "json"
//	map(body.data, #.permalink)
package query

import (
	"encoding/json"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/smarterqueue/threads-go/threads"
)

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache keeps up to size compiled queries
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithFunctions adds helper functions callable from expressions.
// They replace built-in helpers of the same name.
func WithFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// Compiler turns expressions into queries
type Compiler struct {
	helperFuncs map[string]any
	cache       *programCache
}

// NewCompiler creates a new compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helperFuncs: staticHelpers(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile compiles an expression. Response fields are resolved when the
// query runs, so only syntax and helper calls are checked here.
func (c *Compiler) Compile(expression string) (*Query, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.get(expression); ok {
			return cached, nil
		}
	}

	env := make(map[string]any, len(c.helperFuncs)+1)
	maps.Copy(env, c.helperFuncs)
	env["header"] = func(string) string { return "" }

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	q := &Query{
		expression:  expression,
		program:     program,
		helperFuncs: c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.put(expression, q)
	}

	return q, nil
}

// Clear drops all cached queries
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.clear()
	}
}

// Size returns the number of cached queries
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.len()
	}
	return 0
}

// Query is a compiled expression. It is safe for concurrent use.
type Query struct {
	expression  string
	program     *vm.Program
	helperFuncs map[string]any
}

// Run evaluates the query against resp and returns the expression's value
func (q *Query) Run(resp *threads.Response) (any, error) {
	result, err := expr.Run(q.program, q.environment(resp))
	if err != nil {
		return nil, &EvaluationError{
			Expression: q.expression,
			Reason:     "failed to evaluate expression",
			Err:        err,
		}
	}
	return result, nil
}

// Expression returns the source expression
func (q *Query) Expression() string {
	return q.expression
}

// environment builds the runtime variables for one response
func (q *Query) environment(resp *threads.Response) map[string]any {
	env := make(map[string]any, len(q.helperFuncs)+5)
	maps.Copy(env, q.helperFuncs)

	header := http.Header{}
	if resp.Header != nil {
		header = resp.Header
	}

	env["body"] = normalizeNumbers(resp.Body)
	env["status"] = resp.StatusCode
	env["headers"] = map[string][]string(header)
	env["raw"] = string(resp.Raw())
	env["header"] = header.Get

	return env
}

// normalizeNumbers converts json.Number values so expressions can compare and
// do arithmetic on them. Integers become int64 and keep their exact value,
// other numbers become float64.
func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = normalizeNumbers(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = normalizeNumbers(elem)
		}
		return out
	default:
		return v
	}
}

// timestampLayout is the format of timestamp fields in Threads responses
const timestampLayout = "2006-01-02T15:04:05-0700"

// staticHelpers returns the helpers that don't depend on the response.
// String matching uses the built-in contains, startsWith and endsWith
// operators.
func staticHelpers() map[string]any {
	return map[string]any{
		"parseTime": func(s string) time.Time {
			t, err := time.Parse(timestampLayout, s)
			if err != nil {
				t, _ = time.Parse(time.RFC3339, s)
			}
			return t
		},
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"unix": func(sec any) time.Time {
			switch v := normalizeNumbers(sec).(type) {
			case int64:
				return time.Unix(v, 0).UTC()
			case int:
				return time.Unix(int64(v), 0).UTC()
			case float64:
				return time.Unix(int64(v), 0).UTC()
			}
			return time.Time{}
		},
	}
}
