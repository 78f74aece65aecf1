package audit

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
)

// Filter selects audit entries.
type Filter func(entry core.AuditEntry) bool

// filterEnv builds the variables available in filter expressions, e.g.
//
//	username == "alice" && error == "not_allowed"
//	client_id startsWith "internal-" and !granted
func filterEnv(entry core.AuditEntry) map[string]any {
	var userID, username string
	if entry.User != nil {
		userID, username = entry.User.ID, entry.User.Username
	}
	details := entry.Details
	if details == nil {
		details = map[string]string{}
	}
	return map[string]any{
		"id":            entry.ID,
		"time":          entry.Time,
		"action":        entry.Action,
		"user_id":       userID,
		"username":      username,
		"client_id":     entry.ClientID,
		"execution":     entry.Execution,
		"authenticator": entry.Authenticator,
		"granted":       entry.Granted,
		"error":         entry.Error,
		"details":       details,
	}
}

// CompileFilter compiles a boolean expr expression into a Filter.
// An empty expression matches every entry.
func CompileFilter(code string) (Filter, error) {
	if code == "" {
		return func(core.AuditEntry) bool { return true }, nil
	}

	program, err := expr.Compile(code, expr.Env(filterEnv(core.AuditEntry{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling filter: %w", err)
	}
	return programFilter(program), nil
}

func programFilter(program *vm.Program) Filter {
	return func(entry core.AuditEntry) bool {
		out, err := expr.Run(program, filterEnv(entry))
		if err != nil {
			log.Warn().Err(err).Str("correlation_id", entry.ID).Msg("error evaluating audit filter")
			return false
		}
		b, ok := out.(bool)
		return ok && b
	}
}

// And combines filters, all must match.
func And(filters ...Filter) Filter {
	return func(entry core.AuditEntry) bool {
		for _, f := range filters {
			if f != nil && !f(entry) {
				return false
			}
		}
		return true
	}
}
