package engine

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
)

// AccessDeniedMessage is the only thing a denied user gets to see.
const AccessDeniedMessage = "Access Denied"

// Decision is the outcome of evaluating a require-attribute step.
type Decision struct {
	Allowed    bool
	Resolution Resolution
	Reason     string
}

// Evaluate decides whether the user in ec passes the step configured by cfg.
// It does not modify cfg or ec.
func Evaluate(cfg StepConfig, ec core.EvaluationContext) Decision {
	res := Resolve(cfg, ec)
	d := Decision{Resolution: res}

	switch {
	case res.Name == "":
		d.Reason = "attribute name is empty"
	case cfg.AttributeValue == "":
		d.Reason = "required attribute value is empty"
	case !cfg.AnySourceEnabled():
		d.Reason = "all attribute sources are disabled"
	case !res.Found:
		d.Reason = fmt.Sprintf("attribute '%s' not found in any enabled source", res.Name)
	case res.Value != cfg.AttributeValue:
		d.Reason = fmt.Sprintf("attribute '%s' from %s '%s' has value '%s', expected '%s'",
			res.Name, res.Source, res.Bearer, res.Value, cfg.AttributeValue)
	default:
		d.Allowed = true
	}

	return d
}

var _ core.Authenticator = (*RequireAttributeStep)(nil)

// RequireAttributeStep lets a user through if a named attribute has the required value.
// It holds no per-attempt state and may be shared between concurrent attempts.
type RequireAttributeStep struct {
	cfg StepConfig
}

func NewRequireAttributeStep(cfg StepConfig) *RequireAttributeStep {
	return &RequireAttributeStep{cfg: cfg}
}

// Config returns the configuration the step was created with.
func (s *RequireAttributeStep) Config() StepConfig {
	return s.cfg
}

func (s *RequireAttributeStep) Authenticate(fc core.FlowContext) {
	logger := log.Ctx(fc.Context())

	user := fc.User()
	if user == nil {
		logger.Error().Str("authenticator", RequireAttributeID).
			Msg("authenticator requires an identified user but none was set")
		fc.Failure(core.FlowErrorInternalError, &core.ErrorPage{
			Status:  http.StatusInternalServerError,
			Message: http.StatusText(http.StatusInternalServerError),
		})
		return
	}

	decision := Evaluate(s.cfg, core.EvaluationContext{
		User:     user,
		ClientID: fc.ClientID(),
		Roles:    fc.RoleMappings(),
		Groups:   fc.Groups(),
	})
	if decision.Allowed {
		fc.Success()
		return
	}

	logger.Debug().
		Str("reason", decision.Reason).
		Msgf("denied access for user '%s' to client '%s': user is missing the attribute '%s'",
			user.Username, fc.ClientID(), decision.Resolution.Name)

	event := fc.Event()
	event.User(user)
	event.Error(core.ErrorNotAllowed)

	fc.Failure(core.FlowErrorInvalidUser, &core.ErrorPage{
		Status:  http.StatusForbidden,
		Message: AccessDeniedMessage,
	})
}

// Action is a no-op, the step never shows a form.
func (s *RequireAttributeStep) Action(_ core.FlowContext) {}

func (s *RequireAttributeStep) RequiresUser() bool {
	return true
}

func (s *RequireAttributeStep) ConfiguredFor(_ *core.User) bool {
	return true
}

// Trace explains the decision for ec in the shape used by the explain endpoint.
func (s *RequireAttributeStep) Trace(ec core.EvaluationContext) core.ExecutionTrace {
	d := Evaluate(s.cfg, ec)
	return core.ExecutionTrace{
		Authenticator: RequireAttributeID,
		ResolvedName:  d.Resolution.Name,
		RequiredValue: s.cfg.AttributeValue,
		Sources:       d.Resolution.Sources,
		Allowed:       d.Allowed,
		Reason:        d.Reason,
	}
}
