package api

import (
	"net/http"

	"github.com/darmiel/attrgate/internal/api/presenter"
	"github.com/darmiel/attrgate/internal/buildinfo"
	"github.com/darmiel/attrgate/internal/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with version and commit of the running binary.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

// AuthenticatorInfo is the metadata of an authenticator factory as shown in the admin console.
type AuthenticatorInfo struct {
	ID                 string                `json:"id"`
	DisplayType        string                `json:"display_type"`
	ReferenceCategory  string                `json:"reference_category"`
	HelpText           string                `json:"help_text"`
	Configurable       bool                  `json:"configurable"`
	UserSetupAllowed   bool                  `json:"user_setup_allowed"`
	RequirementChoices []core.Requirement    `json:"requirement_choices"`
	Properties         []core.ConfigProperty `json:"properties"`
}

func describe(f core.AuthenticatorFactory) AuthenticatorInfo {
	return AuthenticatorInfo{
		ID:                 f.ID(),
		DisplayType:        f.DisplayType(),
		ReferenceCategory:  f.ReferenceCategory(),
		HelpText:           f.HelpText(),
		Configurable:       f.IsConfigurable(),
		UserSetupAllowed:   f.IsUserSetupAllowed(),
		RequirementChoices: f.RequirementChoices(),
		Properties:         f.ConfigProperties(),
	}
}

func (s *Server) handleListAuthenticators(w http.ResponseWriter, r *http.Request) {
	factories := s.registry.List()
	out := make([]AuthenticatorInfo, 0, len(factories))
	for _, f := range factories {
		out = append(out, describe(f))
	}
	presenter.JSON(w, r, out, http.StatusOK)
}
