package engine

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/flow"
)

// FlowDefinition describes a flow before its authenticators are created.
type FlowDefinition struct {
	Alias      string
	Executions []ExecutionDefinition
}

type ExecutionDefinition struct {
	Alias         string
	Authenticator string
	Requirement   core.Requirement
	Config        map[string]string
}

// Compile creates every authenticator of def exactly once and returns the resulting flow.
func Compile(registry *Registry, def FlowDefinition) (*flow.Flow, error) {
	f := &flow.Flow{
		Alias:      def.Alias,
		Executions: make([]flow.Execution, 0, len(def.Executions)),
	}
	for i, e := range def.Executions {
		if err := registry.CheckRequirement(e.Authenticator, e.Requirement); err != nil {
			return nil, fmt.Errorf("execution #%d (%s): %w", i, e.Alias, err)
		}
		factory, _ := registry.Get(e.Authenticator)

		raw := maps.Clone(e.Config)
		if raw == nil {
			raw = map[string]string{}
		}
		f.Executions = append(f.Executions, flow.Execution{
			Alias:           e.Alias,
			AuthenticatorID: factory.ID(),
			Requirement:     e.Requirement,
			Authenticator:   factory.Create(raw),
			Config:          raw,
		})
	}
	return f, nil
}

// FlowManager holds the active flow and swaps it on configuration reloads.
type FlowManager struct {
	registry *Registry
	current  atomic.Pointer[flow.Flow]
	mu       sync.Mutex
}

func NewManager(registry *Registry, def FlowDefinition) (*FlowManager, error) {
	m := &FlowManager{registry: registry}
	if err := m.Update(def); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *FlowManager) GetFlow() *flow.Flow {
	return m.current.Load()
}

// Update compiles def and activates it. The previous flow stays active on error.
func (m *FlowManager) Update(def FlowDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate, err := Compile(m.registry, def)
	if err != nil {
		return fmt.Errorf("compiling flow '%s': %w", def.Alias, err)
	}

	m.current.Store(candidate)
	return nil
}
