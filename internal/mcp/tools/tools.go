// Package tools is the registration table of the Drata tools.
package tools

import (
	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
)

const defaultLimit = 50

// All returns every tool backed by svc.
func All(svc *compliance.Service) []dispatch.Tool {
	var out []dispatch.Tool
	out = append(out, controlTools(svc)...)
	out = append(out, monitorTools(svc)...)
	out = append(out, personnelTools(svc)...)
	out = append(out, policyTools(svc)...)
	out = append(out, inventoryTools(svc)...)
	out = append(out, summaryTool(svc))
	return out
}

// NewRegistry builds a registry holding All(svc).
func NewRegistry(svc *compliance.Service) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()
	if err := reg.Register(All(svc)...); err != nil {
		return nil, err
	}
	return reg, nil
}

func limitParam(description string) dispatch.Param {
	return dispatch.Param{
		Name:        "limit",
		Description: description,
		Type:        dispatch.TypeNumber,
		Min:         1,
		Max:         50,
	}
}

func idParam(name, description string) dispatch.Param {
	return dispatch.Param{Name: name, Description: description, Type: dispatch.TypeNumber, Required: true, Min: 1}
}

func controlStatusNames() []string {
	out := make([]string, 0, len(compliance.ControlStatuses))
	for _, s := range compliance.ControlStatuses {
		out = append(out, string(s))
	}
	return out
}
