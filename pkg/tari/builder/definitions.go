package builder

import (
	"tari-sdk/pkg/tari/types"
)

// FunctionDefinition names a function on a published template.
type FunctionDefinition struct {
	TemplateAddress types.PublishedTemplateAddress
	FunctionName    string
}

// MethodDefinition names a method and the component it is called on.
// Target must be built with OnComponent or OnWorkspace.
type MethodDefinition struct {
	MethodName string
	Target     MethodTarget
}

// MethodTarget selects the component a method is called on: a literal
// address or a component stored in the workspace.
type MethodTarget interface {
	isMethodTarget()
}

type componentTarget types.ComponentAddress

type workspaceTarget string

func (componentTarget) isMethodTarget() {}
func (workspaceTarget) isMethodTarget() {}

// OnComponent targets a component by address.
func OnComponent(addr types.ComponentAddress) MethodTarget { return componentTarget(addr) }

// OnWorkspace targets a component previously saved under name. Only bare
// names are accepted; "name.1" is rejected when the call is added.
func OnWorkspace(name string) MethodTarget { return workspaceTarget(name) }

// Workspace marks a call argument that is read from the workspace, e.g.
// Workspace("bucket") or Workspace("bucket.1").
type Workspace string
