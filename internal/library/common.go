// Package library is the concrete compound/decorator/action instruction
// set of spec.md §4.5. Every type here embeds *instr.Base and registers
// itself into package registry from an init() function, the same
// "populate a process-wide map at module initialization" shape the
// instruction-engine design notes (spec.md §9) call for.
package library

import (
	"time"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func getValue(b *instr.Base, defs []attribute.Definition, name string, ws *workspace.Workspace, u ui.UserInterface) (value.Value, bool) {
	return attribute.GetValue(b.Attributes(), defs, name, ws, u)
}

func getStringDefault(b *instr.Base, defs []attribute.Definition, name string, ws *workspace.Workspace, u ui.UserInterface, def string) string {
	out := def
	attribute.GetValueAs(b.Attributes(), defs, name, ws, u, &out)
	return out
}

func getFloatDefault(b *instr.Base, defs []attribute.Definition, name string, ws *workspace.Workspace, u ui.UserInterface, def float64) float64 {
	out := def
	attribute.GetValueAs(b.Attributes(), defs, name, ws, u, &out)
	return out
}

func getIntDefault(b *instr.Base, defs []attribute.Definition, name string, ws *workspace.Workspace, u ui.UserInterface, def int) int {
	out := def
	attribute.GetValueAs(b.Attributes(), defs, name, ws, u, &out)
	return out
}

func getBoolDefault(b *instr.Base, defs []attribute.Definition, name string, ws *workspace.Workspace, u ui.UserInterface, def bool) bool {
	out := def
	attribute.GetValueAs(b.Attributes(), defs, name, ws, u, &out)
	return out
}

func getStringListDefault(b *instr.Base, defs []attribute.Definition, name string, ws *workspace.Workspace, u ui.UserInterface) []string {
	var out []string
	attribute.GetValueAs(b.Attributes(), defs, name, ws, u, &out)
	return out
}

func logf(u ui.UserInterface, sev ui.Severity, msg string) {
	if u != nil {
		u.Log(sev, msg)
	}
}

// literalDef builds a Literal-category definition of the given type.
func literalDef(name string, typ attribute.Type, mandatory bool) attribute.Definition {
	return attribute.Definition{Name: name, Type: typ, Category: attribute.Literal, Mandatory: mandatory}
}

// varNameDef builds a VariableName-category string definition.
func varNameDef(name string, mandatory bool) attribute.Definition {
	return attribute.Definition{Name: name, Type: attribute.TypeString, Category: attribute.VariableName, Mandatory: mandatory}
}

// deadline tracks a monotonic, best-effort deadline the way Wait/WaitFor*
// instructions do (§4.5 Wait): recorded on first tick after Init, not at
// Setup, since the clock should start when the instruction actually begins
// running.
type deadline struct {
	set bool
	at  time.Time
}

func (d *deadline) arm(timeout time.Duration) {
	if d.set {
		return
	}
	d.set = true
	if timeout > 0 {
		d.at = time.Now().Add(timeout)
	}
}

func (d *deadline) expired() bool {
	return d.set && !d.at.IsZero() && time.Now().After(d.at)
}

func (d *deadline) unbounded() bool {
	return d.set && d.at.IsZero()
}

func (d *deadline) reset() { *d = deadline{} }
