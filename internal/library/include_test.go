package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oaktree/internal/errs"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func TestInclude_ResolvesLocalTopLevelByPath(t *testing.T) {
	target := newFixed("target", status.Success)
	ctx := &instr.SetupContext{
		Resolve: func(name string) (instr.Instruction, bool) {
			if name == "target" {
				return target, true
			}
			return nil, false
		},
	}

	inc, err := registry.NewInstruction("Include", "inc")
	require.NoError(t, err)
	inc.Attributes().Set("path", "target")

	require.NoError(t, inc.Setup(ctx))
	assert.Equal(t, status.Success, inc.Tick(ui.Base{}, nil))
}

func TestInclude_UnknownPathFailsSetup(t *testing.T) {
	ctx := &instr.SetupContext{
		Resolve: func(name string) (instr.Instruction, bool) { return nil, false },
	}

	inc, err := registry.NewInstruction("Include", "inc")
	require.NoError(t, err)
	inc.Attributes().Set("path", "missing")

	err = inc.Setup(ctx)
	assert.Error(t, err)
}

func TestInclude_NoResolverConfiguredFailsSetup(t *testing.T) {
	inc, err := registry.NewInstruction("Include", "inc")
	require.NoError(t, err)
	inc.Attributes().Set("path", "target")

	err = inc.Setup(&instr.SetupContext{})
	assert.Error(t, err)
}

func TestInclude_FileAttributeUsesExternalLoader(t *testing.T) {
	target := newFixed("target", status.Success)
	var gotFile, gotPath string
	ctx := &instr.SetupContext{
		LoadExternal: func(file, path string) (instr.Instruction, error) {
			gotFile, gotPath = file, path
			return target, nil
		},
	}

	inc, err := registry.NewInstruction("Include", "inc")
	require.NoError(t, err)
	inc.Attributes().Set("path", "target")
	inc.Attributes().Set("file", "sub.yaml")

	require.NoError(t, inc.Setup(ctx))
	assert.Equal(t, "sub.yaml", gotFile)
	assert.Equal(t, "target", gotPath)
}

func TestInclude_ReentrantCycleIsRejected(t *testing.T) {
	inc, err := registry.NewInstruction("Include", "inc")
	require.NoError(t, err)
	inc.Attributes().Set("path", "self")

	ctx := &instr.SetupContext{}
	ctx.Resolve = func(name string) (instr.Instruction, bool) { return inc, true }

	err = inc.Setup(ctx)
	assert.ErrorIs(t, err, errs.CyclicInclude)
}

func TestIncludeProcedure_MergesWorkspaceAndResolvesTarget(t *testing.T) {
	target := newFixed("target", status.Success)
	externalWS := workspace.New(testLogger())
	defer externalWS.Close()

	var merged *workspace.Workspace
	ctx := &instr.SetupContext{
		LoadExternalWorkspace: func(file string) (*workspace.Workspace, error) { return externalWS, nil },
		MergeWorkspace: func(external *workspace.Workspace) error {
			merged = external
			return nil
		},
		LoadExternal: func(file, path string) (instr.Instruction, error) { return target, nil },
	}

	ip, err := registry.NewInstruction("IncludeProcedure", "ip")
	require.NoError(t, err)
	ip.Attributes().Set("file", "sub.yaml")
	ip.Attributes().Set("path", "target")

	require.NoError(t, ip.Setup(ctx))
	assert.Same(t, externalWS, merged)
	assert.Equal(t, status.Success, ip.Tick(ui.Base{}, nil))
}

func TestIncludeProcedure_MissingLoaderFailsSetup(t *testing.T) {
	ip, err := registry.NewInstruction("IncludeProcedure", "ip")
	require.NoError(t, err)
	ip.Attributes().Set("file", "sub.yaml")
	ip.Attributes().Set("path", "")

	err = ip.Setup(&instr.SetupContext{})
	assert.Error(t, err)
}
