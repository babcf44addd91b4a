package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	_ "github.com/ternarybob/oaktree/internal/library"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
)

func testLogger() arbor.ILogger { return arbor.NewLogger() }

const simpleDoc = `
name: example
version: "1.0"
workspace:
  - type: Local
    name: counter
    attributes: {value: "0"}
root: sequence-1
instructions:
  - id: sequence-1
    type: Sequence
    isRoot: true
    children: [wait-1, wait-2]
  - id: wait-1
    type: Wait
    attributes: {timeout: "0"}
  - id: wait-2
    type: Wait
    attributes: {timeout: "0"}
`

func TestLoad_BuildsTreeMatchingDocumentShape(t *testing.T) {
	p, err := Load([]byte(simpleDoc), testLogger(), nil)
	require.NoError(t, err)

	require.NotNil(t, p.Root())
	assert.Equal(t, "sequence-1", p.Root().ID())
	assert.Equal(t, "Sequence", p.Root().TypeName())
	require.Len(t, p.Root().Children(), 2)
	assert.Equal(t, "wait-1", p.Root().Children()[0].ID())
	assert.Equal(t, "wait-2", p.Root().Children()[1].ID())

	_, ok := p.Workspace.Variable("counter")
	assert.True(t, ok)
}

func TestLoad_SetupSucceedsAndTicksToSuccess(t *testing.T) {
	p, err := Load([]byte(simpleDoc), testLogger(), nil)
	require.NoError(t, err)
	require.NoError(t, p.Setup())
	defer p.Teardown()

	st := p.Root().Tick(ui.Base{}, p.Workspace)
	assert.Equal(t, status.Success, st)
}

func TestLoad_UnknownChildReferenceErrors(t *testing.T) {
	doc := `
name: bad
instructions:
  - id: seq
    type: Sequence
    isRoot: true
    children: [missing]
`
	_, err := Load([]byte(doc), testLogger(), nil)
	assert.Error(t, err)
}

func TestLoad_DuplicateInstructionIDErrors(t *testing.T) {
	doc := `
name: bad
instructions:
  - id: a
    type: Wait
  - id: a
    type: Wait
`
	_, err := Load([]byte(doc), testLogger(), nil)
	assert.Error(t, err)
}

func TestLoad_UnknownInstructionTypeErrors(t *testing.T) {
	doc := `
name: bad
instructions:
  - id: a
    type: NotARealType
`
	_, err := Load([]byte(doc), testLogger(), nil)
	assert.Error(t, err)
}

func TestLoad_MoreThanOneRootErrors(t *testing.T) {
	doc := `
name: bad
instructions:
  - id: a
    type: Wait
    isRoot: true
  - id: b
    type: Wait
    isRoot: true
`
	_, err := Load([]byte(doc), testLogger(), nil)
	assert.Error(t, err)
}

func TestDirLoader_ResolvesAndCachesSiblingFile(t *testing.T) {
	dir := t.TempDir()
	subPath := filepath.Join(dir, "sub.yaml")
	writeFile(t, subPath, `
name: sub
instructions:
  - id: w
    type: Wait
    isRoot: true
`)

	dl := NewDirLoader(dir, testLogger())
	first, err := dl.Load("sub.yaml")
	require.NoError(t, err)
	second, err := dl.Load("sub.yaml")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}
