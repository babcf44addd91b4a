// Package loader builds a Procedure from the YAML document shape of
// SPEC_FULL.md §4.14: a convenience, non-authoritative front end for
// tests, examples, and the CLI's run/validate subcommands, standing in
// for the out-of-scope XML parser. It never bypasses the Registry,
// attribute validation, or NVI — it only assembles the same Instruction/
// Variable trees the real system builds from XML, then hands them to
// Procedure.Setup unchanged.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/procedure"
	"github.com/ternarybob/oaktree/internal/registry"
)

type document struct {
	Name         string           `yaml:"name"`
	Version      string           `yaml:"version"`
	Workspace    []variableDoc    `yaml:"workspace"`
	Root         string           `yaml:"root"`
	Instructions []instructionDoc `yaml:"instructions"`
}

type variableDoc struct {
	Type       string            `yaml:"type"`
	Name       string            `yaml:"name"`
	Attributes map[string]string `yaml:"attributes"`
}

type instructionDoc struct {
	ID         string            `yaml:"id"`
	Type       string            `yaml:"type"`
	Name       string            `yaml:"name"`
	IsRoot     bool              `yaml:"isRoot"`
	Attributes map[string]string `yaml:"attributes"`
	Children   []string          `yaml:"children"`
}

// LoadFile reads and parses a YAML procedure document from disk.
func LoadFile(path string, logger arbor.ILogger, externalLoader procedure.ExternalLoader) (*procedure.Procedure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	p, err := Load(data, logger, externalLoader)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return p, nil
}

// Load parses a YAML procedure document and builds the corresponding
// Procedure, with every Instruction and Variable constructed through the
// Registry exactly as an XML loader would.
func Load(data []byte, logger arbor.ILogger, externalLoader procedure.ExternalLoader) (*procedure.Procedure, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loader: parse yaml: %w", err)
	}
	return build(&doc, logger, externalLoader)
}

func build(doc *document, logger arbor.ILogger, externalLoader procedure.ExternalLoader) (*procedure.Procedure, error) {
	p := procedure.New(doc.Name, doc.Version, logger, externalLoader)

	for _, vd := range doc.Workspace {
		if vd.Name == "" {
			return nil, fmt.Errorf("loader: workspace entry missing name")
		}
		v, err := registry.NewVariable(vd.Type, vd.Attributes)
		if err != nil {
			return nil, fmt.Errorf("loader: variable %s: %w", vd.Name, err)
		}
		if err := p.Workspace.AddVariable(vd.Name, v); err != nil {
			return nil, fmt.Errorf("loader: variable %s: %w", vd.Name, err)
		}
	}

	byID := make(map[string]instr.Instruction, len(doc.Instructions))
	for _, id := range doc.Instructions {
		if id.ID == "" {
			return nil, fmt.Errorf("loader: instruction missing id")
		}
		if _, dup := byID[id.ID]; dup {
			return nil, fmt.Errorf("loader: duplicate instruction id %q", id.ID)
		}
		inst, err := registry.NewInstruction(id.Type, id.ID)
		if err != nil {
			return nil, fmt.Errorf("loader: instruction %s: %w", id.ID, err)
		}
		if id.Name != "" {
			inst.SetName(id.Name)
		}
		for _, k := range orderedKeys(id.Attributes) {
			inst.Attributes().Set(k, id.Attributes[k])
		}
		if id.IsRoot {
			inst.SetRoot(true)
		}
		byID[id.ID] = inst
	}

	for _, id := range doc.Instructions {
		inst := byID[id.ID]
		for _, childID := range id.Children {
			child, ok := byID[childID]
			if !ok {
				return nil, fmt.Errorf("loader: instruction %s references unknown child %q", id.ID, childID)
			}
			inst.AddChild(child)
		}
	}

	if doc.Root != "" {
		root, ok := byID[doc.Root]
		if !ok {
			return nil, fmt.Errorf("loader: root %q not found among instructions", doc.Root)
		}
		if !root.IsRoot() {
			root.SetRoot(true)
		}
	}

	for _, id := range doc.Instructions {
		if err := p.AddTopLevel(byID[id.ID]); err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
	}

	return p, nil
}

// DirLoader resolves Include/IncludeProcedure "file" attributes to sibling
// YAML documents under a base directory, implementing
// procedure.ExternalLoader. Loaded procedures are cached by file name
// since the same external file may be referenced from several Include
// sites within one procedure (§4.5, §4.7).
type DirLoader struct {
	Dir    string
	Logger arbor.ILogger

	cache map[string]*procedure.Procedure
}

// NewDirLoader constructs a DirLoader rooted at dir.
func NewDirLoader(dir string, logger arbor.ILogger) *DirLoader {
	return &DirLoader{Dir: dir, Logger: logger, cache: make(map[string]*procedure.Procedure)}
}

// Load resolves file relative to Dir and parses it, caching the result.
func (d *DirLoader) Load(file string) (*procedure.Procedure, error) {
	if d.cache == nil {
		d.cache = make(map[string]*procedure.Procedure)
	}
	if p, ok := d.cache[file]; ok {
		return p, nil
	}
	path := filepath.Join(d.Dir, file)
	p, err := LoadFile(path, d.Logger, d)
	if err != nil {
		return nil, err
	}
	d.cache[file] = p
	return p, nil
}

// orderedKeys gives attribute assignment a stable, deterministic order
// (map iteration order is not) so that attribute-order-sensitive
// diagnostics (e.g. AttributeError on the first offending name) are
// reproducible across loads of the same document.
func orderedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
