package harness

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ofprobe/pkg/logging"
)

// Test modules are declarative YAML files; arbitrary on-disk code is never
// imported. A module's name is its file base name without extension.
var moduleExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// moduleFile is the on-disk shape of a test module.
type moduleFile struct {
	Tests []testEntry `yaml:"tests"`
}

// testEntry is one definition inside a module file. Entries marked
// template are base definitions: they may be extended via `extends` but are
// never registered as runnable tests.
type testEntry struct {
	Name        string `yaml:"name"`
	Priority    *int   `yaml:"priority,omitempty"`
	Description string `yaml:"description,omitempty"`
	Template    bool   `yaml:"template,omitempty"`
	Extends     string `yaml:"extends,omitempty"`
	Steps       []Step `yaml:"steps,omitempty"`
}

// Discovery walks a directory tree and builds the module registry.
type Discovery struct {
	root string
}

// NewDiscovery creates a discovery rooted at the given directory.
func NewDiscovery(root string) *Discovery {
	return &Discovery{root: root}
}

// Discover recursively walks the root, loads every visible test module
// exactly once, and returns the registry of runnable tests. A module that
// fails to load aborts discovery immediately: one broken test file blocks
// the run rather than silently dropping coverage.
//
// Repeated discovery over an unchanged tree yields an identical registry.
func (d *Discovery) Discover() (ModuleRegistry, error) {
	registry := make(ModuleRegistry)

	var paths []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return &DiscoveryError{Path: path, Reason: "cannot walk test directory", Err: err}
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != d.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !moduleExtensions[filepath.Ext(name)] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Walk order is already lexical per directory; sorting the full list
	// keeps the first-load-wins rule stable across platforms.
	sort.Strings(paths)

	for _, path := range paths {
		moduleName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if existing, ok := registry[moduleName]; ok {
			// A module of this name was already loaded in this run. Reuse the
			// existing handle so clashing filenames in different directories
			// cannot register duplicate tests.
			logging.Debug("discovery", "module %q already loaded from %s, skipping %s",
				moduleName, existing.Path, path)
			continue
		}

		module, err := loadModule(moduleName, path)
		if err != nil {
			return nil, err
		}
		if len(module.Tests) == 0 {
			logging.Debug("discovery", "module %q contributes no tests, omitting", moduleName)
			continue
		}
		registry[moduleName] = module
	}

	return registry, nil
}

func loadModule(name, path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DiscoveryError{Path: path, Reason: "cannot read module", Err: err}
	}

	var file moduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &DiscoveryError{Path: path, Reason: "cannot parse module", Err: err}
	}

	templates := make(map[string]testEntry)
	for _, entry := range file.Tests {
		if entry.Template {
			if entry.Name == "" {
				return nil, &DiscoveryError{Path: path, Reason: "template entry without a name"}
			}
			templates[entry.Name] = entry
		}
	}

	module := &Module{Name: name, Path: path, Tests: make(map[string]*TestDescriptor)}
	for _, entry := range file.Tests {
		if entry.Template {
			continue
		}
		if entry.Name == "" {
			return nil, &DiscoveryError{Path: path, Reason: "test entry without a name"}
		}
		if _, dup := module.Tests[entry.Name]; dup {
			return nil, &DiscoveryError{Path: path, Reason: "duplicate test name " + entry.Name}
		}

		steps := entry.Steps
		if entry.Extends != "" {
			base, ok := templates[entry.Extends]
			if !ok {
				return nil, &DiscoveryError{Path: path,
					Reason: "test " + entry.Name + " extends unknown template " + entry.Extends}
			}
			steps = append(append([]Step{}, base.Steps...), entry.Steps...)
		}

		priority := DefaultPriority
		if entry.Priority != nil {
			priority = *entry.Priority
		}

		module.Tests[entry.Name] = &TestDescriptor{
			Module:      name,
			Name:        entry.Name,
			Runnable:    &scenarioRunnable{module: name, name: entry.Name, steps: steps},
			Priority:    priority,
			Description: entry.Description,
		}
	}

	return module, nil
}
