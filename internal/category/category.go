package category

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nexsort/internal/faults"
)

// Other is the fallback category for extensions with no mapping entry.
const Other = "Other"

// Mapping resolves file extensions to category names. Immutable after
// construction; build a new Mapping to change the rules.
type Mapping struct {
	categories map[string][]string
	byExt      map[string]string
}

// New builds a Mapping from a category -> extensions table. Extensions are
// normalized to lowercase without the leading dot. When two categories claim
// the same extension the category earlier in lexical order wins, keeping
// resolution deterministic regardless of map iteration order.
func New(categories map[string][]string) *Mapping {
	m := &Mapping{
		categories: make(map[string][]string, len(categories)),
		byExt:      make(map[string]string),
	}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		exts := categories[name]
		cleaned := make([]string, 0, len(exts))
		for _, ext := range exts {
			normalized := NormalizeExt(ext)
			if normalized == "" {
				continue
			}
			cleaned = append(cleaned, normalized)
			if _, taken := m.byExt[normalized]; !taken {
				m.byExt[normalized] = name
			}
		}
		m.categories[name] = cleaned
	}
	return m
}

// Resolve maps an extension to its category name, or Other on a miss. The
// extension may carry a leading dot and any casing; an empty extension is
// always a miss.
func (m *Mapping) Resolve(ext string) string {
	normalized := NormalizeExt(ext)
	if normalized == "" {
		return Other
	}
	if name, ok := m.byExt[normalized]; ok {
		return name
	}
	return Other
}

// ResolvePath maps a file path to its category via the path's extension.
func (m *Mapping) ResolvePath(path string) string {
	return m.Resolve(filepath.Ext(path))
}

// Categories returns the category names in lexical order, Other last.
func (m *Mapping) Categories() []string {
	names := make([]string, 0, len(m.categories)+1)
	for name := range m.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, Other)
}

// Extensions returns the normalized extensions registered for a category.
func (m *Mapping) Extensions(name string) []string {
	exts := m.categories[name]
	out := make([]string, len(exts))
	copy(out, exts)
	sort.Strings(out)
	return out
}

// NormalizeExt lowercases an extension and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Load reads a category mapping from a JSON file shaped as
// {"Category": [".ext", …]}. On a missing or malformed file it returns the
// built-in default mapping together with an error wrapping faults.ErrConfig;
// callers log the error and continue with the defaults.
func Load(path string) (*Mapping, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Defaults(), faults.Wrap(faults.ErrConfig, "categories", "read mapping file", path, err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return Defaults(), faults.Wrap(faults.ErrConfig, "categories", "parse mapping file", path, err)
	}
	if len(raw) == 0 {
		return Defaults(), faults.Wrap(faults.ErrConfig, "categories", "parse mapping file", "no categories defined", nil)
	}
	return New(raw), nil
}

// Save writes the mapping to path as indented JSON, creating parent
// directories as needed.
func (m *Mapping) Save(path string) error {
	table := make(map[string][]string, len(m.categories))
	for name, exts := range m.categories {
		dotted := make([]string, len(exts))
		for i, ext := range exts {
			dotted[i] = "." + ext
		}
		sort.Strings(dotted)
		table[name] = dotted
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create category config directory: %w", err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
