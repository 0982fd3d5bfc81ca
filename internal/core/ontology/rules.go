package ontology

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatcherKind is the closed set of rule matchers. Adding a recognized type
// is a new table row, not new branching code.
type MatcherKind string

const (
	MatchExtension    MatcherKind = "extension"
	MatchDeclaredKind MatcherKind = "declared-kind"
	MatchContentSniff MatcherKind = "content-sniff"
)

// Rule maps one matcher to the leaf class it implies. The full ancestor
// chain is resolved against the registry at classification time.
type Rule struct {
	Kind  MatcherKind `yaml:"matcher"`
	Value string      `yaml:"value"`
	Class string      `yaml:"class"`
}

// RuleTable is the ordered classification table, evaluated
// most-specific-first. Immutable after load.
type RuleTable struct {
	rules    []Rule
	registry *Registry
	logger   *slog.Logger
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRuleTable reads the ordered rule list from a YAML file and binds it to
// the registry.
func LoadRuleTable(path string, registry *Registry, logger *slog.Logger) (*RuleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	return NewRuleTable(f.Rules, registry, logger)
}

// NewRuleTable validates rule shape; unknown target classes are kept but
// degrade to an ancestor at classification time with a warning.
func NewRuleTable(rules []Rule, registry *Registry, logger *slog.Logger) (*RuleTable, error) {
	if registry == nil {
		return nil, fmt.Errorf("rule table: nil registry")
	}
	if logger == nil {
		logger = slog.Default()
	}
	for i, rule := range rules {
		switch rule.Kind {
		case MatchExtension, MatchDeclaredKind, MatchContentSniff:
		default:
			return nil, fmt.Errorf("rule table: rule %d has unknown matcher %q", i, rule.Kind)
		}
		if rule.Value == "" || rule.Class == "" {
			return nil, fmt.Errorf("rule table: rule %d is incomplete", i)
		}
	}
	return &RuleTable{rules: rules, registry: registry, logger: logger}, nil
}

// Classify scans the table in priority order and returns the root-to-leaf
// classification path of the first matching rule. The function is total:
// no match yields the root-only path.
func (t *RuleTable) Classify(filename, declaredKind string, head []byte) []string {
	ext := strings.ToLower(filepath.Ext(filename))
	kind := strings.ToLower(strings.TrimSpace(declaredKind))

	for _, rule := range t.rules {
		if !t.matches(rule, ext, kind, head) {
			continue
		}
		path, err := t.registry.Path(rule.Class)
		if err != nil {
			// ClassificationAmbiguity is never fatal: fall back to the
			// least-specific applicable class and record a warning.
			t.logger.Warn("classification_rule_unknown_class",
				"class", rule.Class,
				"matcher", string(rule.Kind),
				"value", rule.Value,
			)
			return []string{RootClass}
		}
		return path
	}
	return []string{RootClass}
}

func (t *RuleTable) matches(rule Rule, ext, declaredKind string, head []byte) bool {
	switch rule.Kind {
	case MatchExtension:
		return ext != "" && ext == strings.ToLower(rule.Value)
	case MatchDeclaredKind:
		return declaredKind != "" && declaredKind == strings.ToLower(rule.Value)
	case MatchContentSniff:
		return bytes.HasPrefix(sniffHead(head), []byte(rule.Value))
	default:
		return false
	}
}

// sniffHead strips a UTF-8 BOM and leading whitespace so magic patterns
// anchor to the real start of content. A file that merely quotes a pattern
// further in must not match.
func sniffHead(head []byte) []byte {
	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})
	return bytes.TrimLeft(head, " \t\r\n")
}

// Len returns the number of rules in the table.
func (t *RuleTable) Len() int {
	return len(t.rules)
}
