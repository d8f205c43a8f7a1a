// Package policy evaluates the role/action matrix.
//
// The matrix lives in rules.yaml and is compiled into the binary. The HTTP
// layer enforces it and GET /v1/policy publishes it, so clients gating
// affordances read the very table the server enforces.
package policy

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/planactions/customfields/internal/core/domain"
)

const (
	ResourceAction      = "action"
	ResourceCustomField = "custom_field"
	ResourceAdmin       = "admin"

	ActionRead     = "read"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionManage   = "manage"
	ActionValidate = "validate"
	ActionClose    = "close"
	ActionReject   = "reject"
	ActionAccess   = "access"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule authorizes a set of roles to perform one action on one resource.
type Rule struct {
	Resource string        `yaml:"resource" json:"resource"`
	Action   string        `yaml:"action" json:"action"`
	Roles    []domain.Role `yaml:"roles" json:"roles"`
}

type document struct {
	Rules []Rule `yaml:"rules"`
}

type pair struct{ action, resource string }

// Table is an immutable rule set, safe for concurrent use.
type Table struct {
	rules   []Rule
	allowed map[pair]map[domain.Role]struct{}
}

// New builds a table, rejecting unknown roles and repeated pairs.
func New(rules []Rule) (*Table, error) {
	t := &Table{allowed: make(map[pair]map[domain.Role]struct{}, len(rules))}
	for _, r := range rules {
		if r.Action == "" || r.Resource == "" {
			return nil, fmt.Errorf("policy: rule missing action or resource")
		}
		k := pair{r.Action, r.Resource}
		if _, dup := t.allowed[k]; dup {
			return nil, fmt.Errorf("policy: duplicate rule %s:%s", r.Resource, r.Action)
		}
		set := make(map[domain.Role]struct{}, len(r.Roles))
		for _, role := range r.Roles {
			if !role.IsValid() {
				return nil, fmt.Errorf("policy: rule %s:%s names unknown role %q", r.Resource, r.Action, role)
			}
			set[role] = struct{}{}
		}
		t.allowed[k] = set
		t.rules = append(t.rules, Rule{Resource: r.Resource, Action: r.Action, Roles: append([]domain.Role(nil), r.Roles...)})
	}
	sort.SliceStable(t.rules, func(i, j int) bool {
		if t.rules[i].Resource != t.rules[j].Resource {
			return t.rules[i].Resource < t.rules[j].Resource
		}
		return t.rules[i].Action < t.rules[j].Action
	})
	return t, nil
}

// Load decodes a YAML rule document.
func Load(r io.Reader) (*Table, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("policy: decode rules: %w", err)
	}
	return New(doc.Rules)
}

// Default returns the table compiled into the binary.
func Default() *Table {
	t, err := Load(bytes.NewReader(defaultRules))
	if err != nil {
		panic(err)
	}
	return t
}

// Can reports whether p may perform action on resource. Pairs absent from the
// table are denied for every role.
func (t *Table) Can(p domain.Principal, action, resource string) bool {
	set, ok := t.allowed[pair{action, resource}]
	if !ok {
		return false
	}
	_, ok = set[p.Role]
	return ok
}

// Rules returns a copy of the table ordered by resource then action.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Resource: r.Resource, Action: r.Action, Roles: append([]domain.Role(nil), r.Roles...)}
	}
	return out
}

// Permitted lists the rules granting anything to role.
func (t *Table) Permitted(role domain.Role) []Rule {
	var out []Rule
	for _, r := range t.Rules() {
		if _, ok := t.allowed[pair{r.Action, r.Resource}][role]; ok {
			out = append(out, r)
		}
	}
	return out
}

// HasRole is a plain membership test used to gate affordances.
func HasRole(p domain.Principal, candidates ...domain.Role) bool {
	for _, c := range candidates {
		if p.Role == c {
			return true
		}
	}
	return false
}
