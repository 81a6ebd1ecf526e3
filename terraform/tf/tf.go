// Package tf models Terraform JSON configuration blocks.
package tf

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samsarahq/go/oops"
)

// Resource is anything that renders into a Terraform JSON file.
// Resources and data sources are keyed by their ResourceId; providers,
// locals and the terraform settings block are detected by type.
type Resource interface {
	ResourceId() ResourceId
}

type ResourceId struct {
	Type string
	Name string

	// Data marks a data source rather than a managed resource.
	Data bool
}

func (r ResourceId) String() string {
	if r.Data {
		return fmt.Sprintf("data.%s.%s", r.Type, r.Name)
	}
	return fmt.Sprintf("%s.%s", r.Type, r.Name)
}

// Reference returns an interpolation of the resource's id attribute.
func (r ResourceId) Reference() string {
	return r.ReferenceAttr("id")
}

func (r ResourceId) ReferenceAttr(attr string) string {
	return fmt.Sprintf("${%s.%s}", r.String(), attr)
}

// LocalId names a value from a locals block.
type LocalId string

func (l LocalId) Reference() string {
	return fmt.Sprintf("${local.%s}", string(l))
}

type Lifecycle struct {
	PreventDestroy bool     `json:"prevent_destroy,omitempty"`
	IgnoreChanges  []string `json:"ignore_changes,omitempty"`
}

type MetaParameters struct {
	DependsOn []string  `json:"depends_on,omitempty"`
	Lifecycle Lifecycle `json:"lifecycle"`
}

// BaseResource is embedded by every resource to carry Terraform meta-arguments.
type BaseResource struct {
	MetaParameters
}

// Locals is a top-level locals block.
type Locals map[string]string

func (l Locals) ResourceId() ResourceId {
	return ResourceId{Type: "locals", Name: "locals"}
}

// Provider is a top-level provider block.
type Provider struct {
	Name   string
	Config map[string]interface{}
}

func (p *Provider) ResourceId() ResourceId {
	return ResourceId{Type: "provider", Name: p.Name}
}

type RequiredProvider struct {
	Source  string `json:"source"`
	Version string `json:"version,omitempty"`
}

// Settings is the top-level terraform block.
type Settings struct {
	RequiredVersion   string                      `json:"required_version,omitempty"`
	RequiredProviders map[string]RequiredProvider `json:"required_providers,omitempty"`
	Backend           map[string]interface{}      `json:"backend,omitempty"`
}

func (s *Settings) ResourceId() ResourceId {
	return ResourceId{Type: "terraform", Name: "settings"}
}

// Marshal renders resources as a single Terraform JSON document.
// Keys are emitted in sorted order so output is stable across runs.
func Marshal(resources []Resource) ([]byte, error) {
	doc := make(map[string]interface{})
	managed := make(map[string]map[string]interface{})
	data := make(map[string]map[string]interface{})
	locals := make(map[string]string)
	providers := make(map[string]interface{})
	seen := make(map[string]struct{})

	for _, r := range resources {
		id := r.ResourceId()
		switch v := r.(type) {
		case Locals:
			for k, val := range v {
				if _, ok := locals[k]; ok {
					return nil, oops.Errorf("duplicate local %s", k)
				}
				locals[k] = val
			}
			continue
		case *Provider:
			if _, ok := providers[v.Name]; ok {
				return nil, oops.Errorf("duplicate provider %s", v.Name)
			}
			providers[v.Name] = v.Config
			continue
		case *Settings:
			if _, ok := doc["terraform"]; ok {
				return nil, oops.Errorf("duplicate terraform settings block")
			}
			doc["terraform"] = v
			continue
		}

		if _, ok := seen[id.String()]; ok {
			return nil, oops.Errorf("duplicate resource %s", id)
		}
		seen[id.String()] = struct{}{}

		body, err := resourceBody(r)
		if err != nil {
			return nil, oops.Wrapf(err, "render %s", id)
		}

		target := managed
		if id.Data {
			target = data
		}
		if target[id.Type] == nil {
			target[id.Type] = make(map[string]interface{})
		}
		target[id.Type][id.Name] = body
	}

	if len(managed) > 0 {
		doc["resource"] = managed
	}
	if len(data) > 0 {
		doc["data"] = data
	}
	if len(locals) > 0 {
		doc["locals"] = locals
	}
	if len(providers) > 0 {
		doc["provider"] = providers
	}
	return json.MarshalIndent(doc, "", "  ")
}

// resourceBody round-trips through a map so empty meta-argument blocks can be dropped.
func resourceBody(r Resource) (map[string]interface{}, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal")
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, oops.Wrapf(err, "unmarshal")
	}
	if lc, ok := body["lifecycle"].(map[string]interface{}); ok && len(lc) == 0 {
		delete(body, "lifecycle")
	}
	return body, nil
}

// SortedTypes lists the distinct resource types in resources.
func SortedTypes(resources []Resource) []string {
	set := make(map[string]struct{})
	for _, r := range resources {
		set[r.ResourceId().Type] = struct{}{}
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
