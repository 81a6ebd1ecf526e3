// Package project groups Terraform resources into deployable root modules.
package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/terraform/tf"
)

const (
	awsProviderSource  = "hashicorp/aws"
	awsProviderVersion = "~> 5.0"
)

// ExtraFile is written next to the generated Terraform, e.g. a lambda zip
// that an aws_s3_object uploads.
type ExtraFile struct {
	Contents []byte
	Mode     os.FileMode
}

type Project struct {
	Name   string
	Class  string
	Region string

	// ResourceGroups maps a file name (without .tf.json) to its resources.
	ResourceGroups map[string][]tf.Resource
	ExtraFiles     map[string]*ExtraFile
}

// MergeResourceGroups combines groups; resources for the same group are appended in argument order.
func MergeResourceGroups(groups ...map[string][]tf.Resource) map[string][]tf.Resource {
	merged := make(map[string][]tf.Resource)
	for _, g := range groups {
		for name, resources := range g {
			merged[name] = append(merged[name], resources...)
		}
	}
	return merged
}

func AWSProvider(p *Project) []tf.Resource {
	return []tf.Resource{
		&tf.Provider{
			Name: "aws",
			Config: map[string]interface{}{
				"region": p.Region,
				"default_tags": map[string]interface{}{
					"tags": map[string]string{
						"dwh:project": p.Name,
						"dwh:class":   p.Class,
					},
				},
			},
		},
	}
}

// TerraformBackend keeps state next to the generated files, which is enough
// for a single-operator stack.
func TerraformBackend(p *Project) []tf.Resource {
	return []tf.Resource{
		&tf.Settings{
			RequiredVersion: ">= 1.3.0",
			RequiredProviders: map[string]tf.RequiredProvider{
				"aws": {Source: awsProviderSource, Version: awsProviderVersion},
			},
			Backend: map[string]interface{}{
				"local": map[string]string{
					"path": "terraform.tfstate",
				},
			},
		},
		tf.Locals{
			"project_path": p.Name,
		},
	}
}

// GroupNames returns the resource group names in sorted order.
func (p *Project) GroupNames() []string {
	names := make([]string, 0, len(p.ResourceGroups))
	for name := range p.ResourceGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllResources flattens every group, in group name order.
func (p *Project) AllResources() []tf.Resource {
	var all []tf.Resource
	for _, name := range p.GroupNames() {
		all = append(all, p.ResourceGroups[name]...)
	}
	return all
}

// Render returns the file contents of every group keyed by file name.
func (p *Project) Render() (map[string][]byte, error) {
	// Marshal everything once so duplicates across groups are caught.
	if _, err := tf.Marshal(p.AllResources()); err != nil {
		return nil, oops.Wrapf(err, "project %s", p.Name)
	}

	files := make(map[string][]byte, len(p.ResourceGroups))
	for _, name := range p.GroupNames() {
		out, err := tf.Marshal(p.ResourceGroups[name])
		if err != nil {
			return nil, oops.Wrapf(err, "project %s group %s", p.Name, name)
		}
		files[name+".tf.json"] = out
	}
	return files, nil
}

// Write renders the project into dir/<project name> and returns the written paths.
func (p *Project) Write(dir string) ([]string, error) {
	files, err := p.Render()
	if err != nil {
		return nil, err
	}

	root := filepath.Join(dir, p.Name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, oops.Wrapf(err, "mkdir %s", root)
	}

	var written []string
	for name, contents := range files {
		path := filepath.Join(root, name)
		if err := os.WriteFile(path, contents, 0o644); err != nil {
			return nil, oops.Wrapf(err, "write %s", path)
		}
		written = append(written, path)
	}
	for name, extra := range p.ExtraFiles {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, oops.Wrapf(err, "mkdir %s", filepath.Dir(path))
		}
		mode := extra.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(path, extra.Contents, mode); err != nil {
			return nil, oops.Wrapf(err, "write %s", path)
		}
		written = append(written, path)
	}
	sort.Strings(written)
	return written, nil
}
