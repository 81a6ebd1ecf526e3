package localexec

import (
	"encoding/json"
	"strings"

	"github.com/samsarahq/go/oops"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/koljamaier/aws-dwh/stepfunctions/statemachine"
)

var gjsonEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`#`, `\#`,
	`@`, `\@`,
	`|`, `\|`,
	`!`, `\!`,
	`=`, `\=`,
	`<`, `\<`,
	`>`, `\>`,
	`%`, `\%`,
)

// toGJSON converts a "$.a.b" reference path into gjson/sjson syntax.
// Only dotted field access is supported, which is all the pipeline uses.
func toGJSON(path string) (string, error) {
	if path == "$" {
		return "@this", nil
	}
	if !strings.HasPrefix(path, "$.") {
		return "", oops.Errorf("unsupported path %q", path)
	}
	segs := strings.Split(strings.TrimPrefix(path, "$."), ".")
	for i, seg := range segs {
		if seg == "" {
			return "", oops.Errorf("empty segment in path %q", path)
		}
		segs[i] = gjsonEscaper.Replace(seg)
	}
	return strings.Join(segs, "."), nil
}

func selectPath(doc []byte, path string) ([]byte, error) {
	if path == "$" {
		return doc, nil
	}
	p, err := toGJSON(path)
	if err != nil {
		return nil, err
	}
	res := gjson.GetBytes(doc, p)
	if !res.Exists() {
		return nil, oops.Errorf("path %s not found in %s", path, truncate(doc))
	}
	return []byte(res.Raw), nil
}

// applyInputPath selects the part of the state input the state works on.
func applyInputPath(input []byte, path *statemachine.JSONPath) ([]byte, error) {
	switch {
	case path == nil:
		return input, nil
	case path.IsNull():
		return []byte("{}"), nil
	}
	return selectPath(input, path.String())
}

// applyResultPath combines the raw state input with the result.
func applyResultPath(input []byte, result []byte, path *statemachine.JSONPath) ([]byte, error) {
	switch {
	case path == nil || path.String() == "$":
		return result, nil
	case path.IsNull():
		return input, nil
	}
	if !gjson.ParseBytes(input).IsObject() {
		return nil, oops.Errorf("ResultPath %s needs an object input, got %s", path.String(), truncate(input))
	}
	p, err := toGJSON(path.String())
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetRawBytes(input, p, result)
	if err != nil {
		return nil, oops.Wrapf(err, "set %s", path.String())
	}
	return out, nil
}

func applyOutputPath(output []byte, path *statemachine.JSONPath) ([]byte, error) {
	switch {
	case path == nil:
		return output, nil
	case path.IsNull():
		return []byte("{}"), nil
	}
	return selectPath(output, path.String())
}

// resolveParameters builds the effective task input from a Parameters
// template. Keys ending in ".$" take their value from a path into input,
// or into the context object for "$$." paths.
func resolveParameters(params map[string]interface{}, input []byte, contextObject []byte) ([]byte, error) {
	if params == nil {
		return input, nil
	}
	// Round trip so typed Go values become plain JSON shapes.
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal parameters")
	}
	var template map[string]interface{}
	if err := json.Unmarshal(raw, &template); err != nil {
		return nil, oops.Wrapf(err, "unmarshal parameters")
	}

	resolved, err := resolveValue(template, input, contextObject)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(resolved)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal resolved parameters")
	}
	return out, nil
}

func resolveValue(v interface{}, input []byte, contextObject []byte) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for key, value := range t {
			if !statemachine.IsReferenceKey(key) {
				r, err := resolveValue(value, input, contextObject)
				if err != nil {
					return nil, err
				}
				out[key] = r
				continue
			}

			path, ok := value.(string)
			if !ok {
				return nil, oops.Errorf("parameter %s must be a path string", key)
			}
			doc := input
			if strings.HasPrefix(path, "$$") {
				doc, path = contextObject, strings.TrimPrefix(path, "$")
			}
			selected, err := selectPath(doc, path)
			if err != nil {
				return nil, oops.Wrapf(err, "parameter %s", key)
			}
			var decoded interface{}
			if err := json.Unmarshal(selected, &decoded); err != nil {
				return nil, oops.Wrapf(err, "parameter %s", key)
			}
			out[strings.TrimSuffix(key, statemachine.ReferencePathSuffix)] = decoded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			r, err := resolveValue(item, input, contextObject)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}
	return v, nil
}

func truncate(doc []byte) string {
	const max = 200
	if len(doc) <= max {
		return string(doc)
	}
	return string(doc[:max]) + "..."
}
