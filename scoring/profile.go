package scoring

import (
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// CompanyProfile is the normalized text view of a company. Every field may be
// empty.
type CompanyProfile struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description" yaml:"description" mapstructure:"description"`
	Founders    string   `json:"founders" yaml:"founders" mapstructure:"founders"`
	Problem     string   `json:"problem" yaml:"problem" mapstructure:"problem"`
	Solution    string   `json:"solution" yaml:"solution" mapstructure:"solution"`
	USP         string   `json:"usp" yaml:"usp" mapstructure:"usp"`
	Sectors     []string `json:"sectors,omitempty" yaml:"sectors,omitempty" mapstructure:"sectors"`
}

// Field returns the value of a text field, "" for unknown names.
func (p CompanyProfile) Field(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldDescription:
		return p.Description
	case FieldFounders:
		return p.Founders
	case FieldProblem:
		return p.Problem
	case FieldSolution:
		return p.Solution
	case FieldUSP:
		return p.USP
	}
	return ""
}

// Text joins the given fields with single spaces. Empty fields still
// contribute their separator, so the blob shape does not depend on which
// fields are present.
func (p CompanyProfile) Text(fields ...Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = p.Field(f)
	}
	return strings.Join(parts, " ")
}

// ProfileFromMap builds a profile out of loosely typed input such as a decoded
// JSON body. Values of the wrong shape become empty strings; nothing is
// rejected.
func ProfileFromMap(raw map[string]any) CompanyProfile {
	var p CompanyProfile
	if raw == nil {
		return p
	}

	in := make(map[string]any, len(raw))
	for k, v := range raw {
		in[strings.ToLower(k)] = v
	}
	if _, ok := in["name"]; !ok {
		if v, ok := in["company_name"]; ok {
			in["name"] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(coerceHook),
		Result:     &p,
	})
	if err != nil {
		return p
	}
	// coerceHook maps every mismatched value to a zero value, so a decode
	// error can only leave a field empty, which is the desired outcome.
	_ = dec.Decode(in)

	p.Sectors = normalizeSectors(p.Sectors)
	return p
}

var (
	stringType      = reflect.TypeOf("")
	stringSliceType = reflect.TypeOf([]string(nil))
)

func coerceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case stringType:
		if s, ok := data.(string); ok {
			return s, nil
		}
		return "", nil
	case stringSliceType:
		return sectorTags(data), nil
	}
	return data, nil
}

// sectorTags accepts a list of tags, a comma separated string, or a map of
// sector flags like {"ai": true, "saas": false}.
func sectorTags(data any) []string {
	switch v := data.(type) {
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		out := make([]string, 0, len(v))
		for k, flag := range v {
			if on, ok := flag.(bool); ok && on {
				out = append(out, k)
			}
		}
		return out
	case map[string]bool:
		out := make([]string, 0, len(v))
		for k, on := range v {
			if on {
				out = append(out, k)
			}
		}
		return out
	}
	return nil
}

func normalizeSectors(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
