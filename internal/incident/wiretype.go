package incident

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

var documentWireType = reflect.TypeOf(documentWire{})

// typeCheck walks a decoded JSON tree against the wire type t and records an
// issue for every value of the wrong JSON type. Mismatched values are pruned
// from the tree so the typed decode that follows cannot fail on them.
func typeCheck(v any, t reflect.Type, path string, issues *[]Issue) (fits bool) {
	if v == nil {
		return true
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var want string
	switch t.Kind() {
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			want = "object"
			break
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				continue
			}
			child, present := obj[name]
			if !present {
				continue
			}
			if !typeCheck(child, f.Type, joinPath(path, name), issues) {
				delete(obj, name)
			}
		}
		return true
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok {
			want = "array"
			break
		}
		for i, el := range arr {
			if !typeCheck(el, t.Elem(), fmt.Sprintf("%s[%d]", path, i), issues) {
				arr[i] = nil
			}
		}
		return true
	case reflect.String:
		if _, ok := v.(string); ok {
			return true
		}
		want = "string"
	case reflect.Float64:
		if _, ok := v.(float64); ok {
			return true
		}
		want = "number"
	case reflect.Int:
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
			return true
		}
		want = "integer"
	case reflect.Bool:
		if _, ok := v.(bool); ok {
			return true
		}
		want = "boolean"
	default:
		return true
	}
	*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf("expected %s, got %s", want, jsonKind(v))})
	return false
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func jsonKind(v any) string {
	switch v := v.(type) {
	case string:
		return "string"
	case float64:
		if v == math.Trunc(v) {
			return "integer"
		}
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "null"
	}
}

// covered reports whether path is one of roots or lies beneath one.
func covered(path string, roots []Issue) bool {
	for _, r := range roots {
		if path == r.Path ||
			strings.HasPrefix(path, r.Path+".") ||
			strings.HasPrefix(path, r.Path+"[") {
			return true
		}
	}
	return false
}
