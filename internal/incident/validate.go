package incident

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"incimap/internal/layout"
)

// Issue is one violated rule in a document.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaError reports every problem found in a document.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return "invalid incident map:\n" + strings.Join(lines, "\n")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("coord", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				return true
			}
			f = f.Elem()
		}
		return f.CanFloat() && layout.InRange(f.Float())
	})
	return v
}

// check runs struct validation and the cross-record rules, returning all
// issues found.
func check(w *documentWire) []Issue {
	var issues []Issue
	if err := validate.Struct(w); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []Issue{{Message: err.Error()}}
		}
		for _, fe := range verrs {
			issues = append(issues, fieldIssue(fe))
		}
	}
	return append(issues, checkReferences(w)...)
}

func fieldIssue(fe validator.FieldError) Issue {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	field := fe.Field()

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "notblank":
		if strings.HasSuffix(path, "title") {
			msg = "ChainNode title is required"
		} else {
			msg = fmt.Sprintf("%s must not be blank", field)
		}
	case "coord":
		msg = fmt.Sprintf("%s must be a finite number between %d and %d", field, -layout.MaxCoordinate, layout.MaxCoordinate)
	case "eq":
		msg = fmt.Sprintf("%s must be %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return Issue{Path: path, Message: msg}
}

// checkReferences enforces id uniqueness and that every edge endpoint names
// a node. Barriers may reference missing nodes; they are inert.
func checkReferences(w *documentWire) []Issue {
	var issues []Issue
	nodes := make(map[string]struct{}, len(w.Nodes))
	for i, n := range w.Nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("nodes[%d].id", i),
				Message: fmt.Sprintf("duplicate node id %q", n.ID),
			})
			continue
		}
		nodes[n.ID] = struct{}{}
	}

	edges := make(map[string]struct{}, len(w.Edges))
	for i, e := range w.Edges {
		if e.ID != "" {
			if _, dup := edges[e.ID]; dup {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("edges[%d].id", i),
					Message: fmt.Sprintf("duplicate edge id %q", e.ID),
				})
			}
			edges[e.ID] = struct{}{}
		}
		if _, ok := nodes[e.FromID]; e.FromID != "" && !ok {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("edges[%d].fromId", i),
				Message: fmt.Sprintf("unknown node %q", e.FromID),
			})
		}
		if _, ok := nodes[e.ToID]; e.ToID != "" && !ok {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("edges[%d].toId", i),
				Message: fmt.Sprintf("unknown node %q", e.ToID),
			})
		}
	}
	return issues
}
