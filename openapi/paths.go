package openapi

import "strings"

// NormalizePath rewrites router path syntax to the specification form:
// ":id" and "*rest" segments become "{id}" and "{rest}", and chi patterns
// such as "{id:[0-9]+}" drop their regular expression.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		trimmed := strings.TrimSpace(segment)
		switch {
		case strings.HasPrefix(trimmed, ":"):
			segments[i] = "{" + paramName(trimmed[1:], "param") + "}"
		case strings.HasPrefix(trimmed, "*"):
			segments[i] = "{" + paramName(trimmed[1:], "wildcard") + "}"
		case strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}"):
			name, _, _ := strings.Cut(trimmed[1:len(trimmed)-1], ":")
			segments[i] = "{" + paramName(name, "param") + "}"
		default:
			segments[i] = trimmed
		}
	}
	result := strings.Join(segments, "/")
	if !strings.HasPrefix(result, "/") {
		result = "/" + result
	}
	return result
}

func paramName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return name
}

// pathParams lists the parameter names of a normalized path in order.
func pathParams(path string) []string {
	var params []string
	seen := make(map[string]struct{})
	for _, segment := range strings.Split(path, "/") {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		name := segment[1 : len(segment)-1]
		if _, ok := seen[strings.ToLower(name)]; ok {
			continue
		}
		seen[strings.ToLower(name)] = struct{}{}
		params = append(params, name)
	}
	return params
}
