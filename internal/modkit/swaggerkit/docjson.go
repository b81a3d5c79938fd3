package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"tiba/internal/platform/config"
	"tiba/internal/services/api/docs"
)

// docReader is swapped in tests
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON serves the generated spec patched with the shared error responses
func serveDocJSON(base string) http.HandlerFunc {
	suffix := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", "")
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		ensureServers(spec, base)
		if info, ok := spec["info"].(map[string]any); ok && suffix != "" {
			if title, ok := info["title"].(string); ok {
				info["title"] = title + " " + suffix
			}
		}
		ensureErrorSchema(spec)
		addDefaultResponses(spec, map[string]any{
			"400": errorResponse("Bad Request", 400, 6, "param: must be one of [set toggle only select_all]"),
			"500": errorResponse("Internal Server Error", 500, 1, "panic recovered"),
		})

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers pins the spec to OAS 3.0.3, the newest the UI renders
func ensureServers(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// ensureErrorSchema adds the error envelope model unless the spec has one
func ensureErrorSchema(spec map[string]any) {
	comps := child(spec, "components")
	schemas := child(comps, "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "integer", "format": "int32"}
	schemas["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": num,
			"status":      str,
			"code":        num,
			"error":       str,
			"field":       str,
			"request_id":  str,
		},
		"required": []any{"status_code", "status"},
	}
}

func errorResponse(status string, statusCode, code int, msg string) map[string]any {
	return map[string]any{
		"description": status,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": statusCode,
					"status":      status,
					"code":        code,
					"error":       msg,
					"request_id":  "579f33bf50b1/abc-000001",
				},
			},
		},
	}
}

// addDefaultResponses fills in every operation missing one of defaults
func addDefaultResponses(spec map[string]any, defaults map[string]any) {
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		item, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for method, o := range item {
			op, ok := o.(map[string]any)
			if !ok || method == "parameters" {
				continue
			}
			resps := child(op, "responses")
			for code, r := range defaults {
				if _, ok := resps[code]; !ok {
					resps[code] = r
				}
			}
		}
	}
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
