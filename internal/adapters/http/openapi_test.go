package http_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPIDoc locates the openapi.yaml file by walking up from the test directory.
func findOpenAPIDoc(t *testing.T) string {
	// Start from the current working directory or test file location
	dir, _ := os.Getwd()

	// Look for api/openapi.yaml by going up directories
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPIDocument validates the OpenAPI document.
func TestOpenAPIDocument(t *testing.T) {
	// Load the document
	docPath := findOpenAPIDoc(t)
	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	// Parse YAML
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}

	// Validate
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI document validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/api/v1/health",
		"/api/v1/ready",
		"/api/v1/bootcamps",
		"/api/v1/bootcamps/{id}",
		"/api/v1/bootcamps/radius/{zipcode}/{distance}",
		"/api/v1/bootcamps/{bootcampId}/courses",
		"/api/v1/courses",
		"/api/v1/courses/{id}",
		"/graphql",
	}

	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in document", path)
		}
	}

	// Verify key schemas exist
	expectedSchemas := []string{
		"Bootcamp",
		"BootcampInput",
		"Course",
		"CourseInput",
		"Location",
		"APIError",
		"Pagination",
	}

	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI document valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

// TestOpenAPIInfo verifies doc metadata.
func TestOpenAPIInfo(t *testing.T) {
	docPath := findOpenAPIDoc(t)
	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}

	if doc.Info.Title != "DevCamper API" {
		t.Errorf("expected title 'DevCamper API', got %q", doc.Info.Title)
	}

	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}

	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}

	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", doc.Info.Title, doc.Info.Version, doc.Servers[0].URL)
}

// TestOpenAPICoversRoutes fails when a REST route is registered without being documented.
func TestOpenAPICoversRoutes(t *testing.T) {
	data, err := os.ReadFile(findOpenAPIDoc(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}
	doc, err := (&openapi3.Loader{}).LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}

	param := regexp.MustCompile(`:(\w+)`)
	app := setupApp(makeDeps())
	for _, r := range app.GetRoutes(true) {
		if !strings.HasPrefix(r.Path, "/api/v1") || r.Method == "HEAD" {
			continue
		}
		path := strings.TrimSuffix(param.ReplaceAllString(r.Path, "{$1}"), "/")
		item := doc.Paths.Find(path)
		if item == nil {
			t.Errorf("route %s %s is not documented", r.Method, path)
			continue
		}
		if item.GetOperation(r.Method) == nil {
			t.Errorf("route %s %s has no documented operation", r.Method, path)
		}
	}
}
