package feed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/quill/app/database"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestTemplateCatalogLoadValidTemplate(t *testing.T) {
	tempDir := t.TempDir()

	writeTemplate(t, tempDir, "recipe", `
description: "A cooking recipe"
fields:
  - name: title
    type: text
    required: true
  - name: ingredients
    type: markdown
  - name: cooked_at
`)

	catalog := NewTemplateCatalog(tempDir)
	if err := catalog.Run(); err != nil {
		t.Fatal(err)
	}

	// recipe plus the built-in article template
	if catalog.GetTemplateCount() != 2 {
		t.Errorf("Expected 2 templates, got %d", catalog.GetTemplateCount())
	}

	recipe, err := catalog.GetTemplate("recipe")
	if err != nil {
		t.Fatal(err)
	}
	if recipe.Name != "recipe" {
		t.Errorf("Expected name 'recipe', got '%s'", recipe.Name)
	}
	if recipe.Description != "A cooking recipe" {
		t.Errorf("Expected description, got '%s'", recipe.Description)
	}
	if len(recipe.Fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(recipe.Fields))
	}
	if recipe.Fields[2].Type != "text" {
		t.Errorf("Expected default field type 'text', got '%s'", recipe.Fields[2].Type)
	}

	templates := catalog.GetTemplates()
	if templates[0].Name != "article" || templates[1].Name != "recipe" {
		t.Errorf("Expected templates ordered by name, got %v", templates)
	}
}

func TestTemplateCatalogInvalidTemplate(t *testing.T) {
	tests := map[string]string{
		"bad type":        "fields:\n  - name: title\n    type: spreadsheet\n",
		"missing name":    "fields:\n  - type: text\n",
		"duplicate field": "fields:\n  - name: a\n  - name: a\n",
		"broken yaml":     "fields: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeTemplate(t, tempDir, "broken", content)

			if err := NewTemplateCatalog(tempDir).Run(); err == nil {
				t.Error("Expected error for invalid template")
			}
		})
	}
}

func TestTemplateCatalogMissingDirectory(t *testing.T) {
	catalog := NewTemplateCatalog(filepath.Join(t.TempDir(), "missing"))
	if err := catalog.Run(); err != nil {
		t.Fatalf("Expected missing directory to be ignored, got %v", err)
	}

	if err := catalog.Validate("anything"); err != nil {
		t.Errorf("Expected unchecked names without a catalog, got %v", err)
	}

	templates := catalog.GetTemplates()
	if len(templates) != 1 || templates[0].Name != database.DefaultTemplate {
		t.Errorf("Expected built-in article template, got %v", templates)
	}
}

func TestTemplateCatalogValidate(t *testing.T) {
	tempDir := t.TempDir()
	writeTemplate(t, tempDir, "gallery", "description: Photos\n")

	catalog := NewTemplateCatalog(tempDir)
	if err := catalog.Run(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"gallery", "article", ""} {
		if err := catalog.Validate(name); err != nil {
			t.Errorf("Validate(%q) error = %v", name, err)
		}
	}

	err := catalog.Validate("podcast")
	var validationErr *database.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "template" {
		t.Errorf("Expected template validation error, got %v", err)
	}
}
