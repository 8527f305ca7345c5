package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/quill/app/database"
)

var defaultTemplate = Template{
	Name:        database.DefaultTemplate,
	Description: "Standard article with title, body and optional featured image",
	Fields: []TemplateField{
		{Name: "title", Type: "text", Required: true},
		{Name: "body", Type: "markdown", Required: true},
		{Name: "featured_image", Type: "image"},
	},
}

// TemplateCatalog holds the content templates defined as YAML files in a directory.
type TemplateCatalog struct {
	templatesDir string
	cache        map[string]*Template
	mu           sync.RWMutex
}

func NewTemplateCatalog(templatesDir string) *TemplateCatalog {
	return &TemplateCatalog{
		templatesDir: templatesDir,
		cache:        make(map[string]*Template),
	}
}

// Run loads every *.yml file. A missing directory leaves the catalog empty and
// template names unchecked.
func (tc *TemplateCatalog) Run() error {
	if tc.templatesDir == "" {
		return nil
	}
	if _, err := os.Stat(tc.templatesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(tc.templatesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		template, err := tc.LoadTemplate(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Template loaded", "template", name, "fields", len(template.Fields))
	}

	if len(files) > 0 {
		tc.mu.Lock()
		if _, ok := tc.cache[defaultTemplate.Name]; !ok {
			builtin := defaultTemplate
			tc.cache[builtin.Name] = &builtin
		}
		tc.mu.Unlock()
	}

	return nil
}

func (tc *TemplateCatalog) LoadTemplate(name string) (*Template, error) {
	file := filepath.Join(tc.templatesDir, name+".yml")

	template, err := tc.parseTemplate(file)
	if err != nil {
		return nil, err
	}
	template.Name = name

	if err := tc.validateTemplate(template); err != nil {
		return nil, fmt.Errorf("invalid template %s: %w", file, err)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache[template.Name] = template

	return template, nil
}

func (tc *TemplateCatalog) GetTemplate(name string) (*Template, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	template, ok := tc.cache[name]
	if !ok {
		return nil, fmt.Errorf("template with name '%s' not found", name)
	}
	return template, nil
}

// GetTemplates returns the catalog ordered by name. An empty catalog reports
// the built-in article template.
func (tc *TemplateCatalog) GetTemplates() []Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	if len(tc.cache) == 0 {
		return []Template{defaultTemplate}
	}

	templates := make([]Template, 0, len(tc.cache))
	for _, template := range tc.cache {
		templates = append(templates, *template)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })

	return templates
}

func (tc *TemplateCatalog) GetTemplateCount() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.cache)
}

// Validate rejects template names missing from a loaded catalog.
func (tc *TemplateCatalog) Validate(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || tc.GetTemplateCount() == 0 {
		return nil
	}

	if _, err := tc.GetTemplate(name); err != nil {
		return &database.ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", name)}
	}
	return nil
}

func (tc *TemplateCatalog) parseTemplate(file string) (*Template, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var template Template
	if err := yaml.Unmarshal(data, &template); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range template.Fields {
		if template.Fields[i].Type == "" {
			template.Fields[i].Type = "text"
		}
	}

	return &template, nil
}

func (tc *TemplateCatalog) validateTemplate(template *Template) error {
	if template == nil {
		return fmt.Errorf("template is nil")
	}

	if template.Name == "" {
		return fmt.Errorf("template name is required")
	}

	validTypes := map[string]bool{
		"text":     true,
		"markdown": true,
		"html":     true,
		"image":    true,
		"date":     true,
		"tags":     true,
	}

	seen := make(map[string]bool, len(template.Fields))
	for i, field := range template.Fields {
		if field.Name == "" {
			return fmt.Errorf("field at index %d must have a name", i)
		}
		if seen[field.Name] {
			return fmt.Errorf("duplicate field %s", field.Name)
		}
		seen[field.Name] = true

		if !validTypes[field.Type] {
			return fmt.Errorf("invalid field type at index %d: %s", i, field.Type)
		}
	}

	return nil
}
