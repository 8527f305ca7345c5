package feed

// Template catalog types

type Template struct {
	Name        string          `yaml:"-" json:"name"` // Derived from filename (without .yml extension)
	Description string          `yaml:"description" json:"description"`
	Fields      []TemplateField `yaml:"fields" json:"fields"`
}

type TemplateField struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Required bool   `yaml:"required" json:"required"`
}
