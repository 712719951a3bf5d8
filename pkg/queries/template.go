package queries

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// Template names
const (
	templateSensorData           = "sensor_data.sql"
	templateConnectionStatistics = "connection_statistics.sql"
	templateInstallations        = "installations.sql"
	templateNodes                = "nodes.sql"
	templateSensorTypes          = "sensor_types.sql"
)

// TemplateEngine renders the embedded SQL templates with Sprig functions
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses every embedded query template
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("queries").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFS(sqlFS, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to parse query templates: %w", err)
	}

	return &TemplateEngine{templates: tmpl}, nil
}

// Render renders a named template with the given variables
func (t *TemplateEngine) Render(name string, variables map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, variables); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
