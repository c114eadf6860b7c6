package fixture

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template is a light-weight wrapper around html/template.Template
type Template struct {
	*template.Template
}

// NewTemplate parses the embedded page templates
func NewTemplate() (*Template, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Template{tpl}, nil
}

// RenderTemplate will render the template and return the bytes
func (t *Template) RenderTemplate(name string, data interface{}) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
