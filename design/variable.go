package design

// VariableType is the declared type of a template variable.
type VariableType string

const (
	VarText   VariableType = "text"
	VarImage  VariableType = "image"
	VarDate   VariableType = "date"
	VarNumber VariableType = "number"
	VarQR     VariableType = "qr"
)

// Valid reports whether t is a known variable type.
func (t VariableType) Valid() bool {
	switch t {
	case VarText, VarImage, VarDate, VarNumber, VarQR:
		return true
	}
	return false
}

// TemplateVariable is a named runtime value a document's elements may bind to.
type TemplateVariable struct {
	Name     string       `json:"name"`
	Label    string       `json:"label,omitempty"`
	Type     VariableType `json:"type"`
	Default  string       `json:"default,omitempty"`
	Required bool         `json:"required,omitempty"`
	Category string       `json:"category,omitempty"`
}
