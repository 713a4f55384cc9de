package fields

// Kind names the input control a descriptor renders as.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindCheckbox Kind = "checkbox"
	KindFile     Kind = "file"
	KindDropdown Kind = "dropdown"
)

// Choice is one dropdown entry. Value keeps the enum literal, Label its string
// form.
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Descriptor describes one input control. Path is the dotted submission key
// (equal to Name at the top level) and Depth the nesting level it came from.
// Multiple marks array schemas collected as comma-separated text.
type Descriptor struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	Required    bool     `json:"required"`
	Hint        string   `json:"hint"`
	Options     []Choice `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	Depth       int      `json:"depth,omitempty"`
}

// Nested reports whether the descriptor came from a nested object.
func (d Descriptor) Nested() bool {
	return d.Depth > 0
}
