package domain

// Kind identifies the component a Node describes.
// The set is closed: every Renderer must handle all of them.
type Kind string

const (
	// Display kinds.
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindHeader   Kind = "header"
	KindDivider  Kind = "divider"
	KindChart    Kind = "chart"
	KindTable    Kind = "table"

	// Input kinds (bound to a State key).
	KindField         Kind = "field"
	KindTextArea      Kind = "textarea"
	KindCheckbox      Kind = "checkbox"
	KindSelect        Kind = "select"
	KindRadio         Kind = "radio"
	KindCheckboxGroup Kind = "checkbox_group"
	KindCheckboxItem  Kind = "checkbox_item"

	// Interaction kinds.
	KindButton Kind = "button"

	// Container kinds.
	KindContainer Kind = "container"
	KindRow       Kind = "row"
	KindCard      Kind = "card"
	KindForm      Kind = "form"
	KindModal     Kind = "modal"
	KindTabs      Kind = "tabs"
	KindTab       Kind = "tab"
)

// Kinds lists every node kind in a stable order.
var Kinds = []Kind{
	KindText, KindMarkdown, KindHeader, KindDivider, KindChart, KindTable,
	KindField, KindTextArea, KindCheckbox, KindSelect, KindRadio, KindCheckboxGroup, KindCheckboxItem,
	KindButton,
	KindContainer, KindRow, KindCard, KindForm, KindModal, KindTabs, KindTab,
}

// IsInput reports whether nodes of this kind collect user input.
// Their keys are the ones handed back by headless completion.
func (k Kind) IsInput() bool {
	switch k {
	case KindField, KindTextArea, KindCheckbox, KindSelect, KindRadio, KindCheckboxGroup:
		return true
	}
	return false
}

// IsContainer reports whether nodes of this kind capture a nested block.
func (k Kind) IsContainer() bool {
	switch k {
	case KindContainer, KindRow, KindCard, KindForm, KindModal, KindTabs, KindTab:
		return true
	}
	return false
}

// Valid reports whether k belongs to the closed set.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}
