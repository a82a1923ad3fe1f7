package domain

import (
	"fmt"
	"time"
)

// Recognized option names.
const (
	OptLabel       = "label"
	OptPlaceholder = "placeholder"
	OptRows        = "rows"
	OptStyle       = "style"
	OptDebounce    = "debounce"
	OptDefault     = "default"
	OptDisabled    = "disabled"
	OptVariant     = "variant"
	OptTitle       = "title"
	OptItems       = "items"
	OptData        = "data"
	OptColumns     = "columns"
	OptType        = "type"
	OptLevel       = "level"
)

// Props holds the options a node kind recognizes, decoded into typed fields.
// Options outside the kind's accepted set are kept in Node.Extra instead.
type Props struct {
	Label       string        `json:"label,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Rows        int           `json:"rows,omitempty"`
	Style       string        `json:"style,omitempty"`
	Debounce    time.Duration `json:"debounce,omitempty"`
	Default     any           `json:"default,omitempty"`
	HasDefault  bool          `json:"-"`
	Disabled    bool          `json:"disabled,omitempty"`
	Variant     string        `json:"variant,omitempty"`
	Title       string        `json:"title,omitempty"`
	Items       []string      `json:"items,omitempty"`
	Data        any           `json:"data,omitempty"`
	Columns     []string      `json:"columns,omitempty"`
	Type        string        `json:"type,omitempty"`
	Level       int           `json:"level,omitempty"`
}

var accepted = map[Kind][]string{
	KindText:          {OptStyle},
	KindMarkdown:      {OptStyle},
	KindHeader:        {OptLevel, OptStyle},
	KindDivider:       {OptStyle},
	KindChart:         {OptTitle, OptData, OptVariant, OptStyle},
	KindTable:         {OptColumns, OptData, OptStyle},
	KindField:         {OptLabel, OptPlaceholder, OptDefault, OptDisabled, OptDebounce, OptType, OptStyle},
	KindTextArea:      {OptLabel, OptPlaceholder, OptRows, OptDefault, OptDisabled, OptDebounce, OptStyle},
	KindCheckbox:      {OptLabel, OptDefault, OptDisabled, OptStyle},
	KindSelect:        {OptLabel, OptItems, OptDefault, OptDisabled, OptStyle},
	KindRadio:         {OptLabel, OptItems, OptDefault, OptDisabled, OptStyle},
	KindCheckboxGroup: {OptLabel, OptItems, OptDefault, OptDisabled, OptStyle},
	KindCheckboxItem:  {OptLabel},
	KindButton:        {OptVariant, OptDisabled, OptStyle},
	KindContainer:     {OptStyle},
	KindRow:           {OptStyle},
	KindCard:          {OptTitle, OptStyle},
	KindForm:          {OptTitle, OptStyle},
	KindModal:         {OptTitle, OptStyle},
	KindTabs:          {OptDefault, OptStyle},
	KindTab:           {OptStyle},
}

// Accepts reports whether the option name is part of the kind's closed set.
func Accepts(kind Kind, name string) bool {
	for _, n := range accepted[kind] {
		if n == name {
			return true
		}
	}
	return false
}

// Set decodes a recognized option into its typed field.
func (p *Props) Set(name string, value any) error {
	var ok bool
	switch name {
	case OptLabel:
		p.Label, ok = value.(string)
	case OptPlaceholder:
		p.Placeholder, ok = value.(string)
	case OptRows:
		p.Rows, ok = value.(int)
	case OptStyle:
		p.Style, ok = value.(string)
	case OptDebounce:
		switch v := value.(type) {
		case time.Duration:
			p.Debounce, ok = v, true
		case int:
			p.Debounce, ok = time.Duration(v)*time.Millisecond, true
		}
	case OptDefault:
		p.Default, p.HasDefault, ok = value, true, true
	case OptDisabled:
		p.Disabled, ok = value.(bool)
	case OptVariant:
		p.Variant, ok = value.(string)
	case OptTitle:
		p.Title, ok = value.(string)
	case OptItems:
		p.Items, ok = value.([]string)
	case OptData:
		p.Data, ok = value, true
	case OptColumns:
		p.Columns, ok = value.([]string)
	case OptType:
		p.Type, ok = value.(string)
	case OptLevel:
		p.Level, ok = value.(int)
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	if !ok {
		return fmt.Errorf("option %q: unexpected value type %T", name, value)
	}
	return nil
}
