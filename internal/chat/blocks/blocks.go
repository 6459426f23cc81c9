// Package blocks defines the rendering contract between the chat core and
// the mobile UI. A chat turn produces a list of immutable Block values; the
// renderer pattern-matches on the Type tag, so the seven tags and their field
// sets are a stable wire contract.
package blocks

// Type is the block discriminator consumed by the UI renderer.
type Type string

const (
	TypeText    Type = "text"
	TypeStats   Type = "stats"
	TypeTable   Type = "table"
	TypeActions Type = "actions"
	TypeFile    Type = "file"
	TypeForm    Type = "form"
	TypeSuggest Type = "suggest"
)

// Block is one unit of chat-surface output. Only the fields relevant to the
// given Type are populated.
type Block struct {
	Type Type `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// stats
	Stats []Stat `json:"stats,omitempty"`

	// table
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	// actions / suggest
	Items []ActionItem `json:"items,omitempty"`

	// file
	FileName string `json:"fileName,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`

	// form
	FormID string      `json:"formId,omitempty"`
	Fields []FormField `json:"fields,omitempty"`
}

// Stat is a single labeled figure in a stats block.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ActionItem is an actionable entry; Action and Params are consumed by the
// tool dispatcher.
type ActionItem struct {
	Label  string            `json:"label"`
	Action string            `json:"action,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// FormField is one prefilled input in a form block.
type FormField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// Text creates a text block.
func Text(text string) Block {
	return Block{Type: TypeText, Text: text}
}

// Stats creates a stats block.
func Stats(stats ...Stat) Block {
	return Block{Type: TypeStats, Stats: stats}
}

// Table creates a table block.
func Table(columns []string, rows [][]string) Block {
	return Block{Type: TypeTable, Columns: columns, Rows: rows}
}

// Actions creates an actions block.
func Actions(items ...ActionItem) Block {
	return Block{Type: TypeActions, Items: items}
}

// File creates a file block.
func File(name, url string) Block {
	return Block{Type: TypeFile, FileName: name, FileURL: url}
}

// Form creates a form block.
func Form(formID string, fields ...FormField) Block {
	return Block{Type: TypeForm, FormID: formID, Fields: fields}
}

// Suggest creates a suggestion block.
func Suggest(items ...ActionItem) Block {
	return Block{Type: TypeSuggest, Items: items}
}
