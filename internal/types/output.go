package types

// OutputFormat selects how CLI results are rendered
type OutputFormat string

const (
	// OutputFormatJSON renders results as a JSON envelope
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatTable renders results as human-readable tables
	OutputFormatTable OutputFormat = "table"
)

// CLIOutput is the stable JSON envelope emitted by every command
type CLIOutput struct {
	SchemaVersion string       `json:"schemaVersion"`
	TraceID       string       `json:"traceId"`
	Command       string       `json:"command"`
	Data          interface{}  `json:"data"`
	Warnings      []CLIWarning `json:"warnings"`
	Errors        []CLIError   `json:"errors"`
}

// CLIWarning is a non-fatal notice attached to command output
type CLIWarning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// CLIError is a structured, machine-readable command error
type CLIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type TableRenderer interface {
	Headers() []string
	Rows() [][]string
	EmptyMessage() string
}

type TableRenderable interface {
	AsTableRenderer() TableRenderer
}
