package types

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	OutputFormat OutputFormat
	Quiet        bool
	Verbose      bool
	Debug        bool
	Config       string
	LogFile      string
	DryRun       bool
	Yes          bool
	JSON         bool
}
