package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	InitSchema *bool
	Get        *string
	Set        *string
	ExportXLSX *string
	ImportXLSX *string
	Audit      *bool

	// Filters and targets
	Where  *string
	Entity *string
	Guild  *string
	User   *string
	Lang   *string

	// Options
	Config *string
	Output *string
	Sheet  *string
	Log    *bool

	// Config Creation
	CreateConfig *string

	// Misc
	Version *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags(fs *flag.FlagSet, args []string) (*Flags, error) {
	f := &Flags{}

	// Commands
	f.InitSchema = fs.Bool("init-schema", false, "Create missing tables for all entities")
	f.Get = fs.String("get", "", "Print records of entity matching --where (entity name)")
	f.Set = fs.String("set", "", "Update properties: name=value,... (use with --entity and --where)")
	f.ExportXLSX = fs.String("export-xlsx", "", "Export records of entity matching --where to XLSX (entity name)")
	f.ImportXLSX = fs.String("import-xlsx", "", "Create records from XLSX file (file path, use with --entity)")
	f.Audit = fs.Bool("audit", false, "Print audit_log entries matching --where")

	// Filters and targets
	f.Where = fs.String("where", "", "Equality filter: column=value,... (e.g. 'user_id=42,version=ds')")
	f.Entity = fs.String("entity", "", "Target entity for --set and --import-xlsx")
	f.Guild = fs.String("guild", "", "Server id: language and prefix are taken from its settings")
	f.User = fs.String("user", "", "User id recorded in the audit trail")
	f.Lang = fs.String("lang", "", "Override language for property names and messages")

	// Options
	f.Config = fs.String("config", "config.yaml", "Configuration file path")
	f.Output = fs.String("output", "", "Output file path (default: <entity>.xlsx)")
	f.Sheet = fs.String("sheet", "", "Excel sheet name for --import-xlsx (default: first sheet)")
	f.Log = fs.Bool("log", false, "Log SQL text before execution")

	// Config Creation
	f.CreateConfig = fs.String("create-config", "", "Create sample config.yaml for database type: mysql, postgres, sqlite, mssql")

	// Misc
	f.Version = fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// commandWasSpecified checks if any command was specified
func (f *Flags) commandWasSpecified() bool {
	return *f.InitSchema ||
		*f.Get != "" ||
		*f.Set != "" ||
		*f.ExportXLSX != "" ||
		*f.ImportXLSX != "" ||
		*f.Audit
}
