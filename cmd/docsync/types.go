package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIFunction is a JSON-friendly extracted function.
type CLIFunction struct {
	Name       string `json:"name,omitempty"`
	Line       int    `json:"line"`
	Start      int    `json:"start"`
	Key        string `json:"key"`
	Documented bool   `json:"documented"`
	Comment    string `json:"comment,omitempty"`
	Func       string `json:"func,omitempty"`
}

// CLICheck reports the syntax check of one file.
type CLICheck struct {
	File     string `json:"file"`
	Language string `json:"language"`
	Valid    bool   `json:"valid"`
	Message  string `json:"message,omitempty"`
}

// CLIDocument reports a single-file document run.
type CLIDocument struct {
	File      string `json:"file"`
	Language  string `json:"language"`
	Functions int    `json:"functions"`
	Updated   int    `json:"updated"`
	Cached    int    `json:"cached"`
	Written   bool   `json:"written"`
	Diff      string `json:"diff,omitempty"`
}

// CLIFileResult is one file's line in a sync report.
type CLIFileResult struct {
	Path       string `json:"path"`
	Language   string `json:"language"`
	Status     string `json:"status"`
	Functions  int    `json:"functions"`
	Documented int    `json:"documented"`
	Updated    int    `json:"updated"`
	Cached     int    `json:"cached"`
	Diff       string `json:"diff,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLISyncReport is the JSON-friendly sync summary.
type CLISyncReport struct {
	RunID      string          `json:"run_id"`
	Generator  string          `json:"generator"`
	DryRun     bool            `json:"dry_run"`
	Updated    int             `json:"updated"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Comments   int             `json:"comments"`
	DurationMS int64           `json:"duration_ms"`
	Files      []CLIFileResult `json:"files"`
}

// CLICoverage is one file's documentation coverage.
type CLICoverage struct {
	Path         string   `json:"path"`
	Language     string   `json:"language"`
	Functions    int      `json:"functions"`
	Documented   int      `json:"documented"`
	Percent      float64  `json:"percent"`
	Undocumented []string `json:"undocumented,omitempty"`
}

// CLICoverageReport aggregates coverage over a directory.
type CLICoverageReport struct {
	Files      []CLICoverage `json:"files"`
	Functions  int           `json:"functions"`
	Documented int           `json:"documented"`
	Percent    float64       `json:"percent"`
}

// CLIRun is a JSON-friendly ledger run.
type CLIRun struct {
	ID         string `json:"id"`
	Generator  string `json:"generator"`
	DryRun     bool   `json:"dry_run"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Files      int    `json:"files"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Comments   int    `json:"comments"`
}

// CLILanguage lists a supported language and its extensions.
type CLILanguage struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	Comment    string   `json:"comment_style"`
}
