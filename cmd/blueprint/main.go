// Command blueprint is the CLI for SchemaCanvas. It converts blueprint
// documents to SQL DDL and back, repairs and verifies schema text, and
// serves the live editing API.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
	"github.com/FocuswithJustin/SchemaCanvas/core/repair"
	"github.com/FocuswithJustin/SchemaCanvas/core/session"
	"github.com/FocuswithJustin/SchemaCanvas/core/sqlgen"
	"github.com/FocuswithJustin/SchemaCanvas/core/sqlparse"
	"github.com/FocuswithJustin/SchemaCanvas/internal/api"
	"github.com/FocuswithJustin/SchemaCanvas/internal/export"
	"github.com/FocuswithJustin/SchemaCanvas/internal/logging"
	"github.com/FocuswithJustin/SchemaCanvas/internal/verify"
)

const version = "0.1.0"

// CLI defines the command-line interface for blueprint.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"json"`

	Generate GenerateCmd `cmd:"" help:"Generate SQL DDL from a blueprint document"`
	Parse    ParseCmd    `cmd:"" help:"Parse SQL DDL into a blueprint document"`
	Repair   RepairCmd   `cmd:"" help:"Repair structural mistakes in SQL DDL"`
	Validate ValidateCmd `cmd:"" help:"Report advisory warnings for SQL DDL"`
	Verify   VerifyCmd   `cmd:"" help:"Execute DDL against an in-memory SQLite database"`
	Export   ExportCmd   `cmd:"" help:"Write generated DDL to a dated schema file"`
	Serve    ServeCmd    `cmd:"" help:"Start the schema API server"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// GenerateCmd generates SQL DDL from a blueprint document.
type GenerateCmd struct {
	Path          string `arg:"" help:"Path to blueprint document" type:"existingfile"`
	Dialect       string `help:"Target dialect (postgresql, mysql, sqlite)" default:"postgresql"`
	InlineFK      bool   `name:"inline-fk" help:"Emit foreign keys inline instead of ALTER TABLE statements"`
	CaseSensitive bool   `name:"case-sensitive" help:"Quote identifiers and preserve their case"`
	Output        string `help:"Write DDL to file instead of stdout" short:"o" type:"path"`
}

func (c *GenerateCmd) Run() error {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return err
	}

	g, err := graph.LoadDocument(c.Path)
	if err != nil {
		return err
	}
	if c.InlineFK {
		g.Settings.UseInlineConstraints = true
	}
	if c.CaseSensitive {
		g.Settings.CaseSensitiveIdentifiers = true
	}

	ddl, warnings := sqlgen.Generate(d, g)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}

	return writeOutput(c.Output, ddl)
}

// ParseCmd parses SQL DDL into a blueprint document.
type ParseCmd struct {
	Path     string `arg:"" help:"Path to SQL file" type:"existingfile"`
	Dialect  string `help:"Source dialect (postgresql, mysql, sqlite)" default:"postgresql"`
	NoRepair bool   `name:"no-repair" help:"Parse the input as-is without structural repair"`
	Output   string `help:"Write blueprint document to file instead of stdout" short:"o" type:"path"`
}

func (c *ParseCmd) Run() error {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read SQL file: %w", err)
	}

	text := string(data)
	if !c.NoRepair {
		text = repair.Repair(text)
	}

	g, err := sqlparse.Parse(d, text)
	if err != nil {
		return err
	}

	doc, err := g.ToJSON()
	if err != nil {
		return err
	}

	return writeOutput(c.Output, string(doc)+"\n")
}

// RepairCmd repairs structural mistakes in SQL DDL.
type RepairCmd struct {
	Path   string `arg:"" help:"Path to SQL file" type:"existingfile"`
	Output string `help:"Write repaired SQL to file instead of stdout" short:"o" type:"path"`
}

func (c *RepairCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read SQL file: %w", err)
	}

	return writeOutput(c.Output, repair.Repair(string(data)))
}

// ValidateCmd reports advisory warnings for SQL DDL. Findings never
// change the exit status.
type ValidateCmd struct {
	Path string `arg:"" help:"Path to SQL file" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read SQL file: %w", err)
	}

	warnings := repair.ValidateSQLSyntax(string(data))
	for _, w := range warnings {
		fmt.Println(w.Error())
	}
	if len(warnings) == 0 {
		fmt.Println("No warnings.")
	}
	return nil
}

// VerifyCmd executes DDL statement by statement against an in-memory
// SQLite database and reports what stuck.
type VerifyCmd struct {
	Path    string `arg:"" help:"Path to SQL file" type:"existingfile"`
	Dialect string `help:"Dialect of the input (must be sqlite)" default:"sqlite"`
}

func (c *VerifyCmd) Run() error {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return err
	}
	if d != dialect.SQLite {
		return fmt.Errorf("verification runs on SQLite; generate with --dialect sqlite first")
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read SQL file: %w", err)
	}

	report, err := verify.Run(context.Background(), string(data))
	if err != nil {
		return err
	}

	fmt.Printf("Driver:     %s\n", report.Driver)
	fmt.Printf("Statements: %d\n", report.Statements)
	fmt.Printf("Failed:     %d\n", report.Failed)
	fmt.Printf("Tables:     %d\n", report.Tables)
	fmt.Printf("Indexes:    %d\n", report.Indexes)
	for _, e := range report.Errors {
		fmt.Printf("  %v\n", e)
	}

	if !report.OK() {
		return fmt.Errorf("%d of %d statements failed", report.Failed, report.Statements)
	}
	return nil
}

// ExportCmd writes generated DDL to a dated schema file.
type ExportCmd struct {
	Path    string `arg:"" help:"Path to blueprint document" type:"existingfile"`
	Dialect string `help:"Target dialect (postgresql, mysql, sqlite)" default:"postgresql"`
	Dir     string `help:"Output directory" default:"." type:"path"`
	XZ      bool   `name:"xz" help:"Compress the output with xz"`
}

func (c *ExportCmd) Run() error {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return err
	}

	g, err := graph.LoadDocument(c.Path)
	if err != nil {
		return err
	}

	ddl, warnings := sqlgen.Generate(d, g)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}

	result, err := export.Write(d, ddl, export.Options{Dir: c.Dir, Compress: c.XZ})
	if err != nil {
		return err
	}

	fmt.Printf("Exported: %s\n", result.Path)
	fmt.Printf("  Fingerprint: %s\n", result.Fingerprint)
	fmt.Printf("  Size: %d bytes\n", result.SizeBytes)
	return nil
}

// ServeCmd starts the schema API server.
type ServeCmd struct {
	Port           int      `help:"HTTP server port" default:"8080"`
	Blueprint      string   `help:"Blueprint document to serve (default: empty schema)" type:"path"`
	Dialect        string   `help:"Initial dialect (postgresql, mysql, sqlite)" default:"postgresql"`
	AllowedOrigins []string `name:"allowed-origins" help:"CORS and WebSocket origins (default: allow all)"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute per IP (0 = unlimited)"`
	RateLimitBurst int      `name:"rate-limit-burst" help:"Burst size for rate limiting" default:"10"`
}

func (c *ServeCmd) Run() error {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return err
	}

	var g *graph.SchemaGraph
	if c.Blueprint != "" {
		g, err = graph.LoadDocument(c.Blueprint)
		if err != nil {
			return err
		}
	}

	sess := session.New(d, g)
	cfg := api.Config{
		Port:              c.Port,
		AllowedOrigins:    c.AllowedOrigins,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateLimitBurst,
	}
	return api.Start(cfg, sess)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("blueprint version %s\n", version)
	fmt.Printf("  verify driver: %s (%s)\n", verify.DriverName(), verify.DriverType())
	return nil
}

// writeOutput writes text to a file, or stdout when path is empty.
func writeOutput(path, text string) error {
	if path == "" {
		fmt.Print(text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Println()
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Wrote: %s\n", path)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("blueprint"),
		kong.Description("SchemaCanvas - bidirectional SQL DDL and schema graph synchronization"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
