package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/mathrender"
)

// Shell names a shell that completion scripts can be generated for.
type Shell string

const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

var ErrUnsupportedShell = errors.New("unsupported shell")

// shellScript ties a shell to its generator and install instructions.
type shellScript struct {
	shell    Shell
	desc     string
	install  []string
	generate func(io.Writer) error
}

var shellScripts = []shellScript{
	{ShellBash, "Bash completion script", []string{
		"# Add to ~/.bashrc:",
		`eval "$(physiomath completion bash)"`,
	}, generateBash},
	{ShellZsh, "Zsh completion script", []string{
		"# Add to ~/.zshrc (after compinit):",
		`eval "$(physiomath completion zsh)"`,
	}, generateZsh},
	{ShellFish, "Fish completion script", []string{
		"physiomath completion fish > ~/.config/fish/completions/physiomath.fish",
	}, generateFish},
	{ShellPowerShell, "PowerShell completion script", []string{
		"# Add to $PROFILE:",
		"physiomath completion powershell | Out-String | Invoke-Expression",
	}, generatePowerShell},
}

// shells lists the supported shell names. It is spelled out rather than
// derived from shellScripts, whose generators read it through getCommands.
var shells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob []string // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	FileGlob   []string // file arguments, e.g. *.md
	Positional []string // fixed first argument values
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSets.
type completionMeta struct {
	Values   []string
	FileGlob []string
	IsDir    bool
}

func languageCodes() []string {
	var codes []string
	for _, l := range locale.Languages() {
		codes = append(codes, l.String())
	}
	return codes
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"lang":        {Values: languageCodes()},
	"math-engine": {Values: mathrender.EngineNames()},
	"log-level":   {Values: []string{"debug", "info", "warn", "error"}},
	"log-format":  {Values: []string{"text", "json"}},

	"config": {FileGlob: []string{"*.yaml", "*.yml"}},
	"style":  {FileGlob: []string{"*.css"}},

	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case len(meta.FileGlob) > 0:
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	commands := []commandDef{
		{
			Name:  "mine",
			Desc:  "Mine new mathematical theories for a topic",
			Flags: extractFlagsFromFlagSet(buildGenerateFlagSet("mine", &generateFlags{}, io.Discard)),
		},
		{
			Name:  "article",
			Desc:  "Write a scientific article on a topic",
			Flags: extractFlagsFromFlagSet(buildGenerateFlagSet("article", &generateFlags{}, io.Discard)),
		},
		{
			Name:     "render",
			Desc:     "Render markdown files with formulas to HTML",
			Flags:    extractFlagsFromFlagSet(buildRenderFlagSet(&renderFlags{}, io.Discard)),
			FileGlob: []string{"*.md", "*.markdown"},
		},
		{
			Name:  "serve",
			Desc:  "Start the web interface",
			Flags: extractFlagsFromFlagSet(buildServeFlagSet(&serveFlags{}, io.Discard)),
		},
		{
			Name:  "doctor",
			Desc:  "Check system configuration",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output as JSON"}},
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script", Positional: shells},
	}

	var names []string
	for _, c := range commands {
		names = append(names, c.Name)
	}
	for i := range commands {
		if commands[i].Name == "help" {
			commands[i].Positional = names
		}
	}
	return commands
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	for _, sc := range shellScripts {
		if sc.shell == shell {
			return sc.generate(w)
		}
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shells, ", "))
}

func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: physiomath completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print a completion script for commands, flags, languages and math engines.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	for _, sc := range shellScripts {
		fmt.Fprintf(w, "  %-11s %s\n", sc.shell, sc.desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	for _, sc := range shellScripts {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s:\n", sc.shell)
		for _, line := range sc.install {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}
