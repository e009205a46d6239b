package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: physiomath <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  mine        Mine new mathematical theories for a topic")
	fmt.Fprintln(w, "  article     Write a scientific article on a topic")
	fmt.Fprintln(w, "  render      Render markdown files with formulas to HTML")
	fmt.Fprintln(w, "  serve       Start the web interface")
	fmt.Fprintln(w, "  doctor      Check system configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'physiomath help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

func printRenderingUsage(w io.Writer, withPDF bool) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -l, --lang <s>            Report language: fr, ar (default: fr)")
	fmt.Fprintln(w, "      --math-engine <s>     Formula renderer: katex, mathml (default: katex)")
	fmt.Fprintln(w, "      --style <s>           CSS style name or file path")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "  -t, --timeout <d>         Generation timeout (e.g., 90s, 5m)")
	if withPDF {
		fmt.Fprintln(w, "      --pdf                 Also export PDF (requires Chrome)")
	}
	fmt.Fprintln(w, "      --toc                 Add a table of contents")
	fmt.Fprintln(w, "      --footer              Add the footer line")
	fmt.Fprintln(w)
}

// printGenerateUsage prints usage for the mine and article commands.
func printGenerateUsage(w io.Writer, name string) {
	if name == "article" {
		fmt.Fprintln(w, "Usage: physiomath article <topic> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Write a scientific article applying the clinical theorems to a topic.")
	} else {
		fmt.Fprintln(w, "Usage: physiomath mine [topic] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Propose new mathematical theories for a physiological topic.")
		fmt.Fprintln(w, "Without a topic, mines Neuro-Immune Interaction.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generation:")
	fmt.Fprintln(w, "  -m, --model <id>          Model ID (default: first configured model)")
	if name != "article" {
		fmt.Fprintln(w, "      --researcher          Ask for assumptions and a falsifiability test")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output .html file or directory")
	fmt.Fprintln(w, "      --markdown            Also save the raw Markdown answer")
	fmt.Fprintln(w)
	printRenderingUsage(w, true)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  GEMINI_API_KEY            API key (API_KEY is also accepted)")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: physiomath render <input...> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown files with $...$ and $$...$$ formulas to HTML,")
	fmt.Fprintln(w, "without calling the model.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown files or directories")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --title <s>           Report title")
	fmt.Fprintln(w, "      --plain               Skip Markdown, keep prose verbatim")
	fmt.Fprintln(w)
	printRenderingUsage(w, true)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: physiomath serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start the web interface.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default: 127.0.0.1:8080)")
	fmt.Fprintln(w, "  -m, --model <id>          Default model ID")
	fmt.Fprintln(w, "      --no-pdf              Disable PDF downloads")
	fmt.Fprintln(w, "      --no-metrics          Disable the /metrics endpoint")
	fmt.Fprintln(w)
	printRenderingUsage(w, false)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: physiomath doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the API key, the math engines, and the temp directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "mine", "article":
		printGenerateUsage(env.Stdout, args[0])
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: physiomath version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: physiomath help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
