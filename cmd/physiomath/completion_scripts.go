package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	bw := bufio.NewWriter(w)
	commands := getCommands()

	fmt.Fprintln(bw, "# bash completion for physiomath")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "_physiomath_files() {")
	fmt.Fprintln(bw, "    local g")
	fmt.Fprintln(bw, `    COMPREPLY=( $(compgen -d -- "${cur}") )`)
	fmt.Fprintln(bw, `    for g in "$@"; do`)
	fmt.Fprintln(bw, `        COMPREPLY+=( $(compgen -f -X "!${g}" -- "${cur}") )`)
	fmt.Fprintln(bw, "    done")
	fmt.Fprintln(bw, "}")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "_physiomath_completions() {")
	fmt.Fprintln(bw, "    local cur prev cmd")
	fmt.Fprintln(bw, "    COMPREPLY=()")
	fmt.Fprintln(bw, `    cur="${COMP_WORDS[COMP_CWORD]}"`)
	fmt.Fprintln(bw, `    prev="${COMP_WORDS[COMP_CWORD-1]}"`)
	fmt.Fprintln(bw, `    cmd="${COMP_WORDS[1]}"`)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    if [[ ${COMP_CWORD} -eq 1 ]]; then")
	fmt.Fprintf(bw, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(commandNames(commands), " "))
	fmt.Fprintln(bw, "        return 0")
	fmt.Fprintln(bw, "    fi")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, `    case "${cmd}" in`)
	for _, c := range commands {
		fmt.Fprintf(bw, "    %s)\n", c.Name)
		if len(c.Positional) > 0 {
			fmt.Fprintf(bw, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(c.Positional, " "))
			fmt.Fprintln(bw, "        ;;")
			continue
		}
		if hasValueFlags(c.Flags) {
			fmt.Fprintln(bw, `        case "${prev}" in`)
			for _, f := range c.Flags {
				if f.Type == flagBool {
					continue
				}
				fmt.Fprintf(bw, "        %s)\n", strings.Join(flagNames(f), "|"))
				switch f.Type {
				case flagEnum:
					fmt.Fprintf(bw, "            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(f.Values, " "))
				case flagFile:
					fmt.Fprintf(bw, "            _physiomath_files %s\n", quoteAll(f.FileGlob))
				case flagDir:
					fmt.Fprintln(bw, `            COMPREPLY=( $(compgen -d -- "${cur}") )`)
				}
				fmt.Fprintln(bw, "            return 0")
				fmt.Fprintln(bw, "            ;;")
			}
			fmt.Fprintln(bw, "        esac")
		}
		if len(c.FileGlob) > 0 {
			fmt.Fprintln(bw, `        if [[ "${cur}" != -* ]]; then`)
			fmt.Fprintf(bw, "            _physiomath_files %s\n", quoteAll(c.FileGlob))
			fmt.Fprintln(bw, "            return 0")
			fmt.Fprintln(bw, "        fi")
		}
		if len(c.Flags) > 0 {
			var all []string
			for _, f := range c.Flags {
				all = append(all, flagNames(f)...)
			}
			fmt.Fprintf(bw, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(all, " "))
		}
		fmt.Fprintln(bw, "        ;;")
	}
	fmt.Fprintln(bw, "    esac")
	fmt.Fprintln(bw, "}")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "complete -F _physiomath_completions physiomath")

	return bw.Flush()
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer) error {
	bw := bufio.NewWriter(w)
	commands := getCommands()

	fmt.Fprintln(bw, "#compdef physiomath")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "_physiomath() {")
	fmt.Fprintln(bw, "    local -a commands")
	fmt.Fprintln(bw, "    commands=(")
	for _, c := range commands {
		fmt.Fprintf(bw, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	fmt.Fprintln(bw, "    )")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    if (( CURRENT == 2 )); then")
	fmt.Fprintln(bw, "        _describe 'command' commands")
	fmt.Fprintln(bw, "        return")
	fmt.Fprintln(bw, "    fi")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, `    case "${words[2]}" in`)
	for _, c := range commands {
		if len(c.Flags) == 0 && len(c.Positional) == 0 && len(c.FileGlob) == 0 {
			continue
		}
		fmt.Fprintf(bw, "    %s)\n", c.Name)
		fmt.Fprintln(bw, "        _arguments \\")
		for _, f := range c.Flags {
			fmt.Fprintf(bw, "            %s \\\n", zshFlagSpec(f))
		}
		switch {
		case len(c.Positional) > 0:
			fmt.Fprintf(bw, "            '1:value:(%s)'\n", strings.Join(c.Positional, " "))
		case len(c.FileGlob) > 0:
			fmt.Fprintf(bw, "            '*:file:_files -g \"%s\"'\n", strings.Join(c.FileGlob, " "))
		default:
			fmt.Fprintln(bw, "            '*::topic:'")
		}
		fmt.Fprintln(bw, "        ;;")
	}
	fmt.Fprintln(bw, "    esac")
	fmt.Fprintln(bw, "}")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, `if [[ "${funcstack[1]}" == "_physiomath" ]]; then`)
	fmt.Fprintln(bw, `    _physiomath "$@"`)
	fmt.Fprintln(bw, "else")
	fmt.Fprintln(bw, "    compdef _physiomath physiomath")
	fmt.Fprintln(bw, "fi")

	return bw.Flush()
}

func zshFlagSpec(f flagDef) string {
	desc := "[" + zshEscape(f.Desc) + "]"
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = `:file:_files -g "` + strings.Join(f.FileGlob, " ") + `"`
	case flagDir:
		action = ":directory:_directories"
	default:
		action = ":value:"
	}
	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

func zshEscape(s string) string {
	return strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`).Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer) error {
	bw := bufio.NewWriter(w)
	commands := getCommands()

	fmt.Fprintln(bw, "# fish completion for physiomath")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "function __fish_physiomath_needs_command")
	fmt.Fprintln(bw, "    set -l cmd (commandline -opc)")
	fmt.Fprintln(bw, "    test (count $cmd) -eq 1")
	fmt.Fprintln(bw, "end")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "function __fish_physiomath_using_command")
	fmt.Fprintln(bw, "    set -l cmd (commandline -opc)")
	fmt.Fprintln(bw, "    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]")
	fmt.Fprintln(bw, "end")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "complete -c physiomath -f")
	for _, c := range commands {
		fmt.Fprintf(bw, "complete -c physiomath -n __fish_physiomath_needs_command -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}
	for _, c := range commands {
		cond := fishQuote("__fish_physiomath_using_command " + c.Name)
		fmt.Fprintln(bw)
		if len(c.Positional) > 0 {
			fmt.Fprintf(bw, "complete -c physiomath -n %s -a %s\n", cond, fishQuote(strings.Join(c.Positional, " ")))
		}
		if len(c.FileGlob) > 0 {
			fmt.Fprintf(bw, "complete -c physiomath -n %s -F\n", cond)
		}
		for _, f := range c.Flags {
			line := "complete -c physiomath -n " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a " + fishQuote(strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -r"
			}
			fmt.Fprintln(bw, line+" -d "+fishQuote(f.Desc))
		}
	}

	return bw.Flush()
}

func fishQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s) + "'"
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(w io.Writer) error {
	bw := bufio.NewWriter(w)
	commands := getCommands()

	fmt.Fprintln(bw, "# PowerShell completion for physiomath")
	fmt.Fprintln(bw, "Register-ArgumentCompleter -Native -CommandName physiomath -ScriptBlock {")
	fmt.Fprintln(bw, "    param($wordToComplete, $commandAst, $cursorPosition)")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    $commands = [ordered]@{")
	for _, c := range commands {
		fmt.Fprintf(bw, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw, "    $flags = @{")
	for _, c := range commands {
		var names []string
		for _, f := range c.Flags {
			names = append(names, flagNames(f)...)
		}
		fmt.Fprintf(bw, "        %s = @(%s)\n", psQuote(c.Name), psList(names))
	}
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw, "    $positional = @{")
	for _, c := range commands {
		if len(c.Positional) > 0 {
			fmt.Fprintf(bw, "        %s = @(%s)\n", psQuote(c.Name), psList(c.Positional))
		}
	}
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw, "    $values = @{")
	seen := map[string]bool{}
	for _, c := range commands {
		for _, f := range c.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			for _, name := range flagNames(f) {
				fmt.Fprintf(bw, "        %s = @(%s)\n", psQuote(name), psList(f.Values))
			}
		}
	}
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })")
	fmt.Fprintln(bw, "    $count = $elements.Count")
	fmt.Fprintln(bw, "    if ($wordToComplete -ne '') { $count-- }")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    if ($count -le 1) {")
	fmt.Fprintln(bw, "        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {")
	fmt.Fprintln(bw, "            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)")
	fmt.Fprintln(bw, "        }")
	fmt.Fprintln(bw, "        return")
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    $cmd = $elements[1]")
	fmt.Fprintln(bw, "    $prev = $elements[$count - 1]")
	fmt.Fprintln(bw, "    $candidates = @()")
	fmt.Fprintln(bw, "    if ($values.ContainsKey($prev)) {")
	fmt.Fprintln(bw, "        $candidates = $values[$prev]")
	fmt.Fprintln(bw, "    } elseif ($wordToComplete -like '-*') {")
	fmt.Fprintln(bw, "        $candidates = $flags[$cmd]")
	fmt.Fprintln(bw, "    } elseif ($count -eq 2 -and $positional.ContainsKey($cmd)) {")
	fmt.Fprintln(bw, "        $candidates = $positional[$cmd]")
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw, "    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {")
	fmt.Fprintln(bw, "        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)")
	fmt.Fprintln(bw, "    }")
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = psQuote(s)
	}
	return strings.Join(quoted, ", ")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func commandNames(commands []commandDef) []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	return names
}

// flagNames returns "--long" and, if set, "-s".
func flagNames(f flagDef) []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func hasValueFlags(flags []flagDef) bool {
	for _, f := range flags {
		if f.Type != flagBool {
			return true
		}
	}
	return false
}

func quoteAll(globs []string) string {
	quoted := make([]string, len(globs))
	for i, g := range globs {
		quoted[i] = fmt.Sprintf("%q", g)
	}
	return strings.Join(quoted, " ")
}
