package cmd

import (
	"fmt"
	"strings"

	"github.com/nibzard/tasklist-go/internal/config"
)

var completionCommands = []string{
	"add", "ls", "show", "edit", "toggle", "done", "rm", "delete", "clear",
	"stats", "tui", "doctor", "config", "log", "completion", "version", "help",
}

var completionGlobalFlags = []string{
	"-file", "-schema", "-default-priority", "-log-level", "-log-format",
	"-log-file", "-log-timestamps", "-log-caller", "-help", "-version",
}

// completionCommand prints a completion script for the given shell.
func completionCommand(_ *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasklist completion bash|zsh|fish|powershell")
	}

	commands := strings.Join(completionCommands, " ")
	flags := strings.Join(completionGlobalFlags, " ")

	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Printf(bashCompletion, commands, flags)
	case "zsh":
		fmt.Printf(zshCompletion, commands, flags)
	case "fish":
		fmt.Printf(fishCompletion, commands)
	case "powershell", "pwsh":
		fmt.Printf(powershellCompletion, quoteList(completionCommands), quoteList(completionGlobalFlags))
	default:
		return fmt.Errorf("unsupported shell %q: use bash, zsh, fish or powershell", args[0])
	}
	return nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return strings.Join(quoted, ", ")
}

const bashCompletion = `# tasklist bash completion
_tasklist() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    local commands="%s"
    local flags="%s"
    if [[ "$cur" == -* ]]; then
        COMPREPLY=($(compgen -W "$flags" -- "$cur"))
    elif [[ $COMP_CWORD -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
    fi
}
complete -F _tasklist tasklist
`

const zshCompletion = `#compdef tasklist
# tasklist zsh completion
_tasklist() {
    local -a commands flags
    commands=(%s)
    flags=(%s)
    if [[ "$PREFIX" == -* ]]; then
        compadd -- $flags
    elif (( CURRENT == 2 )); then
        compadd -- $commands
    fi
}
compdef _tasklist tasklist
`

const fishCompletion = `# tasklist fish completion
complete -c tasklist -f
complete -c tasklist -n "__fish_use_subcommand" -a "%s"
complete -c tasklist -o file -r -d "Path to task file"
complete -c tasklist -o schema -r -d "Path to a record schema"
complete -c tasklist -o log-level -x -a "debug info warn error"
complete -c tasklist -o log-format -x -a "text json logfmt"
complete -c tasklist -n "__fish_seen_subcommand_from add edit ls" -o priority -x -a "High Medium Low"
`

const powershellCompletion = `# tasklist PowerShell completion
Register-ArgumentCompleter -Native -CommandName tasklist -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)
    $commands = @(%s)
    $flags = @(%s)
    $candidates = if ($wordToComplete -like '-*') { $flags } else { $commands }
    $candidates | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
