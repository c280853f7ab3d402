package revdiff

// Short messages (one-liners)
const (
	MsgRootShort       = "A reverse-increment backup tool"
	MsgBackupShort     = "Back up a directory into a repository"
	MsgInfoShort       = "Show the state of a backup repository"
	MsgConfigShort     = "Manage revdiff configuration"
	MsgConfigGenShort  = "Generate a starter configuration file"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"
	MsgVersionShort    = "Print version information"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Preview changes without executing them"
	MsgFlagForce          = "Back up into occupied or non-directory targets"
	MsgFlagCreateFullPath = "Create missing parents of the target path"
	MsgFlagRulesFile      = "YAML file with include/exclude rules"
	MsgFlagConfigWrite    = "Write the file to the config directory instead of stdout"
	MsgFlagManDir         = "Directory to write the man pages into"

	// Status messages
	MsgConfigWritten = "Wrote %s\n"
	MsgNoBackups     = "No completed backups yet.\n"
)

// Long messages
const (
	MsgRootLong = `revdiff backs up a source directory into a target repository. The
repository always holds a plain mirror of the most recent backup;
earlier states are kept as increments under the repository's data
directory, so the newest data stays directly browsable.

Each run first validates source and target, then creates or repairs
the repository skeleton, and finally mirrors the source, recording
what the mirror displaced.`

	MsgBackupLong = `Backup mirrors SOURCE into TARGET. The first backup copies
everything; later backups update the mirror and record the displaced
state as increments stamped with the previous backup's time.

TARGET takes the form [[USER@]HOST::]PATH. Remote endpoints are
recognized but not supported by this build.`

	MsgBackupExample = `  # first or subsequent backup
  revdiff backup ~/documents /backups/documents

  # back up into a directory that already holds other data
  revdiff backup --force ~/documents /backups/mixed

  # honor an include/exclude rule file
  revdiff backup --rules-file rules.yaml ~/src /backups/src`

	MsgInfoLong = `Info classifies a repository without touching it: whether the target
exists, holds unrelated data, carries a finished backup, or was left
behind by an interrupted one.`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(revdiff completion bash)

Zsh:
  $ revdiff completion zsh > "${fpath[1]}/_revdiff"

Fish:
  $ revdiff completion fish | source

PowerShell:
  PS> revdiff completion powershell | Out-String | Invoke-Expression`
)

// MsgUsageTemplate renders command usage with bold section headers on
// terminals
const MsgUsageTemplate = `{{boldUpper "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if .HasExample}}

{{boldUpper "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{boldUpper "Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
