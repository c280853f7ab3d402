package revdiff

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/revdiff/revdiff/pkg/backup"
	"github.com/revdiff/revdiff/pkg/config"
	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/filesystem"
	"github.com/revdiff/revdiff/pkg/locations"
	"github.com/revdiff/revdiff/pkg/logging"
	"github.com/revdiff/revdiff/pkg/mirror"
	"github.com/revdiff/revdiff/pkg/paths"
	"github.com/revdiff/revdiff/pkg/repo"
	"github.com/revdiff/revdiff/pkg/selection"
	"github.com/revdiff/revdiff/pkg/style"
	"github.com/revdiff/revdiff/pkg/types"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup SOURCE TARGET",
		Short:   MsgBackupShort,
		Long:    MsgBackupLong,
		Example: MsgBackupExample,
		Args:    cobra.ExactArgs(2),
		RunE:    runBackup,
	}
	cmd.Flags().Bool("create-full-path", false, MsgFlagCreateFullPath)
	cmd.Flags().String("rules-file", "", MsgFlagRulesFile)
	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger("cmd.backup")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
	force, _ := cmd.Root().PersistentFlags().GetBool("force")
	createFullPath, _ := cmd.Flags().GetBool("create-full-path")
	rulesFile, _ := cmd.Flags().GetString("rules-file")

	force = force || cfg.Backup.Force
	createFullPath = createFullPath || cfg.Backup.CreateFullPath
	if rulesFile == "" {
		rulesFile = cfg.Backup.RulesFile
	}

	fsys := filesystem.NewOS()

	source, err := connect(args[0], fsys)
	if err != nil {
		return err
	}
	target, err := connect(args[1], fsys)
	if err != nil {
		return err
	}

	var rules *selection.Rules
	if rulesFile != "" {
		rules, err = selection.LoadFile(fsys, rulesFile)
		if err != nil {
			return err
		}
	}

	logger.Info().
		Str("source", source.Path()).
		Str("target", target.Path()).
		Bool("dry_run", dryRun).
		Bool("force", force).
		Msg("Starting backup")

	m := mirror.NewLocal(fsys, rules, dryRun)
	session := backup.NewSession(source, repo.New(target), m)
	session.Force = force
	session.CreateFullPath = createFullPath

	// one clock reading for the whole session, so markers, artifacts
	// and the report all carry the same time
	now := time.Now()
	session.Now = func() time.Time { return now }

	verdict, err := session.Check()
	if err != nil {
		return err
	}
	if !verdict.OK() {
		return verdict.Err()
	}

	// dry runs leave the repository skeleton alone too
	if !dryRun {
		if err := session.Setup(); err != nil {
			return err
		}
	}

	prev, err := m.MirrorTime(session.Target)
	if err != nil {
		return err
	}
	if err := session.Run(); err != nil {
		return err
	}

	report := style.Report{
		Source:      source.Path(),
		Target:      target.Path(),
		Incremental: !prev.IsZero(),
		DryRun:      dryRun,
		When:        now.Truncate(time.Second),
		Stats:       m.Stats(),
	}
	fmt.Println(report.Render(reportColored(cfg.Report.Color)))
	return nil
}

// connect parses a location argument and resolves it on its endpoint
func connect(arg string, fsys types.FS) (locations.Location, error) {
	spec, err := locations.ParseSpec(arg)
	if err != nil {
		return nil, err
	}
	if !spec.Remote() {
		if abs, err := filepath.Abs(spec.Path); err == nil {
			spec.Path = abs
		}
	}
	return locations.Connect(spec, fsys)
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info TARGET",
		Short: MsgInfoShort,
		Long:  MsgInfoLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := filesystem.NewOS()
			target, err := connect(args[0], fsys)
			if err != nil {
				return err
			}

			r := repo.New(target)
			state, err := r.Classify()
			if err != nil {
				return err
			}

			fmt.Printf("Target: %s\n", target.Path())
			fmt.Printf("State:  %s\n", state)

			last, err := r.LastMirrorTime()
			if err != nil {
				return err
			}
			if last.IsZero() {
				fmt.Print(MsgNoBackups)
			} else {
				fmt.Printf("Last backup: %s\n", last.Format(repo.TimeFormat))
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}
	cmd.AddCommand(newConfigGenCmd())
	return cmd
}

func newConfigGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: MsgConfigGenShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateContent()
			if err != nil {
				return err
			}

			write, _ := cmd.Flags().GetBool("write")
			if !write {
				fmt.Print(content)
				return nil
			}

			path := paths.ConfigFile()
			if _, err := os.Stat(path); err == nil {
				return errors.Newf(errors.ErrInvalidInput, "%s already exists", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return err
			}
			fmt.Printf(MsgConfigWritten, path)
			return nil
		},
	}
	cmd.Flags().Bool("write", false, MsgFlagConfigWrite)
	return cmd
}
