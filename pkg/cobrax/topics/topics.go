// Package topics provides a topic-based help system for Cobra CLI
// applications. Topics are loaded from a filesystem, typically an
// embedded one, so the binary documents itself without an install step.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help topic
type Topic struct {
	Name    string
	Ext     string
	Content string
}

// Manager holds the scanned topics for one application
type Manager struct {
	topics       map[string]*Topic
	originalHelp func(*cobra.Command, []string)
	extensions   []string
	renderer     Renderer
}

// Options configures the Manager
type Options struct {
	// Extensions lists the file extensions treated as topics;
	// defaults to .txt and .md
	Extensions []string

	// Renderer formats topic content; defaults to PlainRenderer
	Renderer Renderer
}

// New scans fsys for topic files and builds a Manager
func New(fsys fs.FS, opts Options) (*Manager, error) {
	m := &Manager{
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".txt", ".md"}
	}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	if err := m.scan(fsys); err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}
	return m, nil
}

func (m *Manager) scan(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := path.Ext(p)
		if !m.supported(ext) {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Ext: ext, Content: string(content)}
		return nil
	})
}

func (m *Manager) supported(ext string) bool {
	for _, e := range m.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Get retrieves a topic by name. Flag-style names (--selection) map to
// the bare topic name.
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimPrefix(name, "-")
	topic, ok := m.topics[name]
	return topic, ok
}

// List returns all topic names, sorted
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initialize wires the topic help system into a root command: a help
// command that resolves topics before falling back to command help,
// and the same resolution for the --help path.
func Initialize(rootCmd *cobra.Command, fsys fs.FS, opts Options) error {
	m, err := New(fsys, opts)
	if err != nil {
		return err
	}
	m.originalHelp = rootCmd.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic in the application.
Simply type ` + rootCmd.Name() + ` help [path to command or topic] for full details.

To see all available help topics:
  ` + rootCmd.Name() + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.List()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				m.originalHelp(rootCmd, []string{})
				return
			}
			if args[0] == "topics" {
				m.printTopicList(rootCmd.Name())
				return
			}
			if topic, ok := m.Get(args[0]); ok {
				fmt.Print(m.renderer.Render(topic.Content, topic.Ext))
				return
			}
			m.originalHelp(rootCmd, args)
		},
	}

	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "help" {
			rootCmd.RemoveCommand(cmd)
			break
		}
	}
	rootCmd.AddCommand(helpCmd)

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if topic, ok := m.Get(args[0]); ok {
				fmt.Print(m.renderer.Render(topic.Content, topic.Ext))
				return
			}
		}
		m.originalHelp(cmd, args)
	})
	return nil
}

func (m *Manager) printTopicList(appName string) {
	names := m.List()
	if len(names) == 0 {
		fmt.Println("No help topics available.")
		return
	}
	fmt.Println("Available help topics:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("\nUse '%s help <topic>' to read about a specific topic.\n", appName)
}
