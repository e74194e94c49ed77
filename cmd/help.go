package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newHelpCmd returns a help command that can also emit Markdown for CI doc
// generation, with an optional --with-config-keys flag that appends, for
// each flag, the TMGMT_* environment variable name envKeyForFlag gives it.
func newHelpCmd(root *cobra.Command) *cobra.Command {
	var (
		format         string
		withConfigKeys bool
	)

	helpCmd := &cobra.Command{
		Use:                   "help [command]",
		Short:                 "Show help for any command",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "markdown", "md":
				// If a specific command path is provided, render that command only
				if len(args) > 0 {
					target, _, err := root.Find(args)
					if err != nil || target == nil {
						return fmt.Errorf("unknown command: %v", args)
					}
					return renderMarkdownTree(target, os.Stdout, withConfigKeys)
				}
				// Otherwise, render the entire tree into a single markdown stream
				return renderMarkdownTree(root, os.Stdout, withConfigKeys)
			default:
				// Standard text help
				if len(args) > 0 {
					target, _, err := root.Find(args)
					if err == nil && target != nil {
						return target.Help()
					}
					return fmt.Errorf("unknown command: %v", args)
				}
				return root.Help()
			}
		},
	}

	helpCmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown")
	helpCmd.Flags().BoolVar(&withConfigKeys, "with-config-keys", false, "Append the TMGMT_* environment variable for each flag (markdown format only)")
	return helpCmd
}

// envKeyForFlag maps a flag's spelling to a TMGMT_* environment variable
// name. Flags whose variable internal/config.Load names explicitly (its
// BindEnv table, and TMGMT_CONFIG_FILE for --config) get that name; every
// other flag gets "TMGMT_" plus its name upper-cased with hyphens turned into
// underscores. Load reads the environment only for flags that back a
// config.Config field; for the rest (verbose, quiet, log-format, api-logs and
// the serve/help flags) the name printed is not read by anything.
func envKeyForFlag(name string) string {
	explicit := map[string]string{
		"config":         "TMGMT_CONFIG_FILE",
		"graph":          "TMGMT_GRAPH_FILE",
		"max-resource":   "TMGMT_MAX_RESOURCE",
		"sample-size":    "TMGMT_SAMPLE_SIZE",
		"log-dir":        "TMGMT_LOG_DIR",
		"log-time-unit":  "TMGMT_LOG_TIME_UNIT",
		"mongo-uri":      "TMGMT_MONGO_URI",
		"mongo-database": "TMGMT_MONGO_DATABASE",
	}
	if key, ok := explicit[name]; ok {
		return key
	}
	return "TMGMT_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func renderMarkdownTree(cmd *cobra.Command, w io.Writer, withConfigKeys bool) error {
	if err := renderMarkdownForCommand(cmd, w, withConfigKeys); err != nil {
		return err
	}
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if _, err := fmt.Fprint(w, "\n---\n\n"); err != nil {
			return err
		}
		if err := renderMarkdownTree(c, w, withConfigKeys); err != nil {
			return err
		}
	}
	return nil
}

func renderMarkdownForCommand(cmd *cobra.Command, w io.Writer, withConfigKeys bool) error {
	var b bytes.Buffer

	// Title as command path
	path := commandPath(cmd)
	b.WriteString("## ")
	b.WriteString(path)
	b.WriteString("\n\n")

	// Short and Long
	if s := strings.TrimSpace(cmd.Short); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	if l := strings.TrimSpace(cmd.Long); l != "" && l != cmd.Short {
		b.WriteString(l)
		b.WriteString("\n\n")
	}

	// Usage
	b.WriteString("**Usage**\n\n")
	b.WriteString("```\n")
	b.WriteString(cmd.UseLine())
	b.WriteString("\n```\n\n")

	// Aliases
	if len(cmd.Aliases) > 0 {
		b.WriteString("**Aliases**: ")
		b.WriteString(strings.Join(cmd.Aliases, ", "))
		b.WriteString("\n\n")
	}

	// Examples
	if ex := strings.TrimSpace(cmd.Example); ex != "" {
		b.WriteString("**Examples**\n\n")
		b.WriteString("```\n")
		b.WriteString(ex)
		b.WriteString("\n```\n\n")
	}

	// Flags
	localFlags := cmd.NonInheritedFlags()
	inheritedFlags := cmd.InheritedFlags()
	if localFlags.HasFlags() {
		b.WriteString("**Flags**\n\n")
		b.WriteString("```\n")
		b.WriteString(strings.TrimSpace(localFlags.FlagUsages()))
		b.WriteString("\n```\n\n")

		if withConfigKeys {
			b.WriteString("**Config/env equivalents**\n\n")
			localFlags.VisitAll(func(f *pflag.Flag) {
				b.WriteString("- `--")
				b.WriteString(f.Name)
				b.WriteString("` / `")
				b.WriteString(envKeyForFlag(f.Name))
				b.WriteString("`\n")
			})
			b.WriteString("\n")
		}
	}
	if inheritedFlags.HasFlags() {
		b.WriteString("**Inherited Flags**\n\n")
		b.WriteString("```\n")
		b.WriteString(strings.TrimSpace(inheritedFlags.FlagUsages()))
		b.WriteString("\n```\n\n")
	}

	// Subcommands
	subs := cmd.Commands()
	var visible []*cobra.Command
	for _, c := range subs {
		if c.IsAvailableCommand() && !c.IsAdditionalHelpTopicCommand() {
			visible = append(visible, c)
		}
	}
	if len(visible) > 0 {
		b.WriteString("**Subcommands**\n\n")
		for _, c := range visible {
			b.WriteString("- ")
			b.WriteString(c.Name())
			if s := strings.TrimSpace(c.Short); s != "" {
				b.WriteString(": ")
				b.WriteString(s)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	_, err := w.Write(b.Bytes())
	return err
}

func commandPath(cmd *cobra.Command) string {
	if cmd == nil {
		return ""
	}
	names := []string{}
	current := cmd
	for current != nil {
		// stop before the hidden auto help if any
		names = append([]string{current.Name()}, names...)
		current = current.Parent()
	}
	return strings.Join(names, " ")
}
