// Package commands implements the weblib CLI commands.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/formutil"
	"github.com/lorien/weblib/logutil"
	"github.com/lorien/weblib/version"
	"github.com/lorien/weblib/yamlutil"
)

// EnvPrefix prefixes the environment variables that back unset flags,
// e.g. WEBLIB_OUTPUT for --output.
const EnvPrefix = "WEBLIB_"

// envAnnotation marks the flags that fall back to their environment variable.
const envAnnotation = "weblib_env"

type rootOptions struct {
	output         string
	debug          bool
	structuredLogs bool
}

// NewRootCommand creates the weblib root command with all subcommands.
func NewRootCommand(info *version.Info) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "weblib",
		Short: "Normalize URLs and HTTP request values",
		Long: `weblib turns URLs and key/value data into the canonical bytes sent over HTTP.

The global flags (and fetch --token) fall back to the environment variable
WEBLIB_<FLAG>, with dashes replaced by underscores, when not given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd.Flags()); err != nil {
				return err
			}
			logutil.SetupLogger(opts.debug, opts.structuredLogs)
			return cliout.SetFormat(opts.output)
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "default", "Output format (default, json)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.structuredLogs, "structured-logs", false, "Write logs as JSON lines")
	bindEnv(root.PersistentFlags(), "output", "debug", "structured-logs")

	root.AddCommand(
		newURLCommand(),
		newDedupeCommand(),
		newValuesCommand(),
		newPostCommand(),
		newLinksCommand(),
		newFetchCommand(),
		newMCPCommand(info),
		version.NewCommand(info),
	)
	return root
}

// bindEnv marks flags as backed by WEBLIB_<NAME>.
func bindEnv(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := flags.SetAnnotation(name, envAnnotation, []string{"true"}); err != nil {
			panic(err)
		}
	}
}

// applyEnv sets every env-bound flag that was not given explicitly from its
// environment variable, if present.
func applyEnv(flags *pflag.FlagSet) error {
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		if _, ok := f.Annotations[envAnnotation]; !ok {
			return
		}
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if err := flags.Set(f.Name, value); err != nil {
			firstErr = fmt.Errorf("invalid %s: %w", name, err)
		}
	})
	return firstErr
}

// readLines returns the non-blank lines of r with surrounding whitespace
// removed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

// loadPairs reads YAML pairs from path, or from stdin when path is "-".
func loadPairs(cmd *cobra.Command, path string) ([]formutil.Pair, error) {
	if path == "-" {
		return yamlutil.DecodePairs(cmd.InOrStdin())
	}
	return yamlutil.LoadPairs(path)
}
