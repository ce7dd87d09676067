package commands

import (
	"github.com/spf13/cobra"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/urlutil"
)

func newURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url [url...]",
		Short: "Normalize URLs",
		Long: `Normalize each URL: non-ASCII hosts are IDNA-encoded and the path, query
and fragment are percent-encoded. Existing escapes are kept as they are.

With no arguments URLs are read from stdin, one per line.`,
		Example: `  weblib url 'http://почта.рф/путь?q=значение'
  cat urls.txt | weblib url`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if len(urls) == 0 {
				var err error
				if urls, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			normalized := make([]string, 0, len(urls))
			for _, raw := range urls {
				u, err := urlutil.Normalize(raw)
				if err != nil {
					return err
				}
				normalized = append(normalized, u)
			}
			return printLines(normalized)
		},
	}
}

func newDedupeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Print unique URLs from stdin after normalization",
		Long: `Read URLs from stdin, one per line, and print each distinct normalized URL
once, in the order first seen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}
			unique, err := urlutil.Dedupe(urls)
			if err != nil {
				return err
			}
			return printLines(unique)
		},
	}
}

func printLines(lines []string) error {
	return cliout.Print(lines, func() {
		for _, line := range lines {
			cliout.Plain("%s", line)
		}
	})
}
