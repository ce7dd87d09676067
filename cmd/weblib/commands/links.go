package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorien/weblib/htmlutil"
)

func newLinksCommand() *cobra.Command {
	var (
		file     string
		selector string
	)
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Extract normalized links from an HTML document",
		Long: `Print the absolute http(s) links found in an HTML document, normalized and
without repeats. Relative links are skipped.`,
		Example: `  curl -s https://example.com | weblib links
  weblib links -f page.html --selector 'nav a[href]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				// #nosec G304 -- path is supplied by the CLI user
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				defer f.Close()
				r = f
			}

			links, err := htmlutil.ExtractLinks(r, selector)
			if err != nil {
				return err
			}
			return printLines(links)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "HTML file (- for stdin)")
	cmd.Flags().StringVar(&selector, "selector", htmlutil.DefaultSelector, "CSS selector for elements carrying href")
	return cmd
}
