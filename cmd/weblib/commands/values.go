package commands

import (
	"github.com/spf13/cobra"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/formutil"
)

// valuePair is the JSON form of a normalized field.
type valuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func newValuesCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "values",
		Short: "Expand key/value pairs from a YAML file",
		Long: `Read key/value pairs from a YAML mapping (or a list of mappings) and print
them as the flat list sent over HTTP. List values expand to one pair per item,
null becomes an empty value, and document order and duplicate keys are kept.`,
		Example: `  weblib values -f params.yaml
  echo 'tag: [a, b]' | weblib values -f - -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := loadPairs(cmd, file)
			if err != nil {
				return err
			}
			fields, err := formutil.NormalizeHTTPValues(pairs, nil)
			if err != nil {
				return err
			}

			out := make([]valuePair, 0, len(fields))
			for _, f := range fields {
				out = append(out, valuePair{Key: string(f.Key), Value: string(f.Value)})
			}
			return cliout.Print(out, func() {
				for _, p := range out {
					cliout.Plain("%s=%s", p.Key, p.Value)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "YAML pairs file (- for stdin)")
	return cmd
}
