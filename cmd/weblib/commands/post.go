package commands

import (
	"github.com/spf13/cobra"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/formutil"
)

// postBody is the JSON form of a normalized request body.
type postBody struct {
	ContentType string `json:"contentType,omitempty"`
	Body        string `json:"body"`
}

func newPostCommand() *cobra.Command {
	var (
		file string
		data string
	)
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Render a request body",
		Long: `Render the body of a POST request. Pairs from a YAML file are form-encoded
(application/x-www-form-urlencoded); --data is sent as UTF-8 text unchanged.`,
		Example: `  weblib post -f form.yaml
  weblib post --data 'raw body'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				input       any = data
				contentType string
			)
			if cmd.Flags().Changed("file") {
				pairs, err := loadPairs(cmd, file)
				if err != nil {
					return err
				}
				input = pairs
				contentType = formutil.ContentType
			}

			body, err := formutil.NormalizePostData(input)
			if err != nil {
				return err
			}
			return cliout.Print(postBody{ContentType: contentType, Body: string(body)}, func() {
				cliout.Plain("%s", body)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML pairs file to form-encode (- for stdin)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "Raw body text")
	cmd.MarkFlagsOneRequired("file", "data")
	cmd.MarkFlagsMutuallyExclusive("file", "data")
	return cmd
}
