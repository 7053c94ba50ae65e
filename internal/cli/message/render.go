package message

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyboxhn/keybox/internal/links"
	"github.com/keyboxhn/keybox/internal/render"
)

type renderOptions struct {
	file   string
	body   string
	vars   []string
	lists  []string
	phone  string
	region string
}

func NewRenderCommand() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template and print its deep links",
		Long: `Substitute --var and --list values into a template body and print the
message followed by its WhatsApp and Telegram links. Placeholders without a
value are left in the message and reported on stderr.`,
		Example: `  keybox render --file aviso.txt --var nombre=Ana --list trackings=TRK1,TRK2 --phone "9999-9999"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Template file, - for stdin")
	cmd.Flags().StringVar(&opts.body, "body", "", "Inline template body")
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "Scalar value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.lists, "list", nil, "List value as name=a,b,c (repeatable)")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "Recipient phone number")
	cmd.Flags().StringVar(&opts.region, "region", "HN", "Region used to add the country calling code")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	body, err := readBody(cmd.InOrStdin(), opts.file, opts.body)
	if err != nil {
		return err
	}

	scalars, err := parsePairs("var", opts.vars)
	if err != nil {
		return err
	}
	lists, err := parsePairs("list", opts.lists)
	if err != nil {
		return err
	}

	bindings := make(render.Bindings, len(scalars)+len(lists))
	for name, value := range scalars {
		bindings[name] = render.Scalar(value)
	}
	for name, value := range lists {
		bindings[name] = render.List(splitList(value)...)
	}

	message := render.Render(body, bindings)
	if missing := render.Unresolved(body, bindings); len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "missing values: %s\n", strings.Join(missing, ", "))
	}

	phone := ""
	if opts.phone != "" {
		phone = links.WithCountryCode(opts.phone, opts.region)
	}
	set := links.For(phone, message)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, message)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "WhatsApp: %s\n", set.WhatsApp)
	fmt.Fprintf(out, "Telegram: %s\n", set.Telegram)
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
