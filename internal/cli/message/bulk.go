package message

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keyboxhn/keybox/internal/bulk"
)

type bulkOptions struct {
	template    string
	csv         string
	phoneColumn string
	mappings    []string
	out         string
	title       string
	preview     bool
}

func NewBulkCommand() *cobra.Command {
	opts := &bulkOptions{}

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Generate one message per CSV row and export them",
		Long: `Run the bulk workflow offline: read the data file, map its columns to the
template variables, render every row and write the export file. The export
has the columns Teléfono, Mensaje, Link WhatsApp and Link Telegram.`,
		Example: `  keybox bulk --template aviso.txt --csv clientes.csv --phone-column telefono --map nombre=Nombre --out mensajes.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd, opts, time.Now())
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Template file (required)")
	cmd.Flags().StringVar(&opts.csv, "csv", "", "Comma-separated data file (required)")
	cmd.Flags().StringVar(&opts.phoneColumn, "phone-column", "", "Column holding the phone numbers (required)")
	cmd.Flags().StringArrayVar(&opts.mappings, "map", nil, "Variable to column as variable=column (repeatable)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Export path, - for stdout (default mensajes_<title>_<date>.csv)")
	cmd.Flags().StringVar(&opts.title, "title", "plantilla", "Title used to name the export")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "Print the preview rows instead of exporting")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("csv")
	cmd.MarkFlagRequired("phone-column")

	return cmd
}

func runBulk(cmd *cobra.Command, opts *bulkOptions, now time.Time) error {
	body, err := readBody(cmd.InOrStdin(), opts.template, "")
	if err != nil {
		return err
	}
	columns, err := parsePairs("map", opts.mappings)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(opts.csv)
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	session := bulk.NewSession(uuid.NewString(), "", opts.title, body)
	if err := session.Upload(filepath.Base(opts.csv), content); err != nil {
		return err
	}
	if err := session.SetMapping(opts.phoneColumn, columns); err != nil {
		return err
	}

	preview, err := session.Preview()
	if err != nil {
		return err
	}
	if opts.preview {
		for i, msg := range preview {
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n%s\n\n", i+1, msg.Phone, msg.Message)
		}
		return nil
	}

	messages, err := session.GenerateAll()
	if err != nil {
		return err
	}

	if opts.out == "-" {
		return session.Export(cmd.OutOrStdout())
	}

	path := opts.out
	if path == "" {
		path = bulk.ExportFilename(opts.title, now)
	}
	if err := writeExport(path, session); err != nil {
		return err
	}

	log.Debug().Str("session_id", session.ID).Int("rows", len(messages)).Msg("bulk export written")
	fmt.Fprintf(cmd.OutOrStdout(), "%d messages written to %s\n", len(messages), path)
	return nil
}

func writeExport(path string, session *bulk.Session) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return session.Export(f)
}
