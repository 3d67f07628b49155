package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"semret/internal/domain"
)

func newIngestCmd(a *app) *cobra.Command {
	var title, file string
	cmd := &cobra.Command{
		Use:   "ingest --title TITLE [--file PATH]",
		Short: "Submit one document for ingestion",
		Long: `Submit one document for ingestion. Content is read from --file, or from
stdin when --file is empty or "-". A successful ingest means the backend
accepted the document; it may not be searchable yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, file)
			if err != nil {
				return err
			}
			doc, err := domain.NewDocument(title, content)
			if err != nil {
				return err
			}
			logger, closeLog, err := a.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			ack, err := a.client(logger).Ingest(cmd.Context(), doc)
			if err != nil {
				return fmt.Errorf("failed to ingest document, ensure the backend is running: %w", err)
			}
			msg := ack.Message
			if msg == "" {
				msg = "Document ingested."
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", `content file, "-" or empty for stdin`)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func readContent(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
