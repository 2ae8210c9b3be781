package cmd

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rubrix/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the working question set",
	Long: "Export writes the working set as plain text (txt), Markdown with an answer key (md),\n" +
		"an IMS Common Cartridge QTI zip for LMS import (qti), or a Word document (docx)\n" +
		"produced by the configured conversion service.",
	Args: cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		format, _ := cmd.Flags().GetString("format")
		title, _ := cmd.Flags().GetString("title")
		out, _ := cmd.Flags().GetString("out")

		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		qs := ws.List()
		if len(qs) == 0 {
			return errors.New("nothing to export: the working set is empty")
		}

		var opts export.MarkdownOptions
		if shuffle, _ := cmd.Flags().GetBool("shuffle"); shuffle {
			seed, _ := cmd.Flags().GetUint64("seed")
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			opts.Shuffle = rand.New(rand.NewPCG(seed, seed))
		}

		var data []byte
		switch strings.ToLower(format) {
		case "txt", "text":
			data = []byte(export.Text(title, qs))
		case "md", "markdown":
			data = []byte(export.Markdown(title, qs, opts))
		case "qti":
			if data, err = export.QTIZip(title, qs); err != nil {
				return fmt.Errorf("build qti package: %w", err)
			}
			if out == "" {
				out = export.Filename(title) + ".zip"
			}
		case "docx":
			if data, err = export.DOCX(cmd.Context(), e.cfg.Export.DOCXURL, title, qs, opts); err != nil {
				return err
			}
			if out == "" {
				out = export.Filename(title) + ".docx"
			}
		default:
			return fmt.Errorf("unknown export format %q (want txt, md, qti or docx)", format)
		}

		if out == "" || out == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d question(s) to %s\n", len(qs), out)
		return nil
	}),
}

func init() {
	exportCmd.Flags().StringP("format", "f", "md", "Export format: txt, md, qti or docx")
	exportCmd.Flags().String("title", "Quiz", "Quiz title")
	exportCmd.Flags().StringP("out", "o", "", "Output file (txt and md default to stdout)")
	exportCmd.Flags().Bool("shuffle", false, "Shuffle answer order (md and docx)")
	exportCmd.Flags().Uint64("seed", 0, "Shuffle seed for reproducible output")
}
