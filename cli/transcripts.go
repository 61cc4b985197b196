package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-transcript/formatters"
	"github.com/nijaru/yt-transcript/models"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <video id or url>",
		Short: "List the transcripts available for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, client, err := setup(cmd, false)
			if err != nil {
				return err
			}
			catalog, err := client.ListTranscripts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <video id or url>",
		Short: "Fetch a transcript in the first available preferred language",
		Long: `Fetch a transcript in the first available preferred language.

Examples:
  yt-transcript fetch dQw4w9WgXcQ
  yt-transcript fetch https://youtu.be/dQw4w9WgXcQ --lang de,en --format srt -o talk.srt
  yt-transcript fetch dQw4w9WgXcQ --exclude-generated`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}
	addOutputFlags(cmd)
	cmd.Flags().Bool("preserve-formatting", false, "Keep basic HTML formatting tags in transcript text")
	cmd.Flags().Bool("exclude-generated", false, "Only consider manually created transcripts")
	cmd.Flags().Bool("exclude-manually-created", false, "Only consider automatically generated transcripts")
	return cmd
}

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <video id or url>",
		Short: "Fetch a transcript translated into another language",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranslate,
	}
	addOutputFlags(cmd)
	cmd.Flags().String("to", "", "Target language code")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("lang", nil, "Preferred language codes, in priority order (default from DEFAULT_LANGUAGES)")
	cmd.Flags().StringP("format", "f", "text", "Output format: "+strings.Join(formatters.Names, ", "))
	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, client, err := setup(cmd, false)
	if err != nil {
		return err
	}
	formatter, err := outputFormatter(cmd)
	if err != nil {
		return err
	}

	excludeGenerated, _ := cmd.Flags().GetBool("exclude-generated")
	excludeManual, _ := cmd.Flags().GetBool("exclude-manually-created")
	if excludeGenerated && excludeManual {
		return errors.New("--exclude-generated and --exclude-manually-created leave nothing to fetch")
	}
	languages := preferredLanguages(cmd, cfg.DefaultLanguages)

	ctx := cmd.Context()
	catalog, err := client.ListTranscripts(ctx, args[0])
	if err != nil {
		return err
	}
	track, err := selectTrack(catalog, languages, excludeGenerated, excludeManual)
	if err != nil {
		return err
	}
	log.WithField("language", track.LanguageCode).Debug("Selected track")

	result, err := client.Fetch(ctx, catalog.VideoID, track, "")
	if err != nil {
		return err
	}
	return writeResult(cmd, formatter, result)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, _, client, err := setup(cmd, false)
	if err != nil {
		return err
	}
	formatter, err := outputFormatter(cmd)
	if err != nil {
		return err
	}
	target, _ := cmd.Flags().GetString("to")

	result, err := client.TranslateTranscript(cmd.Context(), args[0], preferredLanguages(cmd, cfg.DefaultLanguages), target)
	if err != nil {
		return err
	}
	return writeResult(cmd, formatter, result)
}

func selectTrack(catalog *models.Catalog, languages []string, excludeGenerated, excludeManual bool) (*models.Track, error) {
	switch {
	case excludeGenerated:
		return catalog.FindManuallyCreated(languages)
	case excludeManual:
		return catalog.FindGenerated(languages)
	default:
		return catalog.FindTranscript(languages)
	}
}

func preferredLanguages(cmd *cobra.Command, defaults []string) []string {
	if langs, _ := cmd.Flags().GetStringSlice("lang"); len(langs) > 0 {
		return langs
	}
	return defaults
}

func outputFormatter(cmd *cobra.Command) (formatters.Formatter, error) {
	name, _ := cmd.Flags().GetString("format")
	return formatters.ForName(name)
}

func writeResult(cmd *cobra.Command, formatter formatters.Formatter, result *models.TranscriptResult) error {
	body, err := formatter.Format(result)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%s) -> %s\n", color.GreenString("Saved"), result.VideoID, result.LanguageCode, path)
	return nil
}

func printCatalog(w io.Writer, catalog *models.Catalog) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Transcripts for %s\n\n", catalog.VideoID)

	green.Fprintln(w, "(MANUALLY CREATED)")
	printTracks(w, catalog.AllTranscripts(), false)

	yellow.Fprintln(w, "\n(GENERATED)")
	printTracks(w, catalog.AllTranscripts(), true)

	cyan.Fprintln(w, "\n(TRANSLATION LANGUAGES)")
	if len(catalog.TranslationLanguages) == 0 {
		fmt.Fprintln(w, "None")
	}
	for _, lang := range catalog.TranslationLanguages {
		fmt.Fprintf(w, " - %s (%s)\n", lang.LanguageCode, lang.Language)
	}
}

func printTracks(w io.Writer, tracks []*models.Track, generated bool) {
	n := 0
	for _, t := range tracks {
		if t.IsGenerated != generated {
			continue
		}
		n++
		line := fmt.Sprintf(" - %s (%s)", t.LanguageCode, t.Language)
		if t.IsTranslatable {
			line += " [TRANSLATABLE]"
		}
		fmt.Fprintln(w, line)
	}
	if n == 0 {
		fmt.Fprintln(w, "None")
	}
}
