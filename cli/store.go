package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/storage"
	"github.com/nijaru/yt-transcript/validation"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local transcript cache",
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *db.Store) error {
				n, err := store.Purge(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired transcripts\n", n)
				return nil
			})
		},
	}

	drop := &cobra.Command{
		Use:   "delete <video id or url>",
		Short: "Remove every cached transcript of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := validation.ResolveVideoID(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, func(store *db.Store) error {
				n, err := store.DeleteVideo(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d transcripts of %s\n", n, videoID)
				return nil
			})
		},
	}

	cmd.AddCommand(purge, drop)
	return cmd
}

func withStore(cmd *cobra.Command, fn func(*db.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := db.Open(cfg.DBPath, cfg.CacheTTL)
	if err != nil {
		return errors.Wrap(err, "open transcript cache")
	}
	defer store.Close()
	return fn(store)
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Read transcripts from the S3-compatible archive",
	}

	show := &cobra.Command{
		Use:   "show <video id or url>",
		Short: "Print an archived transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.Spaces.Enabled {
				return errors.New("archive is disabled (set SPACES_ENABLED=true)")
			}
			videoID, err := validation.ResolveVideoID(args[0])
			if err != nil {
				return err
			}
			formatter, err := outputFormatter(cmd)
			if err != nil {
				return err
			}

			archive, err := storage.NewSpacesClient(cmd.Context(), cfg.Spaces)
			if err != nil {
				return errors.Wrap(err, "create transcript archive")
			}
			lang, _ := cmd.Flags().GetString("lang")
			result, err := archive.Load(cmd.Context(), videoID, lang)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("No archived %s transcript for %s", lang, videoID))
				return err
			}
			return writeResult(cmd, formatter, result)
		},
	}
	show.Flags().String("lang", "en", "Language code of the archived transcript")
	show.Flags().StringP("format", "f", "text", "Output format")
	show.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	cmd.AddCommand(show)
	return cmd
}
