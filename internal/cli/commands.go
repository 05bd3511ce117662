package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"keepsake/internal/domains/photo/model/dto"
	"keepsake/shared/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	ErrNotConfirmed = errors.New("refusing to clear photos without --yes")

	populateExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
)

func NewCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether any photos have been uploaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			svc, err := opts.photos()
			if err != nil {
				return err
			}

			status, err := svc.Status(ctx)
			if err != nil {
				return err
			}

			return opts.write(cmd.OutOrStdout(), status, func(w io.Writer) error {
				if !status.Available {
					_, err := fmt.Fprintf(w, "store unavailable: %s\n", status.Error)

					return err
				}

				_, err := fmt.Fprintf(w, "count: %d\nhas_photos: %t\nstored: %s\noccupied: %s\n",
					status.Count, status.HasPhotos, status.StoredSize, strings.Join(status.OccupiedSlots, ", "))

				return err
			})
		},
	}
}

type PopulateResult struct {
	Slot  string `json:"slot"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

type PopulateReport struct {
	Uploaded int              `json:"uploaded"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Results  []PopulateResult `json:"results"`
}

func NewPopulateCommand(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Upload <slot id>.<ext> files from a directory into their slots",
		Long: `Upload images named after slot ids, for example ammu_veil.jpg, from a
directory. Slots without a matching file are skipped. A failing slot is
reported and the remaining slots are still processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			svc, err := opts.photos()
			if err != nil {
				return err
			}

			gallery, err := svc.Gallery(ctx)
			if err != nil {
				return err
			}

			report := PopulateReport{Results: make([]PopulateResult, 0, len(gallery.Slots))}

			for _, s := range gallery.Slots {
				result := PopulateResult{Slot: s.ID}

				path, ok := findSlotFile(dir, s.ID)
				if !ok {
					report.Skipped++
					report.Results = append(report.Results, result)

					continue
				}

				result.File = path

				if err := uploadFile(ctx, opts, s.ID, path); err != nil {
					log.Error().Err(err).Str("slot", s.ID).Str("file", path).Msg("failed to populate slot")

					result.Error = err.Error()
					report.Failed++
				} else {
					log.Info().Str("slot", s.ID).Str("file", path).Msg("Slot populated")

					report.Uploaded++
				}

				report.Results = append(report.Results, result)
			}

			return opts.write(cmd.OutOrStdout(), report, func(w io.Writer) error {
				for _, r := range report.Results {
					var err error

					switch {
					case r.File == "":
						_, err = fmt.Fprintf(w, "- %s: no file\n", r.Slot)
					case r.Error != "":
						_, err = fmt.Fprintf(w, "x %s: %s\n", r.Slot, r.Error)
					default:
						_, err = fmt.Fprintf(w, "+ %s: %s\n", r.Slot, r.File)
					}

					if err != nil {
						return err
					}
				}

				_, err := fmt.Fprintf(w, "uploaded %d, skipped %d, failed %d\n", report.Uploaded, report.Skipped, report.Failed)

				return err
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "public", "directory holding the images")

	return cmd
}

func findSlotFile(dir, id string) (string, bool) {
	for _, ext := range populateExtensions {
		path := filepath.Join(dir, id+ext)

		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}

	return "", false
}

func uploadFile(ctx context.Context, opts *RootOptions, id, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	contentType, err := base64.Sniff(file)
	if err != nil {
		return err
	}

	svc, err := opts.photos()
	if err != nil {
		return err
	}

	_, err = svc.Upload(ctx, dto.UploadPhotoRequest{
		SlotID:      id,
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		File:        file,
	})

	return err
}

func NewClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return ErrNotConfirmed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			svc, err := opts.photos()
			if err != nil {
				return err
			}

			if err := svc.Clear(ctx); err != nil {
				return err
			}

			return opts.write(cmd.OutOrStdout(), map[string]bool{"cleared": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "all photos cleared")

				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm removal of every photo")

	return cmd
}
