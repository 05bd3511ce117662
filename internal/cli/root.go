// Package cli holds the maintenance commands for the photo store.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"keepsake/internal/domains/photo/service"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	defaultTimeout = 2 * time.Minute
)

var ValidFormats = []string{FormatText, FormatJSON}

// ServiceFactory builds the photo service on first use so that help and flag
// errors never touch the store.
type ServiceFactory func() (service.Photo, error)

type RootOptions struct {
	Format  string
	Timeout time.Duration

	factory ServiceFactory
	service service.Photo
}

func (o *RootOptions) photos() (service.Photo, error) {
	if o.service != nil {
		return o.service, nil
	}

	svc, err := o.factory()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo service: %w", err)
	}

	o.service = svc

	return svc, nil
}

func (o *RootOptions) write(w io.Writer, payload any, text func(io.Writer) error) error {
	if o.Format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(payload)
	}

	return text(w)
}

func NewRootCommand(factory ServiceFactory) *cobra.Command {
	opts := &RootOptions{factory: factory}

	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Maintain the keepsake photo store",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", defaultTimeout, "time limit for the whole command")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewPopulateCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))

	return cmd
}
