package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"imgview/internal/errors"
	"imgview/internal/imaging"
	"imgview/internal/scan"

	"github.com/dustin/go-humanize/english"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/cobra"
)

// scanReport is the --json output of the scan command
type scanReport struct {
	Directory string      `json:"directory"`
	Count     int         `json:"count"`
	Images    []scanImage `json:"images"`
}

type scanImage struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Error  string `json:"error,omitempty"`
}

// newScanCmd creates the scan command
func newScanCmd(s *session) *cobra.Command {
	var jsonOutput bool
	var details bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "List the images the viewer would show",
		Long: `List the images of a directory in the order the viewer steps through
them. A file path lists its directory. Ctrl+C cancels a long scan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runScan(ctx, s, firstArg(args), details)
			if err != nil {
				if errors.IsCancelled(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Scan cancelled")
				}
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report, details)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	cmd.Flags().BoolVarP(&details, "details", "d", false, "Decode each image and show its size and format")

	return cmd
}

func runScan(ctx context.Context, s *session, path string, details bool) (*scanReport, error) {
	dir, err := scan.ResolveDirectory(s.fs, path)
	if err != nil {
		return nil, err
	}
	images, err := scan.Scan(ctx, s.fs, dir, scan.MustFilter())
	if err != nil {
		return nil, err
	}

	report := &scanReport{Directory: dir, Count: images.Len()}
	if !details {
		report.Images = make([]scanImage, images.Len())
		for i, p := range images {
			report.Images[i] = scanImage{Path: p}
		}
		return report, nil
	}

	decoder := imaging.NewDecoder(s.fs)
	report.Images = iter.Map([]string(images), func(p *string) scanImage {
		if ctx.Err() != nil {
			return scanImage{Path: *p}
		}
		_, info, err := decoder.Decode(*p)
		if err != nil {
			return scanImage{Path: *p, Error: err.Error()}
		}
		return scanImage{
			Path:   *p,
			Format: info.Format,
			Width:  info.Width,
			Height: info.Height,
			Size:   info.Size,
		}
	})
	if ctx.Err() != nil {
		return nil, errors.Wrap(errors.ErrCancelled, dir)
	}
	return report, nil
}

func printReport(w io.Writer, report *scanReport, details bool) {
	if details {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, img := range report.Images {
			if img.Error != "" {
				fmt.Fprintf(tw, "%s\t-\t%s\n", img.Path, img.Error)
				continue
			}
			info := imaging.Info{Path: img.Path, Format: img.Format, Width: img.Width, Height: img.Height, Size: img.Size}
			fmt.Fprintf(tw, "%s\t%s\t\n", img.Path, info)
		}
		_ = tw.Flush()
	} else {
		for _, img := range report.Images {
			fmt.Fprintln(w, img.Path)
		}
	}
	fmt.Fprintf(w, "Found: %s in %s\n", english.Plural(report.Count, "image", ""), report.Directory)
}
