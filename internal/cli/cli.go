// Package cli implements the visualysium command line interface.
package cli

import (
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/uhwo/visuAlysium/internal/edits"
	"github.com/uhwo/visuAlysium/internal/logging"
	"github.com/uhwo/visuAlysium/internal/scan"
	"github.com/uhwo/visuAlysium/internal/service"
	"github.com/uhwo/visuAlysium/internal/store"
	"github.com/uhwo/visuAlysium/internal/thumbs"
	"github.com/uhwo/visuAlysium/internal/watch"
)

var (
	dbPathFlag   string
	logLevelFlag string
	svc          *service.Service
	db           *store.DB

	concurrencyFlag int
	sizeFlag        string
	opsFlag         []string
	outFlag         string
)

// cliLogger routes service messages through the process logger.
func cliLogger(msg string) {
	log.Debug().Msg(msg)
}

// consoleViewer satisfies service.Viewer for terminal sessions, where
// showing an image means logging what would be displayed.
type consoleViewer struct{}

func (consoleViewer) ShowImage(img image.Image) {
	b := img.Bounds()
	log.Debug().Int("width", b.Dx()).Int("height", b.Dy()).Msg("viewer updated")
}

// ServiceFactory builds the service and settings store a command run uses.
// Tests inject their own to point at temporary databases.
type ServiceFactory func(dbPath string, logger store.LoggerFunc) (*service.Service, *store.DB, error)

// NewRootCmd creates the root command for the CLI application.
// It takes a ServiceFactory responsible for initializing and returning the
// service and store instances, so tests can inject test-specific ones.
func NewRootCmd(getService ServiceFactory) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "visualysium",
		Short: "VisuAlysium - browse, inspect and edit images",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init()
			if logLevelFlag != "" {
				logging.SetLevel(logLevelFlag)
			}
			var err error
			svc, db, err = getService(dbPathFlag, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize service: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	// Scan command
	scanCmd := &cobra.Command{
		Use:   "scan [folder]",
		Short: "List the images directly inside a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			items, err := scan.ListImages(folder)
			if err != nil {
				return err
			}
			for _, item := range items {
				cmd.Println(item.Path)
			}
			cmd.Printf("%d images\n", len(items))
			return nil
		},
	}
	rootCmd.AddCommand(scanCmd)

	// Thumbs command
	thumbsCmd := &cobra.Command{
		Use:   "thumbs [folder]",
		Short: "Build thumbnails for a folder and print the gallery list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			// Stored settings are the baseline, flags override them.
			width := db.SettingInt("thumb.width", thumbs.DefaultThumbWidth)
			height := db.SettingInt("thumb.height", thumbs.DefaultThumbHeight)
			concurrency := db.SettingInt("concurrency", thumbs.DefaultConcurrency)
			if sizeFlag != "" {
				if width, height, err = parseSize(sizeFlag); err != nil {
					return err
				}
			}
			if concurrencyFlag > 0 {
				concurrency = concurrencyFlag
			}
			svc.Collector.SetThumbSize(width, height)
			svc.Collector.SetConcurrency(concurrency)

			n, err := svc.ScanFolder(folder)
			if err != nil {
				return err
			}
			svc.Collector.Collect(n)
			printSnapshot(cmd, svc.Collector.Snapshot())
			return nil
		},
	}
	thumbsCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Concurrent thumbnail decodes (default 8)")
	thumbsCmd.Flags().StringVar(&sizeFlag, "size", "", "Thumbnail bounding box as WxH (default 100x100)")
	rootCmd.AddCommand(thumbsCmd)

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch [folder]",
		Short: "Rescan a folder whenever its content changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			rescan := func() error {
				n, err := svc.ScanFolder(folder)
				if err != nil {
					return err
				}
				svc.Collector.Collect(n)
				snapshot := svc.Collector.Snapshot()
				cmd.Printf("%s: %d images\n", folder, len(snapshot))
				printSnapshot(cmd, snapshot)
				return nil
			}
			if err := rescan(); err != nil {
				return err
			}

			w, err := watch.NewWatcher(folder, 0)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-w.Notify():
					if err := rescan(); err != nil {
						return err
					}
				}
			}
		},
	}
	rootCmd.AddCommand(watchCmd)

	// Edit command
	editCmd := &cobra.Command{
		Use:   "edit [image]",
		Short: "Apply edits to an image and save the result",
		Long: `Apply one or more edit operations in order and print the resulting history.

Operations:
  crop:X0,Y0,X1,Y1         Crop to the given rectangle
  rotate:DEGREES           Rotate counter-clockwise
  lighting:BRIGHT,CONTRAST Adjust brightness and contrast in percent
  colors:SATURATION,HUE    Adjust saturation (-1 to 1) and hue angle
  levels:BLACK,WHITE,GAMMA Remap the channel range and apply gamma
  sharpen:AMOUNT           Unsharp mask strength
  denoise:SIZE             Median filter neighborhood`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := svc.OpenImage(path); err != nil {
				return err
			}

			for _, op := range opsFlag {
				img, description, err := applyEdit(currentImage(svc), op)
				if err != nil {
					return err
				}
				svc.OnEditConfirmed(img, description)
			}

			for _, entry := range svc.Log.Entries() {
				cmd.Printf("%d: %s\n", entry.Index, entry.Description)
			}

			if outFlag != "" {
				if err := imaging.Save(currentImage(svc), outFlag); err != nil {
					return fmt.Errorf("failed to save %s: %w", outFlag, err)
				}
				cmd.Printf("Saved %s\n", outFlag)
			}
			return nil
		},
	}
	editCmd.Flags().StringArrayVar(&opsFlag, "op", nil, "Edit operation as NAME:ARGS, repeatable")
	editCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the final image to this file")
	rootCmd.AddCommand(editCmd)

	// Info command
	infoCmd := &cobra.Command{
		Use:   "info [image]",
		Short: "Show dimensions, file details and EXIF data for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			info, _, err := svc.Images.GetImageInfo(path)
			if err != nil {
				return err
			}
			cmd.Printf("Path:    %s\n", info.Path)
			cmd.Printf("Format:  %s\n", info.Format)
			cmd.Printf("Size:    %dx%d\n", info.Width, info.Height)
			cmd.Printf("Bytes:   %d\n", info.Size)
			cmd.Printf("ModTime: %s\n", info.ModTime.Format(time.RFC3339))

			keys := make([]string, 0, len(info.EXIFData))
			for k := range info.EXIFData {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				cmd.Printf("EXIF %s: %s\n", k, info.EXIFData[k])
			}
			return nil
		},
	}
	rootCmd.AddCommand(infoCmd)

	// Histogram command
	histogramCmd := &cobra.Command{
		Use:   "histogram [image]",
		Short: "Print per-channel intensity statistics for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			_, img, err := svc.Images.GetImageInfo(path)
			if err != nil {
				return err
			}

			h := edits.HistogramOf(img)
			for _, channel := range []struct {
				name string
				bins []int
			}{{"R", h.R}, {"G", h.G}, {"B", h.B}} {
				peak, mean := histogramStats(channel.bins)
				cmd.Printf("%s: peak at %d, mean %.1f\n", channel.name, peak, mean)
			}
			return nil
		},
	}
	rootCmd.AddCommand(histogramCmd)

	// Recents command
	recentsCmd := &cobra.Command{
		Use:   "recents",
		Short: "List recently scanned folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := db.Recents()
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				cmd.Println("No recent folders.")
				return nil
			}
			for _, f := range folders {
				cmd.Println(f)
			}
			return nil
		},
	}
	rootCmd.AddCommand(recentsCmd)

	// Config commands
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change stored settings",
	}
	configGetCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print a stored setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := db.Setting(args[0])
			if err != nil {
				return err
			}
			if value == "" {
				cmd.Printf("%s is not set\n", args[0])
				return nil
			}
			cmd.Printf("%s = %s\n", args[0], value)
			return nil
		},
	}
	configSetCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.SetSetting(args[0], args[1])
		},
	}
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)

	// Define persistent flags on the rootCmd returned by NewRootCmd
	// so they are available when called from main or tests.
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Directory holding the settings database")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")

	return rootCmd
}

// currentImage returns the image the session currently shows, which is
// always the tail of the edit history.
func currentImage(s *service.Service) image.Image {
	entry, err := s.Log.Get(s.Log.Len() - 1)
	if err != nil {
		return nil
	}
	return entry.Image
}

func printSnapshot(cmd *cobra.Command, entries []thumbs.ListEntry) {
	for _, entry := range entries {
		if entry.Raster == nil {
			cmd.Printf("%s  [decode failed]  %s\n", entry.Name, entry.Path)
			continue
		}
		b := entry.Raster.Bounds()
		cmd.Printf("%s  %dx%d  %s\n", entry.Name, b.Dx(), b.Dy(), entry.Path)
	}
}

// applyEdit parses one NAME:ARGS operation and applies it to img.
func applyEdit(img image.Image, op string) (image.Image, string, error) {
	name, rawArgs, _ := strings.Cut(op, ":")
	args := strings.Split(rawArgs, ",")

	switch name {
	case "crop":
		vals, err := intArgs(args, 4)
		if err != nil {
			return nil, "", fmt.Errorf("crop: %w", err)
		}
		return edits.Crop(img, image.Rect(vals[0], vals[1], vals[2], vals[3])), edits.DescriptionCrop, nil
	case "rotate":
		vals, err := floatArgs(args, 1)
		if err != nil {
			return nil, "", fmt.Errorf("rotate: %w", err)
		}
		return edits.Rotate(img, vals[0]), edits.DescriptionCrop, nil
	case "lighting":
		vals, err := floatArgs(args, 2)
		if err != nil {
			return nil, "", fmt.Errorf("lighting: %w", err)
		}
		return edits.AdjustLighting(img, vals[0], vals[1]), edits.DescriptionLighting, nil
	case "colors":
		vals, err := floatArgs(args, 2)
		if err != nil {
			return nil, "", fmt.Errorf("colors: %w", err)
		}
		return edits.AdjustColors(img, vals[0], int(vals[1])), edits.DescriptionColors, nil
	case "levels":
		vals, err := floatArgs(args, 3)
		if err != nil {
			return nil, "", fmt.Errorf("levels: %w", err)
		}
		return edits.AdjustLevels(img, uint8(vals[0]), uint8(vals[1]), vals[2]), edits.DescriptionLevels, nil
	case "sharpen":
		vals, err := floatArgs(args, 1)
		if err != nil {
			return nil, "", fmt.Errorf("sharpen: %w", err)
		}
		return edits.Sharpen(img, vals[0]), edits.DescriptionSharpen, nil
	case "denoise":
		vals, err := floatArgs(args, 1)
		if err != nil {
			return nil, "", fmt.Errorf("denoise: %w", err)
		}
		return edits.Denoise(img, vals[0]), edits.DescriptionDenoise, nil
	default:
		return nil, "", fmt.Errorf("unknown edit operation %q", name)
	}
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func floatArgs(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func histogramStats(bins []int) (peak int, mean float64) {
	total := 0
	weighted := 0
	for level, count := range bins {
		if count > bins[peak] {
			peak = level
		}
		total += count
		weighted += level * count
	}
	if total > 0 {
		mean = float64(weighted) / float64(total)
	}
	return peak, mean
}

// parseSize parses a WxH string such as "120x90".
func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return width, height, nil
}

// Execute runs the CLI with the production wiring.
func Execute() {
	rootCmd := NewRootCmd(func(dbPath string, logger store.LoggerFunc) (*service.Service, *store.DB, error) {
		settings, err := store.Open(dbPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
		}
		return service.NewService(consoleViewer{}, settings, logger), settings, nil
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
