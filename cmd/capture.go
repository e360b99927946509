package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/mj1618/rotator/internal/platform"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a screen region",
	Long: `Capture a status region or an arbitrary rectangle, for building and
checking status templates.

Examples:
  rotator capture --status Enter --output assets/template/enter.png
  rotator capture --bbox 0,0,1440,810 --annotate --output layout.png`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().String("status", "", "Capture the region of this status")
	captureCmd.Flags().String("bbox", "", "Capture this rectangle: x,y,w,h")
	captureCmd.Flags().Bool("annotate", false, "Outline and label the status regions inside the capture")
	captureCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	captureCmd.Flags().String("format", "png", "Output format: png, jpg")
	captureCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
}

func runCapture(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	bbox, _ := cmd.Flags().GetString("bbox")
	annotate, _ := cmd.Flags().GetBool("annotate")
	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")

	region, err := captureRegion(status, bbox)
	if err != nil {
		return err
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil {
		return fmt.Errorf("screen capture not supported on this platform")
	}
	img, err := provider.Screenshotter.CaptureRegion(region)
	if err != nil {
		return err
	}

	if annotate {
		img = AnnotateRegions(img, region, statusRegions())
	}

	data, err := encodeImage(img, format, quality)
	if err != nil {
		return err
	}

	// Output to file or stdout
	if outPath != "" {
		return os.WriteFile(outPath, data, 0644)
	}

	// Default: write to stdout as base64
	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println() // newline after base64
	return nil
}

// captureRegion resolves --status or --bbox to screen bounds.
func captureRegion(status, bbox string) (platform.Bounds, error) {
	switch {
	case status != "" && bbox != "":
		return platform.Bounds{}, fmt.Errorf("specify either --status or --bbox, not both")
	case bbox != "":
		b, err := platform.ParseBBox(bbox)
		if err != nil {
			return platform.Bounds{}, err
		}
		if b.Empty() {
			return platform.Bounds{}, fmt.Errorf("bbox %s has no area", bbox)
		}
		return *b, nil
	case status != "":
		for _, s := range appConfig.Statuses {
			if s.Name == status {
				return s.Bounds(), nil
			}
		}
		return platform.Bounds{}, fmt.Errorf("unknown status %q", status)
	default:
		return platform.Bounds{}, fmt.Errorf("specify --status or --bbox")
	}
}

// statusRegions returns the configured status regions for annotation.
func statusRegions() []LabeledRegion {
	out := make([]LabeledRegion, 0, len(appConfig.Statuses))
	for _, s := range appConfig.Statuses {
		out = append(out, LabeledRegion{Label: s.Name, Bounds: s.Bounds()})
	}
	return out
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("png encode: %w", err)
		}
	case "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("jpeg encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format: %s (use png or jpg)", format)
	}
	return buf.Bytes(), nil
}
