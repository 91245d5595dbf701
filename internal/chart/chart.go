// Package chart renders the complaint summary as a PNG bar chart.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/fogleman/gg"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// Canvas layout constants — rendered at 2x scale for clarity
const (
	canvasWidth  = 1200
	canvasHeight = 800
	marginX      = 100.0
	titlePadding = 110.0
	axisPadding  = 120.0
	barGap       = 60.0
	labelFontSz  = 28
	titleFontSz  = 40
	footerFontSz = 24
)

var (
	bgColor        = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	titleColor     = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	axisColor      = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
	pendingColor   = color.RGBA{R: 234, G: 179, B: 8, A: 255}   // Amber
	processedColor = color.RGBA{R: 34, G: 197, B: 94, A: 255}   // Green
	failedColor    = color.RGBA{R: 239, G: 68, B: 68, A: 255}   // Red
)

// findFont locates a font file across Linux and Windows paths.
func findFont(bold bool) string {
	var candidates []string
	if runtime.GOOS == "windows" {
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{
				winRoot + `\Fonts\arialbd.ttf`,
				winRoot + `\Fonts\Arial Bold.ttf`,
			}
		} else {
			candidates = []string{
				winRoot + `\Fonts\arial.ttf`,
				winRoot + `\Fonts\Arial.ttf`,
			}
		}
	} else {
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			}
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return candidates[0]
}

type bar struct {
	label string
	count int
	fill  color.RGBA
}

// RenderSummary renders the status breakdown as a PNG bar chart.
func RenderSummary(summary *models.Summary, now time.Time) ([]byte, error) {
	bars := []bar{
		{"Pending", summary.Pending, pendingColor},
		{"Processed", summary.Processed, processedColor},
		{"Failed", summary.Failed, failedColor},
	}

	maxCount := 1
	for _, b := range bars {
		if b.count > maxCount {
			maxCount = b.count
		}
	}

	boldFont := findFont(true)
	regularFont := findFont(false)

	dc := gg.NewContext(canvasWidth, canvasHeight)

	dc.SetColor(bgColor)
	dc.Clear()

	// Title
	if err := dc.LoadFontFace(boldFont, titleFontSz); err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	dc.SetColor(titleColor)
	title := fmt.Sprintf("Complaint Status Summary  —  %s", now.Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(title, canvasWidth/2, titlePadding/2+2, 0.5, 0.5)

	// Plot area
	plotTop := titlePadding + 40
	plotBottom := float64(canvasHeight) - axisPadding
	plotHeight := plotBottom - plotTop

	plotWidth := float64(canvasWidth) - marginX*2
	barWidth := (plotWidth - barGap*float64(len(bars)-1)) / float64(len(bars))

	if err := dc.LoadFontFace(regularFont, labelFontSz); err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}

	x := marginX
	for _, b := range bars {
		h := plotHeight * float64(b.count) / float64(maxCount)
		y := plotBottom - h

		dc.SetColor(b.fill)
		dc.DrawRoundedRectangle(x, y, barWidth, h, 8)
		dc.Fill()

		dc.SetColor(titleColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", b.count), x+barWidth/2, y-24, 0.5, 0.5)
		dc.DrawStringAnchored(b.label, x+barWidth/2, plotBottom+32, 0.5, 0.5)

		x += barWidth + barGap
	}

	// Baseline
	dc.SetColor(axisColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(marginX, plotBottom, float64(canvasWidth)-marginX, plotBottom)
	dc.Stroke()

	// Footer
	dc.LoadFontFace(regularFont, footerFontSz)
	dc.SetColor(axisColor)
	footer := fmt.Sprintf("Total: %d   Success rate: %.1f%%", summary.Total, summary.SuccessRate)
	if summary.TopCategory != nil {
		footer += fmt.Sprintf("   Top category: %s", *summary.TopCategory)
	}
	dc.DrawStringAnchored(footer, canvasWidth/2, float64(canvasHeight)-40, 0.5, 0.5)

	return encodeImage(dc.Image())
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
