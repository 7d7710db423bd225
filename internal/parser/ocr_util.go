package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// reBoxNoise strips the stray box-drawing runs tesseract emits around table
// borders and scan artifacts.
var reBoxNoise = regexp.MustCompile(`[|\x{2500}-\x{257F}]{3,}`)

// ocrImage runs tesseract over a single rendered page or image file.
func ocrImage(ctx context.Context, r Runner, tesseract, lang string, applyRotation bool, img string) (string, []byte, error) {
	args := []string{img, "stdout", "-l", lang}
	if applyRotation {
		// automatic page segmentation with orientation+script detection
		args = append(args, "--psm", "1")
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.Run(ctx, tesseract, args...)
	if err != nil {
		return "", errb, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, errb, nil
}

// preprocessImage normalizes a page image before OCR (grayscale + contrast
// normalization via ImageMagick). Returns the path to the processed image.
func preprocessImage(ctx context.Context, r Runner, magick, img string) (string, error) {
	out := filepath.Join(filepath.Dir(img), "prep-"+filepath.Base(img))
	if _, errb, err := r.Run(ctx, magick, img, "-colorspace", "Gray", "-normalize", out); err != nil {
		return "", fmt.Errorf("magick preprocess: %w (%s)", err, truncate(string(errb), 512))
	}
	return out, nil
}

var reWordish = regexp.MustCompile(`[a-zA-Z]{3,}`)

// ocrConfidence is a naive quality heuristic for OCR output, used only for
// logging. Score grows with word-like runs and the share of printable
// characters; garbage-heavy output stays low.
func ocrConfidence(txt string) float32 {
	if txt == "" {
		return 0
	}
	score := float32(0.2) // base
	words := len(reWordish.FindAllString(txt, 50))
	score += 0.01 * float32(words)
	if len(txt) > 120 {
		score += 0.1
	}
	printable := 0
	for _, r := range txt {
		if r >= ' ' || r == '\n' || r == '\t' || r == '\f' {
			printable++
		}
	}
	if ratio := float32(printable) / float32(len([]rune(txt))); ratio > 0.98 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// joinPages concatenates per-page OCR output with a clear page break marker.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(p)
	}
	return b.String()
}
