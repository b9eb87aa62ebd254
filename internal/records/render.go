package records

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// PageRenderer turns an uploaded PDF into one image per page. The provider
// analyzes page images, not the PDF itself, so submission always goes
// through a renderer.
type PageRenderer interface {
	RenderPages(pdfBytes []byte) ([][]byte, error)
}

// FitzRenderer renders PDF pages to PNG via MuPDF. Scanned forms need a high
// density for the provider to pick up small labels.
type FitzRenderer struct {
	DPI float64
}

// RenderPages renders every page of the PDF as a PNG. The upload is parsed
// as a PDF first so malformed files are rejected with a parse error rather
// than a rendering one.
func (r FitzRenderer) RenderPages(pdfBytes []byte) ([][]byte, error) {
	if _, err := pageCount(pdfBytes); err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	dpi := r.DPI
	if dpi <= 0 {
		dpi = 300
	}

	var pages [][]byte
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", n+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

// pageCount validates the upload parses as a PDF and returns its page count.
func pageCount(pdfBytes []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
