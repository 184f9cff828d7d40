package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
)

// PDFTarget writes one multi-page PDF per artifact.
type PDFTarget struct {
	images *ioutils.ImageService
}

// NewPDFTarget creates a PDF target.
func NewPDFTarget() *PDFTarget {
	return &PDFTarget{images: ioutils.NewImageService()}
}

// NewCanvas implements Target.
func (t *PDFTarget) NewCanvas() Canvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: layout.A4.Width, Ht: layout.A4.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	return &pdfCanvas{
		pdf:        pdf,
		images:     t.images,
		latin:      pdf.UnicodeTranslatorFromDescriptor(""),
		registered: make(map[string]string),
	}
}

// Extension implements Target.
func (t *PDFTarget) Extension() string { return ".pdf" }

type pdfCanvas struct {
	pdf    *fpdf.Fpdf
	images *ioutils.ImageService
	height float64

	// latin re-encodes UTF-8 text to cp1252, the encoding of the core fonts.
	latin func(string) string

	// registered maps a file path to the fpdf image name it was loaded as,
	// so an image used in several slots is embedded once.
	registered map[string]string
}

func (c *pdfCanvas) BeginPage(size layout.Size) {
	c.height = size.Height
	c.pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
}

// y flips a bottom-left based coordinate to fpdf's top-left origin.
func (c *pdfCanvas) y(v float64) float64 {
	return c.height - v
}

func (c *pdfCanvas) DrawLine(l layout.Line, s Stroke) {
	c.pdf.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	c.pdf.SetLineWidth(s.Width)
	c.pdf.Line(l.X1, c.y(l.Y1), l.X2, c.y(l.Y2))
}

func (c *pdfCanvas) DrawImage(path string, r layout.Rect) error {
	name, imageType, err := c.register(path)
	if err != nil {
		return err
	}
	c.pdf.ImageOptions(name, r.X, c.y(r.Y+r.Height), r.Width, r.Height, false,
		fpdf.ImageOptions{ImageType: imageType}, 0, "")
	return nil
}

// register embeds the image at path once. Formats fpdf cannot read, and
// PNG variants it rejects, are converted to JPEG first. fpdf errors are
// sticky, so a failed attempt is cleared before falling back.
func (c *pdfCanvas) register(path string) (string, string, error) {
	if name, ok := c.registered[path]; ok {
		return name, imageTypeOf(name), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	format, err := c.images.DetectFormat(data)
	if err != nil {
		return "", "", err
	}

	if format == "jpeg" || format == "png" {
		name := path + "#" + format
		c.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imageTypeOf(name)}, bytes.NewReader(data))
		if c.pdf.Ok() {
			c.registered[path] = name
			return name, imageTypeOf(name), nil
		}
		c.pdf.ClearError()
	}

	converted, err := c.images.ConvertToJPEG(context.Background(), data)
	if err != nil {
		return "", "", fmt.Errorf("convert %s: %w", path, err)
	}
	name := path + "#jpeg"
	c.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(converted))
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return "", "", fmt.Errorf("embed %s: %w", path, err)
	}
	c.registered[path] = name
	return name, "JPG", nil
}

func imageTypeOf(name string) string {
	if strings.HasSuffix(name, "#png") {
		return "PNG"
	}
	return "JPG"
}

func (c *pdfCanvas) DrawLabel(x, y float64, text string) {
	c.pdf.SetFont("Helvetica", "", 12)
	c.pdf.SetTextColor(0, 0, 0)
	text = c.latin(text)
	w := c.pdf.GetStringWidth(text)
	c.pdf.Text(x-w/2, c.y(y), text)
}

func (c *pdfCanvas) EndPage() {}

func (c *pdfCanvas) Save(path string) error {
	return c.pdf.OutputFileAndClose(path)
}
