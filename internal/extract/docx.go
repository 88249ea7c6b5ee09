package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxDocumentPart = "word/document.xml"

// DOCXAdapter concatenates non-empty paragraph texts in document order.
// It reads word/document.xml out of the OOXML container directly; WordprocessingML
// paragraphs are w:p elements and their literal text lives in w:t runs.
type DOCXAdapter struct{}

func (a *DOCXAdapter) Extract(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	var part *zip.File
	for _, zf := range zr.File {
		if zf.Name == docxDocumentPart {
			part = zf
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("docx container missing %s", docxDocumentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxDocumentPart, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	return decodeParagraphs(ctx, rc)
}

func decodeParagraphs(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out       strings.Builder
		paragraph strings.Builder
		inText    bool
	)
	flush := func() {
		p := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if p == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(p)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br":
				paragraph.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	flush()
	return out.String(), nil
}
