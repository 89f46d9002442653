package pdfwriter

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

// gofpdi looks for startxref in the last xrefWindow bytes of a file and
// keeps reading tokens until it finds one.
const xrefWindow = 1500

// importTimeout bounds the trial import of CheckPDFPage.
const importTimeout = 5 * time.Second

var (
	reStartXrefPos = regexp.MustCompile(`startxref\s+(\d+)`)
	reObjHeader    = regexp.MustCompile(`^\d+\s+\d+\s+obj\b`)
)

// checkXref verifies that data ends with a startxref offset that points at a
// cross-reference table or stream, the one structure gofpdi cannot recover
// from when it is missing.
func checkXref(data []byte) error {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("missing PDF header")
	}
	tail := data
	if len(tail) > xrefWindow {
		tail = tail[len(tail)-xrefWindow:]
	}
	m := reStartXrefPos.FindSubmatch(tail)
	if m == nil {
		return fmt.Errorf("no startxref in the last %d bytes", xrefWindow)
	}
	off, err := strconv.Atoi(string(m[1]))
	if err != nil || off <= 0 || off >= len(data) {
		return fmt.Errorf("startxref offset %s is outside the file", m[1])
	}
	at := bytes.TrimLeft(data[off:], " \t\r\n\f\x00")
	if !bytes.HasPrefix(at, []byte("xref")) && !reObjHeader.Match(at) {
		return fmt.Errorf("startxref offset %d does not point at a cross-reference section", off)
	}
	return nil
}

// importPage imports the first page of data as a template, turning gofpdi's
// panics into errors.
func importPage(pdf *fpdf.Fpdf, imp *gofpdi.Importer, data []byte) (tpl int, err error) {
	if err := checkXref(data); err != nil {
		return 0, err
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("importing PDF page: %v", p)
		}
	}()
	var rs io.ReadSeeker = bytes.NewReader(data)
	tpl = imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if pdf.Err() {
		err = pdf.Error()
		pdf.ClearError()
	}
	return tpl, err
}

// CheckPDFPage reports whether the first page of data can be placed as a
// vector graphic. The trial import runs on a scratch document and gives up
// after a few seconds.
func CheckPDFPage(data []byte) error {
	done := make(chan error, 1)
	go func() {
		_, err := importPage(newFpdf(595.28, 841.89), gofpdi.NewImporter(), data)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(importTimeout):
		return fmt.Errorf("importing PDF page: timed out after %s", importTimeout)
	}
}
