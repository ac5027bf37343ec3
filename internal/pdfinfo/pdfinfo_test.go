package pdfinfo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeMinimalPDF writes a structurally valid PDF with n empty Letter pages.
func writeMinimalPDF(t *testing.T, path string, n int) {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestPDFCPU_PageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three.pdf")
	writeMinimalPDF(t, path, 3)

	n, err := PDFCPU{}.PageCount(path)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestPDFCPU_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))
	_, err := PDFCPU{}.PageCount(path)
	require.Error(t, err)
}

func TestStatic(t *testing.T) {
	n, err := Static(7).PageCount("ignored")
	require.NoError(t, err)
	require.Equal(t, 7, n)
	_, err = Static(0).PageCount("ignored")
	require.Error(t, err)
}
