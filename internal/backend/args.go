package backend

import "strings"

// Flags common to every Ghostscript invocation: batch mode, no pausing
// between pages, quiet output and the sandboxed file access policy.
var commonFlags = []string{"-dBATCH", "-dNOPAUSE", "-q", "-dSAFER"}

// PDFWriteDevice selects the multi-page capable PDF output device.
const PDFWriteDevice = "-sDEVICE=pdfwrite"

// BaseArgs returns a fresh copy of the flags shared by extraction and merge.
func BaseArgs() []string {
	out := make([]string, 0, len(commonFlags)+1)
	out = append(out, commonFlags...)
	return append(out, PDFWriteDevice)
}

// OutputFileArg builds -sOutputFile, escaping '%' which Ghostscript would
// otherwise treat as a page-number template.
func OutputFileArg(path string) string {
	return "-sOutputFile=" + strings.ReplaceAll(path, "%", "%%")
}
