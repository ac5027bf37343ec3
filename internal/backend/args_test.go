package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseArgs(t *testing.T) {
	a := BaseArgs()
	require.Equal(t, []string{"-dBATCH", "-dNOPAUSE", "-q", "-dSAFER", "-sDEVICE=pdfwrite"}, a)
	a[0] = "mutated"
	require.Equal(t, "-dBATCH", BaseArgs()[0])
}

func TestOutputFileArg(t *testing.T) {
	require.Equal(t, "-sOutputFile=/tmp/w/3.pdf", OutputFileArg("/tmp/w/3.pdf"))
	require.Equal(t, "-sOutputFile=/tmp/100%%.pdf", OutputFileArg("/tmp/100%.pdf"))
}
