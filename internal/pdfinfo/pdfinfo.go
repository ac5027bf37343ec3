// Package pdfinfo inspects PDF documents in-process with pdfcpu. It is used to
// discover the page range when none is configured and to verify the merged
// destination.
package pdfinfo

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise installs a config directory under the user's home on first use.
	model.ConfigPath = "disable"
}

// Prober reports how many pages a document has.
type Prober interface {
	PageCount(path string) (int, error)
}

// PDFCPU implements Prober with pdfcpu's relaxed reader.
type PDFCPU struct{}

// PageCount returns the number of pages in the PDF at path.
func (PDFCPU) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("read page count of %s: %w", path, err)
	}
	return n, nil
}

// Static is a Prober returning a fixed count; useful in tests.
type Static int

func (s Static) PageCount(string) (int, error) {
	if s <= 0 {
		return 0, fmt.Errorf("page count unavailable")
	}
	return int(s), nil
}
