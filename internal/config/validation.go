package config

import (
	"fmt"
	"os"
	"path/filepath"

	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
)

// ValidateConfig checks everything that can be known before the page range is
// resolved. Failures are configuration or validation errors.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateCrop(); err != nil {
		return err
	}
	if _, err := geometry.ParsePageSet(cv.config.Job.NoCrop); err != nil {
		return perrors.ValidationFailed("no_crop", err.Error())
	}
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	job := cv.config.Job
	if job.Source == "" {
		return perrors.ValidationFailed("source", "source document is required")
	}
	st, err := os.Stat(job.Source)
	if err != nil {
		return perrors.SourceNotFound(job.Source, err)
	}
	if st.IsDir() {
		return perrors.ValidationFailed("source", "source is a directory")
	}
	if job.Destination == "" {
		return perrors.ValidationFailed("destination", "destination document is required")
	}
	srcAbs, _ := filepath.Abs(job.Source)
	dstAbs, _ := filepath.Abs(job.Destination)
	if srcAbs == dstAbs {
		return perrors.ValidationFailed("destination", "destination must differ from source")
	}
	dir := filepath.Dir(job.Destination)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return perrors.ValidationFailed("destination", fmt.Sprintf("destination directory %q does not exist", dir))
	}
	return nil
}

func (cv *configurationValidator) validateCrop() error {
	rect := cv.config.Job.Crop.Rect()
	if rect == nil {
		return nil
	}
	w, h := rect.Size()
	if w <= 0 || h <= 0 {
		return perrors.ValidationFailed("crop", fmt.Sprintf("resolved crop size %dx%d must be positive", w, h))
	}
	return nil
}

// ResolvePageRange turns the configured bounds into a concrete range. pageCount
// is the document's page count, or 0 when unknown; it is required when
// last_page is not configured.
func ResolvePageRange(job Job, pageCount int) (geometry.PageRange, error) {
	base := job.Numbering.Base()
	first := base
	if job.FirstPage != nil {
		first = *job.FirstPage
	}
	var last int
	switch {
	case job.LastPage != nil:
		last = *job.LastPage
	case pageCount > 0:
		last = pageCount - 1 + base
	default:
		return geometry.PageRange{}, perrors.ValidationFailed("last_page", "last page not set and document page count unknown")
	}
	if first < base {
		return geometry.PageRange{}, perrors.ValidationFailed("first_page", fmt.Sprintf("must be >= %d for %s-based numbering", base, job.Numbering))
	}
	if last < first {
		return geometry.PageRange{}, perrors.ValidationFailed("last_page", fmt.Sprintf("last page %d is before first page %d", last, first))
	}
	if pageCount > 0 && last-base+1 > pageCount {
		return geometry.PageRange{}, perrors.ValidationFailed("last_page", fmt.Sprintf("last page %d exceeds document page count %d", last, pageCount))
	}
	return geometry.PageRange{First: first, Last: last}, nil
}

// NoCropPages returns the no-transform pages inside r. Listed pages outside
// the range are ignored.
func (j Job) NoCropPages(r geometry.PageRange) []int {
	set, _ := geometry.ParsePageSet(j.NoCrop)
	return set.Within(r)
}

// BackendPage converts a user-facing page number into the 1-based number the
// rendering backend expects.
func (j Job) BackendPage(page int) int {
	return page - j.Numbering.Base() + 1
}
