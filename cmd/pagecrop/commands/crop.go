package commands

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/pagecrop/internal/config"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
)

// CropFlags are shared by run and extract.
type CropFlags struct {
	Crop      string `help:"Crop rectangle in points as left,top,a,b" placeholder:"L,T,A,B"`
	RectForm  string `name:"rect-form" help:"How a,b in --crop are read: extent (width,height) or corners (right,bottom)" enum:"extent,corners" default:"extent"`
	NoCrop    string `name:"no-crop" help:"Pages extracted at full size, e.g. 1,5-7"`
	Numbering string `help:"Page numbering convention (one|zero)"`
}

// apply overlays the flags on the job.
func (f CropFlags) apply(job *config.Job) error {
	if f.Crop != "" {
		crop, err := parseCrop(f.Crop, geometry.RectForm(f.RectForm))
		if err != nil {
			return err
		}
		job.Crop = crop
	}
	if f.NoCrop != "" {
		job.NoCrop = f.NoCrop
	}
	if f.Numbering != "" {
		n := config.NormalizePageNumbering(f.Numbering)
		if n == "" {
			return perrors.ValidationFailed("numbering", fmt.Sprintf("unknown convention %q", f.Numbering))
		}
		job.Numbering = n
	}
	return nil
}

func parseCrop(value string, form geometry.RectForm) (*config.CropConfig, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, perrors.ValidationFailed("crop", fmt.Sprintf("expected left,top,a,b, got %q", value))
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, perrors.ValidationFailed("crop", fmt.Sprintf("invalid number %q", p))
		}
		v[i] = n
	}
	c := &config.CropConfig{Form: form, Left: v[0], Top: v[1]}
	if form == geometry.RectFormCorners {
		c.Right, c.Bottom = v[2], v[3]
	} else {
		c.Form = geometry.RectFormExtent
		c.Width, c.Height = v[2], v[3]
	}
	return c, nil
}
