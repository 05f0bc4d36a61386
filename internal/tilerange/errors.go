package tilerange

import "github.com/joeblew999/plat-tms/internal/tmserr"

func invalidMatrixID(id string) error {
	return tmserr.Validationf("tile matrix id %q not found in tile matrix set", id)
}
