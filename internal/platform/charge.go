package platform

import (
	"strconv"

	"github.com/spf13/afero"
)

type sysfsCharge struct {
	file afero.File
	path string
}

func (c *sysfsCharge) Path() string {
	return c.path
}

// WriteLimit writes the limit as a bare decimal string.
func (c *sysfsCharge) WriteLimit(limit uint8) error {
	return writeControl(c.file, c.path, strconv.Itoa(int(limit)))
}

func (c *sysfsCharge) Close() error {
	return c.file.Close()
}
