package platform

import (
	"fmt"

	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/spf13/afero"
)

// sysfsFan drives either fan-mode variant. Both accept the profile
// encoding as a decimal digit followed by a newline.
type sysfsFan struct {
	file afero.File
	path string
}

func (f *sysfsFan) Path() string {
	return f.path
}

func (f *sysfsFan) WriteProfile(p profile.Profile) error {
	return writeControl(f.file, f.path, fmt.Sprintf("%d\n", p.Encode()))
}

func (f *sysfsFan) Close() error {
	return f.file.Close()
}
