package flags

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/openshift/newbugs/pkg/printer"
)

// OutputFlags controls how the list command renders bugs.
type OutputFlags struct {
	Format  string
	Timeout time.Duration
}

func NewOutputFlags() *OutputFlags {
	return &OutputFlags{
		Format: printer.FormatTable,
	}
}

func (f *OutputFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Format, "output", "o", f.Format, "Output format; one of table, json or yaml")
	fs.DurationVar(&f.Timeout, "timeout", f.Timeout, "Give up on the bugzilla request after this long, 0 waits forever")
}

func (f *OutputFlags) Validate() error {
	if !printer.IsValidFormat(f.Format) {
		return errors.Errorf("invalid output format: %s", f.Format)
	}
	if f.Timeout < 0 {
		return errors.Errorf("timeout must not be negative: %s", f.Timeout)
	}
	return nil
}
