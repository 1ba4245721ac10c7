package flags

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/openshift/newbugs/pkg/bugzilla"
)

// BugzillaFlags holds Bugzilla server configuration.
type BugzillaFlags struct {
	URL        string
	APIKeyFile string
}

func NewBugzillaFlags() *BugzillaFlags {
	url := os.Getenv("BUGZILLA_URL")
	if url == "" {
		url = bugzilla.DefaultServerURL
	}
	return &BugzillaFlags{
		URL: url,
	}
}

func (f *BugzillaFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.URL, "bugzilla-url", f.URL, "Bugzilla base URL")
	fs.StringVar(&f.APIKeyFile,
		"api-key-file",
		f.APIKeyFile,
		"file containing a Bugzilla API key (falls back to BUGZILLA_API_KEY)")
}

// APIKey returns the API key from the key file, or from the environment when no file is given.
// An empty key is not an error: public bugs can be queried anonymously.
func (f *BugzillaFlags) APIKey() (string, error) {
	if f.APIKeyFile != "" {
		keyBytes, err := os.ReadFile(f.APIKeyFile)
		if err != nil {
			return "", errors.Wrap(err, "failed to read bugzilla api key file")
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}
	return strings.TrimSpace(os.Getenv("BUGZILLA_API_KEY")), nil
}

// NewClient builds a Bugzilla client for the given account.
func (f *BugzillaFlags) NewClient(account string) (*bugzilla.Client, error) {
	key, err := f.APIKey()
	if err != nil {
		return nil, err
	}
	if key == "" {
		log.Debug("no bugzilla api key configured, querying anonymously")
	}
	return bugzilla.New(account, bugzilla.WithServerURL(f.URL), bugzilla.WithAPIKey(key)), nil
}
