package versions

import (
	"fmt"
	"os"
	"strings"
	"sync"

	semver "github.com/Masterminds/semver/v3"

	"github.com/rwx-research/lms-cli/cmd/lms/config"
)

var (
	holder       *versionHolder
	emptyVersion = semver.MustParse("0.0.0")
)

type versionHolder struct {
	current *semver.Version
	latest  *semver.Version
	mu      sync.RWMutex
}

func init() {
	current, err := semver.NewVersion(config.Version)
	if err != nil {
		// Development builds ("dev", "git-<sha>") sort after every release.
		current = semver.MustParse("9999.0.0+" + sanitizeBuildMetadata(config.Version))
	}

	holder = &versionHolder{current: current, latest: emptyVersion}
}

func Current() *semver.Version {
	return holder.current
}

func Latest() *semver.Version {
	holder.mu.RLock()
	defer holder.mu.RUnlock()

	return holder.latest
}

func SetCliLatestVersion(raw string) error {
	version, err := semver.NewVersion(raw)
	if err != nil {
		return err
	}

	holder.mu.Lock()
	holder.latest = version
	holder.mu.Unlock()

	return nil
}

func NewVersionAvailable() bool {
	return Latest().GreaterThan(Current())
}

// UpdateNotice is empty unless the backend advertised a newer CLI than the one running.
func UpdateNotice() string {
	if !NewVersionAvailable() {
		return ""
	}

	how := "Download it from the releases page."
	if installedWithHomebrew() {
		how = "Run `brew upgrade lms` to update."
	}

	return fmt.Sprintf("A new release of lms is available: %s → %s\n%s", Current(), Latest(), how)
}

func installedWithHomebrew() bool {
	fname, err := os.Executable()
	if err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(fname), "/homebrew/")
}

func sanitizeBuildMetadata(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	if b.Len() == 0 {
		return "dev"
	}

	return strings.Trim(b.String(), ".")
}
