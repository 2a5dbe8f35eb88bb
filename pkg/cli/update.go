package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/sirupsen/logrus"
)

// Version is the workbench release, overridden at link time with
// -ldflags "-X github.com/Fepozopo/edgebench/pkg/cli.Version=...".
var Version = "0.1.0"

// Repo is the GitHub repository releases are looked up in.
const Repo = "Fepozopo/edgebench"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Updater checks GitHub releases and replaces the running binary.
type Updater struct {
	Repo    string
	Version string
	APIBase string
	Client  *http.Client
	Log     logrus.FieldLogger
}

// NewUpdater targets Repo at the built Version.
func NewUpdater(log logrus.FieldLogger) *Updater {
	return &Updater{
		Repo:    Repo,
		Version: Version,
		APIBase: "https://api.github.com",
		Client:  &http.Client{Timeout: 10 * time.Second},
		Log:     log,
	}
}

// Latest returns the highest published, non-prerelease semver release, or
// nil when there is none. Tags are matched loosely so "release-v1.2.3"
// still counts.
func (u *Updater) Latest() (*selfupdate.Release, error) {
	resp, err := u.Client.Get(fmt.Sprintf("%s/repos/%s/releases", u.APIBase, u.Repo))
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}
	return pickRelease(releases), nil
}

func pickRelease(releases []githubRelease) *selfupdate.Release {
	var out []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		if match == "" {
			continue
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		out = append(out, &selfupdate.Release{Version: v, AssetURL: pickAsset(r)})
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version.GT(out[j].Version) })
	return out[0]
}

// pickAsset prefers an asset that names a platform and falls back to the
// first one.
func pickAsset(r githubRelease) string {
	for _, a := range r.Assets {
		n := strings.ToLower(a.Name)
		for _, hint := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
			if strings.Contains(n, hint) {
				return a.BrowserDownloadURL
			}
		}
	}
	if len(r.Assets) > 0 {
		return r.Assets[0].BrowserDownloadURL
	}
	return ""
}

// Check reports the latest release on out and, when it is newer and the
// user confirms, updates and restarts the binary.
func (u *Updater) Check(p *Prompter, out io.Writer) error {
	fmt.Fprintf(out, "Current version: %s\n", u.Version)
	latest, err := u.Latest()
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Fprintf(out, "No releases found for %s.\n", u.Repo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)

	current, perr := semver.Parse(strings.TrimPrefix(u.Version, "v"))
	if perr != nil {
		u.Log.WithFields(logrus.Fields{"version": u.Version, "error": perr}).Warn("current version is not semver")
	} else if !latest.Version.GT(current) {
		fmt.Fprintf(out, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	answer, err := p.Line(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	u.Log.WithFields(logrus.Fields{"version": latest.Version.String(), "asset": latest.AssetURL}).Info("updating")
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	// Exec only returns on failure; start a child instead.
	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Fprintf(out, "Updated to version %s; restart the application manually.\n", latest.Version)
			return nil
		}
		os.Exit(0)
	}
	return nil
}
