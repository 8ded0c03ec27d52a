package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var githubAPIBase = "https://api.github.com"

var githubClient = &http.Client{Timeout: 30 * time.Second}

type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		BrowserDownloadURL string `json:"browser_download_url"`
		Name               string `json:"name"`
	} `json:"assets"`
}

// GetLatestReleaseDownloadURL returns the download URL of the asset named
// assetName in the latest release of repo. An empty assetName, or one that
// matches nothing, selects the first asset.
func GetLatestReleaseDownloadURL(repo, assetName string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", githubAPIBase, repo)

	resp, err := githubClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode release JSON: %v", err)
	}

	if len(release.Assets) == 0 {
		return "", fmt.Errorf("no assets found in latest release")
	}

	for _, asset := range release.Assets {
		if asset.Name == assetName {
			Verbose("Using asset %s from release %s", asset.Name, release.TagName)
			return asset.BrowserDownloadURL, nil
		}
	}

	Verbose("Using asset %s from release %s", release.Assets[0].Name, release.TagName)
	return release.Assets[0].BrowserDownloadURL, nil
}
