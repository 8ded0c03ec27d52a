package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var downloadClient = &http.Client{Timeout: 5 * time.Minute}

// DownloadFile fetches url into localPath. The body is written to a
// sibling ".part" file first so a failed transfer never leaves a partial
// artifact at localPath.
func DownloadFile(url, localPath string) error {
	Verbose("Downloading %s to %s", url, localPath)

	resp, err := downloadClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	partPath := localPath + ".part"
	file, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}

	written, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partPath)
		return fmt.Errorf("failed to write file: %v", err)
	}

	if err := os.Rename(partPath, localPath); err != nil {
		_ = os.Remove(partPath)
		return fmt.Errorf("failed to move download into place: %v", err)
	}

	Verbose("Downloaded %d bytes", written)
	return nil
}
