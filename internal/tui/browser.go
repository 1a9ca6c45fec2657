package tui

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// Swapped out in tests.
var (
	openURL           = openInBrowser
	clipboardWriteAll = clipboard.WriteAll
)

// openInBrowser opens url in the default system browser without waiting for it.
func openInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("opening a browser is not supported on %s", runtime.GOOS)
	}
	return cmd.Start()
}

// OpenURL opens url in the default system browser.
func OpenURL(url string) error {
	return openURL(url)
}
