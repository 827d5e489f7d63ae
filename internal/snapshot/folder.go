package snapshot

import "github.com/pkg/browser"

// openFunc is replaced in tests.
var openFunc = browser.OpenFile

// OpenFolder shows dir in the desktop file manager and returns the folder
// that was opened. An empty dir means Folder().
func OpenFolder(dir string) (string, error) {
	if dir == "" {
		dir = Folder()
	}
	return dir, openFunc(dir)
}
