// Package cleanup removes the temporary report file at the end of a run
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilexum-group/sysreport/internal/utils"
)

// Run removes the report at path unless keep is set. It never fails: a
// missing file is a no-op and other errors are only logged.
func Run(path string, keep bool) (removed bool) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Cleanup panicked", map[string]string{"error": fmt.Sprint(r)})
			removed = false
		}
	}()

	if path == "" {
		return false
	}
	if keep {
		utils.LogInfo("Keeping report file", map[string]string{"path": path})
		return false
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false
		}
		utils.LogWarn("Failed to remove report file", map[string]string{"path": path, "error": err.Error()})
		return false
	}

	utils.LogInfo("Report file removed", map[string]string{"path": path})
	return true
}

// ShouldKeep decides whether the report survives cleanup
func ShouldKeep(keepReport, keepUndelivered, delivered bool) bool {
	return keepReport || (keepUndelivered && !delivered)
}
