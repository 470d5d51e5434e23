// ABOUTME: Download filenames for exported estimates

package export

import (
	"fmt"
	"regexp"
	"time"

	"github.com/2389/lot-admin/internal/model"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename returns Estimate_<id>_<customer>_<YYYY-MM-DD>.<ext> with every
// non-alphanumeric character removed from the id and customer label.
func Filename(e model.Estimate, ext string, now time.Time) string {
	return fmt.Sprintf("Estimate_%s_%s_%s.%s",
		nonAlphanumeric.ReplaceAllString(e.ID, ""),
		nonAlphanumeric.ReplaceAllString(e.Customer.Label(), ""),
		now.Format("2006-01-02"),
		ext,
	)
}
