package upload

import (
	"fmt"
	"path/filepath"
	"strings"
)

var billingExtensions = map[string]struct{}{
	".csv":  {},
	".xls":  {},
	".xlsx": {},
}

// IsBillingFile reports whether name is a CSV or Excel export.
func IsBillingFile(name string) bool {
	_, ok := billingExtensions[strings.ToLower(filepath.Ext(strings.TrimSpace(name)))]
	return ok
}

// TotalSizeMB sums sizes in bytes and formats them as megabytes with two
// decimals.
func TotalSizeMB(sizes ...int64) string {
	var total int64
	for _, s := range sizes {
		total += s
	}
	return fmt.Sprintf("%.2f", float64(total)/(1024*1024))
}
