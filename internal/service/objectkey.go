package service

import (
	"strings"

	"github.com/google/uuid"
)

// filenameSanitizer strips characters that are unsafe in object keys
var filenameSanitizer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	"..", "-",
	" ", "_",
)

// objectKey builds a collision-free storage key for an uploaded file,
// keeping the original filename visible for operators.
func objectKey(prefix, filename string) string {
	name := filenameSanitizer.Replace(filename)
	if name == "" {
		name = "file"
	}
	return prefix + "/" + uuid.New().String() + "_" + name
}
