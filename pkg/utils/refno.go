package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReferenceNo generates a unique human-readable reference number,
// e.g. "TRF-9F3A01BC"
func GenerateReferenceNo(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
