package ordercode

import (
	"strings"

	"github.com/google/uuid"
)

const Length = 6

// Generate returns a short customer-facing order code: the first six
// alphanumeric characters of a random UUID, upper-cased.
func Generate() string {
	return fromUUID(uuid.New())
}

func fromUUID(id uuid.UUID) string {
	raw := strings.ReplaceAll(id.String(), "-", "")
	return strings.ToUpper(raw[:Length])
}
