package utils

import (
	"citamed-service/internal/pkg/constvars"
	"strings"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateResumeToken produces the opaque token returned on accepted
// submissions and carried by the queued job until the callback fires.
func GenerateResumeToken() string {
	return uuid.NewString()
}
