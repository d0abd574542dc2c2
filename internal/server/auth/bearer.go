package auth

import (
	"strings"

	"github.com/dmitrijs2005/rms/internal/common"
)

// ParseBearer extracts the credential from an "Authorization: Bearer <t>"
// value. The scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
