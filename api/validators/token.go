package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
)

// ParseBearerToken extracts the token from the Authorization header. The
// "Bearer" scheme is optional; a scheme with nothing after it is rejected.
func ParseBearerToken(r *http.Request) (string, error) {
	fields := strings.Fields(r.Header.Get("Authorization"))
	if len(fields) > 0 && strings.EqualFold(fields[0], "bearer") {
		fields = fields[1:]
	}
	if len(fields) != 1 {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return fields[0], nil
}
