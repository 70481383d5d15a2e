// Package uploads issues signed upload URLs for user media.
package uploads

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

const signedURLTTL = 15 * time.Minute

// Issuer mints upload targets under the configured base URL. Object paths
// are namespaced per user so uploads cannot collide across accounts.
type Issuer struct {
	baseURL string
}

// NewIssuer creates an issuer rooted at baseURL.
func NewIssuer(baseURL string) *Issuer {
	return &Issuer{baseURL: strings.TrimRight(baseURL, "/")}
}

// IssueSignedURL returns an upload target for the validated request.
func (i *Issuer) IssueSignedURL(_ context.Context, userID string, req domain.SignedURLRequest) (domain.SignedURLResponse, error) {
	ext := path.Ext(req.FileName)
	objectPath := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)
	return domain.SignedURLResponse{
		UploadURL:  i.baseURL + "/" + objectPath,
		ObjectPath: objectPath,
		ExpiresAt:  domain.Now().Add(signedURLTTL),
	}, nil
}
