package services

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// ErrNotFound is returned by stores when the requested id does not exist.
var ErrNotFound = errors.New("not found")

// Well-known Azurite development account.
const (
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// usesAzurite reports whether serviceURL points at a local emulator. Azure
// endpoints are always https, Azurite is served over plain http.
func usesAzurite(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

// NewAzureCredential returns the DefaultAzureCredential chain used for managed
// identity in Azure and developer logins locally.
func NewAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials")
	return azidentity.NewDefaultAzureCredential(nil)
}

// responseCode extracts the Azure error code and HTTP status from err.
func responseCode(err error) (string, int, bool) {
	var azErr *azcore.ResponseError
	if errors.As(err, &azErr) {
		return azErr.ErrorCode, azErr.StatusCode, true
	}
	return "", 0, false
}

func isAlreadyExists(err error) bool {
	code, status, ok := responseCode(err)
	return ok && (status == http.StatusConflict || strings.HasSuffix(code, "AlreadyExists"))
}

func isNotFound(err error) bool {
	_, status, ok := responseCode(err)
	return ok && status == http.StatusNotFound
}
