// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the deposit sync worker.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
