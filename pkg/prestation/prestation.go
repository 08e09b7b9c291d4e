package prestation

import (
	"context"
	"net/url"
)

type PrestationType struct {
	ID          *int64 `json:"id,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Requester is the authenticated gateway.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}
