package reference

import (
	"context"
	"io"
	"net/url"
)

// ClosableSource is a Source that holds connections or buckets open
type ClosableSource interface {
	Source
	io.Closer
}

// dataParam names the HTTP query parameter carrying the JSON path of the
// document within the response body
const dataParam = "data"

// OpenSource chooses a Source by URL scheme. http and https URLs are read
// with an HTTPSource; anything else is opened as a gocloud bucket
func OpenSource(ctx context.Context, rawURL string) (ClosableSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "https":
		q := u.Query()
		path := q.Get(dataParam)
		q.Del(dataParam)
		u.RawQuery = q.Encode()
		return NewHTTPSource(u.String(), path), nil
	default:
		return OpenBlobSource(ctx, rawURL, "")
	}
}
