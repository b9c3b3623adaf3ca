package relay_err

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

func isCancelled(err error) bool {
	return cerr.Is(err, context.Canceled) || cerr.Is(err, context.DeadlineExceeded)
}
