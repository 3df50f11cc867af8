package devrest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/status"
)

func mapError(err error) error {
	var codeErr *htcore.StatusCodeError

	switch {
	case errors.As(err, &codeErr):
		switch codeErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", devcore.ErrAuthFailed, err)
		default:
			return fmt.Errorf("%w: %w", status.StatusError, err)
		}

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, status.StatusTimeout):
		return fmt.Errorf("%w: %w", devcore.ErrTimeout, err)

	case errors.Is(err, context.Canceled):
		return err

	default:
		return fmt.Errorf("%w: %w", devcore.ErrUnreachable, err)
	}
}
