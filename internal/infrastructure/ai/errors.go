package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/doeshing/quickstart-go/internal/domain"
)

// classify maps a go-openai failure onto a typed domain error.
func classify(ctx context.Context, err error) error {
	var (
		apiErr    *openai.APIError
		reqErr    *openai.RequestError
		netErr    net.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.NewError(domain.KindNetwork, domain.ReasonTimeout, "completion request timed out", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return domain.NewError(domain.KindNetwork, domain.ReasonTimeout, "completion request timed out", err)
	case errors.As(err, &apiErr):
		return domain.NewError(domain.KindAPI, domain.ReasonHTTPStatus, statusMessage(apiErr.HTTPStatusCode), err)
	case errors.As(err, &reqErr):
		return domain.NewError(domain.KindAPI, domain.ReasonHTTPStatus, statusMessage(reqErr.HTTPStatusCode), err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return domain.NewError(domain.KindAPI, domain.ReasonMalformedBody, "completion response is not valid JSON", err)
	default:
		return domain.NewError(domain.KindNetwork, domain.ReasonTransport, "completion request failed", err)
	}
}

func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("completion endpoint returned %d %s", code, text)
	}
	return fmt.Sprintf("completion endpoint returned status %d", code)
}
