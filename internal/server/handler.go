package server

import (
	"errors"

	"github.com/Brownie44l1/rangeserve/internal/byterange"
	"github.com/Brownie44l1/rangeserve/internal/resource"
	"github.com/Brownie44l1/rangeserve/internal/response"
	"github.com/Brownie44l1/rangeserve/internal/transport"
)

// FileHandler serves files from a Resolver, honouring single byte ranges.
type FileHandler struct {
	resolver *resource.Resolver
}

func NewFileHandler(r *resource.Resolver) *FileHandler {
	return &FileHandler{resolver: r}
}

func (h *FileHandler) ServeHTTP(ctx *Context) {
	ctx.Reply(h.respond(ctx))
}

func (h *FileHandler) respond(ctx *Context) *response.Response {
	if ctx.ReadErr != nil {
		return readErrorResponse(ctx.ReadErr)
	}
	// Only GET is served; everything else is answered as not found.
	if !ctx.Request.IsGet() {
		return response.NotFound()
	}

	res, err := h.resolver.Resolve(ctx.Request.Path)
	if err != nil {
		return response.NotFound()
	}
	defer res.Close()

	var rng *byterange.Range
	if header, ok := ctx.Request.Range(); ok {
		rng, err = byterange.Evaluate(header, res.Size())
		switch {
		case errors.Is(err, byterange.ErrUnsatisfiable):
			return response.Unsatisfiable(res.Size())
		case err != nil:
			// An unintelligible Range header is ignored.
			rng = nil
		}
	}

	resp, err := response.Build(res, rng)
	if err != nil {
		ctx.Err = err
		return response.Error(response.StatusInternalServerError, "")
	}
	return resp
}

func readErrorResponse(err error) *response.Response {
	switch {
	case errors.Is(err, transport.ErrHeaderTooLarge):
		return response.Error(response.StatusRequestHeaderFieldsTooLarge, "")
	case isTimeout(err):
		return response.Error(response.StatusRequestTimeout, "")
	default:
		return response.NotFound()
	}
}
