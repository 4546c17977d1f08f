package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
)

const (
	LedgerServiceName = "grill.v1.LedgerService"
	AdminServiceName  = "grill.v1.AdminService"
	AuthServiceName   = "grill.v1.AuthService"
)

// Procedure returns the HTTP path of a method, e.g. "/grill.v1.AuthService/Login".
func Procedure(service, method string) string {
	return "/" + service + "/" + method
}

// HandlerOptions returns the codec and interceptors shared by all handlers.
func HandlerOptions(interceptors ...connect.Interceptor) []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(interceptors...),
	}
}

// unary mounts one Connect unary method on the router.
func unary[Req, Res any](
	r chi.Router,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	r.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}
