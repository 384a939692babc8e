package httpapi

import (
	"context"
	"net"
	"net/http"
)

// NewServer оборачивает обработчик в http.Server. Контексты запросов наследуются от ctx
// и отменяются при Shutdown, иначе открытые SSE потоки держат завершение до таймаута.
func NewServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(ctx)
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return base
		},
	}
	server.RegisterOnShutdown(cancel)
	return server
}
