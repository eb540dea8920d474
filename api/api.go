// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the read-only http view of the token, the lottery and the oracle wrapper.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/velalabs/vela/api/lottery"
	"github.com/velalabs/vela/api/token"
	"github.com/velalabs/vela/api/utils"
	"github.com/velalabs/vela/api/wrapper"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/metrics"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(ch *chain.Chain, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	router.NotFoundHandler = utils.WrapHandlerFunc(func(_ http.ResponseWriter, req *http.Request) error {
		return utils.NotFound(errors.Errorf("no route for %v", req.URL.Path))
	})
	router.MethodNotAllowedHandler = utils.WrapHandlerFunc(func(_ http.ResponseWriter, req *http.Request) error {
		return utils.HTTPError(errors.Errorf("method %v not allowed", req.Method), http.StatusMethodNotAllowed)
	})

	token.New(ch).
		Mount(router, "/token")
	lottery.New(ch).
		Mount(router, "/lottery")
	wrapper.New(ch).
		Mount(router, "/wrapper")

	router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.HTTPHandler())

	if opts.EnableMetrics {
		router.Use(metricsHandler)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}
