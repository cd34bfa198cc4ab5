// ShareMount Core
// Copyright (c) 2026 The ShareMount Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ShareMount Core.
//
// ShareMount Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ShareMount Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ShareMount Core.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves the JSON-RPC 2.0 API over WebSocket and HTTP POST.
// Connected WebSocket clients also receive service notifications as
// JSON-RPC notification objects.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/api/methods"
	apimiddleware "github.com/ShareMountProject/sharemount-core/pkg/api/middleware"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models/requests"
	"github.com/ShareMountProject/sharemount-core/pkg/api/validation"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/ShareMountProject/sharemount-core/pkg/vault"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

var JSONRPCErrorParseError = models.ErrorObject{
	Code:    -32700,
	Message: "Parse error",
}
var JSONRPCErrorInvalidRequest = models.ErrorObject{
	Code:    -32600,
	Message: "Invalid Request",
}
var JSONRPCErrorMethodNotFound = models.ErrorObject{
	Code:    -32601,
	Message: "Method not found",
}
var JSONRPCErrorInvalidParams = models.ErrorObject{
	Code:    -32602,
	Message: "Invalid params",
}
var JSONRPCErrorInternalError = models.ErrorObject{
	Code:    -32603,
	Message: "Internal error",
}
var JSONRPCErrorServerError = models.ErrorObject{
	Code:    -32000,
	Message: "Server error",
}

var methodMap = map[string]func(requests.RequestEnv) (any, error){
	// mounts
	models.MethodMounts:                methods.HandleMounts,
	models.MethodMountsMount:           methods.HandleMount,
	models.MethodMountsUnmount:         methods.HandleUnmount,
	models.MethodMountsAutoMount:       methods.HandleAutoMount,
	models.MethodMountsAutoMountCancel: methods.HandleAutoMountCancel,
	models.MethodMountsReconnectCancel: methods.HandleReconnectCancel,
	// configs
	models.MethodConfigs:       methods.HandleConfigs,
	models.MethodConfigsNew:    methods.HandleNewConfig,
	models.MethodConfigsUpdate: methods.HandleUpdateConfig,
	models.MethodConfigsDelete: methods.HandleDeleteConfig,
	// network
	models.MethodNetworkScan: methods.HandleNetworkScan,
	// settings
	models.MethodSettings:       methods.HandleSettings,
	models.MethodSettingsUpdate: methods.HandleSettingsUpdate,
	models.MethodSettingsReload: methods.HandleSettingsReload,
	// utils
	models.MethodVersion: methods.HandleVersion,
}

func maybeUUID(req *models.RequestObject) uuid.UUID {
	if req.ID == nil {
		return uuid.Nil
	}
	return *req.ID
}

// errorForHandlerErr maps a handler error onto a JSON-RPC error object.
func errorForHandlerErr(err error) models.ErrorObject {
	var validationErr *validation.Error
	if errors.Is(err, methods.ErrMissingParams) ||
		errors.Is(err, methods.ErrInvalidParams) ||
		errors.As(err, &validationErr) {
		return models.ErrorObject{
			Code:    JSONRPCErrorInvalidParams.Code,
			Message: err.Error(),
		}
	}
	return models.ErrorObject{
		Code:    JSONRPCErrorServerError.Code,
		Message: err.Error(),
	}
}

//nolint:gocritic // env passed by value so each request gets its own copy
func handleRequest(env requests.RequestEnv, req models.RequestObject) (any, *models.ErrorObject) {
	log.Debug().Str("method", req.Method).Msg("received request")

	fn, ok := methodMap[strings.ToLower(req.Method)]
	if !ok {
		return nil, &models.ErrorObject{
			Code:    JSONRPCErrorMethodNotFound.Code,
			Message: JSONRPCErrorMethodNotFound.Message,
		}
	}

	env.ID = maybeUUID(&req)
	env.Params = req.Params

	resp, err := fn(env)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Msg("handler error")
		errObj := errorForHandlerErr(err)
		return nil, &errObj
	}

	return resp, nil
}

func sendWSResponse(session *melody.Session, id uuid.UUID, result any) error {
	log.Debug().Interface("result", result).Msg("sending response")

	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshalling response: %w", err)
	}

	return session.Write(data) //nolint:wrapcheck // direct passthrough
}

func sendWSError(session *melody.Session, id uuid.UUID, errObj models.ErrorObject) error {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")

	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshalling error response: %w", err)
	}

	return session.Write(data) //nolint:wrapcheck // direct passthrough
}

func broadcastNotifications(
	st *state.State,
	session *melody.Melody,
	notifications <-chan models.Notification,
) {
	for {
		select {
		case <-st.GetContext().Done():
			log.Debug().Msg("stopping notification broadcast via context cancellation")
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}

			req := models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			}

			data, err := json.Marshal(req)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}

			if err := session.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

func makeRequestEnv(
	cfg *config.Instance,
	st *state.State,
	mountSvc requests.MountService,
	vlt vault.Vault,
	remoteAddr string,
) requests.RequestEnv {
	return requests.RequestEnv{
		Mounts:  mountSvc,
		Vault:   vlt,
		Config:  cfg,
		State:   st,
		IsLocal: apimiddleware.IsLoopbackAddr(remoteAddr),
	}
}

func handleWSMessage(
	cfg *config.Instance,
	st *state.State,
	mountSvc requests.MountService,
	vlt vault.Vault,
) func(session *melody.Session, msg []byte) {
	return func(session *melody.Session, msg []byte) {
		// ping command for heartbeat operation
		if bytes.Equal(msg, []byte("ping")) {
			if err := session.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
			return
		}

		if !json.Valid(msg) {
			log.Error().Msg("data not valid json")
			if err := sendWSError(session, uuid.Nil, JSONRPCErrorParseError); err != nil {
				log.Error().Err(err).Msg("sending error response")
			}
			return
		}

		var req models.RequestObject
		if err := json.Unmarshal(msg, &req); err != nil || req.Method == "" {
			log.Error().Msg("message does not match known types")
			if err := sendWSError(session, uuid.Nil, JSONRPCErrorInvalidRequest); err != nil {
				log.Error().Err(err).Msg("sending error response")
			}
			return
		}

		if req.JSONRPC != "2.0" {
			log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
			if err := sendWSError(session, maybeUUID(&req), JSONRPCErrorInvalidRequest); err != nil {
				log.Error().Err(err).Msg("sending error response")
			}
			return
		}

		if req.ID == nil {
			// request is a notification
			log.Info().Str("method", req.Method).Msg("received notification, ignoring")
			return
		}

		env := makeRequestEnv(cfg, st, mountSvc, vlt, session.Request.RemoteAddr)
		resp, errObj := handleRequest(env, req)
		if errObj != nil {
			if err := sendWSError(session, *req.ID, *errObj); err != nil {
				log.Error().Err(err).Msg("sending error response")
			}
			return
		}

		if err := sendWSResponse(session, *req.ID, resp); err != nil {
			log.Error().Err(err).Msg("sending response")
		}
	}
}

// handlePostRequest serves single-shot JSON-RPC requests over plain HTTP
// POST, for scripts and the CLI where a WebSocket session is overkill.
func handlePostRequest(
	cfg *config.Instance,
	st *state.State,
	mountSvc requests.MountService,
	vlt vault.Vault,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		writeError := func(id uuid.UUID, errObj models.ErrorObject) {
			resp := models.ResponseErrorObject{
				JSONRPC: "2.0",
				ID:      id,
				Error:   &errObj,
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				log.Error().Err(err).Msg("writing error response")
			}
		}

		var req models.RequestObject
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			writeError(uuid.Nil, JSONRPCErrorParseError)
			return
		}

		if req.JSONRPC != "2.0" || req.Method == "" {
			w.WriteHeader(http.StatusBadRequest)
			writeError(maybeUUID(&req), JSONRPCErrorInvalidRequest)
			return
		}

		if req.ID == nil {
			// fire-and-forget notification, nothing to send back
			env := makeRequestEnv(cfg, st, mountSvc, vlt, r.RemoteAddr)
			_, _ = handleRequest(env, req)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		env := makeRequestEnv(cfg, st, mountSvc, vlt, r.RemoteAddr)
		resp, errObj := handleRequest(env, req)
		if errObj != nil {
			writeError(*req.ID, *errObj)
			return
		}

		err := json.NewEncoder(w).Encode(models.ResponseObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Result:  resp,
		})
		if err != nil {
			log.Error().Err(err).Msg("writing response")
		}
	}
}

// allowedOrigins returns the CORS origin list, defaulting to local web
// clients when nothing is configured.
func allowedOrigins(cfg *config.Instance) []string {
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		return []string{"https://*", "http://*"}
	}
	return origins
}

// buildRouter assembles the HTTP routes and middleware chain. Split from
// Start so tests can exercise the router without binding a socket.
func buildRouter(
	cfg *config.Instance,
	st *state.State,
	mountSvc requests.MountService,
	vlt vault.Vault,
	session *melody.Melody,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(config.ApiRequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	ipFilter := apimiddleware.NewIPFilter(cfg.AllowedIPs())
	r.Use(apimiddleware.HTTPIPFilterMiddleware(ipFilter))

	rateLimiter := apimiddleware.NewIPRateLimiter()
	rateLimiter.StartCleanup(st.GetContext())
	r.Use(apimiddleware.HTTPRateLimitMiddleware(rateLimiter))

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		if err := session.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})
	r.Post("/api", handlePostRequest(cfg, st, mountSvc, vlt))

	session.HandleMessage(apimiddleware.WebSocketRateLimitHandler(
		rateLimiter,
		handleWSMessage(cfg, st, mountSvc, vlt),
	))

	return r
}

// Start runs the API server until the service context is cancelled. It
// blocks, so callers run it in a goroutine.
func Start(
	cfg *config.Instance,
	st *state.State,
	mountSvc requests.MountService,
	vlt vault.Vault,
	notifications <-chan models.Notification,
) {
	session := melody.New()
	session.Upgrader.CheckOrigin = func(_ *http.Request) bool { return true }
	go broadcastNotifications(st, session, notifications)

	r := buildRouter(cfg, st, mountSvc, vlt, session)

	listen := cfg.APIListen()
	log.Info().Str("listen", listen).Msg("starting API server")

	server := &http.Server{
		Addr:         listen,
		Handler:      r,
		ReadTimeout:  config.ApiRequestTimeout,
		WriteTimeout: 0, // WebSocket sessions stay open indefinitely
	}

	go func() {
		<-st.GetContext().Done()
		log.Debug().Msg("closing API server via context cancellation")
		if err := session.Close(); err != nil {
			log.Error().Err(err).Msg("closing websocket sessions")
		}
		if err := server.Close(); err != nil {
			log.Error().Err(err).Msg("closing API server")
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("API server stopped")
	}
}
