// Copyright 2025 The go-trustmesh Authors
// This file is part of the go-trustmesh library.
//
// The go-trustmesh library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-trustmesh library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-trustmesh library. If not, see <http://www.gnu.org/licenses/>.

// Package trustapi serves the trust registry over HTTP/JSON for
// off-ledger tooling and indexers. The caller field in mutation bodies
// is taken at face value: in production the registry sits behind the
// ledger host, which authenticates transaction senders before state
// transitions ever reach it, so this surface is for development and
// operator tooling.
package trustapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/core/ledger"
	"github.com/trustmesh/go-trustmesh/core/registry"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/params"
)

// Server routes registry operations over HTTP.
type Server struct {
	reg    *registry.TrustRegistry
	clock  ledger.Clock
	router *httprouter.Router
}

// NewServer builds the route table over a registry and clock.
func NewServer(reg *registry.TrustRegistry, clock ledger.Clock) *Server {
	s := &Server{reg: reg, clock: clock, router: httprouter.New()}

	s.router.POST("/agents", s.registerAgent)
	s.router.POST("/agents/delegated", s.registerDelegated)
	s.router.GET("/agents/:id", s.getAgent)
	s.router.PATCH("/agents/:id", s.updateAgent)
	s.router.POST("/agents/:id/developer", s.linkDeveloper)

	s.router.GET("/resolve/domain/:domain", s.resolveDomain)
	s.router.GET("/resolve/address/:address", s.resolveAddress)
	s.router.GET("/resolve/did/:did", s.resolveDID)

	s.router.POST("/feedback/authorizations", s.acceptFeedback)
	s.router.GET("/feedback/authorizations/:client/:server", s.getAuthorization)

	s.router.POST("/validations", s.requestValidation)
	s.router.GET("/validations/:hash", s.getValidation)
	s.router.POST("/validations/:hash/response", s.submitResponse)

	s.router.GET("/status", s.status)
	return s
}

// Handler returns the CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
	}).Handler(s.router)
}

type registerRequest struct {
	Caller      common.Address `json:"caller"`
	Domain      string         `json:"domain"`
	DID         string         `json:"did"`
	Description string         `json:"description"`
}

func (s *Server) registerAgent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.reg.Identity.Register(req.Caller, req.Domain, req.DID, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"agentId": id})
}

type delegatedRequest struct {
	Caller         common.Address `json:"caller"`
	DeveloperDID   string         `json:"developerDid"`
	AgentDID       string         `json:"agentDid"`
	AgentAddress   common.Address `json:"agentAddress"`
	Description    string         `json:"description"`
	Expiry         uint64         `json:"expiry"`
	AgentSignature common.Bytes   `json:"agentSignature"`
}

func (s *Server) registerDelegated(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req delegatedRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.reg.Identity.RegisterWithDelegatedConsent(
		req.Caller, s.clock.Now(), req.DeveloperDID, req.AgentDID,
		req.AgentAddress, req.Description, req.Expiry, req.AgentSignature,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"agentId": id})
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := parseID(w, ps.ByName("id"))
	if !ok {
		return
	}
	agent, err := s.reg.Identity.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

type updateRequest struct {
	Caller      common.Address  `json:"caller"`
	Owner       *common.Address `json:"owner"`
	DID         *string         `json:"did"`
	Description *string         `json:"description"`
}

func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := parseID(w, ps.ByName("id"))
	if !ok {
		return
	}
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.reg.Identity.UpdateAgent(req.Caller, id, registry.UpdateRequest{
		Owner:       req.Owner,
		DID:         req.DID,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

type linkRequest struct {
	Caller           common.Address `json:"caller"`
	DeveloperAddress common.Address `json:"developerAddress"`
	DeveloperDID     string         `json:"developerDid"`
}

func (s *Server) linkDeveloper(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := parseID(w, ps.ByName("id"))
	if !ok {
		return
	}
	var req linkRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.reg.Identity.LinkDeveloperDID(req.Caller, id, req.DeveloperAddress, req.DeveloperDID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"linked": true})
}

func (s *Server) resolveDomain(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agent, err := s.reg.Identity.ResolveByDomain(ps.ByName("domain"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) resolveAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agent, err := s.reg.Identity.ResolveByAddress(common.HexToAddress(ps.ByName("address")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) resolveDID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agent, err := s.reg.Identity.ResolveByDID(ps.ByName("did"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

type feedbackRequest struct {
	Caller        common.Address `json:"caller"`
	ClientAgentID uint64         `json:"clientAgentId"`
	ServerAgentID uint64         `json:"serverAgentId"`
}

func (s *Server) acceptFeedback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := s.reg.Reputation.AcceptFeedback(req.Caller, s.clock.Now(), req.ClientAgentID, req.ServerAgentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]common.Hash{"authToken": token})
}

func (s *Server) getAuthorization(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	client, ok := parseID(w, ps.ByName("client"))
	if !ok {
		return
	}
	server, ok := parseID(w, ps.ByName("server"))
	if !ok {
		return
	}
	authorized, token := s.reg.Reputation.IsAuthorized(client, server)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authorized": authorized,
		"authToken":  token,
	})
}

type validationRequest struct {
	ValidatorAgentID uint64      `json:"validatorAgentId"`
	ServerAgentID    uint64      `json:"serverAgentId"`
	DataHash         common.Hash `json:"dataHash"`
}

func (s *Server) requestValidation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validationRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.reg.Validation.RequestValidation(s.clock.Now(), req.ValidatorAgentID, req.ServerAgentID, req.DataHash); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"requested": true})
}

func (s *Server) getValidation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hash := common.HexToHash(ps.ByName("hash"))
	req, err := s.reg.Validation.GetRequest(hash)
	if err != nil {
		writeError(w, err)
		return
	}
	_, pending := s.reg.Validation.IsPending(s.clock.Now(), hash)
	hasResponse, score := s.reg.Validation.GetResponse(hash)
	resp := map[string]interface{}{
		"request": req,
		"pending": pending,
	}
	if hasResponse {
		resp["score"] = score
	}
	writeJSON(w, http.StatusOK, resp)
}

type responseRequest struct {
	Caller common.Address `json:"caller"`
	Score  uint8          `json:"score"`
}

func (s *Server) submitResponse(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req responseRequest
	if !decode(w, r, &req) {
		return
	}
	hash := common.HexToHash(ps.ByName("hash"))
	if err := s.reg.Validation.SubmitResponse(req.Caller, s.clock.Now(), hash, req.Score); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"responded": true})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":          params.VersionWithMeta,
		"agents":           s.reg.Identity.Count(),
		"clock":            s.clock.Now(),
		"expirationWindow": s.reg.Validation.Window(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed agent id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode API response", "err", err)
	}
}

// writeError maps registry error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrAgentNotFound),
		errors.Is(err, registry.ErrDIDNotRegistered),
		errors.Is(err, registry.ErrValidationRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrUnauthorizedUpdate),
		errors.Is(err, registry.ErrUnauthorizedFeedback),
		errors.Is(err, registry.ErrUnauthorizedValidator):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrDomainAlreadyRegistered),
		errors.Is(err, registry.ErrDIDAlreadyRegistered),
		errors.Is(err, registry.ErrAddressAlreadyRegistered),
		errors.Is(err, registry.ErrFeedbackAlreadyAuthorized),
		errors.Is(err, registry.ErrValidationAlreadyResponded):
		return http.StatusConflict
	case errors.Is(err, registry.ErrRequestExpired),
		errors.Is(err, registry.ErrSignatureExpired):
		return http.StatusGone
	case errors.Is(err, registry.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}
