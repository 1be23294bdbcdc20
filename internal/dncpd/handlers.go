package dncpd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shurlinet/dncp/pkg/dncp"
	"github.com/shurlinet/dncp/pkg/tlv"
)

const maxRequestBodySize = 1 << 20

// RuntimeInfo decouples the handlers from the daemon's concrete main-loop
// type, the way the teacher's daemon package is kept independent of its
// entrypoint struct.
type RuntimeInfo interface {
	Core() *dncp.Core
	StartedAt() time.Time
	Version() string
	UserAgent() string
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	core := s.runtime.Core()
	store := core.Store()
	hash := store.NetworkHash()

	resp := StatusResponse{
		NodeID:        hex.EncodeToString(store.OwnID().Bytes()),
		Uptime:        time.Since(s.runtime.StartedAt()).Round(time.Second).String(),
		StartedAt:     s.runtime.StartedAt(),
		NetworkHash:   hex.EncodeToString(hash[:]),
		NodeCount:     store.Len(),
		EndpointCount: len(core.Endpoints()),
		Version:       s.runtime.Version(),
		UserAgent:     s.runtime.UserAgent(),
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	core := s.runtime.Core()
	store := core.Store()

	var nodes []NodeInfo
	store.ForEachReachable(func(n *dncp.Node) {
		nodes = append(nodes, NodeInfo{
			NodeID:          hex.EncodeToString(n.ID.Bytes()),
			UpdateNumber:    n.UpdateNumber,
			OriginationTime: n.OriginationTime,
			Reachable:       n.Reachable,
			NeedsData:       n.NeedsData,
			DataHash:        hex.EncodeToString(n.DataHash[:]),
			TLVCount:        len(n.TLVs),
		})
	})
	respondJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleListPeers(w http.ResponseWriter, r *http.Request) {
	core := s.runtime.Core()

	var out []EndpointInfo
	for _, ep := range core.Endpoints() {
		peers := ep.Peers()
		pi := make([]PeerInfo, 0, len(peers))
		for _, p := range peers {
			pi = append(pi, PeerInfo{
				NodeID:      hex.EncodeToString(p.NodeID.Bytes()),
				EndpointID:  p.EndpointID,
				Address:     p.Address,
				LastContact: p.LastContact,
			})
		}
		out = append(out, EndpointInfo{
			Name:      ep.Name,
			IfIndex:   ep.IfIndex,
			Enabled:   ep.Enabled,
			PeerCount: len(pi),
			Peers:     pi,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.runtime.Core().Publish(tlv.Attr{Type: req.Type, Payload: req.Payload}); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	var req UnpublishRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.runtime.Core().Unpublish(tlv.Attr{Type: req.Type, Payload: req.Payload}); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "unpublished"})
}
