// Package rpc exposes the tip selection core over HTTP, the
// getTransactionsToApprove/getTipInfo pair spec.md §6 names as the RPC
// collaborator's surface, grounded on gin handler wiring the way
// hornet's plugins/webapi/tips.go shapes that same pair, and started the
// way node/apiserver.go starts its gin server off a viper-configured port.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/lunfardo314/tipselect/depth"
	"github.com/lunfardo314/tipselect/global"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/milestone"
	"github.com/lunfardo314/tipselect/tipselect"
)

type ApproveRequest struct {
	Depth      uint32 `json:"depth"`
	NumWalks   uint32 `json:"numWalks"`
	Reference  string `json:"reference"`
}

type ApproveResponse struct {
	Trunk  string `json:"trunk,omitempty"`
	Branch string `json:"branch,omitempty"`
	Error  string `json:"error,omitempty"`
}

type TipInfoRequest struct {
	Tail string `json:"tail"`
}

type TipInfoResponse struct {
	BelowMaxDepth bool   `json:"belowMaxDepth,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Server bundles a Selector with the ambient pieces the handlers need:
// a depth guard for getTipInfo (a cheaper query than a full selection)
// and the milestone tracker for its max-depth window.
type Server struct {
	g         *global.Global
	sel       *tipselect.Selector
	guard     *depth.Guard
	milestone milestone.Tracker
	cfg       tipselect.Config
}

func New(g *global.Global, sel *tipselect.Selector, guard *depth.Guard, mt milestone.Tracker, cfg tipselect.Config) *Server {
	return &Server{g: g, sel: sel, guard: guard, milestone: mt, cfg: cfg}
}

// RunOn starts the gin server on addr, the way node.startAPIServer starts
// server.RunOn off a viper-read port, and stops it when g's context is
// cancelled.
func (s *Server) RunOn(addr string) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	s.registerRoutes(router)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-s.g.Ctx().Done()
		s.g.Log().Infof("rpc: shutting down %s", addr)
		_ = srv.Shutdown(context.Background())
	}()

	s.g.Log().Infof("rpc: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.g.Log().Errorf("rpc: server error: %v", err)
	}
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.POST("/getTransactionsToApprove", s.getTransactionsToApprove)
	r.POST("/getTipInfo", s.getTipInfo)
}

// getTransactionsToApprove issues two independent selections, the second
// with extra_tip set to the first result so the branch reference is
// linked to the trunk choice (spec.md §6).
func (s *Server) getTransactionsToApprove(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ApproveResponse{Error: "reference invalid"})
		return
	}

	var reference ledger.Hash
	if req.Reference != "" {
		h, err := ledger.HashFromHex(req.Reference)
		if err != nil {
			c.JSON(http.StatusBadRequest, ApproveResponse{Error: "reference invalid"})
			return
		}
		reference = h
	}
	if req.NumWalks == 0 {
		// A caller omitting numWalks wants the default walk count, not the
		// core's iterations=0 boundary (spec.md §8: "returns None"). This
		// RPC-layer default intentionally diverges from that boundary.
		req.NumWalks = 1
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cancel := func() bool { return s.g.Cancelled() }

	trunk, err := s.sel.SelectTip(rng, tipselect.Request{
		Reference:  reference,
		Depth:      req.Depth,
		Iterations: req.NumWalks,
	}, cancel)
	if resp, done := responseForError(err, trunk, "no solid tip"); done {
		c.JSON(http.StatusOK, resp)
		return
	}

	branch, err := s.sel.SelectTip(rng, tipselect.Request{
		Reference:  reference,
		ExtraTip:   *trunk,
		Depth:      req.Depth,
		Iterations: req.NumWalks,
	}, cancel)
	if resp, done := responseForError(err, branch, "no solid tip"); done {
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, ApproveResponse{Trunk: trunk.String(), Branch: branch.String()})
}

func responseForError(err error, h *ledger.Hash, noneMsg string) (ApproveResponse, bool) {
	switch err {
	case nil:
	case tipselect.ErrCancelled:
		return ApproveResponse{Error: "cancelled"}, true
	case tipselect.ErrNotSynced:
		return ApproveResponse{Error: "not synced"}, true
	default:
		return ApproveResponse{Error: fmt.Sprintf("internal error: %v", err)}, true
	}
	if h == nil {
		return ApproveResponse{Error: noneMsg}, true
	}
	return ApproveResponse{}, false
}

// getTipInfo reuses DepthGuard to answer the narrower "is this tail still
// within the approval window" question without running a full selection,
// mirroring hornet's getTipInfo check against BelowMaxDepth.
func (s *Server) getTipInfo(c *gin.Context) {
	var req TipInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, TipInfoResponse{Error: "invalid tail hash supplied"})
		return
	}
	h, err := ledger.HashFromHex(req.Tail)
	if err != nil {
		c.JSON(http.StatusBadRequest, TipInfoResponse{Error: "invalid tail hash supplied"})
		return
	}

	snap := milestone.Read(s.milestone)
	minAllowedIndex := uint32(0)
	if snap.LatestSolidIndex > 2*tipselect.MaxDepth {
		minAllowedIndex = snap.LatestSolidIndex - 2*tipselect.MaxDepth
	}
	below := s.guard.BelowMaxDepth(h, minAllowedIndex, depth.NewCache())
	c.JSON(http.StatusOK, TipInfoResponse{BelowMaxDepth: below})
}

// PortFromConfig reads api.server.port the way node.startAPIServer does,
// defaulting to 14265 (the historical IRI/hornet tip-selection API port).
func PortFromConfig() int {
	viper.SetDefault("api.server.port", 14265)
	return viper.GetInt("api.server.port")
}
