// Package handlers implements the HTTP handlers over a named-network
// registry.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/ktbn"
	"github.com/soundprediction/ktbn/pkg/engine"
	"github.com/soundprediction/ktbn/pkg/naming"
	"github.com/soundprediction/ktbn/pkg/server/dto"
	"github.com/soundprediction/ktbn/pkg/types"
)

// Registry holds named templates. The facade itself is single-threaded, so
// all access is serialized behind one mutex.
type Registry struct {
	mu       sync.Mutex
	networks map[string]*ktbn.Network
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{networks: make(map[string]*ktbn.Network), logger: logger}
}

// NetworksHandler handles all /networks routes.
type NetworksHandler struct {
	registry *Registry
}

// NewNetworksHandler creates a new handler over the registry.
func NewNetworksHandler(registry *Registry) *NetworksHandler {
	return &NetworksHandler{registry: registry}
}

// Create handles POST /networks.
func (h *NetworksHandler) Create(c *gin.Context) {
	var req dto.CreateNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	if _, exists := h.registry.networks[req.ID]; exists {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "network already exists"})
		return
	}
	opts := []ktbn.Option{ktbn.WithLogger(h.registry.logger)}
	if req.Separator != "" {
		opts = append(opts, ktbn.WithSeparator(req.Separator))
	}
	net, err := ktbn.New(req.Horizon, opts...)
	if err != nil {
		writeError(c, err)
		return
	}
	h.registry.networks[req.ID] = net
	c.JSON(http.StatusCreated, networkResponse(req.ID, net))
}

// List handles GET /networks.
func (h *NetworksHandler) List(c *gin.Context) {
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	ids := make([]string, 0, len(h.registry.networks))
	for id := range h.registry.networks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]dto.NetworkResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, networkResponse(id, h.registry.networks[id]))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /networks/:id.
func (h *NetworksHandler) Get(c *gin.Context) {
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	c.JSON(http.StatusOK, networkResponse(c.Param("id"), net))
}

// Delete handles DELETE /networks/:id.
func (h *NetworksHandler) Delete(c *gin.Context) {
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	id := c.Param("id")
	if _, exists := h.registry.networks[id]; !exists {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "network not found"})
		return
	}
	delete(h.registry.networks, id)
	c.Status(http.StatusNoContent)
}

// AddVariable handles POST /networks/:id/variables.
func (h *NetworksHandler) AddVariable(c *gin.Context) {
	var req dto.AddVariableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()

	v := engine.Variable{Name: req.Name, Description: req.Description, Labels: req.Labels}
	if v.Description == "" {
		v.Description = req.Name
	}
	if len(v.Labels) == 0 {
		v = engine.NewLabelizedVariable(req.Name, v.Description, req.DomainSize)
	}
	if err := net.AddVariable(v); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, networkResponse(c.Param("id"), net))
}

// RemoveVariable handles DELETE /networks/:id/variables/:name.
func (h *NetworksHandler) RemoveVariable(c *gin.Context) {
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	if err := net.RemoveVariable(c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddArc handles POST /networks/:id/arcs.
func (h *NetworksHandler) AddArc(c *gin.Context) {
	var req dto.ArcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	if err := net.AddArc(req.Tail, req.Head); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveArc handles DELETE /networks/:id/arcs.
func (h *NetworksHandler) RemoveArc(c *gin.Context) {
	var req dto.ArcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	if err := net.RemoveArc(req.Tail, req.Head); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListArcs handles GET /networks/:id/arcs.
func (h *NetworksHandler) ListArcs(c *gin.Context) {
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	arcs, err := net.Arcs()
	if err != nil {
		writeError(c, err)
		return
	}
	strs := make([]string, len(arcs))
	for i, a := range arcs {
		strs[i] = a.String()
	}
	c.JSON(http.StatusOK, dto.ArcsResponse{Arcs: arcs, Strings: strs})
}

// GetCPT handles GET /networks/:id/cpt/:name/:slice.
func (h *NetworksHandler) GetCPT(c *gin.Context) {
	key, ok := h.cptKey(c)
	if !ok {
		return
	}
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	tensor, err := net.CPT(key)
	if err != nil {
		writeError(c, err)
		return
	}
	values, err := tensor.Read(types.Evidence{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CPTResponse{Variable: key, Values: values, Rendered: tensor.String()})
}

// FillCPT handles PUT /networks/:id/cpt/:name/:slice.
func (h *NetworksHandler) FillCPT(c *gin.Context) {
	key, ok := h.cptKey(c)
	if !ok {
		return
	}
	var req dto.FillCPTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	tensor, err := net.CPT(key)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := tensor.FillValues(req.Values); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unroll handles POST /networks/:id/unroll.
func (h *NetworksHandler) Unroll(c *gin.Context) {
	var req dto.UnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	net, ok := h.lock(c)
	if !ok {
		return
	}
	defer h.registry.mu.Unlock()
	flat, err := net.Unroll(req.Slices)
	if err != nil {
		writeError(c, err)
		return
	}
	codec := naming.New(net.Separator())
	resp := dto.UnrollResponse{Slices: req.Slices, Nodes: flat.Names()}
	for _, a := range flat.Arcs() {
		tail, err := decodeEndpoint(flat, codec, a.Tail)
		if err != nil {
			writeError(c, err)
			return
		}
		head, err := decodeEndpoint(flat, codec, a.Head)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.Arcs = append(resp.Arcs, types.Arc{Tail: tail, Head: head})
	}
	c.JSON(http.StatusOK, resp)
}

// lock fetches the requested network and leaves the registry locked; callers
// must unlock. A false return means the response was already written.
func (h *NetworksHandler) lock(c *gin.Context) (*ktbn.Network, bool) {
	h.registry.mu.Lock()
	net, exists := h.registry.networks[c.Param("id")]
	if !exists {
		h.registry.mu.Unlock()
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "network not found"})
		return nil, false
	}
	return net, true
}

func (h *NetworksHandler) cptKey(c *gin.Context) (types.UserKey, bool) {
	slice, err := strconv.Atoi(c.Param("slice"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "slice must be an integer"})
		return types.UserKey{}, false
	}
	return types.Key(c.Param("name"), slice), true
}

func networkResponse(id string, net *ktbn.Network) dto.NetworkResponse {
	return dto.NetworkResponse{
		ID:        id,
		Horizon:   net.Horizon(),
		Separator: net.Separator(),
		Variables: net.Variables(),
	}
}

func decodeEndpoint(net engine.BayesNet, codec naming.Codec, id engine.NodeID) (types.UserKey, error) {
	v, err := net.Variable(id)
	if err != nil {
		return types.UserKey{}, err
	}
	return codec.Decode(v.Name)
}

// writeError maps the library's error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var (
		validation *types.ValidationError
		ordering   *types.OrderingError
		horizon    *types.HorizonError
		notFound   *types.NotFoundError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Kind: "not_found"})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Kind: "validation"})
	case errors.As(err, &ordering):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Kind: "ordering"})
	case errors.As(err, &horizon):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Kind: "horizon"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
