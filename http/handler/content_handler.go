package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/http/middleware"
	"github.com/nguyengiapalth/flowx-sync/use_case"
)

type listContentRequest struct {
	TargetType string `form:"targetType" binding:"required"`
	TargetID   uint64 `form:"targetId"`
}

type Content struct {
	contentReader use_case.ContentByID
	createReply   domain.CreateReplyUseCase
}

// ListTree returns the reply forest of one target.
func (h *Content) ListTree(c *gin.Context) {
	var params listContentRequest

	if err := c.ShouldBindQuery(&params); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	roots, err := h.contentReader.TreeByTarget(c.Request.Context(), params.TargetType, params.TargetID)
	if err != nil {
		abortWithInternalError(c, err)
		return
	}

	if roots == nil {
		roots = []*domain.ContentNode{}
	}

	c.JSON(http.StatusOK, roots)
}

// CreateReply creates a root post (parentId -1) or a reply under an
// existing node.
func (h *Content) CreateReply(c *gin.Context) {
	var req domain.CreateReplyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	req.Author = middleware.GetUserIDFromContext(c)

	node, err := h.createReply.Execute(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParent) || errors.Is(err, domain.ErrNodeNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		abortWithInternalError(c, err)

		return
	}

	c.JSON(http.StatusCreated, node)
}

func NewContent(
	contentReader use_case.ContentByID,
	createReply domain.CreateReplyUseCase,
) *Content {
	return &Content{
		contentReader: contentReader,
		createReply:   createReply,
	}
}
