package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Presence *Presence
	Content  *Content
	Task     *Task
}

func NewHandler(
	presence *Presence,
	content *Content,
	task *Task,
) *Handler {
	return &Handler{
		Presence: presence,
		Content:  content,
		Task:     task,
	}
}

func abortWithInternalError(c *gin.Context, err error) {
	log.Printf("err: %s", err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
