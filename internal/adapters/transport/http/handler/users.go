package handler

import (
	"net/http"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listUsers(c *gin.Context) {
	var q dto.PageDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		bad(c, err)
		return
	}
	users, page, err := h.Users.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	out := dto.UserPage{Data: make([]dto.UserResponse, 0, len(users)), Meta: dto.NewPageMeta(page)}
	for _, u := range users {
		out.Data = append(out.Data, dto.NewUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	u, err := h.Users.Update(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) assignRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body dto.AssignRoleDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	if err := h.IAM.AssignRole(c.Request.Context(), id, body); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.IAM.RemoveRole(c.Request.Context(), id, c.Param("role")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) assignPermission(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body dto.AssignPermissionDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	if err := h.IAM.AssignPermission(c.Request.Context(), id, body); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
