package handler

import (
	"net/http"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) createRole(c *gin.Context) {
	var body dto.CreateRoleDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	role, err := h.IAM.CreateRole(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRoleResponse(role))
}

func (h *Handler) listRoles(c *gin.Context) {
	roles, err := h.IAM.ListRoles(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.NewRoleResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	role, err := h.IAM.GetRole(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoleResponse(role))
}

func (h *Handler) updateRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateRoleDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	role, err := h.IAM.UpdateRole(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoleResponse(role))
}

func (h *Handler) deleteRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.IAM.DeleteRole(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createPermission(c *gin.Context) {
	var body dto.CreatePermissionDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	perm, err := h.IAM.CreatePermission(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPermissionResponse(perm))
}

func (h *Handler) listPermissions(c *gin.Context) {
	perms, err := h.IAM.ListPermissions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPermissionResponses(perms))
}

func (h *Handler) deletePermission(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.IAM.DeletePermission(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
