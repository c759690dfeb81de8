package handler

import (
	"net/http"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/domain/email"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultJobsPage = 100

func (h *Handler) health(c *gin.Context) {
	rep := h.Health.Check(c.Request.Context())
	code := http.StatusOK
	if !rep.Healthy() {
		code = http.StatusServiceUnavailable
		for name, err := range rep.Errors {
			h.Log.Warn("dependency check failed", zap.String("dependency", name), zap.Error(err))
		}
	}
	c.JSON(code, rep)
}

func (h *Handler) emailStats(c *gin.Context) {
	stats, err := h.Queue.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// emailJobs lists jobs by status; start and end are inclusive, end defaults
// to start+99.
func (h *Handler) emailJobs(c *gin.Context) {
	var q dto.JobsQueryDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		bad(c, err)
		return
	}
	end := q.Start + defaultJobsPage - 1
	if q.End != nil {
		end = *q.End
	}
	jobs, err := h.Queue.Jobs(c.Request.Context(), email.JobStatus(q.Status), q.Start, end)
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]dto.EmailJobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, dto.EmailJobResponse{Job: j, Status: email.JobStatus(q.Status)})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) emailJob(c *gin.Context) {
	job, status, err := h.Queue.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EmailJobResponse{Job: job, Status: status})
}

func (h *Handler) sendNotification(c *gin.Context) {
	var body dto.NotificationDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	if err := h.v.Struct(body); err != nil {
		bad(c, err)
		return
	}
	if err := h.Queue.SendNotification(c.Request.Context(), body.To, body.Subject, body.Text); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
