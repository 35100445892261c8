package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-harvest/dto"
	"forum-harvest/services"
)

// HealthHandler reports liveness together with the collector currently running.
// @Summary      Health check
// @Description  Liveness probe. Names the collector currently running, if any.
// @Tags         ops
// @Produce      json
// @Success      200  {object}  dto.HealthDTO
// @Router       /health [get]
func HealthHandler(svc *services.RunService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthDTO{Status: "ok", Running: svc.Running()})
	}
}

// ListRunsHandler returns the last result of each collector.
// @Summary      List collector runs
// @Description  Registered collectors, the one running now and the last result of each.
// @Tags         runs
// @Produce      json
// @Success      200  {object}  dto.RunsResponseDTO
// @Router       /api/v1/runs [get]
func ListRunsHandler(svc *services.RunService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.LastRuns())
	}
}

// StartRunHandler starts the collector named in the path in the background.
// 404 for an unknown collector, 409 while another run holds the sheet.
// @Summary      Start a collector run
// @Description  Starts one run in the background. Only one run executes at a time.
// @Tags         runs
// @Produce      json
// @Security     BearerAuth
// @Param        collector  path      string  true  "Collector name"  Enums(render, poll)
// @Success      202        {object}  dto.RunAcceptedDTO
// @Failure      401        {object}  dto.ErrorResponseDTO
// @Failure      404        {object}  dto.ErrorResponseDTO
// @Failure      409        {object}  dto.ErrorResponseDTO
// @Failure      500        {object}  dto.ErrorResponseDTO
// @Router       /api/v1/runs/{collector} [post]
func StartRunHandler(svc *services.RunService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("collector")
		err := svc.Start(name)
		switch {
		case errors.Is(err, services.ErrUnknownCollector):
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: err.Error()})
		case errors.Is(err, services.ErrRunInProgress):
			c.JSON(http.StatusConflict, dto.ErrorResponseDTO{Error: err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
		default:
			c.JSON(http.StatusAccepted, dto.RunAcceptedDTO{Collector: name, Status: "started"})
		}
	}
}
