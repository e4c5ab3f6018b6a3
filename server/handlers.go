package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/onejobco/onejob/internal/gateway"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type createSubstackRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.storage.ListTasks(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	task, err := s.storage.CreateTask(c.Request().Context(), req.Title, req.Description)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c echo.Context) error {
	tasks, err := s.storage.ListTasks(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	id := c.Param("id")
	for _, t := range tasks {
		if t.ID == id {
			return c.JSON(http.StatusOK, t)
		}
	}
	return c.JSON(http.StatusNotFound, errorBody("task not found"))
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var update gateway.TaskUpdate
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	task, err := s.storage.UpdateTask(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.storage.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCreateSubstack(c echo.Context) error {
	var req createSubstackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	sub, err := s.storage.CreateSubstack(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

// fail maps storage errors onto wire status codes
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, gateway.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
