package server

import (
	"errors"
	"net/http"

	"github.com/gongmax/lexitrail/pkg/db"
	"github.com/gongmax/lexitrail/pkg/logger"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type userRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Self-registration only: the body email must match the token identity.
	if req.Email != authenticatedEmail(c) {
		return c.JSON(http.StatusForbidden, map[string]string{"message": "Unauthorized: You can only create yourself"})
	}

	_, err := db.CreateUser(db.DB, req.Email)
	if errors.Is(err, db.ErrUserExists) {
		return c.JSON(http.StatusOK, map[string]string{"message": "User already exists"})
	}
	if err != nil {
		logger.Error("failed to create user", "email", req.Email, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (s *Server) handleGetUsers(c echo.Context) error {
	users, err := db.GetAllUsers(db.DB)
	if err != nil {
		logger.Error("failed to list users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) handleGetUser(c echo.Context) error {
	email := c.Param("email")
	if err := validateUserAccess(c, email); err != nil {
		return err
	}

	user, err := db.GetUserByEmail(db.DB, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userNotFound(c, email)
	}
	if err != nil {
		logger.Error("failed to fetch user", "email", email, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}
	return c.JSON(http.StatusOK, map[string]string{"email": user.Email})
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	email := c.Param("email")
	if err := validateUserAccess(c, email); err != nil {
		return err
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	_, err := db.UpdateUserEmail(db.DB, email, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userNotFound(c, email)
	}
	if err != nil {
		logger.Error("failed to update user", "email", email, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	email := c.Param("email")
	if err := validateUserAccess(c, email); err != nil {
		return err
	}

	err := db.DeleteUser(db.DB, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userNotFound(c, email)
	}
	if err != nil {
		logger.Error("failed to delete user", "email", email, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func userNotFound(c echo.Context, email string) error {
	return c.JSON(http.StatusNotFound, map[string]string{
		"message": "User not found",
		"email":   email,
	})
}
