package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/ytza/ytza/internal/project/domain"
)

type saveProjectRequest struct {
	ImageURL               string   `json:"imageUrl"`
	SelectedStyleID        string   `json:"selectedStyleId"`
	GeneratedYtTitle       string   `json:"generatedYtTitle"`
	GeneratedYtDescription string   `json:"generatedYtDescription"`
	GeneratedYtTags        []string `json:"generatedYtTags"`
}

func (s *Server) SaveProject(c *gin.Context) {
	var req saveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	imageURL := sanitizeImageURL(req.ImageURL)
	if imageURL == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project, err := s.projectSvc.Save(c.Request.Context(), projectdomain.SaveRequest{
		UserID:                 s.userID(c),
		SelectedStyleID:        sanitizeText(req.SelectedStyleID),
		ThumbnailStoragePath:   imageURL,
		GeneratedYtTitle:       sanitizeText(req.GeneratedYtTitle),
		GeneratedYtDescription: sanitizeText(req.GeneratedYtDescription),
		GeneratedYtTags:        req.GeneratedYtTags,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": project})
}

type updateThumbnailRequest struct {
	SelectedStyleID string `json:"selectedStyleId"`
	ImageURL        string `json:"imageUrl"`
}

func (s *Server) UpdateProjectThumbnail(c *gin.Context) {
	var req updateThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	imageURL := sanitizeImageURL(req.ImageURL)
	if imageURL == "" || sanitizeText(req.SelectedStyleID) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project, err := s.projectSvc.UpdateThumbnail(c.Request.Context(),
		s.userID(c), sanitizeText(req.SelectedStyleID), imageURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": project})
}

type updateContentRequest struct {
	SelectedStyleID string   `json:"selectedStyleId"`
	Title           *string  `json:"generatedYtTitle"`
	Description     *string  `json:"generatedYtDescription"`
	Tags            []string `json:"generatedYtTags"`
}

// UpdateProjectContent applies a sparse metadata edit: absent fields stay as
// they are, so the client can update the title without resending tags.
func (s *Server) UpdateProjectContent(c *gin.Context) {
	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	update := projectdomain.ContentUpdate{Tags: req.Tags}
	if req.Title != nil {
		title := sanitizeText(*req.Title)
		update.Title = &title
	}
	if req.Description != nil {
		description := sanitizeText(*req.Description)
		update.Description = &description
	}

	project, err := s.projectSvc.UpdateContent(c.Request.Context(),
		s.userID(c), sanitizeText(req.SelectedStyleID), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": project})
}

func (s *Server) ListProjects(c *gin.Context) {
	projects, err := s.projectSvc.List(c.Request.Context(), s.userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
