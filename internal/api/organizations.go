package api

import (
	"net/http"

	"fjacquet/fintrack/internal/models"

	"github.com/gin-gonic/gin"
)

type memberRequest struct {
	User uint              `json:"user"`
	Role models.MemberRole `json:"role"`
}

type roleRequest struct {
	Role models.MemberRole `json:"role"`
}

type teamRequest struct {
	User uint `json:"user"`
}

func (s *Server) addMember(c *gin.Context) {
	orgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if !bind(c, &req) {
		return
	}
	m, err := s.c.GetOrganizations().AddMember(c.Request.Context(), currentUser(c), orgID, req.User, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusCreated, newMemberView(m))
}

func (s *Server) updateMemberRole(c *gin.Context) {
	orgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	m, err := s.c.GetOrganizations().UpdateMemberRole(c.Request.Context(), currentUser(c), orgID, userID, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, newMemberView(m))
}

func (s *Server) removeMember(c *gin.Context) {
	orgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	if err := s.c.GetOrganizations().RemoveMember(c.Request.Context(), currentUser(c), orgID, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"organization": orgID, "user": userID})
}

func (s *Server) addTeamMember(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req teamRequest
	if !bind(c, &req) {
		return
	}
	if err := s.c.GetOrganizations().AddTeamMember(c.Request.Context(), currentUser(c), projectID, req.User); err != nil {
		Fail(c, err)
		return
	}
	s.teamResponse(c, http.StatusCreated, projectID)
}

func (s *Server) removeTeamMember(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	if err := s.c.GetOrganizations().RemoveTeamMember(c.Request.Context(), currentUser(c), projectID, userID); err != nil {
		Fail(c, err)
		return
	}
	s.teamResponse(c, http.StatusOK, projectID)
}

func (s *Server) teamResponse(c *gin.Context, status int, projectID uint) {
	members, err := s.c.GetOrganizations().TeamMembers(c.Request.Context(), currentUser(c), projectID)
	if err != nil {
		Fail(c, err)
		return
	}
	if members == nil {
		members = []uint{}
	}
	Success(c, status, gin.H{"project": projectID, "team_members": members})
}
