package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/apperr"
	"filedrive.dev/api/internal/auth"
	"filedrive.dev/api/internal/cache"
	"filedrive.dev/api/internal/files"
	"filedrive.dev/api/internal/users"
)

// MetadataStore is the slice of the document store the status/stats
// endpoints need.
type MetadataStore interface {
	Ping(ctx context.Context) error
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
}

type Handler struct {
	Logger   *logrus.Logger
	Auth     *auth.Service
	Users    *users.Service
	Files    *files.Service
	Sessions cache.Store
	Meta     MetadataStore
}

func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, StatusRes{
		Redis: h.Sessions.Ping(ctx) == nil,
		DB:    h.Meta.Ping(ctx) == nil,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	userCount, err := h.Meta.CountUsers(ctx)
	if err != nil {
		h.abort(c, apperr.Wrap("user count failed", err))
		return
	}
	fileCount, err := h.Meta.CountFiles(ctx)
	if err != nil {
		h.abort(c, apperr.Wrap("file count failed", err))
		return
	}
	c.JSON(http.StatusOK, StatsRes{Users: userCount, Files: fileCount})
}

// Connect exchanges Basic-auth credentials for a bearer token.
func (h *Handler) Connect(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		h.abort(c, apperr.Unauthorized())
		return
	}

	token, err := h.Auth.Login(c.Request.Context(), email, password)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenRes{Token: token})
}

func (h *Handler) Disconnect(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), c.GetHeader("X-Token")); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.Auth.CurrentUser(c.Request.Context(), c.GetHeader("X-Token"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, UserRes{ID: user.ID.Hex(), Email: user.Email})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req = &CreateUserReq{}
	if err := h.bindJSON(c, req); err != nil {
		h.abort(c, err)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, UserRes{ID: user.ID.Hex(), Email: user.Email})
}

func (h *Handler) UploadFile(c *gin.Context) {
	userID := c.Keys["user_id"].(primitive.ObjectID)

	var req = &UploadFileReq{}
	if err := h.bindJSON(c, req); err != nil {
		h.abort(c, err)
		return
	}

	file, err := h.Files.Create(c.Request.Context(), userID, files.CreateRequest{
		Name:     req.Name,
		Type:     req.Type,
		Data:     req.Data,
		IsPublic: req.IsPublic,
		ParentID: parentIDString(req.ParentID),
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, fileRes(file))
}

func (h *Handler) GetFile(c *gin.Context) {
	userID := c.Keys["user_id"].(primitive.ObjectID)

	file, err := h.Files.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, fileRes(file))
}

func (h *Handler) ListFiles(c *gin.Context) {
	userID := c.Keys["user_id"].(primitive.ObjectID)

	parentID := c.DefaultQuery("parentId", "0")
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		page = 0
	}

	list, err := h.Files.List(c.Request.Context(), userID, parentID, page)
	if err != nil {
		h.abort(c, err)
		return
	}

	output := make([]FileRes, 0, len(list))
	for i := range list {
		output = append(output, fileRes(&list[i]))
	}
	c.JSON(http.StatusOK, output)
}

// bindJSON decodes the request body. An empty body decodes to the zero
// request so field-level validation can report which field is missing.
func (h *Handler) bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Invalid("Invalid request body")
	}
	return nil
}

func (h *Handler) abort(c *gin.Context, err error) {
	c.AbortWithError(statusOf(err), err)
}

func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidRequest, apperr.Conflict:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parentIDString normalizes the untyped parentId a client may send: absent,
// the numeric sentinel 0, "0", or an id string.
func parentIDString(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return "invalid"
	}
}
