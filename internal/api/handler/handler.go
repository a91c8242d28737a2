package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/config"
	"github.com/d60-Lab/tweetline/internal/service"
	"github.com/d60-Lab/tweetline/pkg/response"
)

// Handler 汇聚全部业务服务
type Handler struct {
	cfg        *config.Config
	userSvc    service.UserService
	profileSvc service.ProfileService
	friendSvc  service.FriendshipService
	tweetSvc   service.TweetService
	feedSvc    service.NewsFeedService
	commentSvc service.CommentService
	likeSvc    service.LikeService
	notifSvc   service.NotificationService
}

func New(
	cfg *config.Config,
	userSvc service.UserService,
	profileSvc service.ProfileService,
	friendSvc service.FriendshipService,
	tweetSvc service.TweetService,
	feedSvc service.NewsFeedService,
	commentSvc service.CommentService,
	likeSvc service.LikeService,
	notifSvc service.NotificationService,
) *Handler {
	return &Handler{
		cfg:        cfg,
		userSvc:    userSvc,
		profileSvc: profileSvc,
		friendSvc:  friendSvc,
		tweetSvc:   tweetSvc,
		feedSvc:    feedSvc,
		commentSvc: commentSvc,
		likeSvc:    likeSvc,
		notifSvc:   notifSvc,
	}
}

// fail 统一映射服务层错误
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, service.ErrAlreadyFollowing):
		response.Conflict(c, err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		response.Conflict(c, "duplicate record")
	case errors.Is(err, service.ErrFollowSelf),
		errors.Is(err, service.ErrBadTarget):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrBadCredentials):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
