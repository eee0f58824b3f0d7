package website

import (
	"net/http"

	"git.campusqa.org/campusqa/campusqa/src/qadata"
	"git.campusqa.org/campusqa/campusqa/src/qaurl"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewWebsiteRoutes(conn *pgxpool.Pool, mod qadata.Moderator) http.Handler {
	router := &Router{
		Conn:      conn,
		Moderator: mod,
	}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			requestIDMiddleware,
			trackRequestPerf,
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
			loadSession,
		},
	}
	authed := routes.WithMiddleware(needsAuth)

	routes.GET("Post", qaurl.RegexPost, PostShow)
	authed.POST("PostCreate", qaurl.RegexPostCreate, PostCreate)
	authed.POST("PostUnaccept", qaurl.RegexPostUnaccept, PostUnaccept)

	authed.POST("PostUpvote", qaurl.RegexPostUpvote, PostUpvote)
	authed.POST("PostDownvote", qaurl.RegexPostDownvote, PostDownvote)
	authed.POST("PostLikeCreate", qaurl.RegexPostLikes, PostLikeCreate)
	authed.DELETE("PostLikeDelete", qaurl.RegexPostLikes, PostLikeDelete)

	authed.POST("AnswerCreate", qaurl.RegexAnswerCreate, AnswerCreate)
	authed.POST("AnswerEdit", qaurl.RegexAnswerEdit, AnswerEdit)
	authed.POST("AnswerDelete", qaurl.RegexAnswerDelete, AnswerDelete)
	authed.POST("AnswerAccept", qaurl.RegexAnswerAccept, AnswerAccept)
	authed.POST("AnswerRedaction", qaurl.RegexAnswerRedaction, AnswerRedaction)
	authed.GET("AnswerRevisions", qaurl.RegexAnswerRevisions, AnswerRevisions)

	routes.AnyMethod("NotFound", qaurl.RegexCatchAll, FourOhFour)

	return router
}
